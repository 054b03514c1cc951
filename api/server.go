package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/projectprefs"
	"github.com/CreativeUnicorns/projectprefs/l10n"
	"github.com/CreativeUnicorns/projectprefs/metrics"
	"github.com/CreativeUnicorns/projectprefs/storage"
)

// Server holds the dependencies for the HTTP server.
//
// The storage partition of a preferences request is its Origin header, which
// only browsers set truthfully. Any other client can claim an origin, so the
// partitions are isolated from each other but not authenticated. Origins outside
// AllowedOrigins are refused; the "*" default accepts every origin.
type Server struct {
	backend       storage.Backend
	quota         int64
	defaultOrigin string
	translator    projectprefs.Translator
	logger        projectprefs.Logger
	metrics       *metrics.Metrics
	cfg           Config
	router        *chi.Mux
	httpServer    *http.Server
}

// Config holds configuration for the API server.
type Config struct {
	ListenAddress string
	// Backend holds the preferences of every origin. Required.
	Backend storage.Backend
	// Quota is the per-origin byte budget; zero means storage.DefaultQuota and a negative value disables it.
	Quota int64
	// DefaultOrigin partitions requests that carry no Origin header.
	DefaultOrigin string
	// AllowedOrigins admits CORS origins and storage partitions; one "*" wildcard per entry.
	AllowedOrigins []string
	// RateLimitPerMinute caps requests per client IP; zero or a negative value disables it.
	RateLimitPerMinute int
	Translator         projectprefs.Translator
	Logger             projectprefs.Logger
	Metrics            *metrics.Metrics
}

// NewServer creates and configures a new API server instance.
func NewServer(cfg Config) (*Server, error) {
	if cfg.Backend == nil {
		return nil, fmt.Errorf("%w: backend is required", projectprefs.ErrInvalidInput)
	}
	if cfg.Logger == nil {
		cfg.Logger = projectprefs.NewDefaultLogger()
	}
	if cfg.Translator == nil {
		cfg.Translator = l10n.Default()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = ":8080"
	}
	if cfg.Quota == 0 {
		cfg.Quota = storage.DefaultQuota
	}
	if cfg.DefaultOrigin == "" {
		cfg.DefaultOrigin = "http://localhost:9000"
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		backend:       cfg.Backend,
		quota:         cfg.Quota,
		defaultOrigin: cfg.DefaultOrigin,
		translator:    cfg.Translator,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
		cfg:           cfg,
		router:        chi.NewRouter(),
	}

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:    cfg.ListenAddress,
		Handler: s.router,
		// Configure timeouts to prevent resource exhaustion
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start runs the HTTP server.
// This method is blocking and returns nil once the server is shut down through Stop,
// or an error if the server fails to start or stops unexpectedly.
func (s *Server) Start() error {
	s.logger.Info("API server starting", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("could not start server: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("API server stopping")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("API server stopped gracefully")
	return nil
}

type originCtxKey struct{}

// partition resolves the storage origin of r. A missing Origin header selects
// the default origin; an origin that AllowedOrigins does not admit is refused.
func (s *Server) partition(r *http.Request) (string, bool) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return s.defaultOrigin, true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" {
			return origin, true
		}
		if prefix, suffix, ok := strings.Cut(allowed, "*"); ok {
			if len(origin) >= len(prefix)+len(suffix) && strings.HasPrefix(origin, prefix) && strings.HasSuffix(origin, suffix) {
				return origin, true
			}
			continue
		}
		if allowed == origin {
			return origin, true
		}
	}
	return "", false
}

// preferences returns the facade bound to the origin resolved by OriginMiddleware.
func (s *Server) preferences(r *http.Request) *projectprefs.Preferences {
	origin, ok := r.Context().Value(originCtxKey{}).(string)
	if !ok {
		origin = s.defaultOrigin
	}
	store := storage.ForOrigin(s.backend, origin, storage.WithQuota(s.quota))
	return projectprefs.New(
		projectprefs.WithStore(s.metrics.InstrumentStore(store)),
		projectprefs.WithLogger(s.logger),
	)
}
