package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

func (s *Server) setupRoutes() {
	// Middleware stack
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(MetricsMiddleware(s.metrics))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if s.cfg.RateLimitPerMinute > 0 {
		s.router.Use(httprate.LimitByIP(s.cfg.RateLimitPerMinute, time.Minute))
	}

	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	// API versioning group
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})

		r.Route("/projects", func(r chi.Router) {
			r.Route("/preferences", func(r chi.Router) {
				r.Use(s.originMiddleware)

				r.Get("/", s.handleGetPreferences)                  // GET /api/v1/projects/preferences
				r.Put("/default-filter", s.handleSaveDefaultFilter) // PUT /api/v1/projects/preferences/default-filter
				r.Put("/{name}", s.handleSavePreference)            // PUT /api/v1/projects/preferences/{view|visualization|sort}
				r.Delete("/{name}", s.handleClearPreference)        // DELETE /api/v1/projects/preferences/{view|visualization|sort}
			})

			r.Get("/sorting", s.handleSortingMetrics)        // GET /api/v1/projects/sorting?view=leak
			r.Get("/sorting/parse", s.handleParseSorting)    // GET /api/v1/projects/sorting/parse?sort=-coverage
			r.Get("/sorting/switch", s.handleSwitchSorting)  // GET /api/v1/projects/sorting/switch?sort=-coverage
			r.Get("/views", s.handleViews)                   // GET /api/v1/projects/views
			r.Get("/visualizations", s.handleVisualizations) // GET /api/v1/projects/visualizations
		})
	})
}
