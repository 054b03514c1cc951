package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/CreativeUnicorns/projectprefs/api"
	"github.com/CreativeUnicorns/projectprefs/metrics"
	"github.com/CreativeUnicorns/projectprefs/storage"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the preferences HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := opts.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, rt)
		},
	}
}

// runServe serves the API until ctx is cancelled, then shuts down gracefully.
func runServe(ctx context.Context, rt *cliEnv) error {
	logger := rt.logger
	logger.Info("projectprefs server starting up", "storage", rt.cfg.Storage.Type)

	backend, err := storage.Open(rt.cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logger.Error("Failed to close storage", "error", err)
		}
	}()

	apiServer, err := api.NewServer(api.Config{
		ListenAddress:      rt.cfg.ListenAddress,
		Backend:            backend,
		Quota:              rt.cfg.Storage.QuotaBytes,
		DefaultOrigin:      rt.cfg.DefaultOrigin,
		AllowedOrigins:     rt.cfg.AllowedOrigins,
		RateLimitPerMinute: rt.cfg.RateLimitPerMinute,
		Translator:         rt.translator,
		Logger:             logger,
		Metrics:            metrics.New(),
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- apiServer.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil {
		return err
	}

	logger.Info("Server exited gracefully")
	return nil
}
