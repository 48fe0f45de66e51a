package server

import (
	"context"
	"errors"
	"net/http"

	"log/slog"

	"rewardshub-backend/internal/config"
)

// Start runs the HTTP server and shuts it down gracefully when ctx is
// cancelled. All timeouts come from config so deployments can tune them.
func Start(ctx context.Context, cfg config.Config, router http.Handler, log *slog.Logger) error {
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("http server shutting down", "timeout", cfg.ShutdownTimeout)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("http server stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
