// Package app wires the registry, the cleanup worker and the HTTP server
// together and runs them until the context is canceled.
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/vadimbarashkov/expiring-url-shortener/internal/adapter/repository/memory"
	"github.com/vadimbarashkov/expiring-url-shortener/internal/config"
	"github.com/vadimbarashkov/expiring-url-shortener/internal/usecase"
	"github.com/vadimbarashkov/expiring-url-shortener/internal/worker"
	"golang.org/x/sync/errgroup"

	delivery "github.com/vadimbarashkov/expiring-url-shortener/internal/adapter/delivery/http"
)

// NewHandler builds the URL registry and the router serving it. The returned
// use case is also the source of the cleanup worker.
func NewHandler(cfg *config.Config, logger *httplog.Logger) (http.Handler, *usecase.URLUseCase) {
	urlRepo := memory.NewURLRepository()

	urlUseCase := usecase.New(
		urlRepo,
		usecase.WithShortCodeLength(cfg.ShortCode.Length),
		usecase.WithMaxAttempts(cfg.ShortCode.MaxAttempts),
		usecase.WithGrowEvery(cfg.ShortCode.GrowEvery),
		usecase.WithDefaultValidity(cfg.ShortCode.DefaultValidityMinutes),
	)

	r := delivery.NewRouter(
		logger,
		urlUseCase,
		delivery.WithBaseURL(cfg.BaseURL),
		delivery.WithAllowedOrigins(cfg.CORS.AllowedOrigins...),
	)

	return r, urlUseCase
}

func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	handler, urlUseCase := NewHandler(cfg, logger)
	cleanup := worker.NewCleanup(urlUseCase, cfg.Cleanup.Interval, logger.Logger)

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        handler,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return cleanup.Run(ctx)
	})

	g.Go(func() error {
		logger.Info("starting server", "addr", server.Addr, "env", cfg.Env)

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
		defer cancel()

		logger.Info("shutting down server")

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
