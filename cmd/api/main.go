// Command api serves the trip API over plain HTTP for local development
// and container deployments.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"triptrek-backend/infrastructure/config"
	"triptrek-backend/infrastructure/di"
	"triptrek-backend/interfaces/http/rest"

	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Cancelling ctx also stops the cache and rate limiter sweepers
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize container: %w", err)
	}
	logger := container.Logger
	defer func() { _ = logger.Sync() }()

	router := rest.NewRouter(
		container.CommandBus,
		container.QueryBus,
		container.ImageService,
		container.AssistantService,
		container.RateLimiter,
		container.Collector,
		container.ErrorHandler,
		rest.Options{
			AllowedOrigins: cfg.AllowedOrigins,
			EnableCORS:     cfg.EnableCORS,
			ExposeMetrics:  true,
		},
		logger,
	)

	srv := &http.Server{
		Addr:        cfg.ServerAddress,
		Handler:     router.Setup(),
		ReadTimeout: 15 * time.Second,
		// Assistant replies may take the whole chat timeout
		WriteTimeout: cfg.ChatTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.Store),
		)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
