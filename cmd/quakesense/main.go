package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/quakesense-service/internal/adapter/httpadapter"
	"github.com/couchcryptid/quakesense-service/internal/app"
	"github.com/couchcryptid/quakesense-service/internal/config"
	"github.com/couchcryptid/quakesense-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	analyzer := app.NewAnalyzer(cfg, metrics, logger)
	if err := analyzer.CheckReadiness(context.Background()); err != nil {
		// Resources may be mounted later; /readyz reports the state.
		logger.Warn("data resources not ready", "error", err, "data_dir", cfg.DataDir)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, analyzer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
