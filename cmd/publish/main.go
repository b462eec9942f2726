package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/quakesense-service/internal/adapter/kafka"
	"github.com/couchcryptid/quakesense-service/internal/app"
	"github.com/couchcryptid/quakesense-service/internal/config"
	"github.com/couchcryptid/quakesense-service/internal/observability"
	"github.com/couchcryptid/quakesense-service/internal/pipeline"
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
	writer := kafkaadapter.NewWriter(cfg, logger)

	p := pipeline.New(
		pipeline.NewCatalogExtractor(analyzer),
		pipeline.NewTransformer(analyzer),
		writer,
		logger,
		metrics,
		cfg.BatchSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := p.Run(ctx)

	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if runErr != nil {
		logger.Error("publish failed", "error", runErr, "published", p.Published())
		os.Exit(1)
	}
	logger.Info("publish complete",
		"topic", cfg.KafkaSinkTopic,
		"published", p.Published(),
		"skipped", p.Skipped(),
	)
}
