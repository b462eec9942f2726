// Package app wires configuration into the analysis service for the
// command-line entrypoints.
package app

import (
	"log/slog"

	"github.com/couchcryptid/quakesense-service/internal/adapter/mapbox"
	"github.com/couchcryptid/quakesense-service/internal/config"
	"github.com/couchcryptid/quakesense-service/internal/domain"
	"github.com/couchcryptid/quakesense-service/internal/mapview"
	"github.com/couchcryptid/quakesense-service/internal/observability"
	"github.com/couchcryptid/quakesense-service/internal/service"
)

// NewGeocoder returns a cached Mapbox geocoder, or nil when geocoding is
// disabled (feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN).
func NewGeocoder(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) domain.Geocoder {
	if !cfg.MapboxEnabled {
		metrics.GeocodeEnabled.Set(0)
		logger.Info("mapbox geocoding disabled")
		return nil
	}
	metrics.GeocodeEnabled.Set(1)
	client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, metrics, logger)
	logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	return mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
}

// NewMapGenerator writes maps under MAP_DIR, using Mapbox tiles when a token
// is configured.
func NewMapGenerator(cfg *config.Config) *mapview.Generator {
	var opts []mapview.Option
	if cfg.MapboxToken != "" {
		opts = append(opts, mapview.WithMapboxTiles(cfg.MapboxToken))
	}
	return mapview.NewGenerator(cfg.Resolve(cfg.MapDir), opts...)
}

// NewAnalyzer builds the analysis service from cfg.
func NewAnalyzer(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *service.Analyzer {
	return service.New(
		service.OptionsFromConfig(cfg),
		NewGeocoder(cfg, metrics, logger),
		NewMapGenerator(cfg),
		metrics,
		logger,
	)
}
