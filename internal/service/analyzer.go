// Package service orchestrates catalog lookups, signal loading, feature
// extraction and map generation for the adapters.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/quakesense-service/internal/catalog"
	"github.com/couchcryptid/quakesense-service/internal/config"
	"github.com/couchcryptid/quakesense-service/internal/domain"
	"github.com/couchcryptid/quakesense-service/internal/mapview"
	"github.com/couchcryptid/quakesense-service/internal/observability"
	"github.com/couchcryptid/quakesense-service/internal/seismic"
)

// Options locates the data resources and selects analysis variants.
type Options struct {
	EventsPath       string
	StationsPath     string
	DescriptionsPath string
	SignalDir        string
	SignalFile       string
	Load             seismic.LoadOptions
	Params           seismic.Params
}

// OptionsFromConfig resolves every resource path against the data directory.
func OptionsFromConfig(cfg *config.Config) Options {
	params := seismic.DefaultParams()
	params.ResponseModel = cfg.ResponseModel
	params.Arias = cfg.AriasNormalization

	load := seismic.DefaultLoadOptions()
	load.SampleRate = cfg.SignalSampleRate
	load.MaxSamples = cfg.SignalMaxSamples

	return Options{
		EventsPath:       cfg.Resolve(cfg.EventsFile),
		StationsPath:     cfg.Resolve(cfg.StationsFile),
		DescriptionsPath: cfg.Resolve(cfg.DescriptionsFile),
		SignalDir:        cfg.Resolve(cfg.SignalDir),
		SignalFile:       cfg.Resolve(cfg.SignalFile),
		Load:             load,
		Params:           params,
	}
}

// FeatureView is a derived series together with its human-readable description.
type FeatureView struct {
	EventID     string                   `json:"event_id"`
	Description domain.FeatureDescriptor `json:"description"`
	Series      domain.DerivedSeries     `json:"series"`
}

// Analyzer answers every read operation of the service. Resources are read
// fresh on each call; nothing is cached between requests.
type Analyzer struct {
	opts     Options
	geocoder domain.Geocoder
	maps     *mapview.Generator
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// New creates an Analyzer. geocoder may be nil to disable location enrichment.
func New(opts Options, geocoder domain.Geocoder, maps *mapview.Generator, metrics *observability.Metrics, logger *slog.Logger) *Analyzer {
	return &Analyzer{
		opts:     opts,
		geocoder: geocoder,
		maps:     maps,
		metrics:  metrics,
		logger:   logger,
	}
}

func (a *Analyzer) catalog() (*catalog.Catalog, error) {
	return catalog.Load(a.opts.EventsPath, a.opts.StationsPath)
}

// EventIDs lists catalogued event ids in file order.
func (a *Analyzer) EventIDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	events, err := catalog.LoadEvents(a.opts.EventsPath)
	if err != nil {
		return nil, err
	}
	return catalog.New(events, nil).EventIDs(), nil
}

// Events lists every catalogued event without geocoding.
func (a *Analyzer) Events(ctx context.Context) ([]domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	events, err := catalog.LoadEvents(a.opts.EventsPath)
	if err != nil {
		return nil, err
	}
	return catalog.New(events, nil).Events(), nil
}

// Event returns one event, enriched with place details when a geocoder is set.
func (a *Analyzer) Event(ctx context.Context, id string) (domain.Event, error) {
	if err := ctx.Err(); err != nil {
		return domain.Event{}, err
	}
	events, err := catalog.LoadEvents(a.opts.EventsPath)
	if err != nil {
		return domain.Event{}, err
	}
	ev, err := catalog.New(events, nil).Event(id)
	if err != nil {
		return domain.Event{}, err
	}
	return domain.EnrichEventLocation(ctx, ev, a.geocoder, a.logger), nil
}

// Stations returns the stations that recorded an event.
func (a *Analyzer) Stations(ctx context.Context, id string) ([]domain.Station, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c, err := a.catalog()
	if err != nil {
		return nil, err
	}
	if _, err := c.Event(id); err != nil {
		return nil, err
	}
	return c.Stations(id)
}

// Station returns one station of an event.
func (a *Analyzer) Station(ctx context.Context, id, code string) (domain.Station, error) {
	if err := ctx.Err(); err != nil {
		return domain.Station{}, err
	}
	c, err := a.catalog()
	if err != nil {
		return domain.Station{}, err
	}
	return c.Station(id, strings.TrimSpace(code))
}

// Descriptors returns the feature descriptions in canonical order.
func (a *Analyzer) Descriptors(ctx context.Context) ([]domain.FeatureDescriptor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return catalog.LoadDescriptions(a.opts.DescriptionsPath)
}

// SignalPath picks the record for an event: a per-event file in the signal
// directory when one exists, otherwise the shared fallback file.
func (a *Analyzer) SignalPath(id string) string {
	id = domain.NormalizeEventID(id)
	if a.opts.SignalDir != "" && id != "" && filepath.IsLocal(id) && !strings.ContainsAny(id, `/\`) {
		candidate := filepath.Join(a.opts.SignalDir, id+".asc")
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return a.opts.SignalFile
}

// Signal loads the acceleration record of a catalogued event.
func (a *Analyzer) Signal(ctx context.Context, id string) (domain.RawSignal, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawSignal{}, err
	}
	events, err := catalog.LoadEvents(a.opts.EventsPath)
	if err != nil {
		return domain.RawSignal{}, err
	}
	if _, err := catalog.New(events, nil).Event(id); err != nil {
		return domain.RawSignal{}, err
	}

	path := a.SignalPath(id)
	sig, err := seismic.LoadSignal(path, a.opts.Load)
	if err != nil {
		return domain.RawSignal{}, err
	}
	a.metrics.SignalSamples.Observe(float64(sig.Len()))
	a.logger.Debug("signal loaded", "event_id", id, "path", path, "samples", sig.Len())
	return sig, nil
}

// Feature computes one derived series for an event.
func (a *Analyzer) Feature(ctx context.Context, id string, f domain.Feature) (FeatureView, error) {
	label := string(f)
	if !f.Valid() {
		label = "unknown"
	}
	start := time.Now()
	view, err := a.feature(ctx, id, f)
	a.metrics.FeatureDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	a.metrics.FeatureRequests.WithLabelValues(label, Outcome(err)).Inc()
	if err != nil {
		a.logger.Warn("feature unavailable", "event_id", id, "feature", f, "error", err)
		return FeatureView{}, err
	}
	return view, nil
}

func (a *Analyzer) feature(ctx context.Context, id string, f domain.Feature) (FeatureView, error) {
	if !f.Valid() {
		return FeatureView{}, fmt.Errorf("%w: %q", domain.ErrUnknownFeature, f)
	}
	sig, err := a.Signal(ctx, id)
	if err != nil {
		return FeatureView{}, err
	}
	series, err := seismic.Extract(f, sig, a.opts.Params)
	if err != nil {
		return FeatureView{}, err
	}

	descriptors, err := catalog.LoadDescriptions(a.opts.DescriptionsPath)
	if err != nil {
		a.logger.Warn("feature descriptions unavailable", "path", a.opts.DescriptionsPath, "error", err)
	}
	return FeatureView{
		EventID:     domain.NormalizeEventID(id),
		Description: catalog.Describe(descriptors, f),
		Series:      series,
	}, nil
}

// Summary computes the scalar ground-motion parameters of an event.
func (a *Analyzer) Summary(ctx context.Context, id string) (domain.Summary, error) {
	sig, err := a.Signal(ctx, id)
	if err != nil {
		return domain.Summary{}, err
	}
	return seismic.Summarize(domain.NormalizeEventID(id), sig, a.opts.Params)
}

// StationMap regenerates the station map of an event. The returned artifact
// carries the rendered page so callers never re-read a file another request
// may be regenerating.
func (a *Analyzer) StationMap(ctx context.Context, id string) (mapview.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return mapview.Artifact{}, err
	}
	c, err := a.catalog()
	if err != nil {
		return mapview.Artifact{}, err
	}
	if _, err := c.Event(id); err != nil {
		return mapview.Artifact{}, err
	}
	// An event without stations still goes through Generate so a stale map
	// from an earlier catalog is removed.
	stations, err := c.Stations(id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		a.metrics.MapGenerations.WithLabelValues("error").Inc()
		return mapview.Artifact{}, err
	}

	art, err := a.maps.Generate(domain.NormalizeEventID(id), stations)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		a.metrics.MapGenerations.WithLabelValues("no_stations").Inc()
		return mapview.Artifact{}, err
	case err != nil:
		a.metrics.MapGenerations.WithLabelValues("error").Inc()
		return mapview.Artifact{}, err
	}
	a.metrics.MapGenerations.WithLabelValues("success").Inc()
	a.logger.Info("station map generated", "event_id", id, "stations", len(stations), "path", art.Path)
	return art, nil
}

// CheckReadiness reports whether the event catalog can be read.
func (a *Analyzer) CheckReadiness(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := catalog.LoadEvents(a.opts.EventsPath); err != nil {
		return fmt.Errorf("event catalog not readable: %w", err)
	}
	return nil
}

// Outcome classifies an error into a metrics label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, domain.ErrMissingResource):
		return "missing_resource"
	case errors.Is(err, domain.ErrUnknownFeature):
		return "unknown_feature"
	default:
		return "error"
	}
}
