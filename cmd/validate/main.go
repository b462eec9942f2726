// Command validate performs data integrity checks across a QuakeSense data
// directory: the event catalog, station list, feature descriptions, every
// event's acceleration record, and optionally a summaries fixture produced by
// genmock. It verifies field ranges, cross-file linkage, that every feature
// can be derived, and that recomputed summaries match the fixture.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data/mock -summaries data/mock/summaries.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/quakesense-service/internal/catalog"
	"github.com/couchcryptid/quakesense-service/internal/domain"
	"github.com/couchcryptid/quakesense-service/internal/observability"
	"github.com/couchcryptid/quakesense-service/internal/seismic"
	"github.com/couchcryptid/quakesense-service/internal/service"
)

// fixtureTime matches genmock so recomputed summaries compare equal.
var fixtureTime = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// options locates the resources under validation.
type options struct {
	dataDir    string
	signalFile string
	summaries  string
}

func main() {
	var opts options
	flag.StringVar(&opts.dataDir, "data-dir", "", "directory holding events.csv, stations.csv, descriptions.txt and signals/")
	flag.StringVar(&opts.signalFile, "signal-file", "", "fallback record for events without signals/<id>.asc")
	flag.StringVar(&opts.summaries, "summaries", "", "optional summaries fixture to compare against")
	flag.Parse()

	if opts.dataDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(opts, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(opts options, w io.Writer) int {
	// Fixed clock matching genmock for ComputedAt reproducibility.
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	fmt.Fprintln(w, "=== QuakeSense Data Integrity Validation ===")
	fmt.Fprintln(w)

	// ── Load all data sources ──
	eventsPath := filepath.Join(opts.dataDir, "events.csv")
	events, err := catalog.LoadEvents(eventsPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load events: %v\n", err)
		return 1
	}
	stationsPath := filepath.Join(opts.dataDir, "stations.csv")
	stations, err := catalog.LoadStations(stationsPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load stations: %v\n", err)
		return 1
	}

	var fixture []domain.Summary
	if opts.summaries != "" {
		fixture, err = loadJSON[domain.Summary](opts.summaries)
		if err != nil {
			fmt.Fprintf(w, "FATAL: load summaries fixture: %v\n", err)
			return 1
		}
	}

	signalFile := opts.signalFile
	if signalFile != "" && !filepath.IsAbs(signalFile) {
		signalFile = filepath.Join(opts.dataDir, signalFile)
	}
	analyzer := service.New(service.Options{
		EventsPath:       eventsPath,
		StationsPath:     stationsPath,
		DescriptionsPath: filepath.Join(opts.dataDir, "descriptions.txt"),
		SignalDir:        filepath.Join(opts.dataDir, "signals"),
		SignalFile:       signalFile,
		Load:             seismic.DefaultLoadOptions(),
		Params:           seismic.DefaultParams(),
	}, nil, nil,
		observability.NewMetricsWithRegistry(prometheus.NewRegistry()),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	ctx := context.Background()

	// ── Run validation phases ──
	phases := []*phase{
		validateEvents(events),
		validateStations(stations, events),
		validateDescriptions(ctx, analyzer),
		validateSignals(ctx, analyzer, events),
	}
	if fixture != nil {
		phases = append(phases, validateSummaries(ctx, analyzer, fixture))
	}

	// ── Report results ──
	pass := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintfFunc()

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := pass("PASS")
		if !p.passed() {
			status = fail("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d events, %d stations, %d fixture summaries\n",
		len(events), len(stations), len(fixture))

	// Print detailed errors.
	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

// ── Phase 1: Event catalog ──

func validateEvents(events []domain.Event) *phase {
	p := &phase{name: "Phase 1: Event catalog integrity"}
	seen := map[string]bool{}
	for _, e := range events {
		if seen[e.ID] {
			p.errorf("event %s: duplicate id", e.ID)
		}
		seen[e.ID] = true

		if e.Geo.Lat < -90 || e.Geo.Lat > 90 {
			p.errorf("event %s: latitude %.4f out of range", e.ID, e.Geo.Lat)
		}
		if e.Geo.Lon < -180 || e.Geo.Lon > 180 {
			p.errorf("event %s: longitude %.4f out of range", e.ID, e.Geo.Lon)
		}
		if e.Magnitude <= 0 || e.Magnitude > 10 {
			p.errorf("event %s: magnitude %.1f out of range", e.ID, e.Magnitude)
		}
		if e.DepthKm < 0 {
			p.errorf("event %s: negative depth %.1f", e.ID, e.DepthKm)
		}
		if e.OccurredAt.IsZero() {
			p.errorf("event %s: unparseable date/time %q %q", e.ID, e.Date, e.Time)
		}
	}
	return p
}

// ── Phase 2: Station linkage ──

func validateStations(stations []domain.Station, events []domain.Event) *phase {
	p := &phase{name: "Phase 2: Station linkage"}
	known := make(map[string]bool, len(events))
	for _, e := range events {
		known[e.ID] = true
	}

	seen := map[string]bool{}
	for _, s := range stations {
		key := s.EventID + "/" + s.Code
		if !known[s.EventID] {
			p.errorf("station %s: references unknown event", key)
		}
		if seen[key] {
			p.errorf("station %s: duplicate code for event", key)
		}
		seen[key] = true

		if s.Geo.IsZero() {
			p.errorf("station %s: missing coordinates", key)
		}
		if s.Vs30 <= 0 {
			p.errorf("station %s: Vs30 %.0f must be positive", key, s.Vs30)
		}
		for _, pga := range []float64{s.PGANS, s.PGAEW, s.PGAUD} {
			if pga < 0 || math.IsNaN(pga) {
				p.errorf("station %s: invalid PGA %v", key, pga)
				break
			}
		}
	}
	return p
}

// ── Phase 3: Descriptions ──

func validateDescriptions(ctx context.Context, a *service.Analyzer) *phase {
	p := &phase{name: "Phase 3: Feature descriptions"}
	ds, err := a.Descriptors(ctx)
	if err != nil {
		p.errorf("load descriptions: %v", err)
		return p
	}
	if want := len(domain.Features()); len(ds) != want {
		p.errorf("description sections: got %d, want %d", len(ds), want)
	}
	for _, d := range ds {
		if d.Title == "" || d.Body == "" {
			p.errorf("feature %s: empty title or body", d.Feature)
		}
	}
	return p
}

// ── Phase 4: Signals ──

func validateSignals(ctx context.Context, a *service.Analyzer, events []domain.Event) *phase {
	p := &phase{name: "Phase 4: Signal records and features"}
	for _, e := range events {
		sig, err := a.Signal(ctx, e.ID)
		if err != nil {
			p.errorf("event %s: %v", e.ID, err)
			continue
		}
		for i, x := range sig.Samples {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				p.errorf("event %s: non-finite sample at index %d", e.ID, i)
				break
			}
		}
		for _, f := range domain.Features() {
			if _, err := a.Feature(ctx, e.ID, f); err != nil {
				p.errorf("event %s: feature %s: %v", e.ID, f, err)
			}
		}
	}
	return p
}

// ── Phase 5: Summaries fixture ──

func validateSummaries(ctx context.Context, a *service.Analyzer, fixture []domain.Summary) *phase {
	p := &phase{name: "Phase 5: Summaries fixture parity"}
	for _, want := range fixture {
		got, err := a.Summary(ctx, want.EventID)
		if err != nil {
			p.errorf("event %s: %v", want.EventID, err)
			continue
		}
		compareSummaries(p, want, got)
	}
	return p
}

func compareSummaries(p *phase, want, got domain.Summary) {
	id := want.EventID
	if got.Samples != want.Samples {
		p.errorf("event %s: samples %d != fixture %d", id, got.Samples, want.Samples)
	}
	if got.Exceeded != want.Exceeded {
		p.errorf("event %s: exceeded %v != fixture %v", id, got.Exceeded, want.Exceeded)
	}
	checks := []struct {
		name      string
		got, want float64
	}{
		{"pga", got.PGA, want.PGA},
		{"pgv", got.PGV, want.PGV},
		{"pgd", got.PGD, want.PGD},
		{"bracketed_duration", got.BracketedDuration, want.BracketedDuration},
		{"site_frequency", got.SiteFrequency, want.SiteFrequency},
		{"arias_intensity", got.AriasIntensity, want.AriasIntensity},
	}
	for _, c := range checks {
		if !floatEq(c.got, c.want) {
			p.errorf("event %s: %s %.6f != fixture %.6f", id, c.name, c.got, c.want)
		}
	}
	if !got.ComputedAt.Equal(want.ComputedAt) {
		p.errorf("event %s: computed_at %s != fixture %s", id, got.ComputedAt, want.ComputedAt)
	}
}

func floatEq(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}
