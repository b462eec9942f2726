package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quakesense-service/internal/domain"
	"github.com/couchcryptid/quakesense-service/internal/mapview"
	"github.com/couchcryptid/quakesense-service/internal/observability"
	"github.com/couchcryptid/quakesense-service/internal/seismic"
)

const (
	testEvents = `EventID,Date,Time,Latitude,Longitude,Magnitude,Depth,Province,District
3416,2025-04-23,09:49:10,40.8,28.2,6.2,10.0,Istanbul,Silivri
100,2023-02-06,04:17:34,37.288,37.043,7.7,8.6,Kahramanmaras,Pazarcik
200,2023-02-06,13:24:47,38.089,37.239,7.6,7.0,Kahramanmaras,Elbistan
`
	testStations = `EventID,Code,Latitude,Longitude,Province,District,Litology,Vs30,Morphology,PGA_NS,PGA_EW,PGA_UD
3416,3405,40.97,28.79,Istanbul,Bakirkoy,Alluvium,320,Plain,0.051,0.043,0.02
3416,3406,41.03,28.68,Istanbul,Esenyurt,Sandstone,410,Hill,0.032,0.037,0.015
100,4614,37.48,37.29,Kahramanmaras,Pazarcik,Rock,760,Mountain,0.62,0.55,0.31
`
	testDescriptions = `PGA/PGV/PGD
Peak motion values.
###
Fourier
Frequency content.
###
Bracketed Duration
Strong shaking window.
`
)

type fixture struct {
	dir      string
	analyzer *Analyzer
	metrics  *observability.Metrics
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func sineRecord(freq float64, n int) string {
	var b strings.Builder
	b.WriteString("EVENT_NAME: test\n")
	for i := range n {
		fmt.Fprintf(&b, "%.6f\n", 0.2*math.Sin(2*math.Pi*freq*float64(i)/100))
	}
	return b.String()
}

func newFixture(t *testing.T, geocoder domain.Geocoder) fixture {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "events.csv"), testEvents)
	writeFile(t, filepath.Join(dir, "stations.csv"), testStations)
	writeFile(t, filepath.Join(dir, "descriptions.txt"), testDescriptions)
	writeFile(t, filepath.Join(dir, "fallback.asc"), sineRecord(2, 1500))
	writeFile(t, filepath.Join(dir, "signals", "100.asc"), sineRecord(5, 1000))

	opts := Options{
		EventsPath:       filepath.Join(dir, "events.csv"),
		StationsPath:     filepath.Join(dir, "stations.csv"),
		DescriptionsPath: filepath.Join(dir, "descriptions.txt"),
		SignalDir:        filepath.Join(dir, "signals"),
		SignalFile:       filepath.Join(dir, "fallback.asc"),
		Load:             seismic.DefaultLoadOptions(),
		Params:           seismic.DefaultParams(),
	}
	metrics := observability.NewMetricsForTesting()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := New(opts, geocoder, mapview.NewGenerator(filepath.Join(dir, "maps")), metrics, logger)
	return fixture{dir: dir, analyzer: a, metrics: metrics}
}

type stubGeocoder struct {
	result domain.GeocodingResult
	err    error
}

func (s stubGeocoder) ForwardGeocode(context.Context, string, string) (domain.GeocodingResult, error) {
	return s.result, s.err
}

func (s stubGeocoder) ReverseGeocode(context.Context, float64, float64) (domain.GeocodingResult, error) {
	return s.result, s.err
}

func TestAnalyzer_EventIDs(t *testing.T) {
	f := newFixture(t, nil)
	ids, err := f.analyzer.EventIDs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"3416", "100", "200"}, ids)
}

func TestAnalyzer_Event(t *testing.T) {
	f := newFixture(t, nil)
	ev, err := f.analyzer.Event(context.Background(), " 3416 ")
	require.NoError(t, err)
	assert.Equal(t, "Silivri", ev.District)
	assert.Empty(t, ev.GeoSource)

	_, err = f.analyzer.Event(context.Background(), "9999")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalyzer_EventGeocoded(t *testing.T) {
	f := newFixture(t, stubGeocoder{result: domain.GeocodingResult{FormattedAddress: "Silivri, İstanbul, Türkiye", PlaceName: "Silivri"}})
	ev, err := f.analyzer.Event(context.Background(), "3416")
	require.NoError(t, err)
	assert.Equal(t, domain.GeoSourceReverse, ev.GeoSource)
	assert.Equal(t, "Silivri", ev.PlaceName)
}

func TestAnalyzer_EventGeocodeFailureDegrades(t *testing.T) {
	f := newFixture(t, stubGeocoder{err: errors.New("mapbox down")})
	ev, err := f.analyzer.Event(context.Background(), "3416")
	require.NoError(t, err)
	assert.Equal(t, domain.GeoSourceFailed, ev.GeoSource)
	assert.Equal(t, 6.2, ev.Magnitude)
}

func TestAnalyzer_Stations(t *testing.T) {
	f := newFixture(t, nil)
	stations, err := f.analyzer.Stations(context.Background(), "3416")
	require.NoError(t, err)
	assert.Len(t, stations, 2)

	_, err = f.analyzer.Stations(context.Background(), "200")
	require.ErrorIs(t, err, domain.ErrNotFound)

	s, err := f.analyzer.Station(context.Background(), "3416", " 3406")
	require.NoError(t, err)
	assert.Equal(t, "Esenyurt", s.District)
}

func TestAnalyzer_SignalPath(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, filepath.Join(f.dir, "signals", "100.asc"), f.analyzer.SignalPath("100"))
	assert.Equal(t, filepath.Join(f.dir, "fallback.asc"), f.analyzer.SignalPath("3416"))
	assert.Equal(t, filepath.Join(f.dir, "fallback.asc"), f.analyzer.SignalPath("../100"))
}

func TestAnalyzer_Feature(t *testing.T) {
	f := newFixture(t, nil)
	view, err := f.analyzer.Feature(context.Background(), "100", domain.FeatureSiteFrequency)
	require.NoError(t, err)
	assert.Equal(t, "100", view.EventID)
	assert.InDelta(t, 5.0, view.Series.Values["site_frequency"], 1e-9, "per-event record is used")

	view, err = f.analyzer.Feature(context.Background(), "3416", domain.FeatureFourier)
	require.NoError(t, err)
	assert.Equal(t, "Fourier", view.Description.Title)
	assert.Equal(t, "Frequency content.", view.Description.Body)
	assert.Len(t, view.Series.Traces[0].X, 1500/2+1)
}

func TestAnalyzer_FeatureWithoutDescriptions(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, os.Remove(filepath.Join(f.dir, "descriptions.txt")))

	view, err := f.analyzer.Feature(context.Background(), "3416", domain.FeatureArias)
	require.NoError(t, err)
	assert.Equal(t, "arias", view.Description.Title)
}

func TestAnalyzer_FeatureErrors(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.analyzer.Feature(context.Background(), "3416", "spectrogram")
	require.ErrorIs(t, err, domain.ErrUnknownFeature)

	_, err = f.analyzer.Feature(context.Background(), "9999", domain.FeatureArias)
	require.ErrorIs(t, err, domain.ErrNotFound)

	writeFile(t, filepath.Join(f.dir, "signals", "200.asc"), "EVENT_NAME: empty\n\n")
	_, err = f.analyzer.Feature(context.Background(), "200", domain.FeatureArias)
	require.ErrorIs(t, err, domain.ErrEmptyInput)

	require.NoError(t, os.Remove(filepath.Join(f.dir, "fallback.asc")))
	_, err = f.analyzer.Feature(context.Background(), "3416", domain.FeatureArias)
	require.ErrorIs(t, err, domain.ErrMissingResource)
}

func TestAnalyzer_Summary(t *testing.T) {
	fixed := time.Date(2025, 4, 23, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })

	f := newFixture(t, nil)
	s, err := f.analyzer.Summary(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, "100", s.EventID)
	assert.Equal(t, 1000, s.Samples)
	assert.InDelta(t, 0.2, s.PGA, 1e-3)
	assert.True(t, s.Exceeded)
	assert.InDelta(t, 5.0, s.SiteFrequency, 1e-9)
	assert.Equal(t, fixed, s.ComputedAt)
}

func TestAnalyzer_SummaryIgnoresNonFiniteSamples(t *testing.T) {
	f := newFixture(t, nil)
	writeFile(t, filepath.Join(f.dir, "signals", "3416.asc"), "EVENT_NAME x\n0.1\nNaN\n0.2\n")

	s, err := f.analyzer.Summary(context.Background(), "3416")
	require.NoError(t, err)
	assert.Equal(t, 2, s.Samples)
	_, err = json.Marshal(s)
	require.NoError(t, err, "summary must stay JSON-encodable")

	view, err := f.analyzer.Feature(context.Background(), "3416", domain.FeatureArias)
	require.NoError(t, err)
	_, err = json.Marshal(view)
	require.NoError(t, err)
}

func TestAnalyzer_StationMap(t *testing.T) {
	f := newFixture(t, nil)
	art, err := f.analyzer.StationMap(context.Background(), "3416")
	require.NoError(t, err)
	assert.FileExists(t, art.Path)
	assert.Contains(t, string(art.Page), "leaflet")

	_, err = f.analyzer.StationMap(context.Background(), "200")
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.analyzer.StationMap(context.Background(), "9999")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalyzer_StationMapRemovesStaleMapWithoutStations(t *testing.T) {
	f := newFixture(t, nil)
	stale := f.analyzer.maps.Path("200")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o600))

	_, err := f.analyzer.StationMap(context.Background(), "200")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoFileExists(t, stale)
}

func TestAnalyzer_StationMapConcurrent(t *testing.T) {
	f := newFixture(t, nil)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				art, err := f.analyzer.StationMap(context.Background(), "3416")
				if !assert.NoError(t, err) {
					return
				}
				assert.NotEmpty(t, art.Page)
			}
		}()
	}
	wg.Wait()
}

func TestAnalyzer_Descriptors(t *testing.T) {
	f := newFixture(t, nil)
	ds, err := f.analyzer.Descriptors(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds, 3)
}

func TestAnalyzer_CheckReadiness(t *testing.T) {
	f := newFixture(t, nil)
	require.NoError(t, f.analyzer.CheckReadiness(context.Background()))

	require.NoError(t, os.Remove(filepath.Join(f.dir, "events.csv")))
	err := f.analyzer.CheckReadiness(context.Background())
	require.ErrorIs(t, err, domain.ErrMissingResource)
}

func TestAnalyzer_CancelledContext(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.analyzer.EventIDs(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestOutcome(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "success"},
		{fmt.Errorf("x: %w", domain.ErrNotFound), "not_found"},
		{domain.ErrEmptyInput, "empty_input"},
		{domain.ErrMissingResource, "missing_resource"},
		{domain.ErrUnknownFeature, "unknown_feature"},
		{errors.New("boom"), "error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Outcome(tt.err))
	}
}
