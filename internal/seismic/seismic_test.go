package seismic

import (
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

func signal(rate float64, xs ...float64) domain.RawSignal {
	return domain.RawSignal{Samples: xs, SampleRate: rate}
}

func sine(freq, rate float64, n int) domain.RawSignal {
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}
	return signal(rate, xs...)
}

func traceByPanel(t *testing.T, ds domain.DerivedSeries, panel, name string) domain.Trace {
	t.Helper()
	for _, tr := range ds.Traces {
		if tr.Panel == panel && tr.Name == name {
			return tr
		}
	}
	t.Fatalf("no trace %s/%s", panel, name)
	return domain.Trace{}
}

// --- integration ---

func TestIntegrate_ForwardCumulativeSum(t *testing.T) {
	k := Integrate([]float64{1, 2, 3}, 0.5)
	assert.InDeltaSlice(t, []float64{0.5, 1.5, 3.0}, k.Velocity, 1e-12)
	assert.InDeltaSlice(t, []float64{0.25, 1.0, 2.5}, k.Displacement, 1e-12)
}

func TestMotion_Idempotent(t *testing.T) {
	sig := sine(2, 100, 500)
	first, err := Extract(domain.FeatureMotion, sig, DefaultParams())
	require.NoError(t, err)
	second, err := Extract(domain.FeatureMotion, sig, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestMotion_RawAndPreprocessedPanels(t *testing.T) {
	sig := signal(100, 1, 1, 1, 1)
	ds, err := Extract(domain.FeatureMotion, sig, DefaultParams())
	require.NoError(t, err)
	require.Len(t, ds.Traces, 6)

	raw := traceByPanel(t, ds, "acceleration", "Raw")
	pre := traceByPanel(t, ds, "acceleration", "Preprocessed")
	assert.Equal(t, sig.Samples, raw.Y)
	assert.InDelta(t, 1.0, pre.Y[0], 1e-12, "envelope is 1 at t=0")
	assert.InDelta(t, math.Exp(-EnvelopeDecay*0.03), pre.Y[3], 1e-12)
	assert.Equal(t, "cm/s²", raw.Unit)

	vel := traceByPanel(t, ds, "velocity", "Raw")
	assert.InDeltaSlice(t, []float64{0.01, 0.02, 0.03, 0.04}, vel.Y, 1e-12)
	assert.InDelta(t, 1.0, ds.Values["pga"], 1e-12)
	assert.InDelta(t, 0.04, ds.Values["pgv"], 1e-12)
}

// --- spectrum ---

func TestAmplitudeSpectrum_BinCountAndSpacing(t *testing.T) {
	for _, n := range []int{2, 7, 8, 64, 101, 1000} {
		sig := sine(5, 200, n)
		s := AmplitudeSpectrum(sig)
		require.Len(t, s.Frequencies, n/2+1, "n=%d", n)
		require.Len(t, s.Magnitudes, n/2+1, "n=%d", n)
		for i := 1; i < len(s.Frequencies); i++ {
			assert.InDelta(t, 200/float64(n), s.Frequencies[i]-s.Frequencies[i-1], 1e-9, "n=%d", n)
		}
	}
}

func TestAmplitudeSpectrum_Normalization(t *testing.T) {
	// A unit sine on an exact bin has normalized amplitude 1.
	s := AmplitudeSpectrum(sine(10, 100, 100))
	assert.InDelta(t, 1.0, s.Magnitudes[10], 1e-9)
}

func TestFourier_TruncatesToSpectrumWindow(t *testing.T) {
	sig := sine(3, 100, 12000)
	ds, err := Extract(domain.FeatureFourier, sig, DefaultParams())
	require.NoError(t, err)
	assert.Len(t, ds.Traces[0].X, SpectrumMaxSamples/2+1)
	assert.Equal(t, domain.DomainFrequency, ds.Domain)
}

func TestSiteFrequency_PureSine(t *testing.T) {
	tests := []struct {
		freq float64
		rate float64
		n    int
	}{
		{2.5, 100, 1000},
		{7.0, 100, 4096},
		{1.3, 200, 2000},
	}
	for _, tt := range tests {
		sig := sine(tt.freq, tt.rate, tt.n)
		ds, err := Extract(domain.FeatureSiteFrequency, sig, DefaultParams())
		require.NoError(t, err)

		width := tt.rate / float64(tt.n)
		nearest := math.Round(tt.freq/width) * width
		assert.InDelta(t, nearest, ds.Values["site_frequency"], 1e-9)
		require.Len(t, ds.Markers, 1)
		assert.Contains(t, ds.Markers[0].Label, "Site Frequency:")
	}
}

func TestSiteFrequency_DCHandling(t *testing.T) {
	sig := sine(5, 100, 1000)
	for i := range sig.Samples {
		sig.Samples[i] += 10
	}

	ds, err := Extract(domain.FeatureSiteFrequency, sig, DefaultParams())
	require.NoError(t, err)
	assert.Zero(t, ds.Values["site_frequency"], "DC bin is reported as-is by default")

	p := DefaultParams()
	p.SkipDC = true
	ds, err = Extract(domain.FeatureSiteFrequency, sig, p)
	require.NoError(t, err)
	assert.InDelta(t, 5.0, ds.Values["site_frequency"], 1e-9)
}

// --- bracketed duration ---

func TestBracketedDuration_SingleCrossing(t *testing.T) {
	sig := signal(1, 0.01, 0.02, 0.03, 0.10, 0.02)
	b := BracketedDuration(sig, 0.05)
	assert.True(t, b.Exceeded)
	assert.Equal(t, 3, b.StartIndex)
	assert.Equal(t, 3, b.EndIndex)
	assert.Zero(t, b.Duration())
}

func TestBracketedDuration_NoExceedanceIff(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		want    bool
	}{
		{"all below", []float64{0.01, -0.04, 0.049}, false},
		{"equal is not exceedance", []float64{0.05, -0.05}, false},
		{"negative exceeds", []float64{0.0, -0.06, 0.0}, true},
		{"positive exceeds", []float64{0.2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := BracketedDuration(signal(100, tt.samples...), DefaultThreshold)
			assert.Equal(t, tt.want, b.Exceeded)

			ds, err := Extract(domain.FeatureBracketedDuration, signal(100, tt.samples...), DefaultParams())
			require.NoError(t, err)
			if tt.want {
				assert.Empty(t, ds.Message)
				assert.Len(t, ds.Markers, 2)
			} else {
				assert.Equal(t, "No threshold exceedance", ds.Message)
				assert.Empty(t, ds.Markers)
			}
		})
	}
}

func TestBracketedDuration_Span(t *testing.T) {
	sig := signal(100, 0, 0.1, 0, 0, -0.2, 0)
	ds, err := Extract(domain.FeatureBracketedDuration, sig, DefaultParams())
	require.NoError(t, err)
	assert.InDelta(t, 0.03, ds.Values["duration"], 1e-12)
	assert.Equal(t, "Bracketed Duration: 0.03 s", ds.Title)
}

// --- arias ---

func TestAriasIntensity_ConstantSignal(t *testing.T) {
	ai := AriasIntensity(signal(100, 1, 1, 1), domain.AriasRaw)
	assert.InDeltaSlice(t, []float64{0.01, 0.02, 0.03}, ai, 1e-12)
}

func TestAriasIntensity_Standard(t *testing.T) {
	ai := AriasIntensity(signal(100, 1, 1, 1), domain.AriasStandard)
	assert.InDelta(t, 0.03*math.Pi/(2*Gravity), ai[2], 1e-12)
}

func TestAriasIntensity_NonDecreasing(t *testing.T) {
	ai := AriasIntensity(sine(3, 100, 800), domain.AriasRaw)
	for i := 1; i < len(ai); i++ {
		assert.GreaterOrEqual(t, ai[i], ai[i-1])
	}
}

// --- response spectrum ---

func TestResponse_Illustrative(t *testing.T) {
	sig := signal(100, 0.1, -0.4, 0.2)
	ds, err := Extract(domain.FeatureResponseSpectrum, sig, DefaultParams())
	require.NoError(t, err)

	tr := ds.Traces[0]
	require.Len(t, tr.X, PeriodCount)
	assert.InDelta(t, MinPeriod, tr.X[0], 1e-12)
	assert.InDelta(t, MaxPeriod, tr.X[PeriodCount-1], 1e-12)
	assert.InDelta(t, 0.4*math.Exp(-0.05*0.01), tr.Y[0], 1e-12)
	assert.Equal(t, string(domain.ResponseIllustrative), ds.Model)
	assert.Equal(t, domain.DomainPeriod, ds.Domain)
}

func TestResponse_SDOFResonance(t *testing.T) {
	// 30 s of 1 Hz ground motion drives the 1 s oscillator near resonance.
	sig := sine(1, 100, 3000)
	periods := []float64{0.1, 1.0, 4.0}
	sa := SDOFResponse(sig, periods, DefaultDamping)

	assert.Greater(t, sa[1], 5.0, "resonant amplification")
	assert.Greater(t, sa[1], sa[0])
	assert.Greater(t, sa[1], sa[2])
}

func TestResponse_SDOFAtRest(t *testing.T) {
	sa := SDOFResponse(signal(100, 0, 0, 0, 0), Periods(), DefaultDamping)
	for _, v := range sa {
		assert.Zero(t, v)
	}
}

func TestResponse_SDOFViaParams(t *testing.T) {
	p := DefaultParams()
	p.ResponseModel = domain.ResponseSDOF
	ds, err := Extract(domain.FeatureResponseSpectrum, sine(2, 100, 500), p)
	require.NoError(t, err)
	assert.Equal(t, "sdof", ds.Model)
	assert.Len(t, ds.Traces[0].Y, PeriodCount)
}

// --- phase markers ---

func TestPhaseMarkers(t *testing.T) {
	ds, err := Extract(domain.FeaturePhaseMarkers, sine(1, 100, 2000), DefaultParams())
	require.NoError(t, err)
	require.Len(t, ds.Markers, 2)
	assert.Equal(t, domain.Marker{Label: "P-wave", X: 10}, ds.Markers[0])
	assert.Equal(t, domain.Marker{Label: "S-wave", X: 18}, ds.Markers[1])
	assert.Equal(t, "fixed", ds.Model)
}

// --- registry ---

func TestExtract_EveryFeature(t *testing.T) {
	sig := sine(4, 100, 1200)
	for _, f := range domain.Features() {
		t.Run(string(f), func(t *testing.T) {
			ds, err := Extract(f, sig, Params{})
			require.NoError(t, err)
			assert.Equal(t, f, ds.Feature)
			assert.NotEmpty(t, ds.Title)
			assert.NotEmpty(t, ds.Traces)
		})
	}
}

func TestExtract_Errors(t *testing.T) {
	_, err := Extract("spectrogram", sine(1, 100, 10), DefaultParams())
	require.ErrorIs(t, err, domain.ErrUnknownFeature)

	_, err = Extract(domain.FeatureArias, domain.RawSignal{SampleRate: 100}, DefaultParams())
	require.ErrorIs(t, err, domain.ErrEmptyInput)

	_, err = Extract(domain.FeatureArias, domain.RawSignal{Samples: []float64{1}}, DefaultParams())
	require.Error(t, err)
}

// --- summary ---

func TestSummarize(t *testing.T) {
	fixed := time.Date(2025, 4, 23, 9, 49, 10, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(fixed))
	t.Cleanup(func() { domain.SetClock(nil) })

	sig := signal(1, 0.01, 0.02, 0.03, 0.10, 0.02)
	sig.Source = "3416.asc"

	s, err := Summarize("3416", sig, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, "3416", s.EventID)
	assert.Equal(t, "3416.asc", s.Source)
	assert.Equal(t, 5, s.Samples)
	assert.InDelta(t, 0.10, s.PGA, 1e-12)
	assert.True(t, s.Exceeded)
	assert.Zero(t, s.BracketedDuration)
	assert.InDelta(t, 0.0118, s.AriasIntensity, 1e-12)
	assert.Equal(t, fixed, s.ComputedAt)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize("3416", domain.RawSignal{SampleRate: 100}, DefaultParams())
	require.ErrorIs(t, err, domain.ErrEmptyInput)
}
