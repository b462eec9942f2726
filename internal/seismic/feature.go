package seismic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// Extractor derives one plot-ready view of a signal.
type Extractor interface {
	Feature() domain.Feature
	// MaxSamples is the number of leading samples the feature considers.
	MaxSamples() int
	Extract(sig domain.RawSignal, p Params) (domain.DerivedSeries, error)
}

var registry = map[domain.Feature]Extractor{
	domain.FeatureMotion:            MotionExtractor{},
	domain.FeatureFourier:           FourierExtractor{},
	domain.FeatureBracketedDuration: DurationExtractor{},
	domain.FeatureSiteFrequency:     SiteFrequencyExtractor{},
	domain.FeatureArias:             AriasExtractor{},
	domain.FeatureResponseSpectrum:  ResponseExtractor{},
	domain.FeaturePhaseMarkers:      PhaseExtractor{},
}

// Lookup returns the extractor registered for f.
func Lookup(f domain.Feature) (Extractor, error) {
	e, ok := registry[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownFeature, f)
	}
	return e, nil
}

// Extract validates sig, truncates it to the feature's window and runs the
// matching extractor.
func Extract(f domain.Feature, sig domain.RawSignal, p Params) (domain.DerivedSeries, error) {
	e, err := Lookup(f)
	if err != nil {
		return domain.DerivedSeries{}, err
	}
	if err := validate(sig); err != nil {
		return domain.DerivedSeries{}, err
	}
	return e.Extract(Truncate(sig, e.MaxSamples()), p.withDefaults())
}

func validate(sig domain.RawSignal) error {
	if sig.Len() == 0 {
		return fmt.Errorf("signal has no samples: %w", domain.ErrEmptyInput)
	}
	if sig.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %v", sig.SampleRate)
	}
	return nil
}

// maxAbs returns the largest absolute value in xs.
func maxAbs(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return floats.Norm(xs, math.Inf(1))
}

// cumulative returns the running sum of xs scaled by dt.
func cumulative(xs []float64, dt float64) []float64 {
	out := floats.CumSum(make([]float64, len(xs)), xs)
	floats.Scale(dt, out)
	return out
}
