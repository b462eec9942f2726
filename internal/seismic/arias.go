package seismic

import (
	"math"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// AriasIntensity returns the cumulative Σ x[k]²·dt series. The standard
// normalization additionally scales by π/(2g).
func AriasIntensity(sig domain.RawSignal, norm domain.AriasNormalization) []float64 {
	sq := make([]float64, sig.Len())
	for i, x := range sig.Samples {
		sq[i] = x * x
	}
	scale := sig.Dt()
	if norm == domain.AriasStandard {
		scale *= math.Pi / (2 * Gravity)
	}
	return cumulative(sq, scale)
}

// AriasExtractor plots cumulative energy against time.
type AriasExtractor struct{}

func (AriasExtractor) Feature() domain.Feature { return domain.FeatureArias }

func (AriasExtractor) MaxSamples() int { return DefaultMaxSamples }

func (AriasExtractor) Extract(sig domain.RawSignal, p Params) (domain.DerivedSeries, error) {
	ai := AriasIntensity(sig, p.Arias)
	return domain.DerivedSeries{
		Feature: domain.FeatureArias,
		Title:   "Arias Intensity",
		Domain:  domain.DomainTime,
		XLabel:  "Time (s)",
		YLabel:  "Cumulative Energy",
		Traces:  []domain.Trace{{Name: "Arias", X: sig.Times(), Y: ai}},
		Values:  map[string]float64{"total": ai[len(ai)-1]},
		Model:   string(p.Arias),
	}, nil
}
