package seismic

import (
	"math"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// Kinematics holds acceleration and its integrals sampled on one time axis.
type Kinematics struct {
	Acceleration []float64
	Velocity     []float64
	Displacement []float64
}

// Integrate derives velocity and displacement with a forward cumulative sum:
// v[i] = Σ a[k]·dt and d[i] = Σ v[k]·dt for k ≤ i.
func Integrate(acc []float64, dt float64) Kinematics {
	vel := cumulative(acc, dt)
	return Kinematics{
		Acceleration: acc,
		Velocity:     vel,
		Displacement: cumulative(vel, dt),
	}
}

// Envelope applies exp(-EnvelopeDecay*t) to each sample.
func Envelope(sig domain.RawSignal) []float64 {
	out := make([]float64, sig.Len())
	for i, x := range sig.Samples {
		out[i] = x * math.Exp(-EnvelopeDecay*sig.TimeAt(i))
	}
	return out
}

// MotionExtractor plots raw and preprocessed acceleration, velocity and
// displacement against time.
type MotionExtractor struct{}

func (MotionExtractor) Feature() domain.Feature { return domain.FeatureMotion }

func (MotionExtractor) MaxSamples() int { return DefaultMaxSamples }

func (MotionExtractor) Extract(sig domain.RawSignal, _ Params) (domain.DerivedSeries, error) {
	t := sig.Times()
	dt := sig.Dt()
	raw := Integrate(sig.Samples, dt)
	pre := Integrate(Envelope(sig), dt)

	panels := []struct {
		panel, unit string
		raw, pre    []float64
	}{
		{"acceleration", "cm/s²", raw.Acceleration, pre.Acceleration},
		{"velocity", "cm/s", raw.Velocity, pre.Velocity},
		{"displacement", "cm", raw.Displacement, pre.Displacement},
	}
	traces := make([]domain.Trace, 0, 2*len(panels))
	for _, p := range panels {
		traces = append(traces,
			domain.Trace{Name: "Raw", Panel: p.panel, Unit: p.unit, X: t, Y: p.raw},
			domain.Trace{Name: "Preprocessed", Panel: p.panel, Unit: p.unit, X: t, Y: p.pre},
		)
	}

	return domain.DerivedSeries{
		Feature: domain.FeatureMotion,
		Title:   "Acceleration, Velocity and Displacement",
		Domain:  domain.DomainTime,
		XLabel:  "Time (s)",
		YLabel:  "Amplitude",
		Traces:  traces,
		Values: map[string]float64{
			"pga": maxAbs(raw.Acceleration),
			"pgv": maxAbs(raw.Velocity),
			"pgd": maxAbs(raw.Displacement),
		},
	}, nil
}
