package seismic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// Periods returns the oscillator periods the response spectrum is sampled at.
func Periods() []float64 {
	return floats.Span(make([]float64, PeriodCount), MinPeriod, MaxPeriod)
}

// IllustrativeResponse scales peak acceleration by exp(-damping*T). It is a
// display curve only.
func IllustrativeResponse(sig domain.RawSignal, periods []float64, damping float64) []float64 {
	peak := maxAbs(sig.Samples)
	out := make([]float64, len(periods))
	for i, T := range periods {
		out[i] = peak * math.Exp(-damping*T)
	}
	return out
}

// SDOFResponse returns the pseudo-spectral acceleration ωn²·max|u| of a
// damped unit-mass oscillator excited by sig, one value per period. The
// equation of motion is integrated with Newmark's average-acceleration
// scheme (γ = 1/2, β = 1/4).
func SDOFResponse(sig domain.RawSignal, periods []float64, damping float64) []float64 {
	out := make([]float64, len(periods))
	for i, T := range periods {
		out[i] = pseudoAcceleration(sig.Samples, sig.Dt(), T, damping)
	}
	return out
}

func pseudoAcceleration(ag []float64, dt, period, damping float64) float64 {
	const gamma, beta = 0.5, 0.25
	if period <= 0 || len(ag) == 0 {
		return 0
	}
	wn := 2 * math.Pi / period
	k := wn * wn
	c := 2 * damping * wn

	kHat := k + gamma/(beta*dt)*c + 1/(beta*dt*dt)
	a1 := 1/(beta*dt*dt) + gamma/(beta*dt)*c
	a2 := 1/(beta*dt) + (gamma/beta-1)*c
	a3 := (1/(2*beta) - 1) + dt*(gamma/(2*beta)-1)*c

	u, v := 0.0, 0.0
	a := -ag[0]
	var peak float64
	for i := 1; i < len(ag); i++ {
		pHat := -ag[i] + a1*u + a2*v + a3*a
		uNext := pHat / kHat
		vNext := gamma/(beta*dt)*(uNext-u) + (1-gamma/beta)*v + dt*(1-gamma/(2*beta))*a
		aNext := (uNext-u)/(beta*dt*dt) - v/(beta*dt) - (1/(2*beta)-1)*a
		u, v, a = uNext, vNext, aNext
		if abs := math.Abs(u); abs > peak {
			peak = abs
		}
	}
	return k * peak
}

// ResponseExtractor plots spectral acceleration against oscillator period.
type ResponseExtractor struct{}

func (ResponseExtractor) Feature() domain.Feature { return domain.FeatureResponseSpectrum }

func (ResponseExtractor) MaxSamples() int { return DefaultMaxSamples }

func (ResponseExtractor) Extract(sig domain.RawSignal, p Params) (domain.DerivedSeries, error) {
	periods := Periods()
	var sa []float64
	switch p.ResponseModel {
	case domain.ResponseIllustrative:
		sa = IllustrativeResponse(sig, periods, p.Damping)
	case domain.ResponseSDOF:
		sa = SDOFResponse(sig, periods, p.Damping)
	default:
		return domain.DerivedSeries{}, fmt.Errorf("unknown response model %q", p.ResponseModel)
	}
	return domain.DerivedSeries{
		Feature: domain.FeatureResponseSpectrum,
		Title:   "Response Spectrum",
		Domain:  domain.DomainPeriod,
		XLabel:  "Period (s)",
		YLabel:  "Spectral Acceleration",
		Traces:  []domain.Trace{{Name: "Sa", X: periods, Y: sa}},
		Values: map[string]float64{
			"damping": p.Damping,
			"peak":    maxAbs(sa),
		},
		Model: string(p.ResponseModel),
	}, nil
}
