package seismic

import (
	"fmt"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// Summarize computes the scalar ground-motion parameters of sig using the
// same algorithms as the plotted features.
func Summarize(eventID string, sig domain.RawSignal, p Params) (domain.Summary, error) {
	if err := validate(sig); err != nil {
		return domain.Summary{}, fmt.Errorf("summarize %s: %w", eventID, err)
	}
	p = p.withDefaults()
	sig = Truncate(sig, DefaultMaxSamples)

	k := Integrate(sig.Samples, sig.Dt())
	b := BracketedDuration(sig, p.Threshold)
	ai := AriasIntensity(sig, p.Arias)

	return domain.Summary{
		EventID:           eventID,
		Source:            sig.Source,
		Samples:           sig.Len(),
		SampleRate:        sig.SampleRate,
		PGA:               maxAbs(k.Acceleration),
		PGV:               maxAbs(k.Velocity),
		PGD:               maxAbs(k.Displacement),
		Exceeded:          b.Exceeded,
		BracketedDuration: b.Duration(),
		SiteFrequency:     PeakFrequency(RealSpectrum(sig.Samples, sig.SampleRate), p.SkipDC),
		AriasIntensity:    ai[len(ai)-1],
		ComputedAt:        domain.Now().UTC(),
	}, nil
}
