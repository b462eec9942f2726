package seismic

import "github.com/couchcryptid/quakesense-service/internal/domain"

// PhaseExtractor labels P and S arrivals at fixed offsets. It performs no
// onset picking.
type PhaseExtractor struct{}

func (PhaseExtractor) Feature() domain.Feature { return domain.FeaturePhaseMarkers }

func (PhaseExtractor) MaxSamples() int { return DefaultMaxSamples }

func (PhaseExtractor) Extract(sig domain.RawSignal, p Params) (domain.DerivedSeries, error) {
	return domain.DerivedSeries{
		Feature: domain.FeaturePhaseMarkers,
		Title:   "P and S Wave Annotation",
		Domain:  domain.DomainTime,
		XLabel:  "Time (s)",
		YLabel:  "Acceleration",
		Traces:  []domain.Trace{{Name: "Signal", X: sig.Times(), Y: sig.Samples}},
		Markers: []domain.Marker{
			{Label: "P-wave", X: PWaveOffset},
			{Label: "S-wave", X: SWaveOffset},
		},
		Model: string(p.PhaseModel),
	}, nil
}
