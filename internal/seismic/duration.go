package seismic

import (
	"fmt"
	"math"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// Bracket describes the span between the first and last threshold exceedance.
type Bracket struct {
	Exceeded   bool
	StartIndex int
	EndIndex   int
	Start      float64 // seconds
	End        float64 // seconds
}

// Duration returns End - Start, or 0 when nothing exceeded the threshold.
func (b Bracket) Duration() float64 {
	if !b.Exceeded {
		return 0
	}
	return b.End - b.Start
}

// BracketedDuration finds the first and last samples with |x| > threshold.
// Times are sample times; no interpolation between samples is done.
func BracketedDuration(sig domain.RawSignal, threshold float64) Bracket {
	first, last := -1, -1
	for i, x := range sig.Samples {
		if math.Abs(x) > threshold {
			if first < 0 {
				first = i
			}
			last = i
		}
	}
	if first < 0 {
		return Bracket{StartIndex: -1, EndIndex: -1}
	}
	return Bracket{
		Exceeded:   true,
		StartIndex: first,
		EndIndex:   last,
		Start:      sig.TimeAt(first),
		End:        sig.TimeAt(last),
	}
}

// DurationExtractor plots the signal with start/end markers at the bracket.
type DurationExtractor struct{}

func (DurationExtractor) Feature() domain.Feature { return domain.FeatureBracketedDuration }

func (DurationExtractor) MaxSamples() int { return DefaultMaxSamples }

func (DurationExtractor) Extract(sig domain.RawSignal, p Params) (domain.DerivedSeries, error) {
	b := BracketedDuration(sig, p.Threshold)
	ds := domain.DerivedSeries{
		Feature: domain.FeatureBracketedDuration,
		Domain:  domain.DomainTime,
		XLabel:  "Time (s)",
		YLabel:  "Amplitude",
		Traces:  []domain.Trace{{Name: "Signal", X: sig.Times(), Y: sig.Samples}},
		Values:  map[string]float64{"threshold": p.Threshold},
	}
	if !b.Exceeded {
		ds.Title = "No threshold exceedance"
		ds.Message = "No threshold exceedance"
		return ds, nil
	}
	ds.Title = fmt.Sprintf("Bracketed Duration: %.2f s", b.Duration())
	ds.Markers = []domain.Marker{
		{Label: "Start", X: b.Start},
		{Label: "End", X: b.End},
	}
	ds.Values["start"] = b.Start
	ds.Values["end"] = b.End
	ds.Values["duration"] = b.Duration()
	return ds, nil
}
