package seismic

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// Spectrum is a one-sided DFT magnitude on floor(N/2)+1 evenly spaced bins.
type Spectrum struct {
	Frequencies []float64
	Magnitudes  []float64
}

// BinWidth returns the frequency spacing of the spectrum in Hz.
func (s Spectrum) BinWidth() float64 {
	if len(s.Frequencies) < 2 {
		return 0
	}
	return s.Frequencies[1] - s.Frequencies[0]
}

// RealSpectrum computes |DFT(x)| for the non-negative frequencies of a real
// signal sampled at sampleRate Hz.
func RealSpectrum(x []float64, sampleRate float64) Spectrum {
	n := len(x)
	if n == 0 {
		return Spectrum{}
	}
	coeff := fourier.NewFFT(n).Coefficients(nil, x)
	freqs := make([]float64, len(coeff))
	mags := make([]float64, len(coeff))
	for i, c := range coeff {
		freqs[i] = float64(i) * sampleRate / float64(n)
		mags[i] = cmplx.Abs(c)
	}
	return Spectrum{Frequencies: freqs, Magnitudes: mags}
}

// AmplitudeSpectrum returns the spectrum normalized by N and doubled.
func AmplitudeSpectrum(sig domain.RawSignal) Spectrum {
	s := RealSpectrum(sig.Samples, sig.SampleRate)
	if n := sig.Len(); n > 0 {
		floats.Scale(2/float64(n), s.Magnitudes)
	}
	return s
}

// PeakFrequency returns the frequency of the largest magnitude. The first
// bin wins ties. With skipDC the zero-frequency bin is not considered.
func PeakFrequency(s Spectrum, skipDC bool) float64 {
	mags := s.Magnitudes
	offset := 0
	if skipDC && len(mags) > 1 {
		mags = mags[1:]
		offset = 1
	}
	if len(mags) == 0 {
		return 0
	}
	return s.Frequencies[floats.MaxIdx(mags)+offset]
}

// FourierExtractor plots the normalized amplitude spectrum.
type FourierExtractor struct{}

func (FourierExtractor) Feature() domain.Feature { return domain.FeatureFourier }

func (FourierExtractor) MaxSamples() int { return SpectrumMaxSamples }

func (FourierExtractor) Extract(sig domain.RawSignal, _ Params) (domain.DerivedSeries, error) {
	s := AmplitudeSpectrum(sig)
	return domain.DerivedSeries{
		Feature: domain.FeatureFourier,
		Title:   "Fourier Amplitude Spectrum",
		Domain:  domain.DomainFrequency,
		XLabel:  "Frequency (Hz)",
		YLabel:  "Amplitude",
		Traces:  []domain.Trace{{Name: "FAS", X: s.Frequencies, Y: s.Magnitudes}},
		Values: map[string]float64{
			"bin_width": s.BinWidth(),
			"peak":      maxAbs(s.Magnitudes),
		},
	}, nil
}

// SiteFrequencyExtractor marks the dominant frequency of the unnormalized
// spectrum.
type SiteFrequencyExtractor struct{}

func (SiteFrequencyExtractor) Feature() domain.Feature { return domain.FeatureSiteFrequency }

func (SiteFrequencyExtractor) MaxSamples() int { return DefaultMaxSamples }

func (SiteFrequencyExtractor) Extract(sig domain.RawSignal, p Params) (domain.DerivedSeries, error) {
	s := RealSpectrum(sig.Samples, sig.SampleRate)
	peak := PeakFrequency(s, p.SkipDC)
	return domain.DerivedSeries{
		Feature: domain.FeatureSiteFrequency,
		Title:   "Site Frequency Estimate",
		Domain:  domain.DomainFrequency,
		XLabel:  "Frequency (Hz)",
		YLabel:  "Amplitude",
		Traces:  []domain.Trace{{Name: "Spectrum", X: s.Frequencies, Y: s.Magnitudes}},
		Markers: []domain.Marker{{Label: fmt.Sprintf("Site Frequency: %.2f Hz", peak), X: peak}},
		Values:  map[string]float64{"site_frequency": peak},
	}, nil
}
