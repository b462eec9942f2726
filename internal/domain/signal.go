package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RawSignal is a uniformly sampled acceleration record.
type RawSignal struct {
	Samples    []float64
	SampleRate float64 // Hz
	Source     string
}

// Len returns the number of samples.
func (s RawSignal) Len() int {
	return len(s.Samples)
}

// Dt returns the sampling interval in seconds.
func (s RawSignal) Dt() float64 {
	if s.SampleRate <= 0 {
		return 0
	}
	return 1 / s.SampleRate
}

// TimeAt returns the time offset of sample i in seconds.
func (s RawSignal) TimeAt(i int) float64 {
	return float64(i) * s.Dt()
}

// Times returns the time axis for every sample.
func (s RawSignal) Times() []float64 {
	t := make([]float64, len(s.Samples))
	dt := s.Dt()
	for i := range t {
		t[i] = float64(i) * dt
	}
	return t
}

// Feature names one derivable view of a RawSignal.
type Feature string

const (
	FeatureMotion            Feature = "motion"
	FeatureFourier           Feature = "fourier"
	FeatureBracketedDuration Feature = "bracketed-duration"
	FeatureSiteFrequency     Feature = "site-frequency"
	FeatureArias             Feature = "arias"
	FeatureResponseSpectrum  Feature = "response-spectrum"
	FeaturePhaseMarkers      Feature = "phase-markers"
)

// features is the canonical order. Descriptor sections and legacy numeric
// indices follow it.
var features = []Feature{
	FeatureMotion,
	FeatureFourier,
	FeatureBracketedDuration,
	FeatureSiteFrequency,
	FeatureArias,
	FeatureResponseSpectrum,
	FeaturePhaseMarkers,
}

// Features returns every feature in canonical order.
func Features() []Feature {
	out := make([]Feature, len(features))
	copy(out, features)
	return out
}

// Index returns the canonical position of f, or -1 if f is not a known feature.
func (f Feature) Index() int {
	for i, known := range features {
		if known == f {
			return i
		}
	}
	return -1
}

// Valid reports whether f belongs to the closed feature set.
func (f Feature) Valid() bool {
	return f.Index() >= 0
}

// ParseFeature accepts a feature name ("arias") or its legacy index ("4").
func ParseFeature(s string) (Feature, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if f := Feature(s); f.Valid() {
		return f, nil
	}
	if i, err := strconv.Atoi(s); err == nil && i >= 0 && i < len(features) {
		return features[i], nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFeature, s)
}

// AxisDomain identifies the x-axis semantics of a derived series.
type AxisDomain string

const (
	DomainTime      AxisDomain = "time"
	DomainFrequency AxisDomain = "frequency"
	DomainPeriod    AxisDomain = "period"
)

// ResponseModel selects how the response spectrum is generated.
type ResponseModel string

const (
	// ResponseIllustrative scales peak acceleration by exp(-damping*T).
	// It is a display placeholder, not an oscillator response.
	ResponseIllustrative ResponseModel = "illustrative"
	// ResponseSDOF integrates a damped single-degree-of-freedom oscillator
	// per period and reports pseudo-spectral acceleration.
	ResponseSDOF ResponseModel = "sdof"
)

// ParseResponseModel validates a response model name.
func ParseResponseModel(s string) (ResponseModel, error) {
	switch m := ResponseModel(strings.ToLower(strings.TrimSpace(s))); m {
	case ResponseIllustrative, ResponseSDOF:
		return m, nil
	default:
		return "", fmt.Errorf("unknown response model %q", s)
	}
}

// PhaseModel selects how P and S arrivals are placed.
type PhaseModel string

// PhaseFixed marks arrivals at constant offsets; no onset detection is done.
const PhaseFixed PhaseModel = "fixed"

// AriasNormalization selects the scaling applied to cumulative squared
// acceleration.
type AriasNormalization string

const (
	// AriasRaw is the plain cumulative sum of a²·dt.
	AriasRaw AriasNormalization = "raw"
	// AriasStandard applies the π/(2g) factor of the physical definition.
	AriasStandard AriasNormalization = "standard"
)

// ParseAriasNormalization validates an Arias normalization name.
func ParseAriasNormalization(s string) (AriasNormalization, error) {
	switch n := AriasNormalization(strings.ToLower(strings.TrimSpace(s))); n {
	case AriasRaw, AriasStandard:
		return n, nil
	default:
		return "", fmt.Errorf("unknown arias normalization %q", s)
	}
}

// Trace is one plotted line of (x, y) pairs.
type Trace struct {
	Name  string    `json:"name"`
	Panel string    `json:"panel,omitempty"`
	Unit  string    `json:"unit,omitempty"`
	X     []float64 `json:"x"`
	Y     []float64 `json:"y"`
}

// Marker is a labelled vertical line on the x axis.
type Marker struct {
	Label string  `json:"label"`
	X     float64 `json:"x"`
}

// DerivedSeries is the output of a feature extractor, ready for plotting.
type DerivedSeries struct {
	Feature Feature            `json:"feature"`
	Title   string             `json:"title"`
	Domain  AxisDomain         `json:"domain"`
	XLabel  string             `json:"x_label"`
	YLabel  string             `json:"y_label"`
	Traces  []Trace            `json:"traces"`
	Markers []Marker           `json:"markers,omitempty"`
	Values  map[string]float64 `json:"values,omitempty"`
	Model   string             `json:"model,omitempty"`
	Message string             `json:"message,omitempty"`
}

// FeatureDescriptor is the human-readable title and explanation of a feature.
type FeatureDescriptor struct {
	Feature Feature `json:"feature"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
}

// Summary holds the scalar ground-motion parameters of one signal.
type Summary struct {
	EventID           string    `json:"event_id"`
	Source            string    `json:"source"`
	Samples           int       `json:"samples"`
	SampleRate        float64   `json:"sample_rate"`
	PGA               float64   `json:"pga"`
	PGV               float64   `json:"pgv"`
	PGD               float64   `json:"pgd"`
	Exceeded          bool      `json:"exceeded"`
	BracketedDuration float64   `json:"bracketed_duration,omitempty"`
	SiteFrequency     float64   `json:"site_frequency"`
	AriasIntensity    float64   `json:"arias_intensity"`
	ComputedAt        time.Time `json:"computed_at"`
}
