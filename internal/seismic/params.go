package seismic

import "github.com/couchcryptid/quakesense-service/internal/domain"

// Analysis constants carried over from the field workflow.
const (
	DefaultThreshold = 0.05 // bracketed-duration exceedance level
	EnvelopeDecay    = 0.02 // preprocessing envelope exp(-decay*t)
	DefaultDamping   = 0.05 // 5% critical damping
	MinPeriod        = 0.01 // seconds
	MaxPeriod        = 4.0  // seconds
	PeriodCount      = 200
	PWaveOffset      = 10.0 // seconds
	SWaveOffset      = 18.0 // seconds
	Gravity          = 9.81 // m/s²
)

// Params selects the variants and tunables applied by extractors.
type Params struct {
	Threshold     float64
	Damping       float64
	ResponseModel domain.ResponseModel
	PhaseModel    domain.PhaseModel
	Arias         domain.AriasNormalization
	// SkipDC ignores the zero-frequency bin when picking the site frequency.
	SkipDC bool
}

// DefaultParams reproduces the established field-tool output.
func DefaultParams() Params {
	return Params{
		Threshold:     DefaultThreshold,
		Damping:       DefaultDamping,
		ResponseModel: domain.ResponseIllustrative,
		PhaseModel:    domain.PhaseFixed,
		Arias:         domain.AriasRaw,
	}
}

// withDefaults fills zero-valued fields so a partially populated Params works.
func (p Params) withDefaults() Params {
	d := DefaultParams()
	if p.Threshold <= 0 {
		p.Threshold = d.Threshold
	}
	if p.Damping <= 0 {
		p.Damping = d.Damping
	}
	if p.ResponseModel == "" {
		p.ResponseModel = d.ResponseModel
	}
	if p.PhaseModel == "" {
		p.PhaseModel = d.PhaseModel
	}
	if p.Arias == "" {
		p.Arias = d.Arias
	}
	return p
}
