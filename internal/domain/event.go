package domain

import (
	"strings"
	"time"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// IsZero reports whether both coordinates are unset.
func (g Geo) IsZero() bool {
	return g.Lat == 0 && g.Lon == 0
}

// Event is a catalogued earthquake with its summary metadata.
type Event struct {
	ID         string    `json:"event_id"`
	Date       string    `json:"date"`
	Time       string    `json:"time"`
	OccurredAt time.Time `json:"occurred_at,omitzero"`
	Geo        Geo       `json:"geo"`
	Magnitude  float64   `json:"magnitude"`
	DepthKm    float64   `json:"depth_km"`
	Province   string    `json:"province,omitempty"`
	District   string    `json:"district,omitempty"`

	// Geocoding enrichment fields.
	FormattedAddress string  `json:"formatted_address,omitempty"`
	PlaceName        string  `json:"place_name,omitempty"`
	GeoConfidence    float64 `json:"geo_confidence,omitempty"`
	GeoSource        string  `json:"geo_source,omitempty"` // "forward", "reverse", "original", "failed"
}

// Station is a strong-motion recording station that captured an event.
type Station struct {
	EventID    string  `json:"event_id"`
	Code       string  `json:"code"`
	Geo        Geo     `json:"geo"`
	Province   string  `json:"province,omitempty"`
	District   string  `json:"district,omitempty"`
	Lithology  string  `json:"lithology,omitempty"`
	Vs30       float64 `json:"vs30"`
	Morphology string  `json:"morphology,omitempty"`
	PGANS      float64 `json:"pga_ns"`
	PGAEW      float64 `json:"pga_ew"`
	PGAUD      float64 `json:"pga_ud"`
}

// NormalizeEventID trims surrounding whitespace so IDs read from different
// sources compare equal.
func NormalizeEventID(id string) string {
	return strings.TrimSpace(id)
}

// eventTimeLayouts are the date/time combinations seen in catalog exports.
var eventTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02/01/2006 15:04:05",
}

// ParseEventTime combines a catalog date and time column into a UTC
// timestamp. Returns the zero time when no known layout matches.
func ParseEventTime(date, hms string) time.Time {
	date = strings.TrimSpace(date)
	hms = strings.TrimSpace(hms)
	if date == "" {
		return time.Time{}
	}
	if hms == "" {
		hms = "00:00:00"
	}
	// Fractional seconds are common in AFAD exports ("09:49:10.12").
	if i := strings.IndexByte(hms, '.'); i > 0 {
		hms = hms[:i]
	}
	combined := date + " " + hms
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, combined); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
