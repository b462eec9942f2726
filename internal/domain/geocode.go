package domain

import (
	"context"
	"log/slog"
)

// EnrichEventLocation attempts to enrich an event with geocoding data.
// If geocoder is nil or geocoding fails, the event is returned with
// GeoSource set accordingly and its catalog fields untouched.
func EnrichEventLocation(ctx context.Context, event Event, geocoder Geocoder, logger *slog.Logger) Event {
	if geocoder == nil {
		return event
	}

	hasCoords := !event.Geo.IsZero()
	hasName := event.Province != ""

	// Reverse geocode: epicenter → nearest place.
	if hasCoords {
		result, err := geocoder.ReverseGeocode(ctx, event.Geo.Lat, event.Geo.Lon)
		if err != nil {
			logger.Warn("reverse geocoding failed",
				"event_id", event.ID,
				"lat", event.Geo.Lat,
				"lon", event.Geo.Lon,
				"error", err,
			)
			event.GeoSource = GeoSourceFailed
			return event
		}
		if result.FormattedAddress != "" {
			event.FormattedAddress = result.FormattedAddress
			event.PlaceName = result.PlaceName
			event.GeoConfidence = result.Confidence
			event.GeoSource = GeoSourceReverse
			return event
		}
		event.GeoSource = GeoSourceOriginal
		return event
	}

	// Forward geocode: district/province → coordinates (when coords are missing).
	if hasName {
		result, err := geocoder.ForwardGeocode(ctx, event.District, event.Province)
		if err != nil {
			logger.Warn("forward geocoding failed",
				"event_id", event.ID,
				"district", event.District,
				"province", event.Province,
				"error", err,
			)
			event.GeoSource = GeoSourceFailed
			return event
		}
		if result.Lat != 0 || result.Lon != 0 {
			event.Geo = Geo{Lat: result.Lat, Lon: result.Lon}
			event.FormattedAddress = result.FormattedAddress
			event.PlaceName = result.PlaceName
			event.GeoConfidence = result.Confidence
			event.GeoSource = GeoSourceForward
			return event
		}
	}

	event.GeoSource = GeoSourceOriginal
	return event
}
