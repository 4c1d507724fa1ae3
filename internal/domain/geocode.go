package domain

import (
	"context"
	"log/slog"
)

// EnrichCoordinates fills missing start or end coordinates by geocoding the
// country name. Lookup failures leave the record unchanged (graceful
// degradation); the returned count is the number of coordinates filled.
func EnrichCoordinates(ctx context.Context, rec JourneyRecord, geocoder Geocoder, logger *slog.Logger) (JourneyRecord, int) {
	if geocoder == nil {
		return rec, 0
	}

	filled := 0
	if !rec.HasStart() {
		if p, ok := lookup(ctx, geocoder, rec.Line, rec.StartCountry, logger); ok {
			rec.StartLat, rec.StartLon = &p.Lat, &p.Lon
			filled++
		}
	}
	if !rec.HasEnd() {
		if p, ok := lookup(ctx, geocoder, rec.Line, rec.EndCountry, logger); ok {
			rec.EndLat, rec.EndLon = &p.Lat, &p.Lon
			filled++
		}
	}
	return rec, filled
}

func lookup(ctx context.Context, geocoder Geocoder, line int, place string, logger *slog.Logger) (Point, bool) {
	if place == "" {
		return Point{}, false
	}
	result, err := geocoder.ForwardGeocode(ctx, place)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"line", line,
			"place", place,
			"error", err,
		)
		return Point{}, false
	}
	if !result.Found() {
		return Point{}, false
	}
	return Point{Lat: result.Lat, Lon: result.Lon}, true
}
