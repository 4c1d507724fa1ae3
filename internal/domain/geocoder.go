package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat        float64
	Lon        float64
	PlaceName  string
	Confidence float64 // provider relevance, 0 to 1
}

// Found reports whether the provider returned a usable coordinate.
func (r GeocodingResult) Found() bool { return r.Lat != 0 || r.Lon != 0 }

// Geocoder resolves place names to coordinates.
type Geocoder interface {
	// ForwardGeocode converts a place name (a country, for journeys) to
	// coordinates.
	ForwardGeocode(ctx context.Context, place string) (GeocodingResult, error)
}

// RegionCounter counts points per administrative region.
type RegionCounter interface {
	CountPoints(points []Point) []RegionCount
}
