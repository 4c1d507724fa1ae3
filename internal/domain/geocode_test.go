package domain

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- mock geocoder ---

type mockGeocoder struct {
	results map[string]GeocodingResult
	err     error
	calls   []string
}

func (m *mockGeocoder) ForwardGeocode(_ context.Context, place string) (GeocodingResult, error) {
	m.calls = append(m.calls, place)
	if m.err != nil {
		return GeocodingResult{}, m.err
	}
	return m.results[place], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr(v float64) *float64 { return &v }

// --- tests ---

func TestEnrichCoordinates_NilGeocoder(t *testing.T) {
	rec := JourneyRecord{StartCountry: "USA", EndCountry: "France"}

	result, filled := EnrichCoordinates(context.Background(), rec, nil, discardLogger())

	assert.Equal(t, 0, filled)
	assert.False(t, result.HasStart())
	assert.False(t, result.HasEnd())
}

func TestEnrichCoordinates_FillsBothEnds(t *testing.T) {
	geo := &mockGeocoder{results: map[string]GeocodingResult{
		"USA":    {Lat: 39.8, Lon: -98.6, PlaceName: "United States"},
		"France": {Lat: 46.6, Lon: 2.2, PlaceName: "France"},
	}}
	rec := JourneyRecord{Line: 2, StartCountry: "USA", EndCountry: "France"}

	result, filled := EnrichCoordinates(context.Background(), rec, geo, discardLogger())

	assert.Equal(t, 2, filled)
	assert.Equal(t, 39.8, *result.StartLat)
	assert.Equal(t, -98.6, *result.StartLon)
	assert.Equal(t, 46.6, *result.EndLat)
	assert.Equal(t, 2.2, *result.EndLon)
	assert.Equal(t, []string{"USA", "France"}, geo.calls)
}

func TestEnrichCoordinates_KeepsExistingCoordinates(t *testing.T) {
	geo := &mockGeocoder{results: map[string]GeocodingResult{
		"France": {Lat: 46.6, Lon: 2.2},
	}}
	rec := JourneyRecord{
		StartCountry: "USA", EndCountry: "France",
		StartLat: ptr(40.7), StartLon: ptr(-74.0),
	}

	result, filled := EnrichCoordinates(context.Background(), rec, geo, discardLogger())

	assert.Equal(t, 1, filled)
	assert.Equal(t, 40.7, *result.StartLat)
	assert.Equal(t, []string{"France"}, geo.calls)
}

func TestEnrichCoordinates_ErrorGracefulDegradation(t *testing.T) {
	geo := &mockGeocoder{err: errors.New("API timeout")}
	rec := JourneyRecord{StartCountry: "USA", EndCountry: "France"}

	result, filled := EnrichCoordinates(context.Background(), rec, geo, discardLogger())

	assert.Equal(t, 0, filled)
	assert.False(t, result.HasStart())
	assert.False(t, result.HasEnd())
}

func TestEnrichCoordinates_EmptyResult(t *testing.T) {
	geo := &mockGeocoder{results: map[string]GeocodingResult{}}
	rec := JourneyRecord{StartCountry: "Atlantis", EndCountry: "Lemuria"}

	result, filled := EnrichCoordinates(context.Background(), rec, geo, discardLogger())

	assert.Equal(t, 0, filled)
	assert.False(t, result.HasEnd())
	assert.Len(t, geo.calls, 2)
}

func TestEnrichCoordinates_DoesNotAliasInput(t *testing.T) {
	geo := &mockGeocoder{results: map[string]GeocodingResult{
		"France": {Lat: 46.6, Lon: 2.2},
	}}
	rec := JourneyRecord{StartCountry: "France", EndCountry: "France"}

	result, _ := EnrichCoordinates(context.Background(), rec, geo, discardLogger())

	assert.False(t, rec.HasStart(), "input record must not change")
	*result.StartLat = 0
	assert.Equal(t, 46.6, *result.EndLat)
}
