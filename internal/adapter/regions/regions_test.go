package regions

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/letter-journeys/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two unit squares side by side plus a two-part island region.
const boundaries = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"name": "West"},
     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[10,0],[10,10],[0,10],[0,0]]]}},
    {"type": "Feature", "properties": {"NAME": "East"},
     "geometry": {"type": "Polygon", "coordinates": [[[10,0],[20,0],[20,10],[10,10],[10,0]]]}},
    {"type": "Feature", "properties": {"ADMIN": "Islands"},
     "geometry": {"type": "MultiPolygon", "coordinates": [
       [[[30,30],[32,30],[32,32],[30,32],[30,30]]],
       [[[40,40],[42,40],[42,42],[40,42],[40,40]]]
     ]}}
  ]
}`

func TestParse_Names(t *testing.T) {
	c, err := Parse([]byte(boundaries))
	require.NoError(t, err)

	assert.Equal(t, []string{"West", "East", "Islands"}, c.Regions())
}

func TestCounter_CountPoints(t *testing.T) {
	c, err := Parse([]byte(boundaries))
	require.NoError(t, err)

	points := []domain.Point{
		{Lat: 5, Lon: 5},   // West
		{Lat: 2, Lon: 3},   // West
		{Lat: 5, Lon: 15},  // East
		{Lat: 31, Lon: 31}, // Islands, first part
		{Lat: 41, Lon: 41}, // Islands, second part
		{Lat: 35, Lon: 35}, // between the islands
		{Lat: -5, Lon: -5}, // nowhere
	}

	got := c.CountPoints(points)

	assert.Equal(t, []domain.RegionCount{
		{Region: "West", Count: 2},
		{Region: "East", Count: 1},
		{Region: "Islands", Count: 2},
	}, got)
}

func TestCounter_CountPoints_Empty(t *testing.T) {
	c, err := Parse([]byte(boundaries))
	require.NoError(t, err)

	got := c.CountPoints(nil)

	require.Len(t, got, 3)
	for _, rc := range got {
		assert.Zero(t, rc.Count, rc.Region)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "not json",
			input: "{",
		},
		{
			name:  "empty collection",
			input: `{"type":"FeatureCollection","features":[]}`,
			want:  "empty",
		},
		{
			name:  "unnamed feature",
			input: `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,0]]]}}]}`,
			want:  "no name property",
		},
		{
			name:  "point geometry",
			input: `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"name":"Pin"},"geometry":{"type":"Point","coordinates":[1,1]}}]}`,
			want:  "unsupported geometry Point",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.geojson")
	require.NoError(t, os.WriteFile(path, []byte(boundaries), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, c.Regions(), 3)

	_, err = Load(filepath.Join(t.TempDir(), "missing.geojson"))
	require.Error(t, err)
}
