// Package regions counts journey end points per administrative region using
// boundaries read from a GeoJSON FeatureCollection.
package regions

import (
	"fmt"
	"os"

	"github.com/couchcryptid/letter-journeys/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// nameProperties are tried in order to label a feature. Natural Earth
// exports use ADMIN or NAME; hand-drawn files usually use name.
var nameProperties = []string{"name", "NAME", "ADMIN"}

type region struct {
	name  string
	bound orb.Bound
	geom  orb.Geometry
}

// Counter implements domain.RegionCounter. It is immutable after Load and
// safe for concurrent use.
type Counter struct {
	regions []region
}

// Load reads a GeoJSON FeatureCollection from path.
func Load(path string) (*Counter, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read regions: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse regions %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a Counter from GeoJSON bytes. Only Polygon and MultiPolygon
// features are accepted; every feature needs a name property.
func Parse(data []byte) (*Counter, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}
	if len(fc.Features) == 0 {
		return nil, fmt.Errorf("feature collection is empty")
	}

	c := &Counter{regions: make([]region, 0, len(fc.Features))}
	for i, f := range fc.Features {
		name := featureName(f)
		if name == "" {
			return nil, fmt.Errorf("feature %d: no name property", i)
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
		case nil:
			return nil, fmt.Errorf("feature %q: no geometry", name)
		default:
			return nil, fmt.Errorf("feature %q: unsupported geometry %s", name, f.Geometry.GeoJSONType())
		}
		c.regions = append(c.regions, region{name: name, bound: f.Geometry.Bound(), geom: f.Geometry})
	}
	return c, nil
}

func featureName(f *geojson.Feature) string {
	for _, key := range nameProperties {
		if name := f.Properties.MustString(key, ""); name != "" {
			return name
		}
	}
	return ""
}

// Regions returns the region names in file order.
func (c *Counter) Regions() []string {
	names := make([]string, len(c.regions))
	for i, r := range c.regions {
		names[i] = r.name
	}
	return names
}

// CountPoints returns one RegionCount per region, in file order, including
// regions that contain no point. Points outside every region are ignored; a
// point on overlapping regions counts for each.
func (c *Counter) CountPoints(points []domain.Point) []domain.RegionCount {
	out := make([]domain.RegionCount, len(c.regions))
	for i, r := range c.regions {
		out[i].Region = r.name
	}
	for _, p := range points {
		pt := orb.Point{p.Lon, p.Lat}
		for i, r := range c.regions {
			if r.bound.Contains(pt) && contains(r.geom, pt) {
				out[i].Count++
			}
		}
	}
	return out
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	}
	return false
}
