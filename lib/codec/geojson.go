package codec

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/dpup/gcs/lib/geo"
)

// ToLineString converts p to an orb LineString in (lng, lat) order.
func ToLineString(p *geo.Polyline) orb.LineString {
	ls := make(orb.LineString, p.Len())
	for i, c := range p.Coords() {
		ls[i] = orb.Point(c)
	}
	return orb.Round(ls, int(math.Pow10(OutputPrecision))).(orb.LineString)
}

// ToFeature wraps p in a GeoJSON Feature with the given properties.
func ToFeature(p *geo.Polyline, properties map[string]any) *geojson.Feature {
	f := geojson.NewFeature(ToLineString(p))
	for k, v := range properties {
		f.Properties[k] = v
	}
	return f
}

// MarshalFeatureCollection encodes each polyline as a LineString feature. The
// feature at index i carries props[i] when present.
func MarshalFeatureCollection(polylines []*geo.Polyline, props []map[string]any) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for i, p := range polylines {
		var properties map[string]any
		if i < len(props) {
			properties = props[i]
		}
		fc.Append(ToFeature(p, properties))
	}
	return fc.MarshalJSON()
}

// FromGeometry converts a Point or LineString geometry to a Polyline. A Point
// yields a single zero-length segment.
func FromGeometry(g orb.Geometry) (*geo.Polyline, error) {
	if g == nil {
		return nil, fmt.Errorf("%w: null geometry", ErrUnsupportedGeometry)
	}
	switch v := g.(type) {
	case orb.Point:
		return geo.PolylineFromCoords([][2]float64{v})
	case orb.LineString:
		coords := make([][2]float64, len(v))
		for i, p := range v {
			coords[i] = p
		}
		return geo.PolylineFromCoords(coords)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometry, g.GeoJSONType())
	}
}

// UnmarshalFeatureCollection decodes every Point and LineString feature.
func UnmarshalFeatureCollection(data []byte) ([]*geo.Polyline, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	polylines := make([]*geo.Polyline, 0, len(fc.Features))
	for i, f := range fc.Features {
		p, err := FromGeometry(f.Geometry)
		if err != nil {
			return nil, fmt.Errorf("feature %d: %w", i, err)
		}
		polylines = append(polylines, p)
	}
	return polylines, nil
}
