package codec

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/dpup/gcs/lib/geo"
)

// OutputPrecision is the number of decimal places written for each coordinate.
const OutputPrecision = geo.JSONPrecision

var ErrUnsupportedGeometry = errors.New("unsupported geometry type")

// Coordinate is a (lat, lng) pair rounded to OutputPrecision when marshaled.
type Coordinate [2]float64

func round(f float64) float64 {
	scale := math.Pow10(OutputPrecision)
	return math.Round(f*scale) / scale
}

func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{round(c[0]), round(c[1])})
}

// ToJSONValue maps a geometry to its JSON form: a Point becomes [lat, lng]
// and a Polyline becomes [[lat, lng], ...].
func ToJSONValue(g any) (any, error) {
	switch v := g.(type) {
	case geo.Point:
		return Coordinate(v.Pair()), nil
	case *geo.Polyline:
		coords := make([]Coordinate, v.Len())
		for i, pair := range v.Pairs() {
			coords[i] = Coordinate(pair)
		}
		return coords, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedGeometry, g)
	}
}

// MarshalGeometry encodes a Point or Polyline as JSON.
func MarshalGeometry(g any) ([]byte, error) {
	v, err := ToJSONValue(g)
	if err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func UnmarshalPoint(data []byte) (geo.Point, error) {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return geo.Point{}, fmt.Errorf("failed to parse point: %w", err)
	}
	return geo.PointFromPair(pair)
}

func UnmarshalPolyline(data []byte) (*geo.Polyline, error) {
	var pairs [][2]float64
	if err := json.Unmarshal(data, &pairs); err != nil {
		return nil, fmt.Errorf("failed to parse polyline: %w", err)
	}
	return geo.PolylineFromPairs(pairs)
}
