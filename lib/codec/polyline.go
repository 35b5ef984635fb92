// Package codec converts polylines to and from the encoded polyline format,
// JSON coordinate arrays, GeoJSON and KML.
package codec

import (
	"errors"
	"fmt"

	"github.com/twpayne/go-polyline"

	"github.com/dpup/gcs/lib/geo"
)

// ErrTrailingData is returned when an encoded polyline has bytes left over after decoding.
var ErrTrailingData = errors.New("encoded polyline has trailing data")

// EncodePolyline encodes p in the Google encoded polyline format at 1e5 precision.
func EncodePolyline(p *geo.Polyline) string {
	coords := make([][]float64, 0, p.Len())
	for _, pair := range p.Pairs() {
		coords = append(coords, []float64{pair[0], pair[1]})
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePoints decodes a Google encoded polyline string to a point sequence.
func DecodePoints(encoded string) ([]geo.Point, error) {
	if encoded == "" {
		return nil, nil
	}

	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}
	if len(rest) > 0 {
		return nil, ErrTrailingData
	}

	points := make([]geo.Point, 0, len(coords))
	for i, coord := range coords {
		if len(coord) != 2 {
			return nil, fmt.Errorf("coordinate %d has %d dimensions", i, len(coord))
		}
		point, err := geo.NewPoint(coord[0], coord[1])
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i, err)
		}
		points = append(points, point)
	}
	return points, nil
}

// DecodePolyline decodes a Google encoded polyline string. A nil Polyline and
// nil error are returned when fewer than two distinct points remain.
func DecodePolyline(encoded string) (*geo.Polyline, error) {
	points, err := DecodePoints(encoded)
	if err != nil {
		return nil, err
	}

	p, err := geo.NewPolyline(points...)
	if errors.Is(err, geo.ErrEmptyPolyline) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if p.First() == p.Last() && p.Len() == 2 {
		return nil, nil
	}
	return p, nil
}
