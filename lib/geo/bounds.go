package geo

import (
	"fmt"
	"math"
)

// Bounds is an axis-aligned latitude/longitude box. Longitudes are compared
// with plain min/max; boxes crossing the antimeridian are not supported.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// NewBounds creates a box from its south-west and north-east corners.
func NewBounds(sw, ne Point) Bounds {
	return Bounds{
		South: sw.Lat(),
		West:  sw.Lng(),
		North: ne.Lat(),
		East:  ne.Lng(),
	}
}

// BoundsAt creates a zero-area box around a single point.
func BoundsAt(p Point) Bounds {
	return NewBounds(p, p)
}

func (b Bounds) NorthEast() Point { return NewPointUnsafe(b.North, b.East) }
func (b Bounds) SouthWest() Point { return NewPointUnsafe(b.South, b.West) }
func (b Bounds) NorthWest() Point { return NewPointUnsafe(b.North, b.West) }
func (b Bounds) SouthEast() Point { return NewPointUnsafe(b.South, b.East) }

// Height is the distance in meters along the west edge
func (b Bounds) Height() float64 {
	return b.SouthWest().DistanceTo(b.NorthWest())
}

func (b Bounds) NorthWidth() float64 {
	return b.NorthWest().DistanceTo(b.NorthEast())
}

func (b Bounds) SouthWidth() float64 {
	return b.SouthWest().DistanceTo(b.SouthEast())
}

// Center is the arithmetic midpoint of the edges, not the geodesic midpoint.
func (b Bounds) Center() Point {
	return NewPointUnsafe(b.South+(b.North-b.South)/2, b.West+(b.East-b.West)/2)
}

// Expand grows the box in place to include p.
func (b *Bounds) Expand(p Point) {
	lat, lng := p.Lat(), p.Lng()
	b.North = math.Max(b.North, lat)
	b.South = math.Min(b.South, lat)
	b.East = math.Max(b.East, lng)
	b.West = math.Min(b.West, lng)
}

func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		South: math.Min(b.South, other.South),
		West:  math.Min(b.West, other.West),
		North: math.Max(b.North, other.North),
		East:  math.Max(b.East, other.East),
	}
}

// Buffer grows the box by distance meters on every side using DefaultArcLengths.
func (b Bounds) Buffer(distance float64) Bounds {
	return b.BufferWith(DefaultArcLengths, distance)
}

func (b Bounds) BufferWith(arc ArcLengths, distance float64) Bounds {
	sw := b.SouthWest().BufferWith(arc, distance)
	ne := b.NorthEast().BufferWith(arc, distance)
	return sw.Union(ne)
}

// Contains is an inclusive test on both axes.
func (b Bounds) Contains(p Point) bool {
	lat, lng := p.Lat(), p.Lng()
	return b.South <= lat && lat <= b.North && b.West <= lng && lng <= b.East
}

func (b Bounds) String() string {
	return fmt.Sprintf("(south=%f, west=%f, north=%f, east=%f)", b.South, b.West, b.North, b.East)
}
