// Package geo implements points, lines and polylines on the earth's surface
// with great-circle distance, bearing, snapping, splitting, splicing and
// polyline subtraction.
package geo

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/dpup/gcs/lib/arcdegree"
)

// EarthRadius is the earth's mean radius in meters
const EarthRadius = arcdegree.MeanEarthRadius

// SignificantDigits is the number of decimal places kept for each coordinate.
const SignificantDigits = 10

const cleanScale = 1e10

// JSONPrecision is the number of decimal places written by MarshalJSON.
const JSONPrecision = 6

// DefaultArcLengths is used by Point.Buffer and Bounds.Buffer.
var DefaultArcLengths ArcLengths = arcdegree.Spherical{}

// Point is a latitude/longitude pair canonicalized to SignificantDigits.
// Two points whose coordinates round to the same value are equal, so Point
// can be compared with == and used as a map key.
type Point struct {
	lat int64
	lng int64
}

func clean(f float64) int64 {
	return int64(math.Round(f * cleanScale))
}

// NewPoint creates a Point from latitude and longitude values with validation
func NewPoint(lat, lng float64) (Point, error) {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return Point{}, ErrInvalidCoordinate
	}
	if lat < -90 || lat > 90 {
		return Point{}, ErrInvalidCoordinate
	}
	return NewPointUnsafe(lat, lng), nil
}

// NewPointUnsafe creates a Point without validation (for computed coordinates)
func NewPointUnsafe(lat, lng float64) Point {
	return Point{lat: clean(lat), lng: clean(lng)}
}

// PointFromPair creates a Point from a (lat, lng) pair.
func PointFromPair(pair [2]float64) (Point, error) {
	return NewPoint(pair[0], pair[1])
}

// PointFromCoords creates a Point from cartesian ordered (x, y) = (lng, lat)
// coordinates. Note the order is the reverse of PointFromPair.
func PointFromCoords(coords [2]float64) (Point, error) {
	return NewPoint(coords[1], coords[0])
}

func (p Point) Lat() float64 { return float64(p.lat) / cleanScale }
func (p Point) Lng() float64 { return float64(p.lng) / cleanScale }

func (p Point) LatRad() float64 { return p.Lat() * math.Pi / 180 }
func (p Point) LngRad() float64 { return p.Lng() * math.Pi / 180 }

// X is the longitude
func (p Point) X() float64 { return p.Lng() }

// Y is the latitude
func (p Point) Y() float64 { return p.Lat() }

// Pair returns (lat, lng).
func (p Point) Pair() [2]float64 {
	return [2]float64{p.Lat(), p.Lng()}
}

// Coords returns (x, y) = (lng, lat) for planar geometry libraries.
func (p Point) Coords() [2]float64 {
	return [2]float64{p.Lng(), p.Lat()}
}

func (p Point) Equal(other Point) bool {
	return p == other
}

func (p Point) String() string {
	return fmt.Sprintf("Point(%.10f, %.10f)", p.Lat(), p.Lng())
}

// MarshalJSON writes the point as [lat, lng] rounded to JSONPrecision.
func (p Point) MarshalJSON() ([]byte, error) {
	scale := math.Pow10(JSONPrecision)
	return json.Marshal([2]float64{
		math.Round(p.Lat()*scale) / scale,
		math.Round(p.Lng()*scale) / scale,
	})
}

// UnmarshalJSON reads a [lat, lng] pair, validating it like NewPoint.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("failed to parse point: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("point has %d values: %w", len(pair), ErrInvalidCoordinate)
	}
	point, err := NewPoint(pair[0], pair[1])
	if err != nil {
		return err
	}
	*p = point
	return nil
}

// DistanceTo calculates great-circle distance in meters using the haversine formula.
func (p Point) DistanceTo(other Point) float64 {
	// asin(sqrt(~0)) loses precision
	if p == other {
		return 0.0
	}

	lat1 := p.LatRad()
	lat2 := other.LatRad()

	sinDLat := math.Sin((lat2 - lat1) / 2)
	sinDLng := math.Sin((other.LngRad() - p.LngRad()) / 2)

	a := sinDLat*sinDLat + math.Cos(lat1)*math.Cos(lat2)*sinDLng*sinDLng
	return EarthRadius * 2 * math.Asin(math.Sqrt(a))
}

// AngleTo returns the initial bearing in radians, in [0, 2π), from p to
// other. The bearing between identical points is 0.
func (p Point) AngleTo(other Point) float64 {
	return p.AngleToOr(other, 0.0)
}

// AngleToOr is AngleTo returning def when the points are identical.
func (p Point) AngleToOr(other Point, def float64) float64 {
	if p == other {
		return def
	}

	lat1 := p.LatRad()
	lat2 := other.LatRad()
	dLng := other.LngRad() - p.LngRad()

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)
	return normalizeAngle(math.Atan2(y, x))
}

// ApplyBearingAndDistance returns the point reached by travelling distance
// meters from p along the great circle with the given initial bearing.
func (p Point) ApplyBearingAndDistance(bearing, distance float64) Point {
	d := distance / EarthRadius
	lat1 := p.LatRad()

	cosD := math.Cos(d)
	sinLat1 := math.Sin(lat1)
	a := math.Sin(d) * math.Cos(lat1)

	lat2 := math.Asin(sinLat1*cosD + a*math.Cos(bearing))
	lng2 := p.LngRad() + math.Atan2(math.Sin(bearing)*a, cosD-sinLat1*math.Sin(lat2))
	return NewPointUnsafe(lat2*180/math.Pi, lng2*180/math.Pi)
}

// Buffer returns a box centered at p that extends at least distance meters
// in every direction, using DefaultArcLengths.
func (p Point) Buffer(distance float64) Bounds {
	return p.BufferWith(DefaultArcLengths, distance)
}

// BufferWith is Buffer using the given arc length model.
func (p Point) BufferWith(arc ArcLengths, distance float64) Bounds {
	dLat := distance / arc.LatLength(p.Lat())
	maxLat := p.Lat() + dLat
	minLat := p.Lat() - dLat

	// A degree of longitude is shortest on the edge farthest from the equator
	theta := maxLat
	if p.Lat() < 0 {
		theta = minLat
	}

	dLng := distance / arc.LngLength(theta)
	return NewBounds(
		NewPointUnsafe(minLat, p.Lng()-dLng),
		NewPointUnsafe(maxLat, p.Lng()+dLng),
	)
}

// IsBetween reports whether p lies on the segment a→b within maxDistance
// meters. The endpoints themselves are always between.
func (p Point) IsBetween(a, b Point, maxDistance float64) bool {
	if p == a || p == b {
		return true
	}
	_, ok := NewLine(a, b).SnapPoint(p, maxDistance, false)
	return ok
}

// normalizeAngle maps an angle in radians into [0, 2π).
func normalizeAngle(angle float64) float64 {
	angle = math.Mod(angle, 2*math.Pi)
	if angle < 0 {
		angle += 2 * math.Pi
	}
	if angle >= 2*math.Pi {
		angle = 0
	}
	return angle
}
