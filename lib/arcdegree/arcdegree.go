// Package arcdegree provides the length of a degree of latitude and longitude
// on a spherical and a WGS84 ellipsoidal earth.
package arcdegree

import "math"

const (
	// MeanEarthRadius is the earth's mean radius in meters
	MeanEarthRadius = 6371200.0

	WGS84EquatorialRadius = 6378137.0
	WGS84PolarRadius      = 6356752.3142
)

// SphericalLatLength is the length in meters of one degree of latitude on a sphere
var SphericalLatLength = MeanEarthRadius * math.Pi / 180

var radPerDegree = math.Pi / 180

// Spherical models the earth as a sphere of MeanEarthRadius.
type Spherical struct{}

// LatLength is constant on a sphere.
func (Spherical) LatLength(lat float64) float64 {
	return SphericalLatLength
}

func (Spherical) LngLength(lat float64) float64 {
	return math.Cos(lat*radPerDegree) * SphericalLatLength
}

// LengthAt returns (latitude length, longitude length) at lat.
func (s Spherical) LengthAt(lat float64) (float64, float64) {
	return s.LatLength(lat), s.LngLength(lat)
}

// WGS84 models the earth as the WGS84 ellipsoid.
// See http://en.wikipedia.org/wiki/Longitude
type WGS84 struct{}

// LatLength uses the meridional radius of curvature M.
func (WGS84) LatLength(lat float64) float64 {
	cosLat, sinLat := math.Cos(lat*radPerDegree), math.Sin(lat*radPerDegree)
	e, p := WGS84EquatorialRadius, WGS84PolarRadius

	m := math.Pow(p*e, 2) / math.Pow(math.Pow(e*cosLat, 2)+math.Pow(p*sinLat, 2), 1.5)
	return radPerDegree * m
}

// LngLength uses the prime vertical radius of curvature N.
func (WGS84) LngLength(lat float64) float64 {
	cosLat, sinLat := math.Cos(lat*radPerDegree), math.Sin(lat*radPerDegree)
	e, p := WGS84EquatorialRadius, WGS84PolarRadius

	n := e * e / math.Sqrt(math.Pow(e*cosLat, 2)+math.Pow(p*sinLat, 2))
	return radPerDegree * cosLat * n
}

func (WGS84) LengthAt(lat float64) (float64, float64) {
	cosLat, sinLat := math.Cos(lat*radPerDegree), math.Sin(lat*radPerDegree)
	e, p := WGS84EquatorialRadius, WGS84PolarRadius

	j := math.Pow(e*cosLat, 2) + math.Pow(p*sinLat, 2)
	n := e * e / math.Sqrt(j)
	m := n * p * p / j
	return radPerDegree * m, radPerDegree * cosLat * n
}

// ByName returns the model registered under name ("spherical" or "wgs84").
func ByName(name string) (Model, bool) {
	switch name {
	case "spherical", "":
		return Spherical{}, true
	case "wgs84":
		return WGS84{}, true
	}
	return nil, false
}

// Model is implemented by Spherical and WGS84.
type Model interface {
	LatLength(lat float64) float64
	LngLength(lat float64) float64
	LengthAt(lat float64) (float64, float64)
}
