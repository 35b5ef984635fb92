package geo

import (
	"fmt"
	"math"
)

// Line is a great-circle segment between two points. Its distance and
// bearing are computed once at construction, so a Line is safe to share.
type Line struct {
	start    Point
	end      Point
	distance float64
	angle    float64
}

func NewLine(start, end Point) Line {
	return Line{
		start:    start,
		end:      end,
		distance: start.DistanceTo(end),
		angle:    start.AngleTo(end),
	}
}

func (l Line) Start() Point { return l.start }
func (l Line) End() Point   { return l.end }

// Distance is the great-circle length in meters
func (l Line) Distance() float64 { return l.distance }

// Angle is the initial bearing from start to end, in [0, 2π)
func (l Line) Angle() float64 { return l.angle }

func (l Line) Points() [2]Point {
	return [2]Point{l.start, l.end}
}

// Inverse returns the line running from end to start.
func (l Line) Inverse() Line {
	return Line{
		start:    l.end,
		end:      l.start,
		distance: l.distance,
		angle:    l.end.AngleTo(l.start),
	}
}

// Polyline converts the line into a two point Polyline
func (l Line) Polyline() *Polyline {
	p, _ := NewPolyline(l.start, l.end)
	return p
}

func (l Line) Equal(other Line) bool {
	return l.start == other.start && l.end == other.end
}

func (l Line) String() string {
	return fmt.Sprintf("Line(%s, %s)", l.start, l.end)
}

// IsConnectedWith reports whether the two lines share an endpoint.
func (l Line) IsConnectedWith(other Line) bool {
	return l.start == other.start || l.end == other.end ||
		l.end == other.start || l.start == other.end
}

// AngleTo returns the smaller angle, in [0, π], between two lines that share
// an endpoint.
func (l Line) AngleTo(other Line) (float64, error) {
	if !l.IsConnectedWith(other) {
		return 0, ErrNotConnected
	}
	return foldAngle(l.angle - other.angle), nil
}

// DeltaAngle measures the change of direction at the joint where l ends and
// other starts. Useful for finding abrupt turns.
func (l Line) DeltaAngle(other Line) (float64, error) {
	if l.end != other.start {
		return 0, ErrNotJoined
	}

	translated := NewLine(l.end, l.PointAtDistance(2*l.distance))
	return translated.AngleTo(other)
}

// PointAtDistance projects forward from start along the line's bearing.
func (l Line) PointAtDistance(distance float64) Point {
	return l.start.ApplyBearingAndDistance(l.angle, distance)
}

// SnapPoint projects point onto the line, splitting the start→point
// hypotenuse into components parallel and perpendicular to the line. The
// snap fails when the projection falls behind start or the perpendicular
// offset is not below maxDistance. When snapBeyond is set a projection past
// end by less than maxDistance snaps to end if point is also within
// maxDistance of end.
func (l Line) SnapPoint(point Point, maxDistance float64, snapBeyond bool) (LineSnap, bool) {
	hypotenuse := l.start.DistanceTo(point)

	// A query at start has no bearing of its own and lies along the line
	theta := foldAngle(l.angle - l.start.AngleToOr(point, l.angle))
	if theta > math.Pi/2 {
		return LineSnap{}, false
	}

	adjacent := math.Cos(theta) * hypotenuse
	opposite := math.Sin(theta) * hypotenuse
	if opposite >= maxDistance {
		return LineSnap{}, false
	}

	if adjacent >= 0 && adjacent <= l.distance {
		return LineSnap{
			Point:               l.PointAtDistance(adjacent),
			DistanceFromInitial: opposite,
			DistanceFromStart:   adjacent,
		}, true
	}

	if snapBeyond && adjacent > l.distance && adjacent-l.distance < maxDistance {
		opposite = point.DistanceTo(l.end)
		if opposite < maxDistance {
			return LineSnap{
				Point:               l.end,
				DistanceFromInitial: opposite,
				DistanceFromStart:   l.distance,
				SnappedBeyondEnd:    true,
			}, true
		}
	}

	return LineSnap{}, false
}

// ClosestPoint returns the point on the line closest to target, regardless
// of distance.
func (l Line) ClosestPoint(target Point) Point {
	snap, ok := l.SnapPoint(target, math.MaxFloat64, true)
	if !ok || target.DistanceTo(l.start) < snap.DistanceFromInitial {
		return l.start
	}
	return snap.Point
}

// foldAngle maps an angle onto [0, π].
func foldAngle(angle float64) float64 {
	angle = math.Mod(math.Abs(angle), 2*math.Pi)
	if angle > math.Pi {
		return 2*math.Pi - angle
	}
	return angle
}
