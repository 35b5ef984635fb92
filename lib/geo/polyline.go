package geo

import (
	"fmt"
	"math"
	"strings"
)

// Polyline is an ordered sequence of points. Consecutive duplicates are
// dropped and a single distinct point is doubled, so every Polyline has at
// least one Line. Bounds, distance and lines are computed lazily and
// discarded together whenever the points change.
//
// A Polyline is not safe for concurrent use, even for reads, since reads
// fill the caches.
type Polyline struct {
	points []Point

	bounds   *Bounds
	distance *float64
	lines    []Line
}

// NewPolyline creates a Polyline from points.
func NewPolyline(points ...Point) (*Polyline, error) {
	p := &Polyline{}
	if err := p.setPoints(points); err != nil {
		return nil, err
	}
	return p, nil
}

// PolylineFromPairs creates a Polyline from (lat, lng) pairs.
func PolylineFromPairs(pairs [][2]float64) (*Polyline, error) {
	points := make([]Point, len(pairs))
	for i, pair := range pairs {
		point, err := PointFromPair(pair)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		points[i] = point
	}
	return NewPolyline(points...)
}

// PolylineFromCoords creates a Polyline from cartesian (x, y) = (lng, lat)
// coordinates.
func PolylineFromCoords(coords [][2]float64) (*Polyline, error) {
	points := make([]Point, len(coords))
	for i, c := range coords {
		point, err := PointFromCoords(c)
		if err != nil {
			return nil, fmt.Errorf("coordinate %d: %w", i, err)
		}
		points[i] = point
	}
	return NewPolyline(points...)
}

// ConcatPolylines joins the points of every polyline into one. Shared
// joints collapse because consecutive duplicates are dropped.
func ConcatPolylines(polys ...*Polyline) (*Polyline, error) {
	var points []Point
	for _, poly := range polys {
		points = append(points, poly.points...)
	}
	return NewPolyline(points...)
}

// cleanPoints drops consecutive duplicates and doubles a lone point.
func cleanPoints(points []Point) []Point {
	result := make([]Point, 0, len(points)+1)
	for i, point := range points {
		if i > 0 && point == points[i-1] {
			continue
		}
		result = append(result, point)
	}
	if len(result) == 1 {
		result = append(result, result[0])
	}
	return result
}

func (p *Polyline) setPoints(points []Point) error {
	if len(points) == 0 {
		return ErrEmptyPolyline
	}
	p.points = cleanPoints(points)
	p.markDirty()
	return nil
}

// markDirty discards every cached value derived from the points.
func (p *Polyline) markDirty() {
	p.bounds = nil
	p.distance = nil
	p.lines = nil
}

// Len is the number of points.
func (p *Polyline) Len() int { return len(p.points) }

// At returns the point at index i. It panics if i is out of range, like a slice.
func (p *Polyline) At(i int) Point { return p.points[i] }

// Points returns a copy of the points.
func (p *Polyline) Points() []Point {
	return append([]Point(nil), p.points...)
}

func (p *Polyline) First() Point { return p.points[0] }
func (p *Polyline) Last() Point  { return p.points[len(p.points)-1] }

// Set replaces the point at index i.
func (p *Polyline) Set(i int, point Point) error {
	if i < 0 || i >= len(p.points) {
		return fmt.Errorf("set point %d of %d: %w", i, len(p.points), ErrIndexOutOfRange)
	}
	points := p.Points()
	points[i] = point
	return p.setPoints(points)
}

func (p *Polyline) SetFirst(point Point) {
	_ = p.Set(0, point)
}

func (p *Polyline) SetLast(point Point) {
	_ = p.Set(len(p.points)-1, point)
}

// Append adds a point to the end.
func (p *Polyline) Append(point Point) {
	_ = p.setPoints(append(p.Points(), point))
}

// Prepend adds a point to the beginning.
func (p *Polyline) Prepend(point Point) {
	_ = p.setPoints(append([]Point{point}, p.points...))
}

// Insert places point before index i; i == Len() appends.
func (p *Polyline) Insert(i int, point Point) error {
	if i < 0 || i > len(p.points) {
		return fmt.Errorf("insert at %d of %d: %w", i, len(p.points), ErrIndexOutOfRange)
	}
	points := make([]Point, 0, len(p.points)+1)
	points = append(points, p.points[:i]...)
	points = append(points, point)
	points = append(points, p.points[i:]...)
	return p.setPoints(points)
}

// Bounds is the box covering every point.
func (p *Polyline) Bounds() Bounds {
	if p.bounds == nil {
		b := BoundsAt(p.points[0])
		for _, point := range p.points[1:] {
			b.Expand(point)
		}
		p.bounds = &b
	}
	return *p.bounds
}

// Lines returns the n-1 segments between consecutive points. The returned
// slice is shared with the cache and must not be modified.
func (p *Polyline) Lines() []Line {
	if p.lines == nil {
		lines := make([]Line, len(p.points)-1)
		for i := range lines {
			lines[i] = NewLine(p.points[i], p.points[i+1])
		}
		p.lines = lines
	}
	return p.lines
}

// Distance is the total length in meters.
func (p *Polyline) Distance() float64 {
	if p.distance == nil {
		total := 0.0
		for _, line := range p.Lines() {
			total += line.Distance()
		}
		p.distance = &total
	}
	return *p.distance
}

// Angles returns each pair of consecutive lines; n-2 pairs for n points.
func (p *Polyline) Angles() [][2]Line {
	lines := p.Lines()
	if len(lines) < 2 {
		return nil
	}
	angles := make([][2]Line, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		angles = append(angles, [2]Line{lines[i-1], lines[i]})
	}
	return angles
}

// LinesReversed returns the segments from last to first, each reversed.
func (p *Polyline) LinesReversed() []Line {
	lines := make([]Line, 0, len(p.points)-1)
	for i := len(p.points) - 1; i > 0; i-- {
		lines = append(lines, NewLine(p.points[i], p.points[i-1]))
	}
	return lines
}

// Coords returns (lng, lat) pairs for planar geometry libraries.
func (p *Polyline) Coords() [][2]float64 {
	coords := make([][2]float64, len(p.points))
	for i, point := range p.points {
		coords[i] = point.Coords()
	}
	return coords
}

// Pairs returns (lat, lng) pairs.
func (p *Polyline) Pairs() [][2]float64 {
	pairs := make([][2]float64, len(p.points))
	for i, point := range p.points {
		pairs[i] = point.Pair()
	}
	return pairs
}

// Copy returns an independent Polyline with the same points.
func (p *Polyline) Copy() *Polyline {
	return &Polyline{points: p.Points()}
}

// Inverse returns a new Polyline with the points reversed.
func (p *Polyline) Inverse() *Polyline {
	points := make([]Point, len(p.points))
	for i, point := range p.points {
		points[len(points)-1-i] = point
	}
	return &Polyline{points: points}
}

func (p *Polyline) Equal(other *Polyline) bool {
	if other == nil || len(p.points) != len(other.points) {
		return false
	}
	for i := range p.points {
		if p.points[i] != other.points[i] {
			return false
		}
	}
	return true
}

func (p *Polyline) String() string {
	parts := make([]string, len(p.points))
	for i, point := range p.points {
		parts[i] = point.String()
	}
	return "Polyline(" + strings.Join(parts, ",") + ")"
}

// Add returns a new Polyline of p followed by other, without repeating a
// shared joint.
func (p *Polyline) Add(other *Polyline) *Polyline {
	points := make([]Point, 0, len(p.points)+len(other.points))
	points = append(points, p.points...)
	points = append(points, other.points...)
	return &Polyline{points: cleanPoints(points)}
}

// Interpolate returns the point at ratio of the total distance along the
// polyline; 0 is the first point and 1 the last.
func (p *Polyline) Interpolate(ratio float64) (Point, error) {
	if !(ratio >= 0 && ratio <= 1) {
		return Point{}, ErrRatioOutOfRange
	}
	if ratio == 1 {
		return p.Last(), nil
	}

	remaining := p.Distance() * ratio
	for _, line := range p.Lines() {
		if remaining <= line.Distance() {
			return line.PointAtDistance(remaining), nil
		}
		remaining -= line.Distance()
	}
	return p.Last(), nil
}

// ClosestVertex returns the point of the polyline nearest to point.
func (p *Polyline) ClosestVertex(point Point) Point {
	best := p.points[0]
	bestDistance := math.Inf(1)
	for _, vertex := range p.points {
		if d := point.DistanceTo(vertex); d < bestDistance {
			best, bestDistance = vertex, d
		}
	}
	return best
}

// ClosestPoint returns the point anywhere on the polyline nearest to point,
// regardless of distance.
func (p *Polyline) ClosestPoint(point Point) Point {
	var best Point
	bestDistance := math.Inf(1)
	for _, line := range p.Lines() {
		candidate := line.ClosestPoint(point)
		if d := candidate.DistanceTo(point); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

// Splice joins other onto whichever end of p it shares an endpoint with,
// reversing other when needed. p's direction is preserved.
func (p *Polyline) Splice(other *Polyline) (*Polyline, error) {
	switch {
	case p.First() == other.Last():
		return other.Add(p), nil
	case p.Last() == other.First():
		return p.Add(other), nil
	case p.First() == other.First():
		return other.Inverse().Add(p), nil
	case p.Last() == other.Last():
		return p.Add(other.Inverse()), nil
	}
	return nil, ErrEndpointsMismatch
}

// SpliceFuzzy is Splice joining at the closest pair of endpoints.
func (p *Polyline) SpliceFuzzy(other *Polyline) *Polyline {
	pairings := []struct {
		left, right Point
		join        func() *Polyline
	}{
		{p.Last(), other.First(), func() *Polyline { return p.Add(other) }},
		{p.Last(), other.Last(), func() *Polyline { return p.Add(other.Inverse()) }},
		{p.First(), other.Last(), func() *Polyline { return other.Add(p) }},
		{p.First(), other.First(), func() *Polyline { return other.Inverse().Add(p) }},
	}

	best := 0
	closest := math.Inf(1)
	for i, pairing := range pairings {
		if d := pairing.left.DistanceTo(pairing.right); d < closest {
			best, closest = i, d
		}
	}
	return pairings[best].join()
}
