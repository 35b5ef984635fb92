package geo

import (
	"fmt"
	"math"
)

// DefaultSplitAngle is the turn, in radians, at which SplitAtAngle breaks a polyline.
var DefaultSplitAngle = 60 * math.Pi / 180

// minAngleSegment is the shortest segment, in meters, whose bearing is
// trusted when measuring turns.
const minAngleSegment = 1.0

// SplitAtAngle breaks the polyline wherever the turn between consecutive
// segments exceeds threshold radians. Neighbouring pieces share their joint,
// so concatenating the result rebuilds the polyline.
func (p *Polyline) SplitAtAngle(threshold float64) []*Polyline {
	if len(p.points) <= 2 {
		return []*Polyline{p.Copy()}
	}

	lines := p.Lines()
	runs := [][]Point{{lines[0].Start(), lines[0].End()}}

	for _, pair := range p.Angles() {
		a, b := pair[0], pair[1]
		turn, _ := a.AngleTo(b)
		if a.Distance() >= minAngleSegment && b.Distance() >= minAngleSegment && turn > threshold {
			runs = append(runs, []Point{b.Start(), b.End()})
		} else {
			runs[len(runs)-1] = append(runs[len(runs)-1], b.End())
		}
	}

	result := make([]*Polyline, len(runs))
	for i, run := range runs {
		result[i] = &Polyline{points: cleanPoints(run)}
	}
	return result
}

// SplitAt truncates the polyline after index and returns the remainder,
// which starts at the point at index.
func (p *Polyline) SplitAt(index int) (*Polyline, error) {
	if index < 0 || index >= len(p.points) {
		return nil, fmt.Errorf("split at %d of %d: %w", index, len(p.points), ErrIndexOutOfRange)
	}

	tail := &Polyline{points: cleanPoints(p.points[index:])}
	_ = p.setPoints(p.points[:index+1])
	return tail, nil
}

// SplitAtPoint splits the polyline at point, which need not be a vertex but
// must lie on a segment within threshold meters. The polyline keeps the head
// ending at point and the tail starting at point is returned. Nothing
// changes when point is not on the polyline.
func (p *Polyline) SplitAtPoint(point Point, threshold float64) (*Polyline, bool) {
	head := []Point{p.First()}
	var tail []Point

	for _, line := range p.Lines() {
		switch {
		case tail != nil:
			tail = append(tail, line.End())
		case point.IsBetween(line.Start(), line.End(), threshold):
			head = append(head, point)
			tail = []Point{point, line.End()}
		default:
			head = append(head, line.End())
		}
	}

	if tail == nil {
		return nil, false
	}
	_ = p.setPoints(head)
	return &Polyline{points: cleanPoints(tail)}, true
}
