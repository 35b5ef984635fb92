package geo

import "sort"

// SnapPointAll returns every snap of point onto the polyline within
// opts.MaxDistance, closest first. A point equal to a vertex only snaps to
// matching vertices. Every segment but the last may snap beyond its end since
// the next segment continues from there; the last only when opts.SnapBeyond.
func (p *Polyline) SnapPointAll(point Point, opts SnapOptions) []PolylineSnap {
	bounds := p.Bounds()
	if !bounds.Contains(point) && !bounds.Buffer(opts.MaxDistance).Contains(point) {
		return nil
	}

	lines := p.Lines()
	var snaps []PolylineSnap

	for i, vertex := range p.points {
		if vertex == point {
			snaps = append(snaps, PolylineSnap{Point: vertex, Index: i, ExactSnap: true})
		}
	}

	if len(snaps) == 0 {
		for i, line := range lines {
			snapBeyond := opts.SnapBeyond || i < len(lines)-1
			snap, ok := line.SnapPoint(point, opts.MaxDistance, snapBeyond)
			if !ok {
				continue
			}

			current := PolylineSnap{
				Point:               snap.Point,
				DistanceFromInitial: snap.DistanceFromInitial,
				Index:               i,
			}
			switch snap.Point {
			case line.Start():
				current.ExactSnap = true
			case line.End():
				current.Index = i + 1
				current.ExactSnap = true
			default:
				current.DistanceFromIndex = snap.DistanceFromStart
			}
			snaps = append(snaps, current)
		}
	}

	for i := range snaps {
		distance := snaps[i].DistanceFromIndex
		for _, line := range lines[:min(snaps[i].Index, len(lines))] {
			distance += line.Distance()
		}
		snaps[i].PolylineDistance = distance
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		return snaps[i].DistanceFromInitial < snaps[j].DistanceFromInitial
	})
	return snaps
}

// SnapPoint returns the closest snap of point onto the polyline.
func (p *Polyline) SnapPoint(point Point, opts SnapOptions) (PolylineSnap, bool) {
	snaps := p.SnapPointAll(point, opts)
	if len(snaps) == 0 {
		return PolylineSnap{}, false
	}
	return snaps[0], true
}

// Contains reports whether every point of other snaps onto p within
// maxDistance meters.
func (p *Polyline) Contains(other *Polyline, maxDistance float64) bool {
	opts := DefaultSnapOptions()
	opts.MaxDistance = maxDistance

	for _, point := range other.points {
		if _, ok := p.SnapPoint(point, opts); !ok {
			return false
		}
	}
	return true
}
