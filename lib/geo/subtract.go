package geo

// SubtractFrom returns the parts of other that do not lie along p, each as
// a Polyline running in other's direction from the last shared point,
// through the divergent points, to where other rejoins p.
//
// Both polylines must share an endpoint; otherwise other is returned
// unchanged as the only element. An empty result means other lies entirely
// along p within maxDistance meters.
//
// The walk starts at the shared endpoint and advances through both point
// sequences together. When the next points differ, whichever is closer to
// the current point is accepted if it lies between the current point and the
// other sequence's next point. Otherwise the paths have diverged: the
// remaining points of p are scanned until one snaps onto the rest of other,
// and the points of other passed over on the way form a divergent sub-path.
func (p *Polyline) SubtractFrom(other *Polyline, maxDistance float64) []*Polyline {
	selfPoints := p.Points()
	otherPoints := other.Points()
	otherReversed := false

	switch {
	case p.First() == other.First():
	case p.Last() == other.Last():
		reversePoints(selfPoints)
		reversePoints(otherPoints)
		otherReversed = true
	case p.First() == other.Last():
		reversePoints(otherPoints)
		otherReversed = true
	case p.Last() == other.First():
		reversePoints(selfPoints)
	default:
		return []*Polyline{other.Copy()}
	}

	opts := SnapOptions{MaxDistance: maxDistance, SnapBeyond: false}

	var result [][]Point
	var path []Point

	cur := selfPoints[0]
	selfI, otherI := 1, 1
	broken := false

	for otherI < len(otherPoints) {
		if selfI >= len(selfPoints) {
			// p is exhausted, the rest of other is divergent
			if !broken {
				path = []Point{cur}
			}
			path = append(path, otherPoints[otherI:]...)
			result = append(result, path)
			broken = false
			break
		}

		selfNext := selfPoints[selfI]
		otherNext := otherPoints[otherI]

		if broken {
			remaining := &Polyline{points: cleanPoints(otherPoints[otherI-1:])}
			snap, ok := remaining.SnapPoint(selfNext, opts)
			selfI++
			if !ok {
				continue
			}

			// index into otherPoints of the vertex at or before the rejoin
			rejoin := snap.Index + otherI - 1
			for otherI < rejoin {
				path = append(path, otherPoints[otherI])
				otherI++
			}
			if otherI == rejoin && !snap.ExactSnap {
				path = append(path, otherPoints[otherI])
			}
			if otherI == rejoin {
				otherI++
			}

			if snap.Point != cur || len(path) > 1 {
				path = append(path, snap.Point)
				result = append(result, path)
			}
			cur = snap.Point
			path = nil
			broken = false
			continue
		}

		if selfNext == otherNext {
			cur = selfNext
			selfI++
			otherI++
			continue
		}

		closest, farthest := selfNext, otherNext
		if cur.DistanceTo(otherNext) < cur.DistanceTo(selfNext) {
			closest, farthest = otherNext, selfNext
		}

		if !closest.IsBetween(cur, farthest, maxDistance) {
			broken = true
			path = []Point{cur}
			continue
		}

		cur = closest
		if closest == otherNext {
			otherI++
		} else {
			selfI++
		}
	}

	if otherReversed {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
		for _, path := range result {
			reversePoints(path)
		}
	}

	polylines := make([]*Polyline, 0, len(result))
	for _, path := range result {
		polylines = append(polylines, &Polyline{points: cleanPoints(path)})
	}
	return polylines
}

func reversePoints(points []Point) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}
