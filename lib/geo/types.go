package geo

// ArcLengths reports the physical length, in meters, of one degree of
// latitude and one degree of longitude at a given latitude.
type ArcLengths interface {
	LatLength(lat float64) float64
	LngLength(lat float64) float64
}

// LineSnap is the result of projecting a point onto a Line
type LineSnap struct {
	Point               Point   `json:"point"`
	DistanceFromInitial float64 `json:"distance_from_initial"` // perpendicular offset of the query point
	DistanceFromStart   float64 `json:"distance_from_start"`   // along the line from its start
	SnappedBeyondEnd    bool    `json:"snapped_beyond_end"`
}

// PolylineSnap is the result of projecting a point onto a Polyline
type PolylineSnap struct {
	Point               Point   `json:"point"`
	DistanceFromInitial float64 `json:"distance_from_initial"`
	DistanceFromIndex   float64 `json:"distance_from_index"` // along the segment starting at Index
	Index               int     `json:"index"`               // vertex index for exact snaps, segment index otherwise
	ExactSnap           bool    `json:"exact_snap"`
	PolylineDistance    float64 `json:"polyline_distance"` // along the whole polyline from its first point
}

// SnapOptions controls Polyline snapping
type SnapOptions struct {
	MaxDistance float64 `json:"max_distance"` // meters
	SnapBeyond  bool    `json:"snap_beyond"`  // allow snapping past the final point
}

// DefaultSnapOptions returns a 15 meter tolerance that allows snapping beyond the last point
func DefaultSnapOptions() SnapOptions {
	return SnapOptions{
		MaxDistance: 15.0,
		SnapBeyond:  true,
	}
}
