package routing

import (
	"context"
	"errors"

	"github.com/dpup/gcs/lib/geo"
)

// Classification represents the relationship between a point and monitored routes
type Classification string

const (
	OnRoute Classification = "on_route" // within the on-route threshold of a route
	Nearby  Classification = "nearby"   // within a route's MaxDistance
	Distant Classification = "distant"  // beyond every route's MaxDistance
)

var (
	ErrRouteNotFound = errors.New("route not found")
	ErrInvalidRoute  = errors.New("route must have an id and at least 2 distinct points")
)

// Route represents a monitored route with geometry for matching
type Route struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Polyline    *geo.Polyline `json:"-"`
	MaxDistance float64       `json:"max_distance"` // Distance threshold for "nearby" classification (meters)
}

// ClassifiedPoint is a point after classification against every route
type ClassifiedPoint struct {
	Point           geo.Point      `json:"point"`
	Classification  Classification `json:"classification"`
	RouteIDs        []string       `json:"route_ids"`         // routes within their MaxDistance, closest first
	DistanceToRoute float64        `json:"distance_to_route"` // to the closest route, meters
	// Snap onto the closest route, if the point projects onto it
	Snap *geo.PolylineSnap `json:"snap,omitempty"`
}

// TraceMatch describes how a GPS trace lines up with a single route
type TraceMatch struct {
	RouteID        string         `json:"route_id"`
	Classification Classification `json:"classification"`
	// Fraction of trace points that snap onto the route within the on-route threshold
	Coverage float64 `json:"coverage"`
	// Along-route distance between the first and last snapped trace points
	MatchedDistance float64 `json:"matched_distance"`
	// Parts of the trace that do not follow the route, in trace order. A
	// trace that starts off the route begins with its approach.
	Divergences []*geo.Polyline `json:"-"`
}

// RouteMatcher matches points and traces against route geometry
type RouteMatcher interface {
	// Classify a single point against all routes
	ClassifyPoint(ctx context.Context, point geo.Point) (ClassifiedPoint, error)

	// Match a trace against one route
	MatchTrace(ctx context.Context, routeID string, trace *geo.Polyline) (TraceMatch, error)

	// Update route geometry when a new polyline is available
	UpdateRouteGeometry(ctx context.Context, routeID string, newPolyline *geo.Polyline) error
}

// NewMatcher is implemented in matcher.go
