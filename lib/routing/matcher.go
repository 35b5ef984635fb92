package routing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dpup/gcs/internal/cache"
	"github.com/dpup/gcs/lib/geo"
	"github.com/dpup/gcs/lib/index"
)

const (
	// DefaultOnRouteThreshold is the distance in meters for OnRoute classification
	DefaultOnRouteThreshold = 25.0

	// DefaultMaxDistance is used for routes created without a MaxDistance (10 miles)
	DefaultMaxDistance = 16093.4

	// DefaultMatchCacheTTL is how long trace match results are reused
	DefaultMatchCacheTTL = 5 * time.Minute

	// reported when no route is close enough to measure
	unknownDistance = math.MaxFloat64
)

// Matcher classifies points and traces against a set of monitored routes.
// It is safe for concurrent use.
type Matcher struct {
	logger *zap.Logger

	index            *index.Index
	routeCache       map[string]Route
	cacheMutex       sync.RWMutex
	maxRouteDistance float64
	onRouteThreshold float64

	matchCache    *cache.Cache[TraceMatch]
	matchCacheTTL time.Duration
}

var _ RouteMatcher = (*Matcher)(nil)

// NewMatcher creates a Matcher with no routes. A nil logger disables logging.
func NewMatcher(logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{
		logger:           logger,
		index:            index.New(),
		routeCache:       make(map[string]Route),
		onRouteThreshold: DefaultOnRouteThreshold,
		matchCache:       cache.NewCache[TraceMatch](),
		matchCacheTTL:    DefaultMatchCacheTTL,
	}
}

// SetOnRouteThreshold allows configuration of the OnRoute distance threshold
func (m *Matcher) SetOnRouteThreshold(thresholdMeters float64) {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()
	m.onRouteThreshold = thresholdMeters
	m.matchCache.Clear()
}

// GetOnRouteThreshold returns the current OnRoute threshold
func (m *Matcher) GetOnRouteThreshold() float64 {
	m.cacheMutex.RLock()
	defer m.cacheMutex.RUnlock()
	return m.onRouteThreshold
}

// SetMatchCacheTTL sets how long MatchTrace results are reused; zero disables reuse.
func (m *Matcher) SetMatchCacheTTL(ttl time.Duration) {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()
	m.matchCacheTTL = ttl
	m.matchCache.Clear()
}

// StartCacheCleanup periodically drops expired trace matches until ctx is done.
func (m *Matcher) StartCacheCleanup(ctx context.Context, interval time.Duration) {
	m.matchCache.StartPeriodicCleanup(ctx, interval)
}

func validateRoute(route Route) error {
	if route.ID == "" || route.Polyline == nil {
		return ErrInvalidRoute
	}
	if route.Polyline.Len() == 2 && route.Polyline.First() == route.Polyline.Last() {
		return ErrInvalidRoute
	}
	return nil
}

// CacheRoute stores a copy of route, replacing any route with the same ID.
func (m *Matcher) CacheRoute(route Route) error {
	if err := validateRoute(route); err != nil {
		return fmt.Errorf("route %q: %w", route.ID, err)
	}

	route.Polyline = route.Polyline.Copy()
	// fill the caches now so that reads under the read lock never write
	route.Polyline.Bounds()
	route.Polyline.Distance()
	if route.MaxDistance <= 0 {
		route.MaxDistance = DefaultMaxDistance
	}

	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	if err := m.index.Insert(route.ID, route.Polyline); err != nil {
		return err
	}
	m.routeCache[route.ID] = route
	m.matchCache.DeleteSource(route.ID)
	m.updateMaxRouteDistance()

	m.logger.Debug("cached route",
		zap.String("route_id", route.ID),
		zap.Int("points", route.Polyline.Len()),
		zap.Float64("distance_m", route.Polyline.Distance()))
	return nil
}

// RemoveRoute drops a route from the matcher
func (m *Matcher) RemoveRoute(routeID string) bool {
	m.cacheMutex.Lock()
	defer m.cacheMutex.Unlock()

	if _, exists := m.routeCache[routeID]; !exists {
		return false
	}
	delete(m.routeCache, routeID)
	m.index.Delete(routeID)
	m.matchCache.DeleteSource(routeID)
	m.updateMaxRouteDistance()
	return true
}

func (m *Matcher) updateMaxRouteDistance() {
	m.maxRouteDistance = 0
	for _, route := range m.routeCache {
		m.maxRouteDistance = math.Max(m.maxRouteDistance, route.MaxDistance)
	}
}

// GetCachedRoute retrieves a route from the internal cache
func (m *Matcher) GetCachedRoute(routeID string) (Route, bool) {
	m.cacheMutex.RLock()
	defer m.cacheMutex.RUnlock()
	route, exists := m.routeCache[routeID]
	if exists {
		route.Polyline = route.Polyline.Copy()
	}
	return route, exists
}

// Routes returns every cached route ordered by ID
func (m *Matcher) Routes() []Route {
	m.cacheMutex.RLock()
	defer m.cacheMutex.RUnlock()

	routes := make([]Route, 0, len(m.routeCache))
	for _, route := range m.routeCache {
		route.Polyline = route.Polyline.Copy()
		routes = append(routes, route)
	}
	sort.Slice(routes, func(i, j int) bool { return routes[i].ID < routes[j].ID })
	return routes
}

// UpdateRouteGeometry updates the geometry of a cached route
func (m *Matcher) UpdateRouteGeometry(ctx context.Context, routeID string, newPolyline *geo.Polyline) error {
	route, exists := m.GetCachedRoute(routeID)
	if !exists {
		// Create a new route entry with the default threshold
		route = Route{ID: routeID}
	}
	route.Polyline = newPolyline
	return m.CacheRoute(route)
}

// distanceToRoute prefers a snap onto the route and falls back to the
// closest point for points that project off either end.
func distanceToRoute(point geo.Point, route Route) (float64, *geo.PolylineSnap) {
	opts := geo.SnapOptions{MaxDistance: route.MaxDistance, SnapBeyond: false}
	if snap, ok := route.Polyline.SnapPoint(point, opts); ok {
		return snap.DistanceFromInitial, &snap
	}
	return point.DistanceTo(route.Polyline.ClosestPoint(point)), nil
}

// ClassifyPoint classifies a single point against all cached routes
func (m *Matcher) ClassifyPoint(ctx context.Context, point geo.Point) (ClassifiedPoint, error) {
	if err := ctx.Err(); err != nil {
		return ClassifiedPoint{}, err
	}

	m.cacheMutex.RLock()
	defer m.cacheMutex.RUnlock()

	result := ClassifiedPoint{
		Point:           point,
		Classification:  Distant,
		RouteIDs:        []string{},
		DistanceToRoute: unknownDistance,
	}

	distances := make(map[string]float64)
	for _, id := range m.index.Candidates(point, m.maxRouteDistance) {
		route := m.routeCache[id]
		distance, snap := distanceToRoute(point, route)

		if distance <= route.MaxDistance {
			result.RouteIDs = append(result.RouteIDs, id)
			distances[id] = distance
		}
		if distance < result.DistanceToRoute {
			result.DistanceToRoute = distance
			result.Snap = snap
		}
	}

	sort.SliceStable(result.RouteIDs, func(i, j int) bool {
		return distances[result.RouteIDs[i]] < distances[result.RouteIDs[j]]
	})

	// Determine classification based on distance and threshold
	switch {
	case len(result.RouteIDs) == 0:
		result.Classification = Distant
	case result.DistanceToRoute <= m.onRouteThreshold:
		result.Classification = OnRoute
	default:
		result.Classification = Nearby
	}

	m.logger.Debug("classified point",
		zap.Stringer("point", point),
		zap.String("classification", string(result.Classification)),
		zap.Strings("route_ids", result.RouteIDs))
	return result, nil
}

// ClassifyPoints processes multiple points at once
func (m *Matcher) ClassifyPoints(ctx context.Context, points []geo.Point) ([]ClassifiedPoint, error) {
	classified := make([]ClassifiedPoint, 0, len(points))
	for _, point := range points {
		c, err := m.ClassifyPoint(ctx, point)
		if err != nil {
			return nil, err
		}
		classified = append(classified, c)
	}
	return classified, nil
}

// RoutesNear returns routes whose geometry comes within maxDistance meters of point
func (m *Matcher) RoutesNear(ctx context.Context, point geo.Point, maxDistance float64) ([]Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.cacheMutex.RLock()
	defer m.cacheMutex.RUnlock()

	var matchingRoutes []Route
	for _, id := range m.index.Candidates(point, maxDistance) {
		route := m.routeCache[id]
		if point.DistanceTo(route.Polyline.ClosestPoint(point)) <= maxDistance {
			route.Polyline = route.Polyline.Copy()
			matchingRoutes = append(matchingRoutes, route)
		}
	}
	return matchingRoutes, nil
}

func copyMatch(match TraceMatch) TraceMatch {
	divergences := make([]*geo.Polyline, len(match.Divergences))
	for i, d := range match.Divergences {
		divergences[i] = d.Copy()
	}
	match.Divergences = divergences
	return match
}

// MatchTrace matches a trace against one route, reporting how much of the
// trace follows the route and the parts that diverge from it.
func (m *Matcher) MatchTrace(ctx context.Context, routeID string, trace *geo.Polyline) (TraceMatch, error) {
	if trace == nil {
		return TraceMatch{}, geo.ErrEmptyPolyline
	}
	if err := ctx.Err(); err != nil {
		return TraceMatch{}, err
	}

	key := routeID + ":" + trace.String()
	if match, ok := m.matchCache.Get(key); ok {
		return copyMatch(match), nil
	}

	m.cacheMutex.RLock()
	route, exists := m.routeCache[routeID]
	threshold := m.onRouteThreshold
	ttl := m.matchCacheTTL
	m.cacheMutex.RUnlock()

	if !exists {
		return TraceMatch{}, fmt.Errorf("%w: %s", ErrRouteNotFound, routeID)
	}

	match, err := m.matchTrace(ctx, route, trace, threshold)
	if err != nil {
		return TraceMatch{}, err
	}

	if ttl > 0 {
		m.matchCache.Set(key, copyMatch(match), ttl, routeID)
	}

	m.logger.Debug("matched trace",
		zap.String("route_id", routeID),
		zap.String("classification", string(match.Classification)),
		zap.Float64("coverage", match.Coverage),
		zap.Int("divergences", len(match.Divergences)))
	return match, nil
}

func (m *Matcher) matchTrace(ctx context.Context, route Route, trace *geo.Polyline, threshold float64) (TraceMatch, error) {
	match := TraceMatch{RouteID: route.ID, Classification: Distant}
	opts := geo.SnapOptions{MaxDistance: threshold, SnapBeyond: true}

	points := trace.Points()
	var first, last *geo.PolylineSnap
	firstIndex, lastIndex := -1, -1
	snapped := 0
	for i, point := range points {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return TraceMatch{}, err
			}
		}

		snap, ok := route.Polyline.SnapPoint(point, opts)
		if !ok {
			continue
		}
		snapped++
		if first == nil {
			first, firstIndex = &snap, i
		}
		last, lastIndex = &snap, i
	}

	match.Coverage = float64(snapped) / float64(len(points))
	if first != nil {
		match.MatchedDistance = math.Abs(last.PolylineDistance - first.PolylineDistance)
	}

	// Subtraction needs a shared endpoint, so cut the route where the trace
	// starts or ends, running in the trace's direction.
	section := route.Polyline
	aligned := trace
	var approach *geo.Polyline
	if first != nil {
		if last.PolylineDistance < first.PolylineDistance {
			section = section.Inverse()
		} else {
			section = section.Copy()
		}
		aligned = trace.Copy()

		// Neither end is on the route: the approach up to the first snapped
		// point diverges on its own and the rest is matched from there.
		if firstIndex > 0 && lastIndex < len(points)-1 {
			approach, _ = geo.NewPolyline(points[:firstIndex+1]...)
			aligned, _ = geo.NewPolyline(points[firstIndex:]...)
			firstIndex = 0
		}

		switch {
		case firstIndex == 0:
			if tail, ok := section.SplitAtPoint(first.Point, threshold); ok {
				section = tail
			}
			aligned.SetFirst(first.Point)
		case lastIndex == len(points)-1:
			// the head stays in section
			section.SplitAtPoint(last.Point, threshold)
			aligned.SetLast(last.Point)
		}
	}
	match.Divergences = section.SubtractFrom(aligned, threshold)
	if approach != nil {
		match.Divergences = append([]*geo.Polyline{approach}, match.Divergences...)
	}

	switch {
	case snapped == len(points) && len(match.Divergences) == 0:
		match.Classification = OnRoute
	case snapped > 0:
		match.Classification = Nearby
	}
	return match, nil
}

// MatchTraceAll matches a trace against every route it touches, best coverage first.
func (m *Matcher) MatchTraceAll(ctx context.Context, trace *geo.Polyline) ([]TraceMatch, error) {
	var matches []TraceMatch
	for _, route := range m.Routes() {
		match, err := m.MatchTrace(ctx, route.ID, trace)
		if err != nil {
			return nil, err
		}
		if match.Coverage > 0 {
			matches = append(matches, match)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Coverage != matches[j].Coverage {
			return matches[i].Coverage > matches[j].Coverage
		}
		return matches[i].MatchedDistance > matches[j].MatchedDistance
	})
	return matches, nil
}
