// Package index keeps many polylines in an R-tree so that a point only needs
// to be snapped against the polylines whose bounds are nearby.
package index

import (
	"errors"
	"sort"
	"sync"

	"github.com/dhconnelly/rtreego"

	"github.com/dpup/gcs/lib/geo"
)

// rtreego rects never intersect along a zero-width edge
const rectPadding = 1e-9

var ErrEmptyID = errors.New("polyline id must not be empty")

// Match is a snap of a point onto an indexed polyline.
type Match struct {
	ID   string           `json:"id"`
	Snap geo.PolylineSnap `json:"snap"`
}

type entry struct {
	id       string
	polyline *geo.Polyline
	rect     rtreego.Rect
}

func (e *entry) Bounds() rtreego.Rect { return e.rect }

// Index is safe for concurrent use.
type Index struct {
	mu      sync.RWMutex
	tree    *rtreego.Rtree
	entries map[string]*entry
}

func New() *Index {
	return &Index{
		tree:    rtreego.NewTree(2, 25, 50),
		entries: make(map[string]*entry),
	}
}

func toRect(b geo.Bounds) rtreego.Rect {
	// x is longitude, y is latitude
	rect, _ := rtreego.NewRectFromPoints(
		rtreego.Point{b.West - rectPadding, b.South - rectPadding},
		rtreego.Point{b.East + rectPadding, b.North + rectPadding},
	)
	return rect
}

// Insert stores a copy of p under id, replacing any polyline already stored
// under that id.
func (ix *Index) Insert(id string, p *geo.Polyline) error {
	if id == "" {
		return ErrEmptyID
	}

	stored := p.Copy()
	// fill the caches now so that reads under the read lock never write
	stored.Lines()
	stored.Distance()
	e := &entry{id: id, polyline: stored, rect: toRect(stored.Bounds())}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if old, ok := ix.entries[id]; ok {
		ix.tree.Delete(old)
	}
	ix.entries[id] = e
	ix.tree.Insert(e)
	return nil
}

// Delete removes the polyline stored under id.
func (ix *Index) Delete(id string) bool {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	e, ok := ix.entries[id]
	if !ok {
		return false
	}
	delete(ix.entries, id)
	return ix.tree.Delete(e)
}

// Get returns a copy of the polyline stored under id.
func (ix *Index) Get(id string) (*geo.Polyline, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	e, ok := ix.entries[id]
	if !ok {
		return nil, false
	}
	return e.polyline.Copy(), true
}

func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// IDs returns every stored id in sorted order.
func (ix *Index) IDs() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ids := make([]string, 0, len(ix.entries))
	for id := range ix.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (ix *Index) search(point geo.Point, maxDistance float64) []*entry {
	results := ix.tree.SearchIntersect(toRect(point.Buffer(maxDistance)))
	entries := make([]*entry, 0, len(results))
	for _, r := range results {
		entries = append(entries, r.(*entry))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })
	return entries
}

// Candidates returns the ids, sorted, of polylines whose bounds come within
// maxDistance meters of point. A candidate is not guaranteed to snap.
func (ix *Index) Candidates(point geo.Point, maxDistance float64) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	entries := ix.search(point, maxDistance)
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.id
	}
	return ids
}

// SnapPoint snaps point onto every candidate polyline and returns the best
// snap for each polyline that accepts it, closest first.
func (ix *Index) SnapPoint(point geo.Point, opts geo.SnapOptions) []Match {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var matches []Match
	for _, e := range ix.search(point, opts.MaxDistance) {
		if snap, ok := e.polyline.SnapPoint(point, opts); ok {
			matches = append(matches, Match{ID: e.id, Snap: snap})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Snap.DistanceFromInitial < matches[j].Snap.DistanceFromInitial
	})
	return matches
}
