package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolyline_SnapPoint(t *testing.T) {
	p := mustPolyline(t, eastA, eastB, eastC, eastD)
	opts := DefaultSnapOptions()

	t.Run("interior", func(t *testing.T) {
		snap, ok := p.SnapPoint(NewPointUnsafe(35.0001, -77.985), opts)
		require.True(t, ok)
		assert.Equal(t, 1, snap.Index)
		assert.False(t, snap.ExactSnap)
		assert.InDelta(t, 11.108, snap.DistanceFromInitial, 1e-3)
		assert.InDelta(t, 455.442, snap.DistanceFromIndex, 1e-3)
		assert.InDelta(t, 1366.326, snap.PolylineDistance, 1e-3)
		assert.InDelta(t, -77.985, snap.Point.Lng(), 1e-9)
	})

	t.Run("vertex", func(t *testing.T) {
		snap, ok := p.SnapPoint(eastB, opts)
		require.True(t, ok)
		assert.Equal(t, 1, snap.Index)
		assert.True(t, snap.ExactSnap)
		assert.Equal(t, eastB, snap.Point)
		assert.Equal(t, 0.0, snap.DistanceFromInitial)
		assert.InDelta(t, eastA.DistanceTo(eastB), snap.PolylineDistance, 1e-9)
	})

	t.Run("too far", func(t *testing.T) {
		_, ok := p.SnapPoint(NewPointUnsafe(35.001, -77.985), opts)
		assert.False(t, ok)
		_, ok = p.SnapPoint(NewPointUnsafe(36, -77.985), opts)
		assert.False(t, ok)
	})

	t.Run("beyond the last point", func(t *testing.T) {
		past := NewPointUnsafe(35.0, -77.9699)

		snap, ok := p.SnapPoint(past, opts)
		require.True(t, ok)
		assert.Equal(t, 3, snap.Index)
		assert.True(t, snap.ExactSnap)
		assert.Equal(t, eastD, snap.Point)
		assert.InDelta(t, p.Distance(), snap.PolylineDistance, 1e-6)

		opts := opts
		opts.SnapBeyond = false
		_, ok = p.SnapPoint(past, opts)
		assert.False(t, ok)
	})
}

func TestPolyline_SnapPointAll_DoublesBack(t *testing.T) {
	p := mustPolyline(t, eastA, eastB, eastC, eastB)

	snaps := p.SnapPointAll(NewPointUnsafe(35.0001, -77.985), DefaultSnapOptions())
	require.Len(t, snaps, 2)

	indexes := []int{snaps[0].Index, snaps[1].Index}
	assert.ElementsMatch(t, []int{1, 2}, indexes)
	assert.LessOrEqual(t, snaps[0].DistanceFromInitial, snaps[1].DistanceFromInitial)

	for _, snap := range snaps {
		if snap.Index == 2 {
			assert.InDelta(t, 2277.210, snap.PolylineDistance, 1e-3)
		}
	}

	vertexSnaps := p.SnapPointAll(eastB, DefaultSnapOptions())
	require.Len(t, vertexSnaps, 2)
	assert.Equal(t, 1, vertexSnaps[0].Index)
	assert.Equal(t, 3, vertexSnaps[1].Index)
}

func TestPolyline_Contains(t *testing.T) {
	p := mustPolyline(t, eastA, eastB, eastC, eastD)

	near := mustPolyline(t, NewPointUnsafe(35.0001, -77.995), NewPointUnsafe(34.9999, -77.985))
	assert.True(t, p.Contains(near, 15))
	assert.False(t, p.Contains(near, 5))

	away := mustPolyline(t, eastB, NewPointUnsafe(35.001, -77.985))
	assert.False(t, p.Contains(away, 15))
}
