package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolyline_SplitAtAngle(t *testing.T) {
	north1 := NewPointUnsafe(35.01, -77.99)
	north2 := NewPointUnsafe(35.02, -77.99)
	p := mustPolyline(t, eastA, eastB, north1, north2)

	pieces := p.SplitAtAngle(DefaultSplitAngle)
	require.Len(t, pieces, 2)
	assert.Equal(t, []Point{eastA, eastB}, pieces[0].Points())
	assert.Equal(t, []Point{eastB, north1, north2}, pieces[1].Points())

	total := 0.0
	for _, piece := range pieces {
		total += piece.Distance()
	}
	assert.InDelta(t, p.Distance(), total, 1e-6)

	joined, err := ConcatPolylines(pieces...)
	require.NoError(t, err)
	assert.True(t, p.Equal(joined))

	assert.Len(t, p.SplitAtAngle(math.Pi), 1)
}

func TestPolyline_SplitAtAngle_IgnoresShortSegments(t *testing.T) {
	// a half meter jog north is GPS noise, not a turn
	jog := NewPointUnsafe(35.000005, -77.99)
	p := mustPolyline(t, eastA, eastB, jog, eastC)

	pieces := p.SplitAtAngle(DefaultSplitAngle)
	require.Len(t, pieces, 1)
	assert.True(t, p.Equal(pieces[0]))
}

func TestPolyline_SplitAtAngle_Short(t *testing.T) {
	p := mustPolyline(t, eastA, eastB)
	pieces := p.SplitAtAngle(DefaultSplitAngle)
	require.Len(t, pieces, 1)
	assert.True(t, p.Equal(pieces[0]))
	assert.NotSame(t, p, pieces[0])
}

func TestPolyline_SplitAt(t *testing.T) {
	p := mustPolyline(t, eastA, eastB, eastC, eastD)

	tail, err := p.SplitAt(1)
	require.NoError(t, err)
	assert.Equal(t, []Point{eastA, eastB}, p.Points())
	assert.Equal(t, []Point{eastB, eastC, eastD}, tail.Points())
	assert.InDelta(t, eastA.DistanceTo(eastB), p.Distance(), 1e-9)

	_, err = p.SplitAt(2)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestPolyline_SplitAtPoint(t *testing.T) {
	mid := NewPointUnsafe(35.0, -77.985)
	p := mustPolyline(t, eastA, eastB, eastC, eastD)

	tail, ok := p.SplitAtPoint(mid, 15)
	require.True(t, ok)
	assert.Equal(t, []Point{eastA, eastB, mid}, p.Points())
	assert.Equal(t, []Point{mid, eastC, eastD}, tail.Points())

	unchanged := mustPolyline(t, eastA, eastB, eastC, eastD)
	_, ok = unchanged.SplitAtPoint(NewPointUnsafe(35.01, -77.985), 15)
	assert.False(t, ok)
	assert.Equal(t, 4, unchanged.Len())
}
