package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sfSunset = NewPointUnsafe(37.739323, -122.473586)
	sfTwinPk = NewPointUnsafe(37.749832, -122.453332)
)

// four points heading due east along the 35th parallel
var (
	eastA = NewPointUnsafe(35.0, -78.0)
	eastB = NewPointUnsafe(35.0, -77.99)
	eastC = NewPointUnsafe(35.0, -77.98)
	eastD = NewPointUnsafe(35.0, -77.97)
)

func mustPolyline(t *testing.T, points ...Point) *Polyline {
	t.Helper()
	p, err := NewPolyline(points...)
	require.NoError(t, err)
	return p
}

func TestNewPolyline(t *testing.T) {
	_, err := NewPolyline()
	assert.ErrorIs(t, err, ErrEmptyPolyline)

	p := mustPolyline(t, eastA, eastA, eastB, eastB, eastB, eastC, eastA)
	assert.Equal(t, []Point{eastA, eastB, eastC, eastA}, p.Points())

	single := mustPolyline(t, eastA, eastA)
	assert.Equal(t, 2, single.Len())
	require.Len(t, single.Lines(), 1)
	assert.Equal(t, 0.0, single.Distance())
	assert.Equal(t, eastA, single.First())
	assert.Equal(t, eastA, single.Last())
}

func TestPolylineFromPairsAndCoords(t *testing.T) {
	fromPairs, err := PolylineFromPairs([][2]float64{{35.0, -78.0}, {35.0, -77.99}})
	require.NoError(t, err)
	fromCoords, err := PolylineFromCoords([][2]float64{{-78.0, 35.0}, {-77.99, 35.0}})
	require.NoError(t, err)

	assert.True(t, fromPairs.Equal(fromCoords))
	assert.Equal(t, [][2]float64{{35.0, -78.0}, {35.0, -77.99}}, fromPairs.Pairs())
	assert.Equal(t, [][2]float64{{-78.0, 35.0}, {-77.99, 35.0}}, fromPairs.Coords())

	_, err = PolylineFromPairs([][2]float64{{35.0, -78.0}, {135.0, -77.99}})
	assert.ErrorIs(t, err, ErrInvalidCoordinate)
}

func TestPolyline_Distance(t *testing.T) {
	p := mustPolyline(t, sfSunset, sfTwinPk)
	assert.InDelta(t, 2130, p.Distance(), 1)

	p.Append(sfSunset)
	assert.InDelta(t, 4260, p.Distance(), 1)
	assert.Equal(t, 3, p.Len())
}

func TestPolyline_MutationsClearCaches(t *testing.T) {
	p := mustPolyline(t, eastA, eastB)
	assert.Len(t, p.Lines(), 1)
	assert.Equal(t, eastB.Lng(), p.Bounds().East)
	initial := p.Distance()

	p.Append(eastC)
	assert.Len(t, p.Lines(), 2)
	assert.Equal(t, eastC.Lng(), p.Bounds().East)
	assert.Greater(t, p.Distance(), initial)

	p.Prepend(NewPointUnsafe(34.99, -78.0))
	assert.Equal(t, 34.99, p.Bounds().South)
	assert.Len(t, p.Lines(), 3)

	require.NoError(t, p.Set(0, eastA))
	assert.Equal(t, []Point{eastA, eastB, eastC}, p.Points(), "setting a duplicate neighbour collapses it")
	assert.Equal(t, 35.0, p.Bounds().South)

	require.NoError(t, p.Insert(3, eastD))
	require.NoError(t, p.Insert(0, NewPointUnsafe(35.0, -78.01)))
	assert.Equal(t, 5, p.Len())
	assert.Equal(t, -78.01, p.Bounds().West)

	assert.ErrorIs(t, p.Set(5, eastA), ErrIndexOutOfRange)
	assert.ErrorIs(t, p.Insert(-1, eastA), ErrIndexOutOfRange)

	p.SetFirst(eastA)
	p.SetLast(eastC)
	assert.Equal(t, []Point{eastA, eastB, eastC}, p.Points())
}

func TestPolyline_Interpolate(t *testing.T) {
	p := mustPolyline(t, sfSunset, sfTwinPk)

	mid, err := p.Interpolate(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 37.7445779332, mid.Lat(), 1e-9)
	assert.InDelta(t, -122.4634597190, mid.Lng(), 1e-9)

	first, err := p.Interpolate(0)
	require.NoError(t, err)
	assert.Equal(t, sfSunset, first)

	last, err := p.Interpolate(1)
	require.NoError(t, err)
	assert.Equal(t, sfTwinPk, last)

	p.Append(sfSunset)
	back, err := p.Interpolate(0.75)
	require.NoError(t, err)
	assert.InDelta(t, mid.Lat(), back.Lat(), 1e-8)
	assert.InDelta(t, mid.Lng(), back.Lng(), 1e-8)

	for _, ratio := range []float64{-0.1, 1.1} {
		_, err := p.Interpolate(ratio)
		assert.ErrorIs(t, err, ErrRatioOutOfRange)
	}
}

func TestPolyline_InverseAndAdd(t *testing.T) {
	p := mustPolyline(t, eastA, eastB, eastC)

	inverse := p.Inverse()
	assert.Equal(t, []Point{eastC, eastB, eastA}, inverse.Points())
	assert.InDelta(t, p.Distance(), inverse.Distance(), 1e-9)

	combined := p.Add(mustPolyline(t, eastC, eastD))
	assert.Equal(t, []Point{eastA, eastB, eastC, eastD}, combined.Points())
	assert.Equal(t, 3, p.Len(), "add returns a new polyline")

	reversed := p.LinesReversed()
	require.Len(t, reversed, 2)
	assert.Equal(t, NewLine(eastC, eastB), reversed[0])
	assert.Equal(t, NewLine(eastB, eastA), reversed[1])

	assert.Len(t, p.Angles(), 1)
	assert.Nil(t, mustPolyline(t, eastA, eastB).Angles())
}

func TestPolyline_Copy(t *testing.T) {
	p := mustPolyline(t, eastA, eastB)
	cp := p.Copy()
	cp.Append(eastC)

	assert.Equal(t, 2, p.Len())
	assert.Equal(t, 3, cp.Len())
	assert.False(t, p.Equal(cp))
	assert.True(t, p.Equal(mustPolyline(t, eastA, eastB)))
}

func TestConcatPolylines(t *testing.T) {
	joined, err := ConcatPolylines(mustPolyline(t, eastA, eastB), mustPolyline(t, eastB, eastC), mustPolyline(t, eastC, eastD))
	require.NoError(t, err)
	assert.Equal(t, []Point{eastA, eastB, eastC, eastD}, joined.Points())

	_, err = ConcatPolylines()
	assert.ErrorIs(t, err, ErrEmptyPolyline)
}

func TestPolyline_Closest(t *testing.T) {
	p := mustPolyline(t, eastA, eastB, eastC)
	query := NewPointUnsafe(35.001, -77.985)

	vertex := p.ClosestVertex(NewPointUnsafe(35.001, -77.9849))
	assert.Equal(t, eastC, vertex)

	closest := p.ClosestPoint(query)
	assert.InDelta(t, 35.0, closest.Lat(), 1e-6)
	assert.InDelta(t, -77.985, closest.Lng(), 1e-9)
	assert.InDelta(t, 111.187, query.DistanceTo(closest), 1e-2)
}

func TestPolyline_Splice(t *testing.T) {
	ab := mustPolyline(t, eastA, eastB)
	bc := mustPolyline(t, eastB, eastC)
	want := []Point{eastA, eastB, eastC}

	tests := []struct {
		name  string
		left  *Polyline
		right *Polyline
		want  []Point
	}{
		{"last to first", ab, bc, want},
		{"first to last", bc, ab, want},
		{"first to first", bc, ab.Inverse(), want},
		{"last to last", ab, bc.Inverse(), want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spliced, err := tt.left.Splice(tt.right)
			require.NoError(t, err)
			assert.Equal(t, tt.want, spliced.Points())
		})
	}

	_, err := ab.Splice(mustPolyline(t, eastC, eastD))
	assert.ErrorIs(t, err, ErrEndpointsMismatch)
}

func TestPolyline_SpliceFuzzy(t *testing.T) {
	ab := mustPolyline(t, eastA, eastB)
	nearB := NewPointUnsafe(35.00001, -77.99)
	cd := mustPolyline(t, eastD, eastC, nearB)

	spliced := ab.SpliceFuzzy(cd)
	assert.Equal(t, []Point{eastA, eastB, nearB, eastC, eastD}, spliced.Points())
}

func TestBounds(t *testing.T) {
	b := BoundsAt(eastA)
	b.Expand(NewPointUnsafe(35.01, -77.99))
	b.Expand(NewPointUnsafe(34.99, -78.0))

	assert.Equal(t, Bounds{South: 34.99, West: -78.0, North: 35.01, East: -77.99}, b)
	assert.True(t, b.Contains(eastA))
	assert.True(t, b.Contains(NewPointUnsafe(35.01, -77.99)), "edges are inclusive")
	assert.False(t, b.Contains(eastC))
	assert.Equal(t, NewPointUnsafe(35.0, -77.995), b.Center())

	union := b.Union(BoundsAt(eastD))
	assert.Equal(t, eastD.Lng(), union.East)
	assert.Equal(t, 34.99, union.South)

	buffered := b.Buffer(100)
	assert.Less(t, buffered.South, b.South)
	assert.Greater(t, buffered.East, b.East)
	assert.InDelta(t, b.Height()+200, buffered.Height(), 1e-3)
}
