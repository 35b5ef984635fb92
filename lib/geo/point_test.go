package geo

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/golang/geo/s2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoint_Validation(t *testing.T) {
	tests := []struct {
		name    string
		lat     float64
		lng     float64
		wantErr bool
	}{
		{"valid", 38.0675, -120.5436, false},
		{"north pole", 90, 0, false},
		{"longitude past antimeridian", 10, 200, false},
		{"latitude too high", 90.5, 0, true},
		{"latitude too low", -91, 0, true},
		{"NaN latitude", math.NaN(), 0, true},
		{"infinite longitude", 0, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPoint(tt.lat, tt.lng)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCoordinate)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPoint_CanonicalEquality(t *testing.T) {
	a := NewPointUnsafe(35.786100, -78.662430)
	b := NewPointUnsafe(35.786100+1e-12, -78.662430-1e-12)
	c := NewPointUnsafe(35.786101, -78.662430)

	assert.Equal(t, a, b)
	assert.True(t, a.Equal(b))
	assert.NotEqual(t, a, c)

	seen := map[Point]int{a: 1}
	seen[b]++
	assert.Len(t, seen, 1)
	assert.Equal(t, 2, seen[a])
}

func TestPoint_PairAndCoords(t *testing.T) {
	p, err := PointFromPair([2]float64{37.5, -122.25})
	require.NoError(t, err)
	assert.Equal(t, [2]float64{37.5, -122.25}, p.Pair())
	assert.Equal(t, [2]float64{-122.25, 37.5}, p.Coords())
	assert.Equal(t, p.Lng(), p.X())
	assert.Equal(t, p.Lat(), p.Y())

	q, err := PointFromCoords(p.Coords())
	require.NoError(t, err)
	assert.Equal(t, p, q)

	assert.Equal(t, "Point(37.5000000000, -122.2500000000)", p.String())
}

func TestPoint_DistanceTo(t *testing.T) {
	// Highway 4: Angels Camp to Murphys
	angelsCamp := NewPointUnsafe(38.0675, -120.5436)
	murphys := NewPointUnsafe(38.1391, -120.4561)

	assert.Equal(t, 0.0, angelsCamp.DistanceTo(angelsCamp))
	assert.Equal(t, angelsCamp.DistanceTo(murphys), murphys.DistanceTo(angelsCamp))
	assert.InDelta(t, 11046, angelsCamp.DistanceTo(murphys), 100)

	// s2 works on the unit sphere
	want := s2.LatLngFromDegrees(38.0675, -120.5436).Distance(s2.LatLngFromDegrees(38.1391, -120.4561))
	assert.InDelta(t, want.Radians()*EarthRadius, angelsCamp.DistanceTo(murphys), 0.01)
}

func TestPoint_ApplyBearingAndDistance_RoundTrip(t *testing.T) {
	start := NewPointUnsafe(35.786100, -78.662430)

	for _, bearing := range []float64{0, math.Pi / 4, math.Pi, 3 * math.Pi / 2} {
		for _, distance := range []float64{0, 1, 1000, 5000} {
			end := start.ApplyBearingAndDistance(bearing, distance)
			assert.InDelta(t, distance, start.DistanceTo(end), 1e-3, "bearing %f distance %f", bearing, distance)
			if distance >= 1000 {
				assert.InDelta(t, bearing, start.AngleTo(end), 1e-6, "bearing %f distance %f", bearing, distance)
			}
		}
	}
}

func TestPoint_ApplyBearingAndDistance_Known(t *testing.T) {
	start := NewPointUnsafe(35.786100, -78.662430)
	end := NewPointUnsafe(35.788140, -78.669680)

	projected := start.ApplyBearingAndDistance(start.AngleTo(end), start.DistanceTo(end))
	assert.InDelta(t, end.Lat(), projected.Lat(), 1e-9)
	assert.InDelta(t, end.Lng(), projected.Lng(), 1e-9)
}

func TestPoint_AngleTo(t *testing.T) {
	origin := NewPointUnsafe(0, 0)

	assert.InDelta(t, 0, origin.AngleTo(NewPointUnsafe(1, 0)), 1e-9)
	assert.InDelta(t, math.Pi/2, origin.AngleTo(NewPointUnsafe(0, 1)), 1e-9)
	assert.InDelta(t, math.Pi, origin.AngleTo(NewPointUnsafe(-1, 0)), 1e-9)
	assert.InDelta(t, 3*math.Pi/2, origin.AngleTo(NewPointUnsafe(0, -1)), 1e-9)

	assert.Equal(t, 0.0, origin.AngleTo(origin))
	assert.Equal(t, 1.5, origin.AngleToOr(origin, 1.5))
}

func TestPoint_Buffer(t *testing.T) {
	p := NewPointUnsafe(35, 78)
	b := p.Buffer(5000)

	assert.InDelta(t, 10000, b.Height(), 1e-3)
	assert.InDelta(t, 10000, math.Min(b.NorthWidth(), b.SouthWidth()), 1e-3)
	assert.Greater(t, b.SouthWidth(), b.NorthWidth())
	assert.True(t, b.Contains(p))
	assert.Equal(t, p, b.Center())

	south := NewPointUnsafe(-35, 78).Buffer(5000)
	assert.InDelta(t, 10000, south.SouthWidth(), 1e-3)
	assert.Greater(t, south.NorthWidth(), south.SouthWidth())
}

func TestPoint_IsBetween(t *testing.T) {
	a := NewPointUnsafe(35.0, -78.0)
	b := NewPointUnsafe(35.0, -77.98)

	assert.True(t, a.IsBetween(a, b, 15))
	assert.True(t, b.IsBetween(a, b, 15))
	assert.True(t, NewPointUnsafe(35.0, -77.99).IsBetween(a, b, 15))
	assert.True(t, NewPointUnsafe(35.0001, -77.99).IsBetween(a, b, 15))
	assert.False(t, NewPointUnsafe(35.001, -77.99).IsBetween(a, b, 15))
	assert.False(t, NewPointUnsafe(35.0, -78.01).IsBetween(a, b, 15))
	assert.False(t, NewPointUnsafe(35.0, -77.97).IsBetween(a, b, 15))
}

func TestPoint_JSON(t *testing.T) {
	angelsCamp := NewPointUnsafe(38.0675, -120.5436)

	data, err := json.Marshal(angelsCamp)
	require.NoError(t, err)
	assert.Equal(t, "[38.0675,-120.5436]", string(data))

	var decoded Point
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, angelsCamp, decoded)

	data, err = json.Marshal(NewPointUnsafe(38.12345678, -120.98765432))
	require.NoError(t, err)
	assert.Equal(t, "[38.123457,-120.987654]", string(data))

	assert.ErrorIs(t, json.Unmarshal([]byte("[91,0]"), &decoded), ErrInvalidCoordinate)
	assert.ErrorIs(t, json.Unmarshal([]byte("[38.0675]"), &decoded), ErrInvalidCoordinate)
	assert.Error(t, json.Unmarshal([]byte(`{"lat":1}`), &decoded))
	assert.Equal(t, angelsCamp, decoded, "failed decodes leave the point alone")
}

func TestPolylineSnap_JSON(t *testing.T) {
	snap := PolylineSnap{Point: eastB, Index: 1, ExactSnap: true, PolylineDistance: 910.5}

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"point": [35, -77.99],
		"distance_from_initial": 0,
		"distance_from_index": 0,
		"index": 1,
		"exact_snap": true,
		"polyline_distance": 910.5
	}`, string(data))

	var decoded PolylineSnap
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, snap, decoded)
}
