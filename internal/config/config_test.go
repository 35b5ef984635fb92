package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpup/gcs/lib/arcdegree"
	"github.com/dpup/gcs/lib/geo"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gcs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	assert.Equal(t, geo.DefaultSnapOptions(), cfg.SnapOptions())
	assert.InDelta(t, geo.DefaultSplitAngle, cfg.SplitAngle(), 1e-12)
	assert.Equal(t, arcdegree.Spherical{}, cfg.ArcLengths())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
snap:
  max_distance_meters: 30
  snap_beyond: false
arc_model: wgs84
logging:
  level: debug
matcher:
  on_route_meters: 40
  cache_ttl: 1m
routes:
  - id: example
    name: Example Route
    polyline: "_p~iF~ps|U_ulLnnqC_mqNvxq`+"`@"+`"
    max_distance_meters: 500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 30.0, cfg.Snap.MaxDistanceMeters)
	assert.False(t, cfg.Snap.SnapBeyond)
	assert.Equal(t, 60.0, cfg.Split.AngleDegrees, "unset keys keep their defaults")
	assert.Equal(t, arcdegree.WGS84{}, cfg.ArcLengths())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 40.0, cfg.Matcher.OnRouteMeters)
	assert.Equal(t, time.Minute, cfg.Matcher.CacheTTL)

	require.Len(t, cfg.Routes, 1)
	route := cfg.Routes[0]
	assert.Equal(t, "example", route.ID)
	assert.Equal(t, 500.0, route.MaxDistanceMeters)

	polyline, err := route.DecodePolyline()
	require.NoError(t, err)
	assert.Equal(t, 3, polyline.Len())
	assert.Equal(t, geo.NewPointUnsafe(38.5, -120.2), polyline.First())
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GCS_SUBTRACT__MAX_DISTANCE_METERS", "22.5")
	t.Setenv("GCS_LOGGING__DEVELOPMENT", "true")

	path := writeConfig(t, "subtract:\n  max_distance_meters: 10\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 22.5, cfg.Subtract.MaxDistanceMeters, "environment overrides the file")
	assert.True(t, cfg.Logging.Development)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{"negative snap distance", "snap:\n  max_distance_meters: -1\n"},
		{"unknown arc model", "arc_model: flat\n"},
		{"unknown log level", "logging:\n  level: loud\n"},
		{"split angle too wide", "split:\n  angle_degrees: 270\n"},
		{"route without polyline", "routes:\n  - id: a\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.contents))
			require.Error(t, err)

			var validationErrs validator.ValidationErrors
			assert.ErrorAs(t, err, &validationErrs)
		})
	}
}

func TestValidate_DuplicateRoutes(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Routes = []MonitoredRoute{
		{ID: "a", Polyline: "_p~iF~ps|U_ulLnnqC"},
		{ID: "a", Polyline: "_p~iF~ps|U_ulLnnqC"},
	}
	assert.ErrorIs(t, cfg.Validate(), ErrDuplicateRoute)
}

func TestMonitoredRoute_DecodePolyline_Empty(t *testing.T) {
	route := MonitoredRoute{ID: "single", Polyline: "_p~iF~ps|U"}
	_, err := route.DecodePolyline()
	assert.ErrorIs(t, err, geo.ErrEmptyPolyline)
}

func TestLoad_Example(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"))
	require.NoError(t, err)
	require.Len(t, cfg.Routes, 2)

	for _, r := range cfg.Routes {
		p, err := r.DecodePolyline()
		require.NoError(t, err, r.ID)
		assert.Equal(t, 2, p.Len())
	}
	assert.Equal(t, geo.NewPointUnsafe(38.0675, -120.5436), mustDecode(t, cfg.Routes[0]).First())
}

func mustDecode(t *testing.T, r MonitoredRoute) *geo.Polyline {
	t.Helper()
	p, err := r.DecodePolyline()
	require.NoError(t, err)
	return p
}
