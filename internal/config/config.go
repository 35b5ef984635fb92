package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/dpup/gcs/lib/arcdegree"
	"github.com/dpup/gcs/lib/codec"
	"github.com/dpup/gcs/lib/geo"
)

// EnvPrefix is stripped from environment variables before they are mapped to
// config keys. GCS_SNAP__MAX_DISTANCE_METERS sets snap.max_distance_meters.
const EnvPrefix = "GCS_"

// Config represents the complete tool configuration
type Config struct {
	Snap     SnapConfig       `koanf:"snap"`
	Split    SplitConfig      `koanf:"split"`
	Subtract SubtractConfig   `koanf:"subtract"`
	ArcModel string           `koanf:"arc_model" validate:"oneof=spherical wgs84"`
	Logging  LoggingConfig    `koanf:"logging"`
	Matcher  MatcherConfig    `koanf:"matcher"`
	Routes   []MonitoredRoute `koanf:"routes" validate:"dive"`
}

// SnapConfig holds the default snapping tolerance
type SnapConfig struct {
	MaxDistanceMeters float64 `koanf:"max_distance_meters" validate:"gt=0"`
	SnapBeyond        bool    `koanf:"snap_beyond"`
}

// SplitConfig holds the turn angle used to split polylines
type SplitConfig struct {
	AngleDegrees float64 `koanf:"angle_degrees" validate:"gt=0,lte=180"`
}

// SubtractConfig holds the tolerance used when subtracting polylines
type SubtractConfig struct {
	MaxDistanceMeters float64 `koanf:"max_distance_meters" validate:"gt=0"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string `koanf:"level" validate:"oneof=debug info warn error"`
	Development bool   `koanf:"development"`
}

// MatcherConfig holds route matcher settings
type MatcherConfig struct {
	OnRouteMeters float64       `koanf:"on_route_meters" validate:"gt=0"`
	CacheTTL      time.Duration `koanf:"cache_ttl" validate:"gte=0"`
}

// MonitoredRoute represents a route to match traces against. Polyline is a
// Google encoded polyline.
type MonitoredRoute struct {
	ID                string  `koanf:"id" validate:"required"`
	Name              string  `koanf:"name"`
	Polyline          string  `koanf:"polyline" validate:"required"`
	MaxDistanceMeters float64 `koanf:"max_distance_meters" validate:"gte=0"`
}

// DecodePolyline decodes the route's encoded geometry
func (r MonitoredRoute) DecodePolyline() (*geo.Polyline, error) {
	p, err := codec.DecodePolyline(r.Polyline)
	if err != nil {
		return nil, fmt.Errorf("route %s: %w", r.ID, err)
	}
	if p == nil {
		return nil, fmt.Errorf("route %s: %w", r.ID, geo.ErrEmptyPolyline)
	}
	return p, nil
}

// SnapOptions converts the snap section to library options
func (c *Config) SnapOptions() geo.SnapOptions {
	return geo.SnapOptions{
		MaxDistance: c.Snap.MaxDistanceMeters,
		SnapBeyond:  c.Snap.SnapBeyond,
	}
}

// SplitAngle returns the split threshold in radians
func (c *Config) SplitAngle() float64 {
	return c.Split.AngleDegrees * math.Pi / 180
}

// ArcLengths returns the configured arc-degree model
func (c *Config) ArcLengths() geo.ArcLengths {
	model, ok := arcdegree.ByName(c.ArcModel)
	if !ok {
		return arcdegree.Spherical{}
	}
	return model
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Snap: SnapConfig{
			MaxDistanceMeters: 15,
			SnapBeyond:        true,
		},
		Split: SplitConfig{
			AngleDegrees: 60,
		},
		Subtract: SubtractConfig{
			MaxDistanceMeters: 15,
		},
		ArcModel: "spherical",
		Logging: LoggingConfig{
			Level: "info",
		},
		Matcher: MatcherConfig{
			OnRouteMeters: 25,
			CacheTTL:      5 * time.Minute,
		},
	}
}

func defaults() map[string]any {
	d := DefaultConfig()
	return map[string]any{
		"snap.max_distance_meters":     d.Snap.MaxDistanceMeters,
		"snap.snap_beyond":             d.Snap.SnapBeyond,
		"split.angle_degrees":          d.Split.AngleDegrees,
		"subtract.max_distance_meters": d.Subtract.MaxDistanceMeters,
		"arc_model":                    d.ArcModel,
		"logging.level":                d.Logging.Level,
		"logging.development":          d.Logging.Development,
		"matcher.on_route_meters":      d.Matcher.OnRouteMeters,
		"matcher.cache_ttl":            d.Matcher.CacheTTL.String(),
	}
}

// Load layers the defaults, an optional YAML file at path, and GCS_
// environment variables, then validates the result. An empty path skips the
// file; a path that does not exist is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps GCS_MATCHER__ON_ROUTE_METERS to matcher.on_route_meters
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Validate checks field constraints and that route ids are unique
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	seen := make(map[string]bool, len(c.Routes))
	for _, r := range c.Routes {
		if seen[r.ID] {
			return fmt.Errorf("invalid config: %w: %s", ErrDuplicateRoute, r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}

// ErrDuplicateRoute is returned when two routes share an id
var ErrDuplicateRoute = errors.New("duplicate route id")
