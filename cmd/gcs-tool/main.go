package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/dpup/gcs/internal/config"
	"github.com/dpup/gcs/internal/logging"
	"github.com/dpup/gcs/lib/codec"
	"github.com/dpup/gcs/lib/geo"
)

const examplePolyline = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

var errUsage = errors.New("usage")

// command is a sub-command. Handlers parse their own flags from args.
type command struct {
	name    string
	summary string
	run     func(env *env, args []string) error
}

var commands = []command{
	{"point-distance", "Distance and bearing between two points", runPointDistance},
	{"buffer", "Bounding box of a distance around a point", runBuffer},
	{"snap", "Snap a point onto a polyline", runSnap},
	{"interpolate", "Point at a fraction of a polyline's length", runInterpolate},
	{"split", "Split a polyline at sharp turns", runSplit},
	{"splice", "Join two polylines that share an endpoint", runSplice},
	{"subtract", "Sub-paths of one polyline not covered by another", runSubtract},
	{"decode-polyline", "Decode an encoded polyline", runDecodePolyline},
	{"export", "Export polylines as GeoJSON or KML", runExport},
	{"import", "Read polylines from a GeoJSON or KML file", runImport},
	{"match", "Match a point or trace against configured routes", runMatch},
}

// env carries what every handler needs
type env struct {
	stdout     io.Writer
	configPath string
	cfg        *config.Config
	logger     *zap.Logger
}

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	e := &env{stdout: os.Stdout}
	err := run(e, os.Args[1], os.Args[2:])
	if e.logger != nil {
		_ = e.logger.Sync()
	}

	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func run(e *env, name string, args []string) error {
	if name == "help" || name == "-h" || name == "--help" {
		printUsage(e.stdout)
		return nil
	}
	for _, c := range commands {
		if c.name == name {
			return c.run(e, args)
		}
	}
	fmt.Fprintf(e.stdout, "Unknown command: %s\n\n", name)
	printUsage(e.stdout)
	return errUsage
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "gcs-tool - geospatial polyline utilities")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  gcs-tool <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "  %-16s %s\n", "help", "Show this help")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Every command accepts --config <file.yaml>. Settings can also be")
	fmt.Fprintf(w, "overridden with %s prefixed environment variables, for example\n", config.EnvPrefix)
	fmt.Fprintln(w, "GCS_SNAP__MAX_DISTANCE_METERS=25.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Example:")
	fmt.Fprintf(w, "  gcs-tool decode-polyline --polyline %q\n", examplePolyline)
}

// newFlagSet registers the shared --config flag
func (e *env) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stdout)
	fs.StringVar(&e.configPath, "config", e.configPath, "Path to a YAML config file")
	return fs
}

// parse parses flags, then loads configuration and the logger
func (e *env) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}
	if e.cfg == nil {
		cfg, err := config.Load(e.configPath)
		if err != nil {
			return err
		}
		e.cfg = cfg
	}
	if e.logger == nil {
		logger, err := logging.New(e.cfg.Logging.Level, e.cfg.Logging.Development)
		if err != nil {
			return err
		}
		e.logger = logger
	}
	return nil
}

func decodeArg(flagName, encoded string) (*geo.Polyline, error) {
	if encoded == "" {
		return nil, fmt.Errorf("--%s is required: %w", flagName, errUsage)
	}
	p, err := codec.DecodePolyline(encoded)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flagName, err)
	}
	if p == nil {
		return nil, fmt.Errorf("--%s: %w", flagName, geo.ErrEmptyPolyline)
	}
	return p, nil
}

func pointArg(lat, lng float64) (geo.Point, error) {
	p, err := geo.NewPoint(lat, lng)
	if err != nil {
		return geo.Point{}, fmt.Errorf("(%f, %f): %w", lat, lng, err)
	}
	return p, nil
}
