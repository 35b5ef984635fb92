package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/dpup/gcs/lib/codec"
	"github.com/dpup/gcs/lib/geo"
	"github.com/dpup/gcs/lib/routing"
)

func runPointDistance(e *env, args []string) error {
	fs := e.newFlagSet("point-distance")
	lat1 := fs.Float64("lat1", 0, "Latitude of first point")
	lng1 := fs.Float64("lng1", 0, "Longitude of first point")
	lat2 := fs.Float64("lat2", 0, "Latitude of second point")
	lng2 := fs.Float64("lng2", 0, "Longitude of second point")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	if *lat1 == 0 && *lng1 == 0 && *lat2 == 0 && *lng2 == 0 {
		fmt.Fprintln(e.stdout, "Example usage:")
		fmt.Fprintln(e.stdout, "  gcs-tool point-distance --lat1 38.0675 --lng1 -120.5436 --lat2 38.1391 --lng2 -120.4561")
		fmt.Fprintln(e.stdout, "  (Distance between Angels Camp and Murphys)")
		return errUsage
	}

	p1, err := pointArg(*lat1, *lng1)
	if err != nil {
		return err
	}
	p2, err := pointArg(*lat2, *lng2)
	if err != nil {
		return err
	}

	distance := p1.DistanceTo(p2)
	fmt.Fprintf(e.stdout, "Distance between points:\n")
	fmt.Fprintf(e.stdout, "  Point 1: %s\n", p1)
	fmt.Fprintf(e.stdout, "  Point 2: %s\n", p2)
	fmt.Fprintf(e.stdout, "  Distance: %.2f meters (%.2f km, %.2f miles)\n",
		distance, distance/1000, distance*0.000621371)
	fmt.Fprintf(e.stdout, "  Bearing: %.2f degrees\n", p1.AngleTo(p2)*180/math.Pi)
	return nil
}

func runBuffer(e *env, args []string) error {
	fs := e.newFlagSet("buffer")
	lat := fs.Float64("lat", 0, "Latitude of point")
	lng := fs.Float64("lng", 0, "Longitude of point")
	distance := fs.Float64("distance", 0, "Buffer distance in meters (defaults to the snap distance)")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	point, err := pointArg(*lat, *lng)
	if err != nil {
		return err
	}
	if *distance <= 0 {
		*distance = e.cfg.Snap.MaxDistanceMeters
	}

	bounds := point.BufferWith(e.cfg.ArcLengths(), *distance)
	fmt.Fprintf(e.stdout, "Buffer of %.2f meters around %s (%s model):\n", *distance, point, e.cfg.ArcModel)
	fmt.Fprintf(e.stdout, "  South-west: %s\n", bounds.SouthWest())
	fmt.Fprintf(e.stdout, "  North-east: %s\n", bounds.NorthEast())
	return nil
}

func runSnap(e *env, args []string) error {
	fs := e.newFlagSet("snap")
	lat := fs.Float64("lat", 0, "Latitude of point")
	lng := fs.Float64("lng", 0, "Longitude of point")
	encoded := fs.String("polyline", "", "Encoded polyline string")
	maxDistance := fs.Float64("max-distance", 0, "Snap tolerance in meters (defaults to config)")
	all := fs.Bool("all", false, "Report every segment within the tolerance")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	point, err := pointArg(*lat, *lng)
	if err != nil {
		return err
	}
	polyline, err := decodeArg("polyline", *encoded)
	if err != nil {
		return err
	}

	opts := e.cfg.SnapOptions()
	if *maxDistance > 0 {
		opts.MaxDistance = *maxDistance
	}

	snaps := polyline.SnapPointAll(point, opts)
	if !*all && len(snaps) > 0 {
		best, _ := polyline.SnapPoint(point, opts)
		snaps = []geo.PolylineSnap{best}
	}
	e.logger.Debug("snapped point",
		zap.Stringer("point", point),
		zap.Int("snaps", len(snaps)),
		zap.Float64("max_distance", opts.MaxDistance))

	if len(snaps) == 0 {
		fmt.Fprintf(e.stdout, "No snap within %.2f meters of %s\n", opts.MaxDistance, point)
		return nil
	}
	for _, s := range snaps {
		fmt.Fprintf(e.stdout, "Snap: %s\n", s.Point)
		fmt.Fprintf(e.stdout, "  Index: %d (exact: %t)\n", s.Index, s.ExactSnap)
		fmt.Fprintf(e.stdout, "  Offset: %.2f meters\n", s.DistanceFromInitial)
		fmt.Fprintf(e.stdout, "  Along segment: %.2f meters\n", s.DistanceFromIndex)
		fmt.Fprintf(e.stdout, "  Along polyline: %.2f of %.2f meters\n", s.PolylineDistance, polyline.Distance())
	}
	return nil
}

func runInterpolate(e *env, args []string) error {
	fs := e.newFlagSet("interpolate")
	encoded := fs.String("polyline", "", "Encoded polyline string")
	ratio := fs.Float64("ratio", 0.5, "Fraction of the polyline's length, in [0, 1]")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	polyline, err := decodeArg("polyline", *encoded)
	if err != nil {
		return err
	}
	point, err := polyline.Interpolate(*ratio)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Point at %.2f%% of %.2f meters: %s\n", *ratio*100, polyline.Distance(), point)
	return nil
}

func runSplit(e *env, args []string) error {
	fs := e.newFlagSet("split")
	encoded := fs.String("polyline", "", "Encoded polyline string")
	angle := fs.Float64("angle", 0, "Turn angle in degrees (defaults to config)")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	polyline, err := decodeArg("polyline", *encoded)
	if err != nil {
		return err
	}
	threshold := e.cfg.SplitAngle()
	if *angle > 0 {
		threshold = *angle * math.Pi / 180
	}

	pieces := polyline.SplitAtAngle(threshold)
	fmt.Fprintf(e.stdout, "Split into %d polylines:\n", len(pieces))
	for i, piece := range pieces {
		fmt.Fprintf(e.stdout, "  %d: %d points, %.2f meters, %s\n",
			i+1, piece.Len(), piece.Distance(), codec.EncodePolyline(piece))
	}
	return nil
}

func runSplice(e *env, args []string) error {
	fs := e.newFlagSet("splice")
	first := fs.String("polyline", "", "Encoded polyline string")
	second := fs.String("with", "", "Encoded polyline sharing an endpoint with --polyline")
	fuzzy := fs.Bool("fuzzy", false, "Join the closest endpoints even when they differ")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	a, err := decodeArg("polyline", *first)
	if err != nil {
		return err
	}
	b, err := decodeArg("with", *second)
	if err != nil {
		return err
	}

	var joined *geo.Polyline
	if *fuzzy {
		joined = a.SpliceFuzzy(b)
	} else if joined, err = a.Splice(b); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Spliced polyline: %d points, %.2f meters\n", joined.Len(), joined.Distance())
	fmt.Fprintf(e.stdout, "  %s\n", codec.EncodePolyline(joined))
	return nil
}

func runSubtract(e *env, args []string) error {
	fs := e.newFlagSet("subtract")
	encoded := fs.String("polyline", "", "Encoded polyline to subtract")
	from := fs.String("from", "", "Encoded polyline to subtract from")
	maxDistance := fs.Float64("max-distance", 0, "Tolerance in meters (defaults to config)")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	self, err := decodeArg("polyline", *encoded)
	if err != nil {
		return err
	}
	other, err := decodeArg("from", *from)
	if err != nil {
		return err
	}
	threshold := e.cfg.Subtract.MaxDistanceMeters
	if *maxDistance > 0 {
		threshold = *maxDistance
	}

	remaining := self.SubtractFrom(other, threshold)
	fmt.Fprintf(e.stdout, "%d uncovered sub-paths:\n", len(remaining))
	for i, p := range remaining {
		fmt.Fprintf(e.stdout, "  %d: %s to %s, %.2f meters, %s\n",
			i+1, p.First(), p.Last(), p.Distance(), codec.EncodePolyline(p))
	}
	return nil
}

func runDecodePolyline(e *env, args []string) error {
	fs := e.newFlagSet("decode-polyline")
	encoded := fs.String("polyline", "", "Encoded polyline string to decode")
	verbose := fs.Bool("verbose", false, "Show all decoded points")
	asJSON := fs.Bool("json", false, "Print the points as a JSON coordinate array")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	if *encoded == "" {
		fmt.Fprintln(e.stdout, "Example usage:")
		fmt.Fprintf(e.stdout, "  gcs-tool decode-polyline --polyline %q\n", examplePolyline)
		fmt.Fprintf(e.stdout, "  gcs-tool decode-polyline --polyline %q --verbose\n", examplePolyline)
		return errUsage
	}

	points, err := codec.DecodePoints(*encoded)
	if err != nil {
		return err
	}

	if *asJSON {
		polyline, err := geo.NewPolyline(points...)
		if err != nil {
			return err
		}
		data, err := codec.MarshalGeometry(polyline)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, string(data))
		return nil
	}

	fmt.Fprintf(e.stdout, "Polyline decoded successfully:\n")
	fmt.Fprintf(e.stdout, "  Points: %d\n", len(points))
	if len(points) == 0 {
		return nil
	}
	fmt.Fprintf(e.stdout, "  Start: %s\n", points[0])
	fmt.Fprintf(e.stdout, "  End: %s\n", points[len(points)-1])

	if polyline, err := geo.NewPolyline(points...); err == nil {
		fmt.Fprintf(e.stdout, "  Length: %.2f meters\n", polyline.Distance())
		b := polyline.Bounds()
		fmt.Fprintf(e.stdout, "  Bounds: %s\n", b)
	}

	if *verbose {
		fmt.Fprintf(e.stdout, "  All points:\n")
		for i, p := range points {
			fmt.Fprintf(e.stdout, "    %d: %s\n", i, p)
		}
	}
	return nil
}

func runExport(e *env, args []string) error {
	fs := e.newFlagSet("export")
	format := fs.String("format", "geojson", "Output format: geojson or kml")
	name := fs.String("name", "gcs-tool export", "Document name (kml)")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		fmt.Fprintln(e.stdout, "Example usage:")
		fmt.Fprintf(e.stdout, "  gcs-tool export --format kml %q\n", examplePolyline)
		return errUsage
	}

	polylines := make([]*geo.Polyline, 0, fs.NArg())
	for i, encoded := range fs.Args() {
		p, err := decodeArg(fmt.Sprintf("polyline %d", i+1), encoded)
		if err != nil {
			return err
		}
		polylines = append(polylines, p)
	}

	switch strings.ToLower(*format) {
	case "geojson":
		props := make([]map[string]any, len(polylines))
		for i, p := range polylines {
			props[i] = map[string]any{"index": i, "distance_meters": math.Round(p.Distance()*100) / 100}
		}
		data, err := codec.MarshalFeatureCollection(polylines, props)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, string(data))
		return nil
	case "kml":
		placemarks := make([]codec.Placemark, len(polylines))
		for i, p := range polylines {
			placemarks[i] = codec.Placemark{
				Name:        fmt.Sprintf("Polyline %d", i+1),
				Description: fmt.Sprintf("%.2f meters", p.Distance()),
				Polyline:    p,
			}
		}
		return codec.WriteKML(e.stdout, *name, placemarks...)
	default:
		return fmt.Errorf("unknown format %q: %w", *format, errUsage)
	}
}

func runImport(e *env, args []string) error {
	fs := e.newFlagSet("import")
	format := fs.String("format", "", "Input format: geojson or kml (defaults to the file extension)")
	if err := e.parse(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(e.stdout, "Example usage:")
		fmt.Fprintln(e.stdout, "  gcs-tool import closures.kml")
		return errUsage
	}

	path := fs.Arg(0)
	if *format == "" {
		*format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var placemarks []codec.Placemark
	switch *format {
	case "kml":
		if placemarks, err = codec.ReadKML(f); err != nil {
			return err
		}
	case "geojson", "json":
		data, err := io.ReadAll(f)
		if err != nil {
			return err
		}
		polylines, err := codec.UnmarshalFeatureCollection(data)
		if err != nil {
			return err
		}
		for i, p := range polylines {
			placemarks = append(placemarks, codec.Placemark{Name: fmt.Sprintf("Feature %d", i+1), Polyline: p})
		}
	default:
		return fmt.Errorf("unknown format %q: %w", *format, errUsage)
	}

	e.logger.Debug("imported placemarks", zap.String("path", path), zap.Int("count", len(placemarks)))
	fmt.Fprintf(e.stdout, "%d polylines:\n", len(placemarks))
	for _, pm := range placemarks {
		fmt.Fprintf(e.stdout, "  %s: %d points, %.2f meters, %s\n",
			pm.Name, pm.Polyline.Len(), pm.Polyline.Distance(), codec.EncodePolyline(pm.Polyline))
		if text := pm.DescriptionText(); text != "" {
			fmt.Fprintf(e.stdout, "    %s\n", text)
		}
	}
	return nil
}

func runMatch(e *env, args []string) error {
	fs := e.newFlagSet("match")
	lat := fs.Float64("lat", 0, "Latitude of point to classify")
	lng := fs.Float64("lng", 0, "Longitude of point to classify")
	trace := fs.String("trace", "", "Encoded GPS trace to match instead of a point")
	if err := e.parse(fs, args); err != nil {
		return err
	}

	if len(e.cfg.Routes) == 0 {
		return fmt.Errorf("no routes configured: %w", errUsage)
	}

	matcher := routing.NewMatcher(e.logger)
	matcher.SetOnRouteThreshold(e.cfg.Matcher.OnRouteMeters)
	matcher.SetMatchCacheTTL(e.cfg.Matcher.CacheTTL)
	for _, r := range e.cfg.Routes {
		polyline, err := r.DecodePolyline()
		if err != nil {
			return err
		}
		if err := matcher.CacheRoute(routing.Route{
			ID:          r.ID,
			Name:        r.Name,
			Polyline:    polyline,
			MaxDistance: r.MaxDistanceMeters,
		}); err != nil {
			return err
		}
	}

	ctx := context.Background()
	if *trace != "" {
		polyline, err := decodeArg("trace", *trace)
		if err != nil {
			return err
		}
		matches, err := matcher.MatchTraceAll(ctx, polyline)
		if err != nil {
			return err
		}
		return writeJSON(e, traceMatchesJSON(matches))
	}

	point, err := pointArg(*lat, *lng)
	if err != nil {
		return err
	}
	classified, err := matcher.ClassifyPoint(ctx, point)
	if err != nil {
		return err
	}
	return writeJSON(e, classified)
}

type traceMatchJSON struct {
	routing.TraceMatch
	Divergences []string `json:"divergences"`
}

func traceMatchesJSON(matches []routing.TraceMatch) []traceMatchJSON {
	out := make([]traceMatchJSON, len(matches))
	for i, m := range matches {
		out[i] = traceMatchJSON{TraceMatch: m, Divergences: []string{}}
		for _, d := range m.Divergences {
			out[i].Divergences = append(out[i].Divergences, codec.EncodePolyline(d))
		}
	}
	return out
}

func writeJSON(e *env, v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
