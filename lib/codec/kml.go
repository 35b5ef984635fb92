package codec

import (
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/twpayne/go-kml"

	"github.com/dpup/gcs/lib/geo"
)

// ErrMalformedCoordinates is returned for KML coordinates that are not lng,lat tuples.
var ErrMalformedCoordinates = errors.New("malformed KML coordinates")

// Placemark is a named polyline written as a KML LineString.
type Placemark struct {
	Name        string
	Description string
	Polyline    *geo.Polyline
}

func toKMLCoordinates(p *geo.Polyline) []kml.Coordinate {
	coords := make([]kml.Coordinate, p.Len())
	for i, c := range p.Coords() {
		coords[i] = kml.Coordinate{Lon: round(c[0]), Lat: round(c[1])}
	}
	return coords
}

// WriteKML writes placemarks as an indented KML document.
func WriteKML(w io.Writer, name string, placemarks ...Placemark) error {
	doc := kml.Document(kml.Name(name))
	for _, pm := range placemarks {
		children := []kml.Element{kml.Name(pm.Name)}
		if pm.Description != "" {
			children = append(children, kml.Description(pm.Description))
		}
		children = append(children, kml.LineString(kml.Coordinates(toKMLCoordinates(pm.Polyline)...)))
		doc.Add(kml.Placemark(children...))
	}
	return kml.KML(doc).WriteIndent(w, "", "  ")
}

type kmlFile struct {
	Document kmlContainer `xml:"Document"`
}

type kmlContainer struct {
	Folders    []kmlContainer `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Point       *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"Point"`
	LineString *struct {
		Coordinates string `xml:"coordinates"`
	} `xml:"LineString"`
}

// ReadKML parses the Point and LineString placemarks of a KML document,
// including those nested in folders. A Point becomes a polyline with a
// doubled point. Placemarks without geometry are skipped.
func ReadKML(r io.Reader) ([]Placemark, error) {
	var doc kmlFile
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse KML: %w", err)
	}

	var placemarks []Placemark
	var walk func(c kmlContainer) error
	walk = func(c kmlContainer) error {
		for _, folder := range c.Folders {
			if err := walk(folder); err != nil {
				return err
			}
		}
		for _, pm := range c.Placemarks {
			var coords string
			switch {
			case pm.LineString != nil:
				coords = pm.LineString.Coordinates
			case pm.Point != nil:
				coords = pm.Point.Coordinates
			default:
				continue
			}

			polyline, err := parseKMLCoordinates(coords)
			if err != nil {
				return fmt.Errorf("placemark %q: %w", pm.Name, err)
			}
			placemarks = append(placemarks, Placemark{
				Name:        strings.TrimSpace(pm.Name),
				Description: strings.TrimSpace(pm.Description),
				Polyline:    polyline,
			})
		}
		return nil
	}
	if err := walk(doc.Document); err != nil {
		return nil, err
	}
	return placemarks, nil
}

// parseKMLCoordinates reads whitespace separated "lng,lat[,alt]" tuples
func parseKMLCoordinates(s string) (*geo.Polyline, error) {
	var points []geo.Point
	for _, tuple := range strings.Fields(s) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: %q", ErrMalformedCoordinates, tuple)
		}
		lng, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedCoordinates, tuple)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrMalformedCoordinates, tuple)
		}
		point, err := geo.NewPoint(lat, lng)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}
	return geo.NewPolyline(points...)
}

var (
	htmlTags   = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)
)

// DescriptionText strips HTML tags and entities from the description
func (pm Placemark) DescriptionText() string {
	text := htmlTags.ReplaceAllString(pm.Description, " ")
	text = html.UnescapeString(text)
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}
