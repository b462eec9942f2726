// Package mapview renders the station map of an event as a standalone
// Leaflet HTML page.
package mapview

import (
	"bytes"
	"errors"
	"fmt"
	"hash/fnv"
	"html"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// DefaultZoom matches the regional view used for a single event.
const DefaultZoom = 7

const (
	osmTiles          = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"
	osmAttribution    = `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`
	mapboxTiles       = "https://api.mapbox.com/styles/v1/mapbox/streets-v12/tiles/{z}/{x}/{y}?access_token="
	mapboxAttribution = `&copy; <a href="https://www.mapbox.com/about/maps/">Mapbox</a> &copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a>`
)

// Generator writes station maps into a directory. Generation is serialized so
// the delete-then-write sequence of concurrent requests never interleaves.
type Generator struct {
	dir         string
	tileURL     string
	attribution string
	mu          sync.Mutex
}

// Option configures a Generator.
type Option func(*Generator)

// WithMapboxTiles switches the base layer to Mapbox streets tiles.
func WithMapboxTiles(token string) Option {
	return func(g *Generator) {
		if token == "" {
			return
		}
		g.tileURL = mapboxTiles + token
		g.attribution = mapboxAttribution
	}
}

// NewGenerator creates a Generator writing into dir.
func NewGenerator(dir string, opts ...Option) *Generator {
	g := &Generator{
		dir:         dir,
		tileURL:     osmTiles,
		attribution: osmAttribution,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Artifact is a generated map: where it was written and the page itself.
// Callers serve Page rather than re-reading Path, which a later generation
// for the same event may already have replaced.
type Artifact struct {
	Path string
	Page []byte
}

// Path returns the artifact location for an event.
func (g *Generator) Path(eventID string) string {
	return filepath.Join(g.dir, fmt.Sprintf("station_map_%s.html", fileKey(eventID)))
}

// Generate removes any previous map for eventID and writes a fresh one.
// With no stations nothing is written and domain.ErrNotFound is returned.
func (g *Generator) Generate(eventID string, stations []domain.Station) (Artifact, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	path := g.Path(eventID)
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Artifact{}, fmt.Errorf("remove stale map: %w", err)
	}
	if len(stations) == 0 {
		return Artifact{}, fmt.Errorf("map for event %q: no stations: %w", eventID, domain.ErrNotFound)
	}

	var buf bytes.Buffer
	if err := g.Render(&buf, eventID, stations); err != nil {
		return Artifact{}, err
	}
	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("create map dir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil { //nolint:gosec // served as a public page
		return Artifact{}, fmt.Errorf("write map: %w", err)
	}
	return Artifact{Path: path, Page: buf.Bytes()}, nil
}

// Render writes the map page for stations to w without touching disk.
func (g *Generator) Render(w io.Writer, eventID string, stations []domain.Station) error {
	if len(stations) == 0 {
		return fmt.Errorf("map for event %q: no stations: %w", eventID, domain.ErrNotFound)
	}
	data := pageData{
		EventID:     eventID,
		CenterLat:   stations[0].Geo.Lat,
		CenterLon:   stations[0].Geo.Lon,
		Zoom:        DefaultZoom,
		TileURL:     g.tileURL,
		Attribution: g.attribution,
		GeneratedAt: domain.Now().UTC().Format(time.RFC3339),
	}
	for _, s := range stations {
		data.Markers = append(data.Markers, marker{
			Code:  s.Code,
			Lat:   s.Geo.Lat,
			Lon:   s.Geo.Lon,
			Popup: Popup(s),
		})
	}
	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render map: %w", err)
	}
	return nil
}

// Popup returns the marker popup markup for one station. Field values are
// HTML-escaped.
func Popup(s domain.Station) string {
	return fmt.Sprintf(
		"<b>Station Code:</b> %s<br><b>Location:</b> %v°N, %v°E<br><b>Province/District:</b> %s, %s",
		html.EscapeString(s.Code), s.Geo.Lat, s.Geo.Lon,
		html.EscapeString(s.Province), html.EscapeString(s.District),
	)
}

// fileKey keeps event ids safe for use in a file name. Ids that needed
// rewriting get a hash of the original appended, so "a/b" and "a_b" do not
// share a file.
func fileKey(id string) string {
	id = domain.NormalizeEventID(id)
	b := []byte(id)
	changed := false
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			b[i] = '_'
			changed = true
		}
	}
	if !changed {
		return id
	}
	h := fnv.New32a()
	h.Write([]byte(id)) //nolint:errcheck // hash writes never fail
	return fmt.Sprintf("%s-%08x", b, h.Sum32())
}

type marker struct {
	Code  string  `json:"code"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
	Popup string  `json:"popup"`
}

type pageData struct {
	EventID     string
	CenterLat   float64
	CenterLon   float64
	Zoom        int
	TileURL     string
	Attribution string
	GeneratedAt string
	Markers     []marker
}

var pageTmpl = template.Must(template.New("map").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<meta name="generated-at" content="{{.GeneratedAt}}">
<title>Stations for event {{.EventID}}</title>
<link rel="stylesheet" href="https://unpkg.com/leaflet@1.9.4/dist/leaflet.css">
<script src="https://unpkg.com/leaflet@1.9.4/dist/leaflet.js"></script>
<style>html, body, #map { height: 100%; margin: 0; }</style>
</head>
<body>
<div id="map"></div>
<script>
var map = L.map("map").setView([{{.CenterLat}}, {{.CenterLon}}], {{.Zoom}});
L.tileLayer({{.TileURL}}, {maxZoom: 18, attribution: {{.Attribution}}}).addTo(map);
var stations = {{.Markers}};
stations.forEach(function (s) {
  L.marker([s.lat, s.lon], {title: s.code}).bindPopup(s.popup).addTo(map);
});
</script>
</body>
</html>
`))
