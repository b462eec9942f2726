// Package catalog reads the event, station and feature-description resources
// that accompany the signal files.
package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// row is one CSV record keyed by header name.
type row struct {
	fields map[string]string
}

func (r row) get(col string) string {
	return r.fields[col]
}

// float parses a numeric column, returning 0 for blank or malformed cells.
func (r row) float(col string) float64 {
	v, err := strconv.ParseFloat(r.get(col), 64)
	if err != nil {
		return 0
	}
	return v
}

// readRows parses a header-keyed CSV. Every cell is whitespace-trimmed and a
// leading UTF-8 BOM on the header is dropped.
func readRows(r io.Reader) ([]row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("no data rows: %w", domain.ErrEmptyInput)
	}

	header := all[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	rows := make([]row, 0, len(all)-1)
	for _, rec := range all[1:] {
		fields := make(map[string]string, len(header))
		for j, h := range header {
			if j < len(rec) {
				fields[strings.TrimSpace(h)] = strings.TrimSpace(rec[j])
			}
		}
		rows = append(rows, row{fields: fields})
	}
	return rows, nil
}

// openResource opens path, mapping absence to domain.ErrMissingResource.
func openResource(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMissingResource, err)
	}
	return f, nil
}

// ReadEvents parses events.csv content.
func ReadEvents(r io.Reader) ([]domain.Event, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	events := make([]domain.Event, 0, len(rows))
	for _, rw := range rows {
		id := domain.NormalizeEventID(rw.get("EventID"))
		if id == "" {
			continue
		}
		events = append(events, domain.Event{
			ID:         id,
			Date:       rw.get("Date"),
			Time:       rw.get("Time"),
			OccurredAt: domain.ParseEventTime(rw.get("Date"), rw.get("Time")),
			Geo:        domain.Geo{Lat: rw.float("Latitude"), Lon: rw.float("Longitude")},
			Magnitude:  rw.float("Magnitude"),
			DepthKm:    rw.float("Depth"),
			Province:   rw.get("Province"),
			District:   rw.get("District"),
		})
	}
	if len(events) == 0 {
		return nil, fmt.Errorf("no events with an EventID: %w", domain.ErrEmptyInput)
	}
	return events, nil
}

// ReadStations parses stations.csv content. Rows without a station code are
// dropped.
func ReadStations(r io.Reader) ([]domain.Station, error) {
	rows, err := readRows(r)
	if err != nil {
		return nil, err
	}
	stations := make([]domain.Station, 0, len(rows))
	for _, rw := range rows {
		code := rw.get("Code")
		if code == "" {
			continue
		}
		stations = append(stations, domain.Station{
			EventID:    domain.NormalizeEventID(rw.get("EventID")),
			Code:       code,
			Geo:        domain.Geo{Lat: rw.float("Latitude"), Lon: rw.float("Longitude")},
			Province:   rw.get("Province"),
			District:   rw.get("District"),
			Lithology:  rw.get("Litology"),
			Vs30:       rw.float("Vs30"),
			Morphology: rw.get("Morphology"),
			PGANS:      rw.float("PGA_NS"),
			PGAEW:      rw.float("PGA_EW"),
			PGAUD:      rw.float("PGA_UD"),
		})
	}
	return stations, nil
}

// LoadEvents reads an events CSV from disk.
func LoadEvents(path string) ([]domain.Event, error) {
	f, err := openResource(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only file

	events, err := ReadEvents(f)
	if err != nil {
		return nil, fmt.Errorf("load events %s: %w", path, err)
	}
	return events, nil
}

// LoadStations reads a stations CSV from disk. A file with a header and no
// rows yields an empty slice.
func LoadStations(path string) ([]domain.Station, error) {
	f, err := openResource(path)
	if err != nil {
		return nil, err
	}
	defer f.Close() //nolint:errcheck // read-only file

	stations, err := ReadStations(f)
	if err != nil && !errors.Is(err, domain.ErrEmptyInput) {
		return nil, fmt.Errorf("load stations %s: %w", path, err)
	}
	return stations, nil
}
