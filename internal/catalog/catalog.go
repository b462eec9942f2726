package catalog

import (
	"fmt"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// Catalog indexes events and their recording stations by event id.
type Catalog struct {
	events   []domain.Event
	byID     map[string]int
	stations map[string][]domain.Station
}

// New builds a Catalog. The first occurrence of a duplicate event id wins,
// as does the first station row for a repeated (event, code) pair.
func New(events []domain.Event, stations []domain.Station) *Catalog {
	c := &Catalog{
		byID:     make(map[string]int, len(events)),
		stations: make(map[string][]domain.Station),
	}
	for _, e := range events {
		e.ID = domain.NormalizeEventID(e.ID)
		if _, dup := c.byID[e.ID]; dup {
			continue
		}
		c.byID[e.ID] = len(c.events)
		c.events = append(c.events, e)
	}

	seen := make(map[[2]string]bool, len(stations))
	for _, s := range stations {
		s.EventID = domain.NormalizeEventID(s.EventID)
		key := [2]string{s.EventID, s.Code}
		if seen[key] {
			continue
		}
		seen[key] = true
		c.stations[s.EventID] = append(c.stations[s.EventID], s)
	}
	return c
}

// Load reads both CSV files and builds a Catalog. A missing stations file is
// an error; a stations file with no rows is not.
func Load(eventsPath, stationsPath string) (*Catalog, error) {
	events, err := LoadEvents(eventsPath)
	if err != nil {
		return nil, err
	}
	stations, err := LoadStations(stationsPath)
	if err != nil {
		return nil, err
	}
	return New(events, stations), nil
}

// EventIDs lists event ids in file order.
func (c *Catalog) EventIDs() []string {
	ids := make([]string, len(c.events))
	for i, e := range c.events {
		ids[i] = e.ID
	}
	return ids
}

// Events returns every event in file order.
func (c *Catalog) Events() []domain.Event {
	out := make([]domain.Event, len(c.events))
	copy(out, c.events)
	return out
}

// Event looks up one event by id.
func (c *Catalog) Event(id string) (domain.Event, error) {
	id = domain.NormalizeEventID(id)
	i, ok := c.byID[id]
	if !ok {
		return domain.Event{}, fmt.Errorf("event %q: %w", id, domain.ErrNotFound)
	}
	return c.events[i], nil
}

// Stations returns the stations that recorded event id.
func (c *Catalog) Stations(id string) ([]domain.Station, error) {
	id = domain.NormalizeEventID(id)
	list := c.stations[id]
	if len(list) == 0 {
		return nil, fmt.Errorf("stations for event %q: %w", id, domain.ErrNotFound)
	}
	out := make([]domain.Station, len(list))
	copy(out, list)
	return out, nil
}

// Station looks up one station of an event by its code.
func (c *Catalog) Station(id, code string) (domain.Station, error) {
	id = domain.NormalizeEventID(id)
	for _, s := range c.stations[id] {
		if s.Code == code {
			return s, nil
		}
	}
	return domain.Station{}, fmt.Errorf("station %q of event %q: %w", code, id, domain.ErrNotFound)
}
