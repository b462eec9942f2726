// Command genmock writes a synthetic QuakeSense dataset: an event catalog,
// station list, feature descriptions, one acceleration record per event, and
// a summaries fixture computed with the real analysis code so tests and the
// validator can compare against it.
//
// Usage:
//
//	go run ./cmd/genmock -out data/mock -seed 7
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"hash/fnv"
	"log"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/quakesense-service/internal/catalog"
	"github.com/couchcryptid/quakesense-service/internal/domain"
	"github.com/couchcryptid/quakesense-service/internal/seismic"
)

// fixtureTime is the fixed ComputedAt of every summary in the fixture.
var fixtureTime = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	recordSamples   = 6000
	stationsPerItem = 3
	summariesFile   = "summaries.json"
)

// eventDef is one catalogued earthquake and the dominant frequency of its
// synthetic record.
type eventDef struct {
	id       string
	date     string
	time     string
	lat, lon float64
	mag      float64
	depth    float64
	province string
	district string
	freq     float64 // Hz
}

var events = []eventDef{
	{id: "3416", date: "2025-04-23", time: "09:49:10", lat: 40.830, lon: 28.200, mag: 6.2, depth: 10.0, province: "Istanbul", district: "Silivri", freq: 2.5},
	{id: "100", date: "2023-02-06", time: "04:17:34", lat: 37.288, lon: 37.043, mag: 7.7, depth: 8.6, province: "Kahramanmaras", district: "Pazarcik", freq: 1.2},
	{id: "200", date: "2023-02-06", time: "13:24:47", lat: 38.089, lon: 37.239, mag: 7.6, depth: 7.0, province: "Kahramanmaras", district: "Elbistan", freq: 1.5},
	{id: "300", date: "2020-01-24", time: "17:55:11", lat: 38.360, lon: 39.060, mag: 6.8, depth: 8.1, province: "Elazig", district: "Sivrice", freq: 3.0},
	{id: "400", date: "2020-10-30", time: "11:51:27", lat: 37.900, lon: 26.790, mag: 6.6, depth: 16.5, province: "Izmir", district: "Seferihisar", freq: 1.8},
	{id: "500", date: "2011-10-23", time: "10:41:21", lat: 38.720, lon: 43.510, mag: 7.2, depth: 19.0, province: "Van", district: "Ercis", freq: 2.2},
}

var lithologies = []string{"Alluvium", "Sandstone", "Limestone", "Volcanic", "Clay"}

var morphologies = []string{"Plain", "Hill", "Valley", "Mountain"}

var descriptions = [][2]string{
	{"PGA/PGV/PGD", "Peak ground acceleration, velocity and displacement obtained by integrating the record twice."},
	{"Fourier Amplitude Spectrum", "Frequency content of the record. Peaks show the frequencies carrying most energy."},
	{"Bracketed Duration", "Time between the first and last exceedance of the acceleration threshold."},
	{"Site Frequency", "Dominant frequency of the record, an estimate of the site's fundamental frequency."},
	{"Arias Intensity", "Cumulative squared acceleration, a measure of the total shaking energy."},
	{"Response Spectrum", "Peak response of damped single-degree-of-freedom oscillators over a range of periods."},
	{"P and S Wave Arrivals", "Marked arrival times of the compressional and shear phases."},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output directory for the generated dataset")
	seed := flag.Uint64("seed", 7, "random seed for station placement and record noise")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}
	summaries, err := generate(*out, *seed)
	if err != nil {
		return err
	}
	printStats(summaries)
	return nil
}

// generate writes the full dataset under dir and returns the fixture summaries.
func generate(dir string, seed uint64) ([]domain.Summary, error) {
	if err := os.MkdirAll(filepath.Join(dir, "signals"), 0o755); err != nil {
		return nil, err
	}

	if err := writeEvents(filepath.Join(dir, "events.csv")); err != nil {
		return nil, fmt.Errorf("writing events: %w", err)
	}
	log.Printf("events: %d records", len(events))

	if err := writeStations(filepath.Join(dir, "stations.csv"), seed); err != nil {
		return nil, fmt.Errorf("writing stations: %w", err)
	}
	log.Printf("stations: %d records", len(events)*stationsPerItem)

	if err := writeDescriptions(filepath.Join(dir, "descriptions.txt")); err != nil {
		return nil, fmt.Errorf("writing descriptions: %w", err)
	}

	// Set a fixed clock for reproducible ComputedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(fixtureTime))
	defer domain.SetClock(nil)

	summaries := make([]domain.Summary, 0, len(events))
	for _, e := range events {
		path := filepath.Join(dir, "signals", e.id+".asc")
		if err := writeRecord(path, e, seed); err != nil {
			return nil, fmt.Errorf("writing record %s: %w", e.id, err)
		}

		// Summaries go through the same loader and analysis the service uses.
		sig, err := seismic.LoadSignal(path, seismic.DefaultLoadOptions())
		if err != nil {
			return nil, err
		}
		s, err := seismic.Summarize(e.id, sig, seismic.DefaultParams())
		if err != nil {
			return nil, err
		}
		s.Source = filepath.Base(path)
		summaries = append(summaries, s)
	}

	if err := writeJSON(filepath.Join(dir, summariesFile), summaries); err != nil {
		return nil, fmt.Errorf("writing summaries fixture: %w", err)
	}
	log.Printf("wrote dataset: %s", dir)
	return summaries, nil
}

func writeEvents(path string) error {
	rows := [][]string{{"EventID", "Date", "Time", "Latitude", "Longitude", "Magnitude", "Depth", "Province", "District"}}
	for _, e := range events {
		rows = append(rows, []string{
			e.id, e.date, e.time,
			ftoa(e.lat, 3), ftoa(e.lon, 3),
			ftoa(e.mag, 1), ftoa(e.depth, 1),
			e.province, e.district,
		})
	}
	return writeCSV(path, rows)
}

func writeStations(path string, seed uint64) error {
	rows := [][]string{{"EventID", "Code", "Latitude", "Longitude", "Province", "District", "Litology", "Vs30", "Morphology", "PGA_NS", "PGA_EW", "PGA_UD"}}
	for _, e := range events {
		rng := eventRand(seed, e.id, "stations")
		peak := peakAcceleration(e.mag)
		for i := range stationsPerItem {
			dLat := (rng.Float64() - 0.5) * 0.8
			dLon := (rng.Float64() - 0.5) * 0.8
			distKm := math.Hypot(dLat*111, dLon*85)
			atten := math.Exp(-distKm / 60)
			rows = append(rows, []string{
				e.id,
				fmt.Sprintf("%s%02d", e.id, i+1),
				ftoa(e.lat+dLat, 4),
				ftoa(e.lon+dLon, 4),
				e.province,
				e.district,
				lithologies[rng.IntN(len(lithologies))],
				strconv.Itoa(180 + rng.IntN(700)),
				morphologies[rng.IntN(len(morphologies))],
				ftoa(peak*atten*(0.8+0.4*rng.Float64()), 4),
				ftoa(peak*atten*(0.8+0.4*rng.Float64()), 4),
				ftoa(peak*atten*(0.3+0.3*rng.Float64()), 4),
			})
		}
	}
	return writeCSV(path, rows)
}

func writeDescriptions(path string) error {
	sections := make([]string, len(descriptions))
	for i, d := range descriptions {
		sections[i] = d[0] + "\n" + d[1] + "\n"
	}
	return os.WriteFile(path, []byte(strings.Join(sections, catalog.SectionDelimiter+"\n")), 0o600)
}

// writeRecord writes a synthetic accelerogram: a shaped burst at the event's
// dominant frequency with a weaker overtone and seeded noise.
func writeRecord(path string, e eventDef, seed uint64) error {
	rng := eventRand(seed, e.id, "record")
	peak := peakAcceleration(e.mag)
	rate := seismic.DefaultSampleRate

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s_%s\n", seismic.DefaultHeaderToken, e.date, e.id)
	fmt.Fprintf(&b, "EVENT_DATE_YYYYMMDD: %s\n", strings.ReplaceAll(e.date, "-", ""))
	fmt.Fprintf(&b, "MAGNITUDE: %.1f\n", e.mag)
	fmt.Fprintf(&b, "SAMPLING_INTERVAL_S: %.2f\n", 1/rate)
	b.WriteString("UNITS: g\n")

	for i := range recordSamples {
		t := float64(i) / rate
		env := burstEnvelope(t)
		x := env * (math.Sin(2*math.Pi*e.freq*t) + 0.3*math.Sin(2*math.Pi*2.7*e.freq*t+0.4))
		x += 0.02 * rng.NormFloat64() * env
		fmt.Fprintf(&b, "%.6f\n", peak*x)
	}
	return os.WriteFile(path, []byte(b.String()), 0o600)
}

// burstEnvelope rises over the first seconds and decays after the S-wave window.
func burstEnvelope(t float64) float64 {
	const rise, hold, decay = 8.0, 18.0, 0.12
	switch {
	case t < rise:
		return (t / rise) * (t / rise)
	case t < hold:
		return 1
	default:
		return math.Exp(-decay * (t - hold))
	}
}

// peakAcceleration is a rough magnitude to peak acceleration (g) scaling.
func peakAcceleration(mag float64) float64 {
	return math.Pow(10, 0.5*mag-4.2)
}

func eventRand(seed uint64, id, stream string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id + "/" + stream))
	return rand.New(rand.NewPCG(seed, h.Sum64()))
}

func ftoa(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return f.Close()
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

func printStats(summaries []domain.Summary) {
	fmt.Println()
	fmt.Println("=== Generated Dataset Statistics ===")
	fmt.Printf("Total events: %d\n", len(summaries))
	fmt.Println()
	fmt.Printf("%-6s %8s %10s %10s %10s %8s\n", "Event", "Samples", "PGA", "Duration", "Site Hz", "Arias")
	exceeded := 0
	for _, s := range summaries {
		if s.Exceeded {
			exceeded++
		}
		fmt.Printf("%-6s %8d %10.4f %10.2f %10.2f %8.4f\n",
			s.EventID, s.Samples, s.PGA, s.BracketedDuration, s.SiteFrequency, s.AriasIntensity)
	}
	fmt.Println()
	fmt.Printf("Threshold exceeded: %d / %d\n", exceeded, len(summaries))
}
