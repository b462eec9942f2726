// Package parquet exports derived series and summaries to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// SeriesPoint is one (x, y) sample of a derived series trace.
type SeriesPoint struct {
	EventID string `parquet:"event_id,snappy,dict"`
	Feature string `parquet:"feature,snappy,dict"`
	Trace   string `parquet:"trace,snappy,dict"`

	// Panel groups traces that share a y axis (nullable)
	Panel *string `parquet:"panel,optional,snappy,dict"`

	// Unit of the y values (nullable)
	Unit *string `parquet:"unit,optional,snappy,dict"`

	Index int32   `parquet:"index,snappy"`
	X     float64 `parquet:"x,snappy"`
	Y     float64 `parquet:"y,snappy"`
}

// SummaryRecord mirrors domain.Summary in a flat columnar layout.
type SummaryRecord struct {
	EventID           string    `parquet:"event_id,snappy"`
	Source            string    `parquet:"source,snappy,dict"`
	Samples           int32     `parquet:"samples,snappy"`
	SampleRate        float64   `parquet:"sample_rate,snappy"`
	PGA               float64   `parquet:"pga,snappy"`
	PGV               float64   `parquet:"pgv,snappy"`
	PGD               float64   `parquet:"pgd,snappy"`
	Exceeded          bool      `parquet:"exceeded,snappy"`
	BracketedDuration float64   `parquet:"bracketed_duration,snappy"`
	SiteFrequency     float64   `parquet:"site_frequency,snappy"`
	AriasIntensity    float64   `parquet:"arias_intensity,snappy"`
	ComputedAt        time.Time `parquet:"computed_at,snappy"`
}

// ConvertSeries flattens every trace of s into one row per point.
func ConvertSeries(eventID string, s domain.DerivedSeries) []SeriesPoint {
	n := 0
	for _, tr := range s.Traces {
		n += min(len(tr.X), len(tr.Y))
	}
	rows := make([]SeriesPoint, 0, n)
	for _, tr := range s.Traces {
		panel := optional(tr.Panel)
		unit := optional(tr.Unit)
		for i := range min(len(tr.X), len(tr.Y)) {
			rows = append(rows, SeriesPoint{
				EventID: eventID,
				Feature: string(s.Feature),
				Trace:   tr.Name,
				Panel:   panel,
				Unit:    unit,
				Index:   int32(i),
				X:       tr.X[i],
				Y:       tr.Y[i],
			})
		}
	}
	return rows
}

// ConvertSummaries maps summaries to their Parquet records.
func ConvertSummaries(summaries []domain.Summary) []SummaryRecord {
	out := make([]SummaryRecord, len(summaries))
	for i, s := range summaries {
		out[i] = SummaryRecord{
			EventID:           s.EventID,
			Source:            s.Source,
			Samples:           int32(s.Samples),
			SampleRate:        s.SampleRate,
			PGA:               s.PGA,
			PGV:               s.PGV,
			PGD:               s.PGD,
			Exceeded:          s.Exceeded,
			BracketedDuration: s.BracketedDuration,
			SiteFrequency:     s.SiteFrequency,
			AriasIntensity:    s.AriasIntensity,
			ComputedAt:        s.ComputedAt,
		}
	}
	return out
}

// WriteSeriesParquet writes the points of a derived series to outputPath.
func WriteSeriesParquet(eventID string, s domain.DerivedSeries, outputPath string) (int, error) {
	rows := ConvertSeries(eventID, s)
	return len(rows), write(rows, outputPath)
}

// WriteSummariesParquet writes summaries to outputPath.
func WriteSummariesParquet(summaries []domain.Summary, outputPath string) error {
	return write(ConvertSummaries(summaries), outputPath)
}

func write[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Schema is derived from the struct tags of T.
	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
