package pipeline

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// SummaryComputer is the part of the analysis service the pipeline drives.
type SummaryComputer interface {
	EventIDs(ctx context.Context) ([]string, error)
	Summary(ctx context.Context, id string) (domain.Summary, error)
}

// SummaryTransformer implements Transformer by computing a signal summary.
type SummaryTransformer struct {
	computer SummaryComputer
}

// NewTransformer creates a SummaryTransformer backed by computer.
func NewTransformer(computer SummaryComputer) *SummaryTransformer {
	return &SummaryTransformer{computer: computer}
}

func (t *SummaryTransformer) Transform(ctx context.Context, eventID string) (domain.Summary, error) {
	s, err := t.computer.Summary(ctx, eventID)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("summarize event %s: %w", eventID, err)
	}
	return s, nil
}

// CatalogExtractor implements BatchExtractor over the catalogued event ids.
// The id list is read once, on the first call.
type CatalogExtractor struct {
	computer SummaryComputer

	mu     sync.Mutex
	ids    []string
	loaded bool
	next   int
}

// NewCatalogExtractor creates an extractor that pages through every event.
func NewCatalogExtractor(computer SummaryComputer) *CatalogExtractor {
	return &CatalogExtractor{computer: computer}
}

func (e *CatalogExtractor) ExtractBatch(ctx context.Context, batchSize int) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.loaded {
		ids, err := e.computer.EventIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		e.ids = ids
		e.loaded = true
	}
	if batchSize <= 0 {
		batchSize = 1
	}

	end := min(e.next+batchSize, len(e.ids))
	batch := e.ids[e.next:end]
	e.next = end
	if e.next >= len(e.ids) {
		return batch, io.EOF
	}
	return batch, nil
}
