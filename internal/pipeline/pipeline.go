package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/quakesense-service/internal/domain"
	"github.com/couchcryptid/quakesense-service/internal/observability"
)

// BatchExtractor reads up to batchSize event ids from the source. It returns
// io.EOF, possibly alongside a final partial batch, once the source is
// exhausted.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]string, error)
}

// Transformer computes the summary for one event.
type Transformer interface {
	Transform(ctx context.Context, eventID string) (domain.Summary, error)
}

// BatchLoader writes multiple summaries to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, summaries []domain.Summary) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second

	// DefaultMaxAttempts bounds retries of a failing extract or load.
	DefaultMaxAttempts = 5
)

// Pipeline orchestrates the extract-transform-load loop.
type Pipeline struct {
	extractor   BatchExtractor
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	ready       atomic.Bool
	published   atomic.Int64
	skipped     atomic.Int64
	batchSize   int
	maxAttempts int
}

// New creates a Pipeline with the given stages and observability.
func New(e BatchExtractor, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		batchSize:   batchSize,
		maxAttempts: DefaultMaxAttempts,
	}
}

// CheckReadiness returns nil once at least one batch has been published.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not published any summaries yet")
	}
	return nil
}

// Published returns the number of summaries loaded so far.
func (p *Pipeline) Published() int64 { return p.published.Load() }

// Skipped returns the number of events whose transform failed.
func (p *Pipeline) Skipped() int64 { return p.skipped.Load() }

// Run executes the batch loop until the source is exhausted or the context
// is cancelled. A cancelled context is not an error. An extract or load that
// keeps failing after maxAttempts is.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		done, err := p.processBatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			return err
		}
		if done {
			p.logger.Info("pipeline finished",
				"published", p.published.Load(),
				"skipped", p.skipped.Load(),
			)
			return nil
		}
	}
}

// processBatch runs one extract-transform-load cycle. Returns true once the
// source is exhausted.
func (p *Pipeline) processBatch(ctx context.Context) (bool, error) {
	start := time.Now()

	var ids []string
	var eof bool
	err := p.retry(ctx, "extract", func() error {
		var err error
		ids, err = p.extractor.ExtractBatch(ctx, p.batchSize)
		if errors.Is(err, io.EOF) {
			eof = true
			return nil
		}
		return err
	})
	if err != nil {
		return false, err
	}

	if len(ids) == 0 {
		return eof, nil
	}

	p.metrics.EventsExtracted.Add(float64(len(ids)))
	p.metrics.BatchSize.Observe(float64(len(ids)))

	out := p.transformBatch(ctx, ids)
	if len(out) > 0 {
		if err := p.retry(ctx, "load", func() error { return p.loader.LoadBatch(ctx, out) }); err != nil {
			return false, err
		}
		p.metrics.SummariesPublished.Add(float64(len(out)))
		p.published.Add(int64(len(out)))
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return eof, nil
}

// transformBatch computes a summary per id, skipping and counting failures.
func (p *Pipeline) transformBatch(ctx context.Context, ids []string) []domain.Summary {
	out := make([]domain.Summary, 0, len(ids))
	for _, id := range ids {
		s, err := p.transformer.Transform(ctx, id)
		if err != nil {
			p.logger.Warn("transform failed, skipping event", "event_id", id, "error", err)
			p.metrics.TransformErrors.Inc()
			p.skipped.Add(1)
			continue
		}
		out = append(out, s)
	}
	return out
}

// retry runs op until it succeeds, the context ends, or maxAttempts is
// reached, sleeping with exponential backoff between attempts.
func (p *Pipeline) retry(ctx context.Context, stage string, op func() error) error {
	backoff := initialBackoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		p.logger.Error(stage+" batch failed", "error", err, "attempt", attempt)
		if attempt == p.maxAttempts {
			break
		}
		if !retry.SleepWithContext(ctx, backoff) {
			return ctx.Err()
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("%s failed after %d attempts: %w", stage, p.maxAttempts, err)
}
