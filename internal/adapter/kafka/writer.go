package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/quakesense-service/internal/config"
	"github.com/couchcryptid/quakesense-service/internal/domain"
)

// Writer publishes feature summaries to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaSinkTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes summaries in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, summaries []domain.Summary) error {
	if len(summaries) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(summaries))
	for i := range summaries {
		msg, err := serializeToMessage(summaries[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d summaries to %s: %w", len(msgs), w.writer.Topic, err)
	}
	w.logger.Debug("summaries published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a Summary into a Kafka message keyed by event id.
func serializeToMessage(s domain.Summary) (kafkago.Message, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize summary %s: %w", s.EventID, err)
	}
	return kafkago.Message{
		Key:   []byte(s.EventID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "event_id", Value: []byte(s.EventID)},
			{Key: "computed_at", Value: []byte(s.ComputedAt.Format(time.RFC3339))},
		},
	}, nil
}

// DecodeSummary parses a message produced by Writer.
func DecodeSummary(msg kafkago.Message) (domain.Summary, error) {
	var s domain.Summary
	if err := json.Unmarshal(msg.Value, &s); err != nil {
		return domain.Summary{}, fmt.Errorf("decode summary at offset %d: %w", msg.Offset, err)
	}
	return s, nil
}
