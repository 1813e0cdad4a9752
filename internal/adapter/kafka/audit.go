package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/powerviz/plant-data-api/internal/config"
	"github.com/powerviz/plant-data-api/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// AuditWriter publishes audit events to a Kafka topic.
// It implements domain.AuditSink.
type AuditWriter struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewAuditWriter creates a Kafka producer for the configured audit topic.
func NewAuditWriter(cfg *config.Config, logger *slog.Logger) *AuditWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.AuditKafkaBrokers...),
		Topic:        cfg.AuditKafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &AuditWriter{writer: w, logger: logger}
}

// Record serializes and publishes a single audit event.
func (w *AuditWriter) Record(ctx context.Context, event domain.AuditEvent) error {
	msg, err := serializeToMessage(event)
	if err != nil {
		return err
	}
	return w.writer.WriteMessages(ctx, msg)
}

func (w *AuditWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an AuditEvent into a Kafka message keyed by
// the event ID so replays of the same event land on the same partition.
func serializeToMessage(event domain.AuditEvent) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize audit event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "action", Value: []byte(event.Action)},
			{Key: "status", Value: []byte(event.Status)},
			{Key: "time", Value: []byte(event.Time.Format(time.RFC3339))},
		},
	}, nil
}
