package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/osm-map-etl/internal/config"
	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

// Writer produces one message per record to a Kafka topic.
// It implements pipeline.Loader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a synchronous Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		BatchTimeout:           cfg.KafkaBatchTimeout,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Load publishes rec and blocks until the broker acknowledges it.
func (w *Writer) Load(ctx context.Context, rec domain.Record) error {
	msg, err := recordToMessage(rec)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", msg.Key, err)
	}
	return nil
}

func (w *Writer) Close() error {
	w.logger.Debug("closing kafka writer", "topic", w.writer.Topic)
	return w.writer.Close()
}

// recordToMessage marshals a record into a Kafka message keyed by
// "<type>/<id>" so all versions of an element land on one partition.
func recordToMessage(rec domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.Type() + "/" + rec.ID()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "element_type", Value: []byte(rec.Type())},
			{Key: "element_id", Value: []byte(rec.ID())},
		},
	}, nil
}
