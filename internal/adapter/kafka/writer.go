package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/couchcryptid/hydrogen-sites/internal/config"
	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces rendered reports to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured report topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes multiple reports in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, msgs []domain.OutputMessage) error {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]kafkago.Message, len(msgs))
	for i := range msgs {
		out[i] = toKafkaMessage(msgs[i])
	}
	if err := w.writer.WriteMessages(ctx, out...); err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	w.logger.Debug("reports published", "count", len(out), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// toKafkaMessage converts an output message, emitting headers in key order.
func toKafkaMessage(msg domain.OutputMessage) kafkago.Message {
	headers := make([]kafkago.Header, 0, len(msg.Headers))
	for _, k := range slices.Sorted(maps.Keys(msg.Headers)) {
		headers = append(headers, kafkago.Header{Key: k, Value: []byte(msg.Headers[k])})
	}
	return kafkago.Message{
		Key:     msg.Key,
		Value:   msg.Value,
		Headers: headers,
	}
}
