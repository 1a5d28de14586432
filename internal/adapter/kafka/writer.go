// Package kafka publishes stored earthquake events to a sink topic for
// downstream consumers. The sink is optional; the service runs without it.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/seismonet/quake-risk-service/internal/domain"
)

// Writer produces earthquake messages to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishEvents serializes and publishes newly stored earthquakes in a
// single WriteMessages call.
func (w *Writer) PublishEvents(ctx context.Context, events []domain.Earthquake) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Earthquake into a Kafka message keyed by
// its USGS id, so topic compaction keeps one record per event.
func serializeToMessage(event domain.Earthquake) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize earthquake: %w", err)
	}

	magnitude := ""
	if event.Magnitude != nil {
		magnitude = strconv.FormatFloat(*event.Magnitude, 'f', -1, 64)
	}

	return kafkago.Message{
		Key:   []byte(event.USGSID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "region", Value: []byte(event.Region)},
			{Key: "magnitude", Value: []byte(magnitude)},
			{Key: "event_time", Value: []byte(event.Time.Format(time.RFC3339))},
		},
	}, nil
}
