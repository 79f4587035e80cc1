package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/TNRProtography/solar-dashboard/internal/config"
	"github.com/TNRProtography/solar-dashboard/internal/domain"
)

// Writer publishes CME alerts to a Kafka topic. It implements
// pipeline.AlertPublisher. Messages are keyed by activityID so a compacted
// topic deduplicates the same CME re-published across refresh cycles.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured alert topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishAlerts serializes and publishes the Earth-directed CMEs in a single
// WriteMessages call.
func (w *Writer) PublishAlerts(ctx context.Context, cmes []domain.EnhancedCME) error {
	if len(cmes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(cmes))
	for i := range cmes {
		msg, err := serializeToMessage(cmes[i])
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

// serializeToMessage marshals an EnhancedCME into a Kafka message.
func serializeToMessage(cme domain.EnhancedCME) (kafkago.Message, error) {
	data, err := json.Marshal(cme)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize cme alert: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(cme.ActivityID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "impact_score", Value: []byte(strconv.Itoa(int(cme.ImpactScore)))},
			{Key: "start_time", Value: []byte(cme.StartTime.Format(time.RFC3339))},
		},
	}
	if cme.PredictedArrival != nil {
		msg.Headers = append(msg.Headers, kafkago.Header{
			Key:   "predicted_arrival",
			Value: []byte(cme.PredictedArrival.Format(time.RFC3339)),
		})
	}
	return msg, nil
}
