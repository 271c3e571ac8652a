package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-insights-service/internal/config"
	"github.com/couchcryptid/weather-insights-service/internal/domain"
	"github.com/couchcryptid/weather-insights-service/internal/observability"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// AlertWriter publishes severe-weather alerts to a Kafka topic.
// It implements refresh.Sink.
type AlertWriter struct {
	writer  messageWriter
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewAlertWriter creates a Kafka producer for the configured alert topic.
func NewAlertWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *AlertWriter {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaAlertTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &AlertWriter{
		writer:  w,
		clock:   clockwork.NewRealClock(),
		metrics: metrics,
		logger:  logger,
	}
}

// Deliver publishes every alert in a single WriteMessages call. Messages are
// keyed by alert id so repeated alerts for a city land on one partition.
func (w *AlertWriter) Deliver(ctx context.Context, alerts []domain.WeatherAlert) error {
	if len(alerts) == 0 {
		return nil
	}

	publishedAt := w.clock.Now().UTC()
	msgs := make([]kafkago.Message, len(alerts))
	for i := range alerts {
		msg, err := serializeToMessage(alerts[i], publishedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}

	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish alerts: %w", err)
	}
	w.metrics.AlertsPublished.Add(float64(len(msgs)))
	w.logger.Debug("alerts published", "count", len(msgs))
	return nil
}

func (w *AlertWriter) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a WeatherAlert into a Kafka message.
func serializeToMessage(alert domain.WeatherAlert, publishedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(alert)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize weather alert: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(alert.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "alert_type", Value: []byte(alert.Type)},
			{Key: "severity", Value: []byte(alert.Severity)},
			{Key: "published_at", Value: []byte(publishedAt.Format(time.RFC3339))},
		},
	}, nil
}
