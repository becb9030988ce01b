package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/quakewatch/alert-summary/internal/config"
	"github.com/quakewatch/alert-summary/internal/domain"
	"github.com/quakewatch/alert-summary/internal/render"
)

// Writer produces summary documents to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Service.KafkaBrokers...),
		Topic:        cfg.Service.SinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple reports to the sink topic in a
// single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, reports []domain.ReportModel) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
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

// serializeToMessage renders a report as GeoJSON, keyed by event ID so all
// versions of one event land on the same partition.
func serializeToMessage(report domain.ReportModel) (kafkago.Message, error) {
	data, err := render.GeoJSON(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.Event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "magnitude", Value: []byte(strconv.FormatFloat(report.Event.Magnitude, 'f', 1, 64))},
			{Key: "authoritative", Value: []byte(strconv.FormatBool(report.Event.Authoritative))},
			{Key: "created_at", Value: []byte(report.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
