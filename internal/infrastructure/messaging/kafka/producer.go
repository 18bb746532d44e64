// Package kafka emits source-change events so downstream consumers can
// re-ingest without polling.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/coscheck/coscheck/internal/config"
	"github.com/coscheck/coscheck/internal/infrastructure/monitoring/logging"
	"github.com/coscheck/coscheck/pkg/errors"
)

// ChangeEvent announces that a source's version marker moved.
type ChangeEvent struct {
	Source     string    `json:"source"`
	OldMarker  string    `json:"old_marker,omitempty"`
	NewMarker  string    `json:"new_marker"`
	ObservedAt time.Time `json:"observed_at"`
}

// EventWriter is the kafka-go surface the producer needs.
type EventWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer publishes ChangeEvents keyed by source name, so events for one
// source stay ordered within a partition.
type Producer struct {
	writer EventWriter
	logger logging.Logger
}

// NewProducer builds a Producer over a kafka-go writer.
func NewProducer(cfg config.KafkaConfig, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		WriteTimeout: cfg.WriteTimeout,
		MaxAttempts:  maxAttempts(cfg.MaxRetries),
		RequiredAcks: kafkago.RequireOne,
	}
	return &Producer{writer: w, logger: logger.Named("kafka")}
}

// NewProducerWithWriter injects a writer, used by tests.
func NewProducerWithWriter(w EventWriter, logger logging.Logger) *Producer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Producer{writer: w, logger: logger.Named("kafka")}
}

func maxAttempts(retries int) int {
	if retries > 0 {
		return retries + 1
	}
	return 3
}

// SourceChanged publishes one event.
func (p *Producer) SourceChanged(ctx context.Context, evt ChangeEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode change event")
	}

	msg := kafkago.Message{
		Key:   []byte(evt.Source),
		Value: payload,
		Time:  evt.ObservedAt,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, errors.ErrCodeExternalService, "publish change event for "+evt.Source)
	}

	p.logger.Info("published change event",
		logging.String("source", evt.Source),
		logging.String("marker", evt.NewMarker),
	)
	return nil
}

// Close flushes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
