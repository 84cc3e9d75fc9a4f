// Package event publishes fulfillment events to Kafka.
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shiprelay/backend/internal/domain/shared"
	"github.com/shiprelay/backend/internal/infrastructure/config"
)

// Writer is the subset of *kafka.Writer the publisher needs
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes domain events as JSON messages keyed by aggregate ID
type KafkaPublisher struct {
	writer  Writer
	source  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewKafkaPublisher creates a publisher backed by a kafka.Writer
func NewKafkaPublisher(cfg config.KafkaConfig, source string, logger *zap.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker is required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic is required")
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: false,
		MaxAttempts:            1,
		WriteTimeout:           cfg.WriteTimeout,
	}
	return NewKafkaPublisherWithWriter(w, source, cfg.WriteTimeout, logger), nil
}

// NewKafkaPublisherWithWriter allows injecting a test writer
func NewKafkaPublisherWithWriter(w Writer, source string, timeout time.Duration, logger *zap.Logger) *KafkaPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &KafkaPublisher{writer: w, source: source, timeout: timeout, logger: logger}
}

// Publish writes all events in one batch. The caller's context is detached
// from cancellation but bounded by the publisher's write timeout.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("kafka: marshal %s event: %w", e.EventType(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.AggregateID()),
			Value: value,
			Time:  e.OccurredAt(),
			Headers: []kafka.Header{
				{Key: "event-id", Value: []byte(e.EventID().String())},
				{Key: "event-type", Value: []byte(e.EventType())},
				{Key: "source", Value: []byte(p.source)},
			},
		})
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.writer.WriteMessages(writeCtx, msgs...); err != nil {
		p.logger.Error("kafka write failed", zap.Int("events", len(msgs)), zap.Error(err))
		return fmt.Errorf("kafka: write messages: %w", err)
	}
	p.logger.Debug("published events", zap.Int("events", len(msgs)))
	return nil
}

// Close flushes and closes the underlying writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

var _ shared.EventPublisher = (*KafkaPublisher)(nil)
