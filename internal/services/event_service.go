// internal/services/event_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
	EventProductCreated     = "product.created"
	EventProductUpdated     = "product.updated"
	EventProductArchived    = "product.archived"
	EventContactCreated     = "contact.created"
)

// Event is the envelope written to every sink. Key groups related events on
// the same Kafka partition.
type Event struct {
	Type    string      `json:"type"`
	Key     string      `json:"key"`
	At      time.Time   `json:"at"`
	Payload interface{} `json:"payload"`
}

type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// MultiPublisher fans an event out to every sink and joins their errors.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

func NewKafkaPublisher(writer messageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.Key),
		Value: value,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// publishAfterCommit sends best effort notifications; the write they describe
// is already durable so failures are only logged.
func publishAfterCommit(ctx context.Context, publisher EventPublisher, event Event) {
	if publisher == nil {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}
	if err := publisher.Publish(ctx, event); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"event": event.Type,
			"key":   event.Key,
		}).Warn("Failed to publish event")
	}
}
