package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"bakery-service/models"
	aws_pkg "bakery-service/pkg/aws"

	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

// EventPublisher ships order and payment notifications to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event models.OrderEvent) error
}

// NoopPublisher drops events. Used when no sink is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, models.OrderEvent) error { return nil }

// SNSEventPublisher fans events out through an SNS topic.
type SNSEventPublisher struct {
	client   aws_pkg.SNSPublisher
	topicArn string
}

func NewSNSEventPublisher(client aws_pkg.SNSPublisher, topicArn string) *SNSEventPublisher {
	return &SNSEventPublisher{client: client, topicArn: topicArn}
}

func (p *SNSEventPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	return p.client.Publish(ctx, p.topicArn, event.Type, body)
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaEventPublisher writes events keyed by order id, so every event of an
// order lands on the same partition in order.
type KafkaEventPublisher struct {
	writer MessageWriter
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
}

func NewKafkaEventPublisher(writer MessageWriter) *KafkaEventPublisher {
	return &KafkaEventPublisher{writer: writer}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, event models.OrderEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event.Type, err)
	}
	msg := kafka.Message{
		Key:     []byte(event.OrderID),
		Value:   body,
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(event.Type)}},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write %s: %w", event.Type, err)
	}
	return nil
}

func (p *KafkaEventPublisher) Close() error {
	return p.writer.Close()
}

// publishDetached publishes synchronously, before the handler responds, on a
// context that survives request cancellation and is bounded by publishTimeout.
func publishDetached(ctx context.Context, pub EventPublisher, event models.OrderEvent) error {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	return pub.Publish(pctx, event)
}
