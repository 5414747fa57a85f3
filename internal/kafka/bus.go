// Package kafka publishes order lifecycle events to Kafka. Producers share
// one writer; the topic is chosen per message.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"

	"github.com/dejobratic/storefront/internal/orders/domain"
)

const (
	TopicOrderCreated       = "orders.created"
	TopicOrderStatusChanged = "orders.status_changed"
	TopicOrderCancelled     = "orders.cancelled"
)

// EventBus publishes order events keyed by order ID so all events for one
// order land on the same partition, preserving their relative order.
type EventBus struct {
	writer  *kafkaGo.Writer
	metrics *Metrics
}

// NewEventBus creates a Kafka-backed event publisher. The metrics argument
// may be nil.
func NewEventBus(brokers []string, metrics *Metrics) *EventBus {
	return &EventBus{
		writer: &kafkaGo.Writer{
			Addr:         kafkaGo.TCP(brokers...),
			Balancer:     &kafkaGo.LeastBytes{},
			RequiredAcks: kafkaGo.RequireAll,
		},
		metrics: metrics,
	}
}

type orderCreatedEvent struct {
	Order      domain.Order `json:"order"`
	OccurredAt time.Time    `json:"occurred_at"`
}

type orderStatusChangedEvent struct {
	OrderID    string    `json:"order_id"`
	From       string    `json:"from"`
	To         string    `json:"to"`
	OccurredAt time.Time `json:"occurred_at"`
}

type orderCancelledEvent struct {
	OrderID    string    `json:"order_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func (b *EventBus) PublishOrderCreated(ctx context.Context, order domain.Order) error {
	return b.publish(ctx, TopicOrderCreated, order.ID, orderCreatedEvent{
		Order:      order,
		OccurredAt: time.Now().UTC(),
	})
}

func (b *EventBus) PublishOrderStatusChanged(ctx context.Context, orderID string, from, to domain.OrderStatus) error {
	return b.publish(ctx, TopicOrderStatusChanged, orderID, orderStatusChangedEvent{
		OrderID:    orderID,
		From:       string(from),
		To:         string(to),
		OccurredAt: time.Now().UTC(),
	})
}

func (b *EventBus) PublishOrderCancelled(ctx context.Context, orderID string) error {
	return b.publish(ctx, TopicOrderCancelled, orderID, orderCancelledEvent{
		OrderID:    orderID,
		OccurredAt: time.Now().UTC(),
	})
}

func (b *EventBus) publish(ctx context.Context, topic, key string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event for topic %s: %w", topic, err)
	}

	start := time.Now()
	err = b.writer.WriteMessages(ctx, kafkaGo.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})

	if b.metrics != nil {
		b.metrics.RecordPublish(ctx, topic, time.Since(start).Seconds(), err == nil)
	}

	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close flushes and closes the underlying writer.
func (b *EventBus) Close() error {
	return b.writer.Close()
}
