// Package events publishes order lifecycle events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"fashion-shop/internal/config"
	"fashion-shop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Type names an event.
type Type string

const (
	OrderPlaced        Type = "order.placed"
	OrderStatusChanged Type = "order.status_changed"
	OrderPaid          Type = "order.paid"
)

// Event is one order fact. The order ID is used as the message key so all
// events of an order land on the same partition in order.
type Event struct {
	Type         Type              `json:"type"`
	OrderID      uuid.UUID         `json:"orderId"`
	UserID       uuid.UUID         `json:"userId"`
	Status       model.OrderStatus `json:"status"`
	TotalPayment decimal.Decimal   `json:"totalPayment"`
	ActorID      *uuid.UUID        `json:"actorId,omitempty"`
	Role         model.Role        `json:"role,omitempty"`
	OccurredAt   time.Time         `json:"occurredAt"`
}

// NewOrderEvent builds an event from the current state of order.
func NewOrderEvent(t Type, order *model.Order, actor *model.Actor) Event {
	e := Event{
		Type:         t,
		OrderID:      order.ID,
		UserID:       order.UserID,
		Status:       order.Status,
		TotalPayment: order.TotalPayment,
		OccurredAt:   time.Now().UTC(),
	}
	if actor != nil {
		id := actor.ID
		e.ActorID = &id
		e.Role = actor.Role
	}
	return e
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
	Close() error
}

// messageWriter is the part of *kafka.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events as JSON messages to one topic.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
	closed atomic.Bool
	logger zerolog.Logger
}

// NewKafkaPublisher creates a synchronous publisher for cfg.Topic.
func NewKafkaPublisher(cfg config.KafkaConfig, logger zerolog.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka publisher requires a topic")
	}

	logger = logger.With().Str("component", "events").Str("topic", cfg.Topic).Logger()
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
		Transport: &kafka.Transport{
			Dial: (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Error().Msgf(msg, args...)
		}),
	}

	return newKafkaPublisher(writer, cfg.Topic, logger), nil
}

func newKafkaPublisher(w messageWriter, topic string, logger zerolog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic, logger: logger}
}

// Publish writes every event and blocks until the brokers acknowledge them.
func (p *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	if p.closed.Load() {
		return fmt.Errorf("publish to %s: publisher is closed", p.topic)
	}
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, len(events))
	for i, e := range events {
		value, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to encode %s event: %w", e.Type, err)
		}
		msgs[i] = kafka.Message{
			Key:   []byte(e.OrderID.String()),
			Value: value,
			Time:  e.OccurredAt,
			Headers: []kafka.Header{
				{Key: "type", Value: []byte(e.Type)},
			},
		}
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	p.logger.Debug().Int("count", len(msgs)).Msg("events published")
	return nil
}

// Close flushes pending writes. Calling it more than once is safe.
func (p *KafkaPublisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.writer.Close()
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
func (Nop) Close() error                            { return nil }
