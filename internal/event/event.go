// Package event defines the domain events exchanged over the broker.
package event

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-fulfillment-service/internal/broker"
	"github.com/google/uuid"
)

const (
	TypeOrdersFulfilled    = "OrdersFulfilled"
	TypeProductionRecorded = "ProductionRecorded"
)

type Envelope struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// OrdersFulfilledPayload lists the orders that became fulfilled through one
// production call.
type OrdersFulfilledPayload struct {
	VariantID  string   `json:"variant_id"`
	Quantity   int      `json:"quantity"`
	OrderIDs   []string `json:"order_ids"`
	OperatorID string   `json:"operator_id,omitempty"`
}

func NewOrdersFulfilled(p OrdersFulfilledPayload) Envelope {
	return Envelope{
		EventID:   uuid.New().String(),
		EventType: TypeOrdersFulfilled,
		Payload:   p,
		Timestamp: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, key string, evt Envelope) error
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, Envelope) error { return nil }

type KafkaPublisher struct {
	producer *broker.KafkaProducer
}

func NewKafkaPublisher(producer *broker.KafkaProducer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, key string, evt Envelope) error {
	return p.producer.Publish(ctx, key, evt)
}

// ProductionRecordedPayload is emitted by workshop devices when units of a
// variant come off the line.
type ProductionRecordedPayload struct {
	VariantID  string `json:"variant_id"`
	Quantity   int    `json:"quantity"`
	OperatorID string `json:"operator_id,omitempty"`
}
