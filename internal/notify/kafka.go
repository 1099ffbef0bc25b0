package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const EventPurchaseCompleted = "purchase.completed"

// EventPublisher announces completed purchases to other systems.
type EventPublisher interface {
	PublishPurchase(ctx context.Context, receipt Receipt) error
}

type PurchaseEvent struct {
	CheckoutID  string          `json:"checkout_id"`
	Email       string          `json:"email"`
	Items       []PurchaseLine  `json:"items"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	CompletedAt time.Time       `json:"completed_at"`
}

type PurchaseLine struct {
	AnnouncementID string          `json:"announcement_id"`
	Quantity       int             `json:"quantity"`
	Total          decimal.Decimal `json:"total"`
}

func NewPurchaseEvent(r Receipt) PurchaseEvent {
	lines := make([]PurchaseLine, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, PurchaseLine{AnnouncementID: item.AnnouncementID, Quantity: item.Quantity, Total: item.Total})
	}
	return PurchaseEvent{
		CheckoutID:  r.CheckoutID.String(),
		Email:       r.Email,
		Items:       lines,
		TotalAmount: r.Total,
		CompletedAt: r.CompletedAt.UTC(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		// one event per purchase; don't wait to fill a batch
		BatchTimeout:           10 * time.Millisecond,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishPurchase(ctx context.Context, r Receipt) error {
	payload, err := json.Marshal(NewPurchaseEvent(r))
	if err != nil {
		return fmt.Errorf("marshal purchase event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(r.CheckoutID.String()),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventPurchaseCompleted)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish purchase event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
