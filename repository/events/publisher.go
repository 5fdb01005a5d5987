package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"

	"github.com/jasonlau05/bookstore/model"
)

const (
	ExchangeName = "bookstore"
	ExchangeType = "topic"

	KeyOrderPlaced    = "order.placed"
	KeyRentalReturned = "rental.returned"
)

type OrderPlaced struct {
	OrderID    int64            `json:"order_id"`
	CustomerID int64            `json:"customer_id"`
	TotalCost  decimal.Decimal  `json:"total_cost"`
	Items      []model.CartLine `json:"items"`
	At         time.Time        `json:"at"`
}

type RentalReturned struct {
	ItemID int64     `json:"item_id"`
	BookID int64     `json:"book_id"`
	At     time.Time `json:"at"`
}

// Publisher announces committed state changes. Delivery is best effort.
type Publisher interface {
	OrderPlaced(ctx context.Context, ev OrderPlaced) error
	RentalReturned(ctx context.Context, ev RentalReturned) error
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type publisher struct {
	ch channel
}

// NewPublisher publishes JSON events to the topic exchange on ch.
func NewPublisher(ch *amqp.Channel) Publisher {
	return &publisher{ch: ch}
}

func (p *publisher) OrderPlaced(ctx context.Context, ev OrderPlaced) error {
	return p.publish(ctx, KeyOrderPlaced, ev)
}

func (p *publisher) RentalReturned(ctx context.Context, ev RentalReturned) error {
	return p.publish(ctx, KeyRentalReturned, ev)
}

func (p *publisher) publish(ctx context.Context, key string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("could not marshal %s: %w", key, err)
	}
	return p.ch.PublishWithContext(ctx,
		ExchangeName, // exchange
		key,          // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    uuid.NewString(),
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Discard drops every event. Used when no broker is configured.
type Discard struct{ Log *slog.Logger }

func (d Discard) OrderPlaced(ctx context.Context, ev OrderPlaced) error {
	if d.Log != nil {
		d.Log.Debug("event dropped", "key", KeyOrderPlaced, "order_id", ev.OrderID)
	}
	return nil
}

func (d Discard) RentalReturned(ctx context.Context, ev RentalReturned) error {
	if d.Log != nil {
		d.Log.Debug("event dropped", "key", KeyRentalReturned, "item_id", ev.ItemID)
	}
	return nil
}
