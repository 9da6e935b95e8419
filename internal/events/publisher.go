// Package events publishes order lifecycle events to RabbitMQ so
// downstream consumers (notifications, fulfillment) can react without the
// API server knowing about them. Publishing is best-effort: a missing
// broker disables the publisher instead of failing checkout.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/j1vetr/EscapeTable/internal/order"
)

const OrderCreatedQueue = "order.created"

type OrderCreatedItem struct {
	ProductID       string `json:"productId"`
	ProductName     string `json:"productName"`
	Quantity        int    `json:"quantity"`
	SubtotalInCents int    `json:"subtotalInCents"`
}

type OrderCreated struct {
	EventType          string             `json:"eventType"`
	OrderID            string             `json:"orderId"`
	UserID             string             `json:"userId"`
	TotalAmountInCents int                `json:"totalAmountInCents"`
	PaymentMethod      string             `json:"paymentMethod"`
	Items              []OrderCreatedItem `json:"items"`
	Timestamp          time.Time          `json:"timestamp"`
}

type Publisher struct {
	conn *amqp.Connection
	ch   *amqp.Channel
}

// Dial connects to the broker and prepares the publisher. An empty URL
// returns a disabled (nil) publisher; callers publish through it safely.
func Dial(url string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	// Declare the queue up front so publish never fails due to missing infra.
	if _, err := ch.QueueDeclare(OrderCreatedQueue, true, false, false, false, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare %s: %w", OrderCreatedQueue, err)
	}

	return &Publisher{conn: conn, ch: ch}, nil
}

func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	chErr := p.ch.Close()
	if err := p.conn.Close(); err != nil {
		return err
	}
	return chErr
}

func (p *Publisher) PublishOrderCreated(ctx context.Context, o *order.Order) error {
	if p == nil {
		return nil
	}

	ev := OrderCreated{
		EventType:          "OrderCreated",
		OrderID:            o.ID,
		UserID:             o.UserID,
		TotalAmountInCents: o.TotalAmountInCents,
		PaymentMethod:      string(o.PaymentMethod),
		Timestamp:          time.Now().UTC(),
	}
	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderCreatedItem{
			ProductID:       it.ProductID,
			ProductName:     it.ProductName,
			Quantity:        it.Quantity,
			SubtotalInCents: it.SubtotalInCents,
		})
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal OrderCreated: %w", err)
	}

	return p.ch.PublishWithContext(ctx, "", OrderCreatedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
}
