package events

import (
	"context"
	"time"

	"sleek-shop/internal/model"

	"github.com/shopspring/decimal"
)

// Order event types.
const (
	OrderCreated              = "order.created"
	OrderStatusChanged        = "order.status_changed"
	OrderPaymentStatusChanged = "order.payment_status_changed"
)

// OrderEvent is the payload published when an order changes.
type OrderEvent struct {
	Type          string                  `json:"type"`
	OrderID       string                  `json:"orderId"`
	OrderNumber   string                  `json:"orderNumber"`
	UserID        *int64                  `json:"userId,omitempty"`
	Status        model.FulfillmentStatus `json:"status"`
	PaymentStatus model.PaymentStatus     `json:"paymentStatus"`
	Total         decimal.Decimal         `json:"total"`
	OccurredAt    time.Time               `json:"occurredAt"`
}

// NewOrderEvent snapshots order into an event of the given type.
func NewOrderEvent(eventType string, order *model.Order) OrderEvent {
	return OrderEvent{
		Type:          eventType,
		OrderID:       order.ID.String(),
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.Total,
		OccurredAt:    time.Now().UTC(),
	}
}

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}

// NopPublisher discards every event.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, OrderEvent) error { return nil }

// Close implements Publisher.
func (NopPublisher) Close() error { return nil }
