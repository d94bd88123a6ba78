package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event types published on the order events topic.
const (
	EventOrderCreated     = "order.created"
	EventOrderCancelled   = "order.cancelled"
	EventOrderStatus      = "order.status_changed"
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// OrderEvent is the message body for every order and payment notification.
type OrderEvent struct {
	Type          string          `json:"type"`
	OrderID       string          `json:"order_id"`
	OrderNumber   string          `json:"order_number"`
	UserID        string          `json:"user_id"`
	Status        OrderStatus     `json:"status"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaymentID     string          `json:"payment_id,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// NewOrderEvent snapshots o into an event of the given type.
func NewOrderEvent(eventType string, o *Order) OrderEvent {
	e := OrderEvent{
		Type:          eventType,
		OrderID:       o.ID.String(),
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		TotalAmount:   o.TotalAmount,
		Timestamp:     time.Now().UTC(),
	}
	if o.RazorpayPaymentID != nil {
		e.PaymentID = *o.RazorpayPaymentID
	}
	return e
}
