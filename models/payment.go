package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// CreateGatewayOrderRequest asks the gateway for an order handle. Amount is in rupees.
type CreateGatewayOrderRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Receipt  string  `json:"receipt"`
}

// VerifyOrderData is what the storefront collected before redirecting to the gateway.
type VerifyOrderData struct {
	ShippingAddress *ShippingAddress `json:"shippingAddress"`
	Notes           string           `json:"notes"`
}

// VerifyPaymentRequest is the synchronous gateway callback relayed by the storefront.
type VerifyPaymentRequest struct {
	RazorpayOrderID   string          `json:"razorpay_order_id"`
	RazorpayPaymentID string          `json:"razorpay_payment_id"`
	RazorpaySignature string          `json:"razorpay_signature"`
	OrderData         VerifyOrderData `json:"orderData"`
}

// VerifyPaymentResult carries the order and whether it was created by this call.
type VerifyPaymentResult struct {
	Order   *Order
	Created bool
}

// WebhookEvent is the subset of a gateway webhook body the service reads.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string `json:"id"`
				OrderID string `json:"order_id"`
				Status  string `json:"status"`
				Amount  int64  `json:"amount"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

const (
	WebhookPaymentCaptured = "payment.captured"
	WebhookPaymentFailed   = "payment.failed"
)

// PaymentWebhookEvent is an audit row for every signature-verified webhook delivery.
type PaymentWebhookEvent struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Event             string          `gorm:"type:varchar(64);not null;index" json:"event"`
	RazorpayOrderID   string          `gorm:"type:varchar(64);index" json:"razorpay_order_id"`
	RazorpayPaymentID string          `gorm:"type:varchar(64)" json:"razorpay_payment_id"`
	OrderID           *uuid.UUID      `gorm:"type:uuid" json:"order_id,omitempty"`
	Outcome           string          `gorm:"type:varchar(32);not null" json:"outcome"`
	Payload           json.RawMessage `gorm:"type:jsonb" json:"payload"`
	ReceivedAt        time.Time       `gorm:"autoCreateTime" json:"received_at"`
}

// Webhook outcomes recorded on the audit row.
const (
	WebhookOutcomeApplied   = "applied"
	WebhookOutcomeUnmatched = "unmatched"
	WebhookOutcomeSkipped   = "skipped"
	WebhookOutcomeIgnored   = "ignored"
	WebhookOutcomeMalformed = "malformed"
)
