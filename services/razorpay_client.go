package services

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// Gateway creates orders on the hosted payment gateway.
type Gateway interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (map[string]interface{}, error)
	KeyID() string
}

// RazorpayGateway is built once from configuration and passed to the payment service.
type RazorpayGateway struct {
	client *razorpay.Client
	keyID  string
}

func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		keyID:  keyID,
	}
}

// CreateOrder asks the gateway for an auto-captured order. The SDK call is
// blocking and takes no context; ctx is checked before the request goes out.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (map[string]interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	order, err := g.client.Order.Create(map[string]interface{}{
		"amount":          amountPaise,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}
	return order, nil
}

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}
