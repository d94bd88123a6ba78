package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bakery-service/logger"
	"bakery-service/models"
	aws_pkg "bakery-service/pkg/aws"
	"bakery-service/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	defaultCurrency  = "INR"
	defaultPaidNotes = "Paid via Razorpay UPI"
	placeholderField = "To be updated"
)

// PaymentService reconciles gateway payments with orders.
type PaymentService interface {
	CreateGatewayOrder(ctx context.Context, req *models.CreateGatewayOrderRequest) (map[string]interface{}, *ServiceError)
	KeyID() string
	VerifyPayment(ctx context.Context, principal models.Principal, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResult, *ServiceError)
	HandleWebhook(ctx context.Context, signature string, body []byte) *ServiceError
}

type paymentServiceImpl struct {
	gateway       Gateway
	keySecret     string
	webhookSecret string
	orders        repository.OrderRepository
	products      repository.ProductRepository
	carts         repository.CartRepository
	webhookEvents repository.WebhookEventRepository
	events        EventPublisher
	metrics       MetricsRecorder
	logger        *zap.Logger
}

// PaymentSecrets are the shared secrets used to check gateway signatures.
type PaymentSecrets struct {
	KeySecret     string
	WebhookSecret string
}

func NewPaymentService(
	gateway Gateway,
	secrets PaymentSecrets,
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	webhookEvents repository.WebhookEventRepository,
	events EventPublisher,
	metrics MetricsRecorder,
	logger *zap.Logger,
) PaymentService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &paymentServiceImpl{
		gateway:       gateway,
		keySecret:     secrets.KeySecret,
		webhookSecret: secrets.WebhookSecret,
		orders:        orders,
		products:      products,
		carts:         carts,
		webhookEvents: webhookEvents,
		events:        events,
		metrics:       metrics,
		logger:        logger,
	}
}

func (s *paymentServiceImpl) KeyID() string {
	return s.gateway.KeyID()
}

// CreateGatewayOrder opens a gateway order for amount rupees.
func (s *paymentServiceImpl) CreateGatewayOrder(ctx context.Context, req *models.CreateGatewayOrderRequest) (map[string]interface{}, *ServiceError) {
	if req.Amount <= 0 {
		return nil, badRequest(CodeInvalidAmount, "Invalid amount")
	}
	paise := decimal.NewFromFloat(req.Amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	receipt := req.Receipt
	if receipt == "" {
		receipt = fmt.Sprintf("receipt_%d", time.Now().UnixMilli())
	}

	order, err := s.gateway.CreateOrder(ctx, paise, currency, receipt)
	if err != nil {
		logger.For(ctx, s.logger).Error("Gateway order creation failed", zap.Int64("amount_paise", paise), zap.Error(err))
		return nil, internal(err)
	}
	return order, nil
}

// VerifyPayment materialises the order for a payment the gateway has confirmed
// through the checkout callback. Replays with the same payment id return the
// order created the first time.
func (s *paymentServiceImpl) VerifyPayment(ctx context.Context, principal models.Principal, req *models.VerifyPaymentRequest) (*models.VerifyPaymentResult, *ServiceError) {
	log := logger.For(ctx, s.logger)

	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return nil, badRequest(CodeMissingPaymentFields, "Missing payment details")
	}
	payload := []byte(req.RazorpayOrderID + "|" + req.RazorpayPaymentID)
	if !validSignature(s.keySecret, payload, req.RazorpaySignature) {
		log.Warn("Payment signature mismatch",
			zap.String("razorpay_order_id", req.RazorpayOrderID),
			zap.String("razorpay_payment_id", req.RazorpayPaymentID),
		)
		return nil, badRequest(CodeInvalidSignature, "Invalid payment signature")
	}

	if existing, svcErr := s.orderForPayment(ctx, req.RazorpayPaymentID); svcErr != nil || existing != nil {
		if svcErr != nil {
			return nil, svcErr
		}
		return &models.VerifyPaymentResult{Order: existing}, nil
	}

	cart, svcErr := loadCheckoutCart(ctx, s.carts, principal.UserID)
	if svcErr != nil {
		return nil, svcErr
	}
	// TODO: this path neither checks nor decrements stock, unlike CreateOrder;
	// route it through OrderRepository.PlaceOrder once the storefront can handle
	// an InsufficientStock answer after the customer has already paid.
	items, total, svcErr := priceCart(ctx, s.products, cart, false)
	if svcErr != nil {
		return nil, svcErr
	}

	now := time.Now()
	notes := req.OrderData.Notes
	if notes == "" {
		notes = defaultPaidNotes
	}
	order := &models.Order{
		ID:                uuid.New(),
		OrderNumber:       models.NewOrderNumber(now),
		UserID:            principal.UserID,
		Items:             items,
		TotalAmount:       total,
		ShippingAddress:   shippingOrPlaceholder(req.OrderData.ShippingAddress, principal),
		PaymentMethod:     models.PaymentMethodOnline,
		PaymentStatus:     models.PaymentStatusPaid,
		Status:            models.OrderStatusPending,
		Notes:             notes,
		RazorpayOrderID:   &req.RazorpayOrderID,
		RazorpayPaymentID: &req.RazorpayPaymentID,
		RazorpaySignature: &req.RazorpaySignature,
		PaidAt:            &now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		// A concurrent verify for the same payment won the unique index.
		if errors.Is(err, repository.ErrDuplicate) {
			if existing, svcErr := s.orderForPayment(ctx, req.RazorpayPaymentID); svcErr == nil && existing != nil {
				return &models.VerifyPaymentResult{Order: existing}, nil
			}
		}
		log.Error("Failed to create paid order", zap.String("razorpay_payment_id", req.RazorpayPaymentID), zap.Error(err))
		return nil, internal(err)
	}

	emptyCart(ctx, s.carts, cart, log)
	recordCount(s.metrics, aws_pkg.MetricOrdersCreated)
	recordCount(s.metrics, aws_pkg.MetricPaymentSucceeded)
	log.Info("Payment verified, order created",
		zap.String("order_id", order.ID.String()),
		zap.String("razorpay_payment_id", req.RazorpayPaymentID),
	)
	s.publish(ctx, models.EventOrderCreated, order)
	s.publish(ctx, models.EventPaymentSucceeded, order)
	return &models.VerifyPaymentResult{Order: order, Created: true}, nil
}

// HandleWebhook authenticates a gateway notification and applies it. Once the
// signature checks out the gateway always gets a success, so it stops retrying.
func (s *paymentServiceImpl) HandleWebhook(ctx context.Context, signature string, body []byte) *ServiceError {
	log := logger.For(ctx, s.logger)

	if signature == "" {
		return badRequest(CodeMissingSignature, "Missing signature")
	}
	if !validSignature(s.webhookSecret, body, signature) {
		log.Warn("Invalid webhook signature")
		return badRequest(CodeInvalidSignature, "Invalid signature")
	}

	audit := &models.PaymentWebhookEvent{ID: uuid.New(), Payload: auditPayload(body)}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Error("Malformed webhook payload", zap.Error(err))
		audit.Event = "unknown"
		audit.Outcome = models.WebhookOutcomeMalformed
		s.audit(ctx, audit)
		return nil
	}

	entity := event.Payload.Payment.Entity
	audit.Event = event.Event
	audit.RazorpayOrderID = entity.OrderID
	audit.RazorpayPaymentID = entity.ID

	log.Info("Webhook received", zap.String("event", event.Event), zap.String("razorpay_order_id", entity.OrderID))

	switch event.Event {
	case models.WebhookPaymentCaptured, models.WebhookPaymentFailed:
		audit.Outcome, audit.OrderID = s.applyPaymentEvent(ctx, log, event)
	default:
		audit.Outcome = models.WebhookOutcomeIgnored
	}

	s.audit(ctx, audit)
	return nil
}

func (s *paymentServiceImpl) applyPaymentEvent(ctx context.Context, log *zap.Logger, event models.WebhookEvent) (string, *uuid.UUID) {
	entity := event.Payload.Payment.Entity
	if entity.OrderID == "" {
		return models.WebhookOutcomeUnmatched, nil
	}

	order, err := s.orders.FindByGatewayOrderID(ctx, entity.OrderID)
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("Webhook for unknown gateway order", zap.String("razorpay_order_id", entity.OrderID))
		return models.WebhookOutcomeUnmatched, nil
	}
	if err != nil {
		log.Error("Webhook order lookup failed", zap.Error(err))
		return models.WebhookOutcomeSkipped, nil
	}
	if order.PaymentStatus == models.PaymentStatusPaid {
		log.Info("Skipping webhook for paid order", zap.String("order_id", order.ID.String()))
		return models.WebhookOutcomeSkipped, &order.ID
	}

	fields := map[string]interface{}{}
	eventType := models.EventPaymentFailed
	if event.Event == models.WebhookPaymentCaptured {
		now := time.Now()
		fields["payment_status"] = models.PaymentStatusPaid
		fields["paid_at"] = now
		if entity.ID != "" {
			fields["razorpay_payment_id"] = entity.ID
			order.RazorpayPaymentID = &entity.ID
		}
		order.PaymentStatus = models.PaymentStatusPaid
		order.PaidAt = &now
		eventType = models.EventPaymentSucceeded
	} else {
		fields["payment_status"] = models.PaymentStatusFailed
		order.PaymentStatus = models.PaymentStatusFailed
	}

	if err := s.orders.UpdatePayment(ctx, order.ID, fields); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return models.WebhookOutcomeSkipped, &order.ID
		}
		log.Error("Failed to apply webhook", zap.String("order_id", order.ID.String()), zap.Error(err))
		return models.WebhookOutcomeSkipped, &order.ID
	}

	if eventType == models.EventPaymentSucceeded {
		recordCount(s.metrics, aws_pkg.MetricPaymentSucceeded)
	} else {
		recordCount(s.metrics, aws_pkg.MetricPaymentFailed)
	}
	log.Info("Order payment updated via webhook",
		zap.String("order_id", order.ID.String()),
		zap.String("payment_status", string(order.PaymentStatus)),
	)
	s.publish(ctx, eventType, order)
	return models.WebhookOutcomeApplied, &order.ID
}

func (s *paymentServiceImpl) orderForPayment(ctx context.Context, paymentID string) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByPaymentID(ctx, paymentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internal(err)
	}
	return order, nil
}

func (s *paymentServiceImpl) audit(ctx context.Context, e *models.PaymentWebhookEvent) {
	if s.webhookEvents == nil {
		return
	}
	if err := s.webhookEvents.Create(ctx, e); err != nil {
		s.logger.Warn("Failed to record webhook event", zap.String("event", e.Event), zap.Error(err))
	}
}

func (s *paymentServiceImpl) publish(ctx context.Context, eventType string, order *models.Order) {
	if err := publishDetached(ctx, s.events, models.NewOrderEvent(eventType, order)); err != nil {
		s.logger.Warn("Failed to publish payment event",
			zap.String("event", eventType),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

// auditPayload keeps the body verbatim when it is JSON; anything else is
// wrapped as a JSON string so the jsonb column accepts it.
func auditPayload(body []byte) json.RawMessage {
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	quoted, _ := json.Marshal(string(body))
	return quoted
}

func shippingOrPlaceholder(addr *models.ShippingAddress, principal models.Principal) models.ShippingAddress {
	if addr != nil {
		return *addr
	}
	return models.ShippingAddress{
		Name:    principal.Name,
		Street:  placeholderField,
		City:    placeholderField,
		State:   placeholderField,
		Pincode: "000000",
	}
}
