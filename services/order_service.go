package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"bakery-service/logger"
	"bakery-service/models"
	aws_pkg "bakery-service/pkg/aws"
	"bakery-service/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderService covers checkout and the order lifecycle.
type OrderService interface {
	CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.Order, *ServiceError)
	ListUserOrders(ctx context.Context, userID string) ([]models.Order, *ServiceError)
	GetOrder(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Order, *ServiceError)
	ListAllOrders(ctx context.Context, q models.OrderListQuery) (*models.OrderPage, *ServiceError)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, *ServiceError)
	CancelOrder(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Order, *ServiceError)
}

type orderServiceImpl struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	carts    repository.CartRepository
	events   EventPublisher
	cache    *CacheManager
	metrics  MetricsRecorder
	logger   *zap.Logger
}

// NewOrderService creates an OrderService. cache and metrics may be nil.
func NewOrderService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	carts repository.CartRepository,
	events EventPublisher,
	cache *CacheManager,
	metrics MetricsRecorder,
	logger *zap.Logger,
) OrderService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &orderServiceImpl{
		orders:   orders,
		products: products,
		carts:    carts,
		events:   events,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
	}
}

// CreateOrder turns the caller's cart into an order. Stock for every line is
// taken in the same transaction that inserts the order.
func (s *orderServiceImpl) CreateOrder(ctx context.Context, userID string, req *models.CreateOrderRequest) (*models.Order, *ServiceError) {
	log := logger.For(ctx, s.logger)

	cart, svcErr := loadCheckoutCart(ctx, s.carts, userID)
	if svcErr != nil {
		return nil, svcErr
	}

	items, total, svcErr := priceCart(ctx, s.products, cart, true)
	if svcErr != nil {
		return nil, svcErr
	}

	method := req.PaymentMethod
	if method == "" {
		method = models.PaymentMethodCOD
	}
	order := &models.Order{
		ID:              uuid.New(),
		OrderNumber:     models.NewOrderNumber(time.Now()),
		UserID:          userID,
		Items:           items,
		TotalAmount:     total,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   method,
		PaymentStatus:   models.PaymentStatusPending,
		Status:          models.OrderStatusPending,
		Notes:           req.Notes,
	}

	if err := s.orders.PlaceOrder(ctx, order); err != nil {
		if productID, ok := repository.IsInsufficientStock(err); ok {
			log.Warn("Stock changed during checkout", zap.String("product_id", productID.String()))
			return nil, badRequest(CodeInsufficientStock, "Insufficient stock for %s", lineName(items, productID))
		}
		log.Error("Failed to place order", zap.String("user_id", userID), zap.Error(err))
		recordCount(s.metrics, aws_pkg.MetricOrdersFailed)
		return nil, internal(err)
	}

	emptyCart(ctx, s.carts, cart, log)
	s.stockChanged(ctx)
	recordCount(s.metrics, aws_pkg.MetricOrdersCreated)

	log.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.String("total", order.TotalAmount.StringFixed(2)),
	)
	s.publish(ctx, models.EventOrderCreated, order)
	return order, nil
}

func (s *orderServiceImpl) ListUserOrders(ctx context.Context, userID string) ([]models.Order, *ServiceError) {
	orders, err := s.orders.FindByUserID(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

func (s *orderServiceImpl) GetOrder(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Order, *ServiceError) {
	order, svcErr := s.find(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !order.IsOwnedBy(principal.UserID) && !principal.IsAdmin() {
		return nil, forbidden("Not authorized to view this order")
	}
	return order, nil
}

func (s *orderServiceImpl) ListAllOrders(ctx context.Context, q models.OrderListQuery) (*models.OrderPage, *ServiceError) {
	orders, total, err := s.orders.FindAll(ctx, q)
	if err != nil {
		s.logger.Error("Failed to fetch all orders", zap.Error(err))
		return nil, internal(err)
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return &models.OrderPage{
		Orders: orders,
		Page:   q.Page,
		Pages:  calculateTotalPages(total, q.Limit),
		Total:  total,
	}, nil
}

// UpdateStatus is the admin status change. Moves outside the transition table
// are rejected; cancelling through here gives the stock back like CancelOrder.
func (s *orderServiceImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Order, *ServiceError) {
	log := logger.For(ctx, s.logger)

	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, badRequest(CodeInvalidStatus, "Invalid status")
	}
	order, svcErr := s.find(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if order.Status == next {
		return order, nil
	}
	if !order.Status.CanTransitionTo(next) {
		log.Warn("Rejected order status transition",
			zap.String("order_id", id.String()),
			zap.String("from", string(order.Status)),
			zap.String("to", string(next)),
		)
		return nil, badRequest(CodeInvalidTransition, "Cannot change order status from %s to %s", order.Status, next)
	}

	if next == models.OrderStatusCancelled {
		return s.cancel(ctx, order)
	}

	extra := map[string]interface{}{}
	if next == models.OrderStatusDelivered {
		extra["delivered_at"] = time.Now()
	}
	if err := s.orders.UpdateStatus(ctx, id, order.Status, next, extra); err != nil {
		return nil, s.writeFailed(log, id, err)
	}

	updated, svcErr := s.find(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	log.Info("Order status updated",
		zap.String("order_id", id.String()),
		zap.String("from", string(order.Status)),
		zap.String("to", string(next)),
	)
	s.publish(ctx, models.EventOrderStatus, updated)
	return updated, nil
}

// CancelOrder lets the owner (or an admin) cancel an order that has not been
// picked up yet.
func (s *orderServiceImpl) CancelOrder(ctx context.Context, principal models.Principal, id uuid.UUID) (*models.Order, *ServiceError) {
	order, svcErr := s.find(ctx, id)
	if svcErr != nil {
		return nil, svcErr
	}
	if !order.IsOwnedBy(principal.UserID) && !principal.IsAdmin() {
		return nil, forbidden("Not authorized to cancel this order")
	}
	if order.Status != models.OrderStatusPending {
		return nil, badRequest(CodeInvalidState, "Order cannot be cancelled at this stage")
	}
	return s.cancel(ctx, order)
}

func (s *orderServiceImpl) cancel(ctx context.Context, order *models.Order) (*models.Order, *ServiceError) {
	log := logger.For(ctx, s.logger)

	if err := s.orders.Cancel(ctx, order, order.Status); err != nil {
		return nil, s.writeFailed(log, order.ID, err)
	}
	order.Status = models.OrderStatusCancelled

	s.stockChanged(ctx)
	recordCount(s.metrics, aws_pkg.MetricOrdersCancelled)
	log.Info("Order cancelled", zap.String("order_id", order.ID.String()))
	s.publish(ctx, models.EventOrderCancelled, order)
	return order, nil
}

func (s *orderServiceImpl) find(ctx context.Context, id uuid.UUID) (*models.Order, *ServiceError) {
	order, err := s.orders.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("Order not found")
	}
	if err != nil {
		return nil, internal(err)
	}
	return order, nil
}

func (s *orderServiceImpl) writeFailed(log *zap.Logger, id uuid.UUID, err error) *ServiceError {
	if errors.Is(err, repository.ErrConflict) {
		return &ServiceError{
			StatusCode: http.StatusConflict,
			Code:       CodeInvalidState,
			Message:    "Order was modified concurrently, reload and retry",
		}
	}
	log.Error("Failed to update order", zap.String("order_id", id.String()), zap.Error(err))
	return internal(err)
}

// stockChanged drops cached listings, which carry stock levels.
func (s *orderServiceImpl) stockChanged(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func (s *orderServiceImpl) publish(ctx context.Context, eventType string, order *models.Order) {
	if err := publishDetached(ctx, s.events, models.NewOrderEvent(eventType, order)); err != nil {
		s.logger.Warn("Failed to publish order event",
			zap.String("event", eventType),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}
}

// loadCheckoutCart returns the caller's cart or EmptyCart.
func loadCheckoutCart(ctx context.Context, carts repository.CartRepository, userID string) (*models.Cart, *ServiceError) {
	cart, err := carts.Get(ctx, userID)
	if err != nil {
		return nil, internal(err)
	}
	if cart == nil || len(cart.Items) == 0 {
		return nil, badRequest(CodeEmptyCart, "Cart is empty")
	}
	return cart, nil
}

// priceCart snapshots every cart line against the live product. With
// checkStock the line must also fit the current stock level.
func priceCart(ctx context.Context, products repository.ProductRepository, cart *models.Cart, checkStock bool) ([]models.OrderItem, decimal.Decimal, *ServiceError) {
	items := make([]models.OrderItem, 0, len(cart.Items))
	total := decimal.Zero

	for _, line := range cart.Items {
		p, err := products.FindByID(ctx, line.ProductID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, decimal.Zero, badRequest(CodeProductMissing, "Product %s not found", line.ProductID)
		}
		if err != nil {
			return nil, decimal.Zero, internal(err)
		}
		if checkStock && p.Stock < line.Quantity {
			return nil, decimal.Zero, badRequest(CodeInsufficientStock, "Insufficient stock for %s. Available: %d", p.Name, p.Stock)
		}

		weight := line.Weight
		if !models.HasWeight(weight) {
			weight = decimal.NullDecimal{}
		}
		price := p.LinePrice(line.Quantity, weight)
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			ProductID: p.ID,
			Name:      p.Name,
			Quantity:  line.Quantity,
			Weight:    weight,
			Price:     price,
			PriceUnit: p.PriceUnit,
		})
		total = total.Add(price)
	}
	return items, total, nil
}

// emptyCart runs after the order is durable; a failure leaves a stale cart
// but the order stands.
func emptyCart(ctx context.Context, carts repository.CartRepository, cart *models.Cart, log *zap.Logger) {
	cart.Items = []models.CartItem{}
	if err := carts.Save(ctx, cart); err != nil {
		log.Warn("Failed to clear cart after order", zap.String("user_id", cart.UserID), zap.Error(err))
	}
}

func lineName(items []models.OrderItem, productID uuid.UUID) string {
	for _, it := range items {
		if it.ProductID == productID {
			return it.Name
		}
	}
	return fmt.Sprintf("product %s", productID)
}
