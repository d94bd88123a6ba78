package repository

import (
	"context"
	"errors"

	"bakery-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository defines order persistence. Stock-changing operations run the
// product updates and the order write in a single transaction.
type OrderRepository interface {
	// PlaceOrder decrements stock for every line and inserts the order, or
	// does neither.
	PlaceOrder(ctx context.Context, order *models.Order) error
	// Create inserts the order without touching stock.
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]models.Order, error)
	FindAll(ctx context.Context, q models.OrderListQuery) ([]models.Order, int64, error)
	FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error)
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	// UpdateStatus moves the order from one status to another plus any extra
	// columns. ErrConflict if the order is no longer in from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, extra map[string]interface{}) error
	// Cancel sets the order cancelled and returns every line's quantity to stock.
	Cancel(ctx context.Context, order *models.Order, from models.OrderStatus) error
	// UpdatePayment writes payment columns unless the order is already paid.
	UpdatePayment(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) OrderRepository {
	return &GormOrderRepository{db: db}
}

func assignIDs(order *models.Order) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	for i := range order.Items {
		if order.Items[i].ID == uuid.Nil {
			order.Items[i].ID = uuid.New()
		}
		order.Items[i].OrderID = order.ID
	}
}

func (r *GormOrderRepository) PlaceOrder(ctx context.Context, order *models.Order) error {
	assignIDs(order)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := decrementStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return translate(tx.Create(order).Error)
	})
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	assignIDs(order)
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

func (r *GormOrderRepository) findOne(ctx context.Context, query string, arg interface{}) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where(query, arg).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormOrderRepository) FindByPaymentID(ctx context.Context, paymentID string) (*models.Order, error) {
	return r.findOne(ctx, "razorpay_payment_id = ?", paymentID)
}

func (r *GormOrderRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error) {
	return r.findOne(ctx, "razorpay_order_id = ?", gatewayOrderID)
}

// FindByUserID returns all of a user's orders, newest first.
func (r *GormOrderRepository) FindByUserID(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&orders).Error
	return orders, err
}

// FindAll is the paginated admin listing.
func (r *GormOrderRepository) FindAll(ctx context.Context, q models.OrderListQuery) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if q.Status != nil {
		query = query.Where("status = ?", *q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	err := query.
		Preload("Items").
		Order("created_at DESC").
		Offset((q.Page - 1) * q.Limit).
		Limit(q.Limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *GormOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus, extra map[string]interface{}) error {
	fields := map[string]interface{}{"status": to}
	for k, v := range extra {
		fields[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

func (r *GormOrderRepository) Cancel(ctx context.Context, order *models.Order, from models.OrderStatus) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, from).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		for _, item := range order.Items {
			if err := restoreStock(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *GormOrderRepository) UpdatePayment(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status <> ?", id, models.PaymentStatusPaid).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// IsInsufficientStock extracts the product behind a failed decrement.
func IsInsufficientStock(err error) (uuid.UUID, bool) {
	var stockErr *InsufficientStockError
	if errors.As(err, &stockErr) {
		return stockErr.ProductID, true
	}
	return uuid.Nil, false
}
