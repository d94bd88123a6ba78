package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusConfirmed      OrderStatus = "confirmed"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

// fulfilment is the happy path; a status may only move forward along it.
var fulfilment = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

// cancellable lists the statuses from which an order can still be cancelled.
var cancellable = map[OrderStatus]bool{
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
}

// ParseOrderStatus maps user input onto a known status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.TrimSpace(s))
	if st == OrderStatusCancelled || st.rank() >= 0 {
		return st, nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

func (s OrderStatus) rank() int {
	for i, st := range fulfilment {
		if st == s {
			return i
		}
	}
	return -1
}

// CanTransitionTo reports whether the order may move from s to next.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s == next {
		return true
	}
	if s.Terminal() {
		return false
	}
	if next == OrderStatusCancelled {
		return cancellable[s]
	}
	from, to := s.rank(), next.rank()
	return from >= 0 && to > from
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodOnline PaymentMethod = "online"
)

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// ShippingAddress is embedded in the orders table with a shipping_ prefix.
type ShippingAddress struct {
	Name    string `gorm:"type:varchar(120)" json:"name"`
	Phone   string `gorm:"type:varchar(20)" json:"phone"`
	Street  string `gorm:"type:varchar(255)" json:"street"`
	City    string `gorm:"type:varchar(100)" json:"city"`
	State   string `gorm:"type:varchar(100)" json:"state"`
	Pincode string `gorm:"type:varchar(12)" json:"pincode"`
}

// Order is created once and afterwards only its status and payment fields change.
type Order struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey" json:"_id"`
	OrderNumber       string          `gorm:"type:varchar(40);uniqueIndex;not null" json:"orderNumber"`
	UserID            string          `gorm:"type:varchar(64);not null;index" json:"user"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"totalAmount"`
	ShippingAddress   ShippingAddress `gorm:"embedded;embeddedPrefix:shipping_" json:"shippingAddress"`
	PaymentMethod     PaymentMethod   `gorm:"type:varchar(10);not null" json:"paymentMethod"`
	PaymentStatus     PaymentStatus   `gorm:"type:varchar(10);not null" json:"paymentStatus"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;index" json:"status"`
	Notes             string          `gorm:"type:text" json:"notes,omitempty"`
	RazorpayOrderID   *string         `gorm:"type:varchar(64);index" json:"razorpayOrderId"`
	RazorpayPaymentID *string         `gorm:"type:varchar(64);uniqueIndex" json:"razorpayPaymentId"`
	RazorpaySignature *string         `gorm:"type:varchar(128)" json:"razorpaySignature,omitempty"`
	PaidAt            *time.Time      `json:"paidAt"`
	DeliveredAt       *time.Time      `json:"deliveredAt,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// OrderItem is a frozen snapshot of a product at purchase time.
type OrderItem struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey" json:"_id"`
	OrderID   uuid.UUID           `gorm:"type:uuid;not null;index" json:"-"`
	ProductID uuid.UUID           `gorm:"type:uuid;not null" json:"product"`
	Name      string              `gorm:"type:varchar(200)" json:"name"`
	Quantity  int                 `gorm:"not null" json:"quantity"`
	Weight    decimal.NullDecimal `gorm:"type:numeric(10,3)" json:"weight"`
	Price     decimal.Decimal     `gorm:"type:numeric(12,2);not null" json:"price"`
	PriceUnit PriceUnit           `gorm:"type:varchar(10);not null" json:"priceUnit"`
}

// IsOwnedBy reports whether userID placed the order.
func (o *Order) IsOwnedBy(userID string) bool {
	return o.UserID == userID
}

// NewOrderNumber returns a human-readable order number. The random suffix makes
// collisions between concurrent checkouts practically impossible; the unique
// index still has the final word.
func NewOrderNumber(now time.Time) string {
	return "ORD-" + now.Format("20060102-150405") + "-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

type CreateOrderRequest struct {
	ShippingAddress ShippingAddress `json:"shippingAddress" binding:"required"`
	PaymentMethod   PaymentMethod   `json:"paymentMethod" binding:"omitempty,oneof=cod online"`
	Notes           string          `json:"notes"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderListQuery is the admin listing filter.
type OrderListQuery struct {
	Status *OrderStatus
	Page   int
	Limit  int
}

// OrderPage is a paginated admin listing.
type OrderPage struct {
	Orders []Order `json:"orders"`
	Page   int     `json:"page"`
	Pages  int64   `json:"pages"`
	Total  int64   `json:"total"`
}
