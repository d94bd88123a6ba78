package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of a cart. Weight only matters for products sold by the kg.
type CartItem struct {
	ProductID uuid.UUID           `json:"product_id"`
	Quantity  int                 `json:"quantity"`
	Weight    decimal.NullDecimal `json:"weight"`
}

// Cart is the per-user staging area, persisted in Redis.
type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart returns an empty cart for userID.
func NewCart(userID string) *Cart {
	return &Cart{UserID: userID, Items: []CartItem{}}
}

// Find returns the index of the line for productID, or -1.
func (c *Cart) Find(productID uuid.UUID) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// Remove drops the line for productID if present.
func (c *Cart) Remove(productID uuid.UUID) {
	items := make([]CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
}

type AddCartItemRequest struct {
	ProductID uuid.UUID           `json:"productId" binding:"required"`
	Quantity  *int                `json:"quantity"`
	Weight    decimal.NullDecimal `json:"weight"`
}

type UpdateCartItemRequest struct {
	Quantity int                 `json:"quantity"`
	Weight   decimal.NullDecimal `json:"weight"`
}

// CartProduct is the live product summary attached to a cart line.
type CartProduct struct {
	ID          uuid.UUID       `json:"_id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	PriceUnit   PriceUnit       `json:"priceUnit"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock"`
	IsAvailable bool            `json:"isAvailable"`
}

// CartLineView is a cart line populated with live product data; Product is nil
// when the product has been removed from the catalog.
type CartLineView struct {
	Product  *CartProduct        `json:"product"`
	Quantity int                 `json:"quantity"`
	Weight   decimal.NullDecimal `json:"weight"`
}

type CartSummary struct {
	UserID string         `json:"user"`
	Items  []CartLineView `json:"items"`
}

// CartView is what GET /cart returns.
type CartView struct {
	Cart        CartSummary     `json:"cart"`
	TotalItems  int             `json:"totalItems"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}
