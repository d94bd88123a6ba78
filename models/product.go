package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func init() {
	// Prices go over the wire as JSON numbers, the storefront does arithmetic on them.
	decimal.MarshalJSONWithoutQuotes = true
}

// PriceUnit is how a product is priced.
type PriceUnit string

const (
	PriceUnitPiece PriceUnit = "piece"
	PriceUnitKg    PriceUnit = "kg"
)

// Valid reports whether u is a known unit.
func (u PriceUnit) Valid() bool {
	return u == PriceUnitPiece || u == PriceUnitKg
}

// Product is a catalog entry. Stock is guarded by a CHECK constraint and by the
// conditional decrement in the repository; it never goes negative.
type Product struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"_id"`
	Name        string          `gorm:"type:varchar(200);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"price"`
	PriceUnit   PriceUnit       `gorm:"type:varchar(10);not null" json:"priceUnit"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"category"`
	Subcategory string          `gorm:"type:varchar(100)" json:"subcategory,omitempty"`
	Image       string          `gorm:"type:varchar(1024)" json:"image"`
	Stock       int             `gorm:"not null;check:stock >= 0" json:"stock"`
	IsAvailable bool            `gorm:"not null" json:"isAvailable"`
	IsFeatured  bool            `gorm:"not null" json:"isFeatured"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// InStock mirrors the storefront's "in stock" badge.
func (p *Product) InStock() bool {
	return p.Stock > 0 && p.IsAvailable
}

// HasWeight reports whether weight is a usable positive weight.
func HasWeight(weight decimal.NullDecimal) bool {
	return weight.Valid && weight.Decimal.IsPositive()
}

// LinePrice prices a quantity (or a weight, for products sold by the kg).
func (p *Product) LinePrice(quantity int, weight decimal.NullDecimal) decimal.Decimal {
	if p.PriceUnit == PriceUnitKg && HasWeight(weight) {
		return p.Price.Mul(weight.Decimal).Round(2)
	}
	return p.Price.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// CreateProductRequest is the admin payload for a new product.
type CreateProductRequest struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	PriceUnit   PriceUnit       `json:"priceUnit" validate:"omitempty,oneof=piece kg"`
	CategoryID  uuid.UUID       `json:"category" validate:"required"`
	Subcategory string          `json:"subcategory"`
	Image       string          `json:"image"`
	Stock       int             `json:"stock" validate:"gte=0"`
	IsFeatured  bool            `json:"isFeatured"`
}

// UpdateProductRequest carries the fields an admin may patch; nil means unchanged.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price"`
	PriceUnit   *PriceUnit       `json:"priceUnit" validate:"omitempty,oneof=piece kg"`
	CategoryID  *uuid.UUID       `json:"category"`
	Subcategory *string          `json:"subcategory"`
	Image       *string          `json:"image"`
	Stock       *int             `json:"stock" validate:"omitempty,gte=0"`
	IsAvailable *bool            `json:"isAvailable"`
	IsFeatured  *bool            `json:"isFeatured"`
}

// UpdateStockRequest sets the absolute stock level.
type UpdateStockRequest struct {
	Stock *int `json:"stock" binding:"required,gte=0"`
}

// ProductFilter holds the list query for the storefront.
type ProductFilter struct {
	CategoryID  *uuid.UUID
	Subcategory string
	Search      string
	Featured    bool
	InStock     bool
	Sort        string
	Page        int
	Limit       int
}

// ProductPage is a paginated product listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Page     int       `json:"page"`
	Pages    int64     `json:"pages"`
	Total    int64     `json:"total"`
}
