package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Subcategory is a named grouping inside a category.
type Subcategory struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

// Subcategories keeps its order and is stored as a jsonb column.
type Subcategories []Subcategory

func (s Subcategories) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *Subcategories) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = Subcategories{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("subcategories: unsupported scan type %T", src)
	}
	return json.Unmarshal(raw, s)
}

type Category struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"_id"`
	Name          string        `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description   string        `gorm:"type:text" json:"description"`
	Image         string        `gorm:"type:varchar(1024)" json:"image"`
	Subcategories Subcategories `gorm:"type:jsonb;not null" json:"subcategories"`
	IsActive      bool          `gorm:"not null" json:"isActive"`
	CreatedAt     time.Time     `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time     `gorm:"autoUpdateTime" json:"updatedAt"`
}

type CreateCategoryRequest struct {
	Name          string        `json:"name" validate:"required,max=100"`
	Description   string        `json:"description"`
	Image         string        `json:"image"`
	Subcategories Subcategories `json:"subcategories" validate:"dive"`
}

type UpdateCategoryRequest struct {
	Name          *string       `json:"name" validate:"omitempty,max=100"`
	Description   *string       `json:"description"`
	Image         *string       `json:"image"`
	Subcategories Subcategories `json:"subcategories" validate:"omitempty,dive"`
	IsActive      *bool         `json:"isActive"`
}
