package repository

import (
	"context"

	"bakery-service/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WebhookEventRepository appends gateway webhook deliveries to the audit table.
type WebhookEventRepository interface {
	Create(ctx context.Context, event *models.PaymentWebhookEvent) error
}

type GormWebhookEventRepository struct {
	db *gorm.DB
}

func NewGormWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &GormWebhookEventRepository{db: db}
}

func (r *GormWebhookEventRepository) Create(ctx context.Context, event *models.PaymentWebhookEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(event).Error
}
