package repository

import (
	"context"

	"gympay/internal/models"

	"gorm.io/gorm"
)

type WebhookEventRepository struct {
	db *gorm.DB
}

func NewWebhookEventRepository(db *gorm.DB) *WebhookEventRepository {
	return &WebhookEventRepository{db: db}
}

func (r *WebhookEventRepository) Create(ctx context.Context, ev *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(ev).Error
}

func (r *WebhookEventRepository) Update(ctx context.Context, ev *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Save(ev).Error
}

func (r *WebhookEventRepository) ListByResourceID(ctx context.Context, resourceID string) ([]models.WebhookEvent, error) {
	var out []models.WebhookEvent
	err := r.db.WithContext(ctx).Where("resource_id = ?", resourceID).Order("created_at desc").Find(&out).Error
	return out, err
}
