package repositories

import (
	"context"

	"leadsync/internal/models"

	"gorm.io/gorm"
)

// ===========================================================================
// WebhookEvent Repository GORM Implementation
// ===========================================================================

// webhookEventRepo triển khai WebhookEventRepository với GORM
type webhookEventRepo struct {
	db *gorm.DB
}

// NewWebhookEventRepository tạo instance mới của WebhookEventRepository
func NewWebhookEventRepository(db *gorm.DB) WebhookEventRepository {
	return &webhookEventRepo{db: db}
}

// FindByEventID tìm event theo channel và event ID
func (r *webhookEventRepo) FindByEventID(ctx context.Context, channel models.Channel, eventID string) (*models.WebhookEvent, error) {
	var event models.WebhookEvent
	err := r.db.WithContext(ctx).
		Where("channel = ? AND event_id = ?", channel, eventID).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Create tạo webhook event mới
func (r *webhookEventRepo) Create(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// Update cập nhật webhook event
func (r *webhookEventRepo) Update(ctx context.Context, event *models.WebhookEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}
