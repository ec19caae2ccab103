package repositories

import (
	"context"

	"leadsync/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Message Repository GORM Implementation
// ===========================================================================

// messageRepo triển khai MessageRepository với GORM
type messageRepo struct {
	db *gorm.DB
}

// NewMessageRepository tạo instance mới của MessageRepository
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepo{db: db}
}

// FindByID tìm message theo ID
func (r *messageRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var msg models.Message
	if err := r.db.WithContext(ctx).First(&msg, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// FindByConversation lấy danh sách messages trong conversation
func (r *messageRepo) FindByConversation(ctx context.Context, conversationID uuid.UUID, opts FindOptions) ([]models.Message, int64, error) {
	opts.SetDefaults()

	var messages []models.Message
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("conversation_id = ?", conversationID)

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Messages mặc định sort theo thứ tự thời gian (cũ → mới)
	if opts.OrderBy == "created_at" && opts.OrderDir == "desc" {
		opts.OrderDir = "asc"
	}

	// Get records
	err := query.
		Order(opts.GetOrderClause()).
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&messages).Error

	return messages, total, err
}

// FindRecent lấy N messages gần nhất, trả về theo thứ tự cũ → mới
func (r *messageRepo) FindRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, err
	}

	// Đảo lại thành thứ tự thời gian cho AI context
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// Create tạo message mới
func (r *messageRepo) Create(ctx context.Context, msg *models.Message) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// UpdateMetadata cập nhật metadata gửi đi, không đụng đến content
func (r *messageRepo) UpdateMetadata(ctx context.Context, id uuid.UUID, metadata models.MessageMetadata) error {
	return r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ?", id).
		Update("metadata", metadata).Error
}
