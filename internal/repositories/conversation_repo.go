package repositories

import (
	"context"
	"errors"

	"leadsync/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Conversation Repository GORM Implementation
// ===========================================================================

// conversationRepo triển khai ConversationRepository với GORM
type conversationRepo struct {
	db *gorm.DB
}

// NewConversationRepository tạo instance mới của ConversationRepository
func NewConversationRepository(db *gorm.DB) ConversationRepository {
	return &conversationRepo{db: db}
}

// FindByID tìm conversation theo ID
func (r *conversationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).
		Preload("Lead").
		First(&conv, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindByCompany lấy danh sách conversations trong company
func (r *conversationRepo) FindByCompany(ctx context.Context, companyID uuid.UUID, opts FindOptions) ([]models.Conversation, int64, error) {
	opts.SetDefaults()

	var conversations []models.Conversation
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("company_id = ?", companyID)

	// Apply filters
	if opts.Filters != nil {
		if mode, ok := opts.Filters["mode"]; ok {
			query = query.Where("mode = ?", mode)
		}
		if channel, ok := opts.Filters["channel"]; ok {
			query = query.Where("channel = ?", channel)
		}
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get records, conversation mới nhất lên đầu
	if opts.OrderBy == "created_at" {
		opts.OrderBy = "last_message_at"
	}
	err := query.
		Preload("Lead").
		Order(opts.GetOrderClause() + " NULLS LAST").
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&conversations).Error

	return conversations, total, err
}

// FindByLead tìm conversation của lead trên một channel
func (r *conversationRepo) FindByLead(ctx context.Context, leadID, companyID uuid.UUID, channel models.Channel) (*models.Conversation, error) {
	var conv models.Conversation
	err := r.db.WithContext(ctx).
		Where("lead_id = ? AND company_id = ? AND channel = ?", leadID, companyID, channel).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

// FindOrCreate tìm hoặc tạo mới conversation
// Conversation mới luôn bắt đầu ở mode BOT. Lỗi duplicate key khi hai
// request đồng thời cùng tạo được xử lý bằng cách fetch lại
func (r *conversationRepo) FindOrCreate(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	// Thử tìm trước
	existing, err := r.FindByLead(ctx, conv.LeadID, conv.CompanyID, conv.Channel)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	// Không tìm thấy, tạo mới ở mode BOT
	if conv.Mode == "" {
		conv.Mode = models.ModeBot
	}
	if err := r.db.WithContext(ctx).Create(conv).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			existing, ferr := r.FindByLead(ctx, conv.LeadID, conv.CompanyID, conv.Channel)
			if ferr != nil {
				return nil, false, ferr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return conv, true, nil
}

// Update cập nhật conversation
func (r *conversationRepo) Update(ctx context.Context, conv *models.Conversation) error {
	return r.db.WithContext(ctx).Save(conv).Error
}
