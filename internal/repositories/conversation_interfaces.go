package repositories

import (
	"context"

	"leadsync/internal/models"

	"github.com/google/uuid"
)

// ===========================================================================
// Lead Repository Interface
// Quản lý CRUD cho leads (khách hàng tiềm năng)
// ===========================================================================

// LeadRepository interface cho lead data access
type LeadRepository interface {
	// FindByID tìm lead theo ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Lead, error)

	// FindByContact tìm lead theo (company, channel, contact)
	// Dùng để identify khách hàng từ inbound message
	FindByContact(ctx context.Context, companyID uuid.UUID, channel models.Channel, contact string) (*models.Lead, error)

	// FindByCompany lấy danh sách leads trong company
	FindByCompany(ctx context.Context, companyID uuid.UUID, opts FindOptions) ([]models.Lead, int64, error)

	// FindOrCreate tìm hoặc tạo mới lead
	// Idempotent: gọi nhiều lần với cùng (company, channel, contact) luôn
	// trả về cùng một lead. Trả về lead và bool (true nếu mới tạo)
	FindOrCreate(ctx context.Context, lead *models.Lead) (*models.Lead, bool, error)

	// Update cập nhật lead
	Update(ctx context.Context, lead *models.Lead) error
}

// ===========================================================================
// Conversation Repository Interface
// Quản lý CRUD cho conversations
// ===========================================================================

// ConversationRepository interface cho conversation data access
type ConversationRepository interface {
	// FindByID tìm conversation theo ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)

	// FindByCompany lấy danh sách conversations trong company
	FindByCompany(ctx context.Context, companyID uuid.UUID, opts FindOptions) ([]models.Conversation, int64, error)

	// FindByLead tìm conversation của lead trên một channel
	FindByLead(ctx context.Context, leadID, companyID uuid.UUID, channel models.Channel) (*models.Conversation, error)

	// FindOrCreate tìm hoặc tạo mới conversation
	// Conversation mới luôn bắt đầu ở mode BOT. Idempotent theo
	// (lead, company, channel). Trả về conversation, bool (true nếu mới tạo)
	FindOrCreate(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error)

	// Update cập nhật conversation
	Update(ctx context.Context, conv *models.Conversation) error
}

// ===========================================================================
// Message Repository Interface
// Quản lý messages — append-only, không update/delete
// ===========================================================================

// MessageRepository interface cho message data access
type MessageRepository interface {
	// FindByID tìm message theo ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Message, error)

	// FindByConversation lấy danh sách messages trong conversation
	// Mặc định sắp xếp theo created_at tăng dần (thứ tự thời gian)
	FindByConversation(ctx context.Context, conversationID uuid.UUID, opts FindOptions) ([]models.Message, int64, error)

	// FindRecent lấy N messages gần nhất, trả về theo thứ tự cũ → mới
	// Dùng cho AI context window
	FindRecent(ctx context.Context, conversationID uuid.UUID, limit int) ([]models.Message, error)

	// Create tạo message mới
	Create(ctx context.Context, msg *models.Message) error

	// UpdateMetadata cập nhật metadata gửi đi (delivered/failed)
	// Nội dung message không bao giờ thay đổi
	UpdateMetadata(ctx context.Context, id uuid.UUID, metadata models.MessageMetadata) error
}
