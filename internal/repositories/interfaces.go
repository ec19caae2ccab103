package repositories

import (
	"context"

	"leadsync/internal/models"

	"github.com/google/uuid"
)

// ===========================================================================
// Company Repository Interface
// Quản lý CRUD cho companies (tenants)
// ===========================================================================

// CompanyRepository interface cho company data access
type CompanyRepository interface {
	// FindByID tìm company theo ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)

	// FindByBotToken tìm company theo Telegram bot token
	// Dùng làm lookup key khi nhận inbound webhook
	FindByBotToken(ctx context.Context, token string) (*models.Company, error)

	// FindDefault trả về company active được tạo sớm nhất
	// Dùng làm fallback cho public lead form khi không chỉ định company
	FindDefault(ctx context.Context) (*models.Company, error)

	// Create tạo company mới
	Create(ctx context.Context, company *models.Company) error

	// Update cập nhật company
	Update(ctx context.Context, company *models.Company) error
}

// ===========================================================================
// User Repository Interface
// Quản lý CRUD cho users
// ===========================================================================

// UserRepository interface cho user data access
type UserRepository interface {
	// FindByID tìm user theo ID
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)

	// FindByEmail tìm user theo email trong company
	FindByEmail(ctx context.Context, companyID uuid.UUID, email string) (*models.User, error)

	// FindByCompany lấy danh sách users trong company
	FindByCompany(ctx context.Context, companyID uuid.UUID, opts FindOptions) ([]models.User, int64, error)

	// Create tạo user mới
	Create(ctx context.Context, user *models.User) error

	// Update cập nhật user
	Update(ctx context.Context, user *models.User) error
}

// ===========================================================================
// WebhookEvent Repository Interface
// Lưu trữ webhook events cho idempotency và debug
// ===========================================================================

// WebhookEventRepository interface cho webhook event data access
type WebhookEventRepository interface {
	// FindByEventID tìm event theo channel và event ID
	// Dùng để check duplicate
	FindByEventID(ctx context.Context, channel models.Channel, eventID string) (*models.WebhookEvent, error)

	// Create tạo webhook event mới
	Create(ctx context.Context, event *models.WebhookEvent) error

	// Update cập nhật webhook event
	Update(ctx context.Context, event *models.WebhookEvent) error
}
