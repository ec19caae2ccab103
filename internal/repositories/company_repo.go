package repositories

import (
	"context"

	"leadsync/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Company Repository GORM Implementation
// ===========================================================================

// companyRepo triển khai CompanyRepository với GORM
type companyRepo struct {
	db *gorm.DB
}

// NewCompanyRepository tạo instance mới của CompanyRepository
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepo{db: db}
}

// FindByID tìm company theo ID
func (r *companyRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

// FindByBotToken tìm company theo Telegram bot token
func (r *companyRepo) FindByBotToken(ctx context.Context, token string) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).
		Where("telegram_bot_token = ? AND is_active = ?", token, true).
		First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// FindDefault trả về company active được tạo sớm nhất
func (r *companyRepo) FindDefault(ctx context.Context) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// Create tạo company mới
func (r *companyRepo) Create(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

// Update cập nhật company
func (r *companyRepo) Update(ctx context.Context, company *models.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}
