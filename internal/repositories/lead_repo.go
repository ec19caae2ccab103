package repositories

import (
	"context"
	"errors"

	"leadsync/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Lead Repository GORM Implementation
// ===========================================================================

// leadRepo triển khai LeadRepository với GORM
type leadRepo struct {
	db *gorm.DB
}

// NewLeadRepository tạo instance mới của LeadRepository
func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepo{db: db}
}

// FindByID tìm lead theo ID
func (r *leadRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	if err := r.db.WithContext(ctx).First(&lead, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lead, nil
}

// FindByContact tìm lead theo (company, channel, contact)
func (r *leadRepo) FindByContact(ctx context.Context, companyID uuid.UUID, channel models.Channel, contact string) (*models.Lead, error) {
	var lead models.Lead
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND channel = ? AND contact = ?", companyID, channel, contact).
		First(&lead).Error
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// FindByCompany lấy danh sách leads trong company
func (r *leadRepo) FindByCompany(ctx context.Context, companyID uuid.UUID, opts FindOptions) ([]models.Lead, int64, error) {
	opts.SetDefaults()

	var leads []models.Lead
	var total int64

	query := r.db.WithContext(ctx).
		Model(&models.Lead{}).
		Where("company_id = ?", companyID)

	// Apply filters
	if opts.Filters != nil {
		if channel, ok := opts.Filters["channel"]; ok {
			query = query.Where("channel = ?", channel)
		}
	}
	if opts.Search != "" {
		pattern := "%" + opts.Search + "%"
		query = query.Where("name ILIKE ? OR contact ILIKE ?", pattern, pattern)
	}

	// Count total
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get records
	err := query.
		Order(opts.GetOrderClause()).
		Offset(opts.Offset).
		Limit(opts.Limit).
		Find(&leads).Error

	return leads, total, err
}

// FindOrCreate tìm hoặc tạo mới lead
// Hai webhook đồng thời từ cùng một khách có thể cùng vào nhánh create;
// unique index (contact, channel, company_id) chặn record trùng, và lỗi
// duplicate key được xử lý bằng cách fetch lại record đã tồn tại
func (r *leadRepo) FindOrCreate(ctx context.Context, lead *models.Lead) (*models.Lead, bool, error) {
	// Thử tìm trước
	existing, err := r.FindByContact(ctx, lead.CompanyID, lead.Channel, lead.Contact)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	// Không tìm thấy, tạo mới
	if err := r.db.WithContext(ctx).Create(lead).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Thua race với request khác, lấy record đã được tạo
			existing, ferr := r.FindByContact(ctx, lead.CompanyID, lead.Channel, lead.Contact)
			if ferr != nil {
				return nil, false, ferr
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	return lead, true, nil
}

// Update cập nhật lead
func (r *leadRepo) Update(ctx context.Context, lead *models.Lead) error {
	return r.db.WithContext(ctx).Save(lead).Error
}
