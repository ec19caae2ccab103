package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ===========================================================================
// User (Người dùng hệ thống)
// Đại diện cho owner/agent của company
// KHÔNG phải khách hàng (khách hàng là Lead)
// ===========================================================================

// UserRole các vai trò người dùng
type UserRole string

const (
	// RoleOwner chủ company, có toàn quyền
	RoleOwner UserRole = "OWNER"

	// RoleAgent nhân viên sales, chat với khách và quản lý leads
	RoleAgent UserRole = "AGENT"
)

// User đại diện cho người dùng hệ thống (owner, agent)
type User struct {
	BaseModel

	// CompanyID ID company mà user thuộc về
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_users_company_email" json:"company_id"`

	// Email địa chỉ email (unique trong company)
	Email string `gorm:"size:255;not null;uniqueIndex:idx_users_company_email" json:"email"`

	// PasswordHash mật khẩu đã hash (KHÔNG bao giờ trả về trong JSON)
	PasswordHash string `gorm:"size:255;not null" json:"-"`

	// RefreshTokenHash hash của refresh token hiện tại (KHÔNG trả về trong JSON)
	// Dùng để validate và revoke refresh token
	RefreshTokenHash *string `gorm:"size:255" json:"-"`

	// Name tên hiển thị
	Name string `gorm:"size:255;not null" json:"name"`

	// Role vai trò: OWNER, AGENT
	Role UserRole `gorm:"size:50;not null;default:'AGENT'" json:"role"`

	// IsActive tài khoản có active không
	IsActive bool `gorm:"default:true" json:"is_active"`

	// LastSeenAt lần cuối online
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`

	// Relations
	Company Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
}

// TableName trả về tên bảng
func (User) TableName() string {
	return "users"
}

// SetPassword hash và set password
// Sử dụng bcrypt với cost mặc định
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword kiểm tra password có đúng không
// Trả về true nếu đúng, false nếu sai
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsOwner kiểm tra user có phải owner không
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// UpdateLastSeen cập nhật thời gian online gần nhất
func (u *User) UpdateLastSeen() {
	now := time.Now()
	u.LastSeenAt = &now
}
