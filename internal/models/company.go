package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ===========================================================================
// Company (Doanh nghiệp / Tenant)
// Đại diện cho một business trong hệ thống multi-tenant
// Tất cả entities khác đều thuộc về một company
// ===========================================================================

// CompanySettings cấu hình cho company
type CompanySettings struct {
	// Timezone múi giờ (VD: "Asia/Ho_Chi_Minh")
	Timezone string `json:"timezone"`

	// Currency đơn vị tiền tệ hiển thị (VD: "VND", "USD")
	Currency string `json:"currency,omitempty"`

	// BotEnabled có bật bot tự động không
	BotEnabled bool `json:"bot_enabled"`

	// Language ngôn ngữ mặc định (vi, en)
	Language string `json:"language"`
}

// Value implement driver.Valuer để lưu JSONB vào PostgreSQL
func (s CompanySettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implement sql.Scanner để đọc JSONB từ PostgreSQL
func (s *CompanySettings) Scan(value interface{}) error {
	if value == nil {
		*s = CompanySettings{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, s)
}

// Company đại diện cho một doanh nghiệp (tenant)
type Company struct {
	BaseModel

	// Name tên company (VD: "LeadSync Demo Store")
	Name string `gorm:"size:255;not null" json:"name"`

	// TelegramBotToken token bot Telegram của company
	// Unique khi có giá trị — dùng làm lookup key cho inbound webhook
	// KHÔNG bao giờ trả về trong JSON response
	TelegramBotToken *string `gorm:"size:255;uniqueIndex" json:"-"`

	// Settings cấu hình company (JSONB)
	Settings CompanySettings `gorm:"type:jsonb;default:'{}'" json:"settings"`

	// IsActive company có đang hoạt động không
	IsActive bool `gorm:"default:true" json:"is_active"`

	// Relations - Các quan hệ với bảng khác
	Users         []User         `gorm:"foreignKey:CompanyID" json:"users,omitempty"`
	Leads         []Lead         `gorm:"foreignKey:CompanyID" json:"leads,omitempty"`
	Conversations []Conversation `gorm:"foreignKey:CompanyID" json:"conversations,omitempty"`
}

// TableName trả về tên bảng trong database
func (Company) TableName() string {
	return "companies"
}

// HasTelegramBot kiểm tra company đã gắn bot Telegram chưa
func (c *Company) HasTelegramBot() bool {
	return c.TelegramBotToken != nil && *c.TelegramBotToken != ""
}

// BotToken trả về bot token, chuỗi rỗng nếu chưa gắn
func (c *Company) BotToken() string {
	if c.TelegramBotToken == nil {
		return ""
	}
	return *c.TelegramBotToken
}

// AttachTelegramBot gắn bot token cho company
func (c *Company) AttachTelegramBot(token string) {
	c.TelegramBotToken = &token
}
