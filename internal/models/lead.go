package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ===========================================================================
// Lead (Khách hàng tiềm năng)
// Đại diện cho một khách hàng liên hệ với company qua một channel
// Mỗi lead được identify bằng (contact, channel, company_id)
// ===========================================================================

// LeadMetadata thông tin bổ sung về lead
type LeadMetadata struct {
	// Source nguồn lead (VD: "telegram_bot", "website_form")
	Source string `json:"source,omitempty"`

	// FirstMessage tin nhắn đầu tiên
	FirstMessage string `json:"first_message,omitempty"`

	// CustomFields các trường tùy chỉnh
	CustomFields map[string]interface{} `json:"custom_fields,omitempty"`
}

// Value implement driver.Valuer cho JSONB
func (m LeadMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implement sql.Scanner cho JSONB
func (m *LeadMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = LeadMetadata{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, m)
}

// Lead đại diện cho một khách hàng tiềm năng
type Lead struct {
	BaseModel

	// CompanyID ID company sở hữu lead
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_leads_contact_channel_company" json:"company_id"`

	// Contact identifier liên hệ trên channel (Telegram chat ID, email, SĐT)
	Contact string `gorm:"size:255;not null;uniqueIndex:idx_leads_contact_channel_company" json:"contact"`

	// Channel kênh mà lead đến từ (TELEGRAM/WEBSITE)
	Channel Channel `gorm:"size:50;not null;uniqueIndex:idx_leads_contact_channel_company" json:"channel"`

	// Name tên khách hàng (lấy từ Telegram username hoặc form, có thể rỗng)
	Name *string `gorm:"size:255" json:"name,omitempty"`

	// Metadata thông tin bổ sung
	Metadata LeadMetadata `gorm:"type:jsonb;default:'{}'" json:"metadata"`

	// LastSeenAt lần cuối cùng liên hệ
	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`

	// Relations
	Company       Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Conversations []Conversation `gorm:"foreignKey:LeadID" json:"conversations,omitempty"`
}

// TableName trả về tên bảng
func (Lead) TableName() string {
	return "leads"
}

// UpdateLastSeen cập nhật thời gian hoạt động gần nhất
func (l *Lead) UpdateLastSeen() {
	now := time.Now()
	l.LastSeenAt = &now
}

// GetDisplayName trả về tên hiển thị
// Nếu không có tên thì trả về "Unknown"
func (l *Lead) GetDisplayName() string {
	if l.Name != nil && *l.Name != "" {
		return *l.Name
	}
	return "Unknown"
}
