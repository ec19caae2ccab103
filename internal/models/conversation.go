package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ===========================================================================
// Conversation (Cuộc hội thoại)
// Đại diện cho thread chat giữa một lead và company trên một channel
// Mode quyết định ai đang trả lời khách: bot tự động hay agent
// ===========================================================================

// ConversationMode chế độ xử lý cuộc hội thoại
type ConversationMode string

const (
	// ModeBot bot tự động trả lời
	ModeBot ConversationMode = "BOT"

	// ModeHuman agent đang xử lý, bot không tự trả lời
	ModeHuman ConversationMode = "HUMAN"
)

// IsValid kiểm tra mode có hợp lệ không
func (m ConversationMode) IsValid() bool {
	return m == ModeBot || m == ModeHuman
}

// ConversationMetadata thông tin bổ sung về cuộc hội thoại
type ConversationMetadata struct {
	// HandoffReason lý do chuyển cho agent (VD: keyword khách đã gõ)
	HandoffReason string `json:"handoff_reason,omitempty"`

	// HandoffAt thời điểm chuyển cho agent gần nhất
	HandoffAt *time.Time `json:"handoff_at,omitempty"`
}

// Value implement driver.Valuer cho JSONB
func (m ConversationMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implement sql.Scanner cho JSONB
func (m *ConversationMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = ConversationMetadata{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, m)
}

// Conversation đại diện cho một cuộc hội thoại
type Conversation struct {
	BaseModel

	// CompanyID ID company
	CompanyID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_conversations_lead_company_channel" json:"company_id"`

	// LeadID ID khách hàng
	LeadID uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:idx_conversations_lead_company_channel" json:"lead_id"`

	// Channel kênh mà conversation diễn ra
	Channel Channel `gorm:"size:50;not null;uniqueIndex:idx_conversations_lead_company_channel" json:"channel"`

	// Mode chế độ hiện tại: BOT hoặc HUMAN
	Mode ConversationMode `gorm:"size:20;not null;default:'BOT';index" json:"mode"`

	// LastMessageAt thời điểm tin nhắn cuối cùng
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`

	// LastMessagePreview preview tin nhắn cuối (max 500 ký tự)
	LastMessagePreview *string `gorm:"size:500" json:"last_message_preview,omitempty"`

	// Metadata thông tin bổ sung
	Metadata ConversationMetadata `gorm:"type:jsonb;default:'{}'" json:"metadata"`

	// Relations
	Company  Company   `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Lead     Lead      `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
	Messages []Message `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`
}

// TableName trả về tên bảng
func (Conversation) TableName() string {
	return "conversations"
}

// IsBotMode kiểm tra bot có đang trả lời không
func (c *Conversation) IsBotMode() bool { return c.Mode == ModeBot }

// IsHumanMode kiểm tra agent có đang xử lý không
func (c *Conversation) IsHumanMode() bool { return c.Mode == ModeHuman }

// SwitchToHuman chuyển hội thoại cho agent xử lý
func (c *Conversation) SwitchToHuman(reason string) {
	c.Mode = ModeHuman
	now := time.Now()
	c.Metadata.HandoffReason = reason
	c.Metadata.HandoffAt = &now
}

// SwitchToBot trả hội thoại về cho bot
func (c *Conversation) SwitchToBot() {
	c.Mode = ModeBot
	c.Metadata.HandoffReason = ""
}

// UpdateLastMessage cập nhật thông tin tin nhắn cuối
func (c *Conversation) UpdateLastMessage(content string, at time.Time) {
	c.LastMessageAt = &at
	if len(content) > 500 {
		preview := content[:497] + "..."
		c.LastMessagePreview = &preview
	} else {
		c.LastMessagePreview = &content
	}
}
