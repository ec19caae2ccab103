package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ===========================================================================
// Message (Tin nhắn)
// Đại diện cho một tin nhắn trong cuộc hội thoại
// Append-only: không bao giờ update hay xóa sau khi tạo
// ===========================================================================

// SenderType loại người gửi
type SenderType string

const (
	// SenderClient tin nhắn từ khách hàng
	SenderClient SenderType = "CLIENT"

	// SenderAgent tin nhắn từ nhân viên
	SenderAgent SenderType = "AGENT"

	// SenderSystem tin nhắn từ bot/hệ thống tự động
	SenderSystem SenderType = "SYSTEM"
)

// IsValid kiểm tra sender type có hợp lệ không
func (s SenderType) IsValid() bool {
	return s == SenderClient || s == SenderAgent || s == SenderSystem
}

// MessageMetadata thông tin bổ sung về tin nhắn
type MessageMetadata struct {
	// DeliveredAt thời điểm đã gửi đến Telegram
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	// FailedAt thời điểm gửi thất bại
	FailedAt *time.Time `json:"failed_at,omitempty"`

	// FailReason lý do gửi thất bại
	FailReason string `json:"fail_reason,omitempty"`
}

// Value implement driver.Valuer cho JSONB
func (m MessageMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implement sql.Scanner cho JSONB
func (m *MessageMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = MessageMetadata{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, m)
}

// Message đại diện cho một tin nhắn
// Không dùng BaseModel vì messages là append-only: không UpdatedAt, không soft delete
type Message struct {
	// ID primary key
	ID uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`

	// ConversationID ID cuộc hội thoại
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"conversation_id"`

	// Sender loại người gửi: CLIENT, AGENT, SYSTEM
	Sender SenderType `gorm:"size:20;not null" json:"sender"`

	// SenderUserID ID user nếu sender là AGENT (nullable)
	SenderUserID *uuid.UUID `gorm:"type:uuid" json:"sender_user_id,omitempty"`

	// Content nội dung text
	Content string `gorm:"type:text;not null" json:"content"`

	// Metadata thông tin bổ sung (trạng thái gửi đi)
	Metadata MessageMetadata `gorm:"type:jsonb;default:'{}'" json:"metadata"`

	// CreatedAt thời điểm tạo, quyết định thứ tự tin nhắn
	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`

	// Relations
	Conversation Conversation `gorm:"foreignKey:ConversationID" json:"conversation,omitempty"`
	SenderUser   *User        `gorm:"foreignKey:SenderUserID" json:"sender_user,omitempty"`
}

// TableName trả về tên bảng
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate hook tự động generate UUID nếu chưa có
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// IsFromClient kiểm tra tin nhắn từ khách hàng
func (m *Message) IsFromClient() bool { return m.Sender == SenderClient }

// IsFromAgent kiểm tra tin nhắn từ agent
func (m *Message) IsFromAgent() bool { return m.Sender == SenderAgent }

// MarkDelivered đánh dấu đã gửi đến channel thành công
func (m *Message) MarkDelivered() {
	now := time.Now()
	m.Metadata.DeliveredAt = &now
}

// MarkFailed đánh dấu gửi thất bại với lý do
func (m *Message) MarkFailed(err error) {
	now := time.Now()
	m.Metadata.FailedAt = &now
	m.Metadata.FailReason = err.Error()
}

// GetContentPreview trả về preview nội dung
func (m *Message) GetContentPreview(maxLen int) string {
	if len(m.Content) > maxLen {
		return m.Content[:maxLen-3] + "..."
	}
	return m.Content
}
