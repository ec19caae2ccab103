package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ===========================================================================
// WebhookEvent (Sự kiện Webhook)
// Lưu trữ các update Telegram nhận được để tracking và debug
// EventID unique để không xử lý trùng lặp khi Telegram retry
// ===========================================================================

// WebhookEventStatus trạng thái xử lý webhook
type WebhookEventStatus string

const (
	// WebhookStatusPending đang chờ xử lý
	WebhookStatusPending WebhookEventStatus = "pending"

	// WebhookStatusProcessed đã xử lý thành công
	WebhookStatusProcessed WebhookEventStatus = "processed"

	// WebhookStatusSkipped bỏ qua (không có text, không nhận ra bot token)
	WebhookStatusSkipped WebhookEventStatus = "skipped"

	// WebhookStatusFailed xử lý thất bại
	WebhookStatusFailed WebhookEventStatus = "failed"
)

// WebhookPayload wrap raw payload từ webhook
type WebhookPayload map[string]interface{}

// Value implement driver.Valuer cho JSONB
func (p WebhookPayload) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implement sql.Scanner cho JSONB
func (p *WebhookPayload) Scan(value interface{}) error {
	if value == nil {
		*p = WebhookPayload{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, p)
}

// WebhookEvent lưu trữ một update Telegram nhận qua webhook
type WebhookEvent struct {
	// ID primary key
	ID uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`

	// Channel kênh nguồn (hiện tại chỉ TELEGRAM)
	Channel Channel `gorm:"size:50;not null" json:"channel"`

	// EventID định danh update (bot token hash + update_id, để dedup)
	EventID string `gorm:"size:255;not null;uniqueIndex" json:"event_id"`

	// CompanyID ID company resolve được (nullable nếu không nhận ra token)
	CompanyID *uuid.UUID `gorm:"type:uuid;index" json:"company_id,omitempty"`

	// Payload raw payload từ webhook
	Payload WebhookPayload `gorm:"type:jsonb;not null;default:'{}'" json:"payload"`

	// Status trạng thái xử lý
	Status WebhookEventStatus `gorm:"size:50;not null;default:'pending'" json:"status"`

	// ErrorMessage lỗi nếu có
	ErrorMessage *string `gorm:"type:text" json:"error_message,omitempty"`

	// ProcessedAt thời điểm xử lý xong
	ProcessedAt *time.Time `json:"processed_at,omitempty"`

	// Timestamps
	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

// TableName trả về tên bảng
func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// MarkProcessed đánh dấu đã xử lý thành công
func (e *WebhookEvent) MarkProcessed() {
	e.Status = WebhookStatusProcessed
	now := time.Now()
	e.ProcessedAt = &now
}

// MarkSkipped đánh dấu bỏ qua với lý do
func (e *WebhookEvent) MarkSkipped(reason string) {
	e.Status = WebhookStatusSkipped
	e.ErrorMessage = &reason
	now := time.Now()
	e.ProcessedAt = &now
}

// MarkFailed đánh dấu xử lý thất bại
func (e *WebhookEvent) MarkFailed(err error) {
	e.Status = WebhookStatusFailed
	errMsg := err.Error()
	e.ErrorMessage = &errMsg
}
