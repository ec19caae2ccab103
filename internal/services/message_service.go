package services

import (
	"context"

	"leadsync/internal/models"

	"github.com/google/uuid"
)

// ===========================================================================
// Message Service Interface
// Pipeline xử lý inbound message từ Telegram và outbound từ dashboard
// ===========================================================================

// InboundMessage một tin nhắn khách gửi đến qua Telegram webhook
type InboundMessage struct {
	// BotToken token trong webhook path, dùng resolve company
	BotToken string

	// ChatID Telegram chat ID dạng string (identity của lead)
	ChatID string

	// Username Telegram username/first name, có thể rỗng
	Username string

	// Text nội dung tin nhắn
	Text string
}

// ProcessResult kết quả xử lý một inbound message
type ProcessResult struct {
	// Ignored true nếu message bị bỏ qua (không resolve được company...)
	Ignored bool

	// IgnoreReason lý do bỏ qua, để log và lưu vào webhook event
	IgnoreReason string

	CompanyID      uuid.UUID
	LeadID         uuid.UUID
	ConversationID uuid.UUID
	MessageID      uuid.UUID

	// LeadCreated true nếu đây là lần đầu khách liên hệ
	LeadCreated bool

	// ConversationCreated true nếu conversation mới được tạo
	ConversationCreated bool

	// Mode mode của conversation sau khi xử lý
	Mode models.ConversationMode

	// ModeChanged mode có đổi vì tin nhắn này không
	ModeChanged bool

	// Handoff tin nhắn này có kích hoạt chuyển sang agent không
	Handoff bool

	// Reply nội dung bot đã trả lời
	Reply string

	// ReplySent reply có gửi đến Telegram thành công không
	ReplySent bool
}

// WebsiteLeadInput dữ liệu từ public lead form
type WebsiteLeadInput struct {
	// CompanyID company đích, uuid.Nil = dùng company mặc định
	CompanyID uuid.UUID
	Name      string
	Contact   string
}

// WebsiteLeadResult kết quả capture một website lead
type WebsiteLeadResult struct {
	Lead                *models.Lead
	Conversation        *models.Conversation
	LeadCreated         bool
	ConversationCreated bool
}

// MessageService interface cho message pipeline
type MessageService interface {
	// ProcessInbound xử lý một tin nhắn từ Telegram webhook:
	// resolve company → upsert lead/conversation → lưu tin nhắn khách →
	// chạy state machine → lưu và gửi reply
	// Không bao giờ trả về error cho lỗi nghiệp vụ (unknown token, ...) —
	// các trường hợp đó đánh dấu Ignored; error chỉ cho lỗi hạ tầng
	ProcessInbound(ctx context.Context, inbound *InboundMessage) (*ProcessResult, error)

	// SendOutbound lưu và gửi một tin nhắn từ phía company
	// (agent trên dashboard hoặc AI auto-reply) đến khách qua Telegram
	SendOutbound(ctx context.Context, companyID, conversationID uuid.UUID, content string, sender models.SenderType, senderUserID *uuid.UUID) (*models.Message, error)

	// SetMode đổi mode conversation từ dashboard (BOT ↔ HUMAN)
	SetMode(ctx context.Context, companyID, conversationID uuid.UUID, mode models.ConversationMode) (*models.Conversation, error)

	// CaptureWebsiteLead upsert lead + conversation từ public website form
	CaptureWebsiteLead(ctx context.Context, input *WebsiteLeadInput) (*WebsiteLeadResult, error)
}
