package services

import (
	"context"

	"github.com/google/uuid"
)

// ===========================================================================
// Assist Service Interface
// Tính năng AI hỗ trợ agent: gợi ý câu trả lời, tóm tắt hội thoại,
// và sinh câu trả lời bán hàng tự động
// ===========================================================================

// AssistService interface cho AI assist operations
type AssistService interface {
	// SuggestReply sinh gợi ý câu trả lời cho agent dựa trên hội thoại
	// AI chưa cấu hình → trả về ErrAIDisabled; lỗi gateway → fallback text
	SuggestReply(ctx context.Context, companyID, conversationID uuid.UUID) (string, error)

	// Summarize tóm tắt hội thoại thành bullet points cho agent
	// AI chưa cấu hình → trả về ErrAIDisabled; lỗi gateway → fallback text
	Summarize(ctx context.Context, companyID, conversationID uuid.UUID) (string, error)

	// SalesReply sinh câu trả lời bán hàng gửi thẳng cho khách
	// Luôn trả về text dùng được: AI chưa cấu hình hoặc lỗi gateway đều
	// fallback về tin nhắn cố định hướng khách sang agent
	SalesReply(ctx context.Context, companyID, conversationID uuid.UUID) (string, error)
}
