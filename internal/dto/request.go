package dto

import "github.com/google/uuid"

// ===========================================================================
// Request DTOs (Data Transfer Objects)
// Các struct dùng để validate và parse request body/query
// ===========================================================================

// PaginationRequest phân trang cho các API list
type PaginationRequest struct {
	// Page số trang hiện tại (bắt đầu từ 1)
	Page int `form:"page" binding:"min=0"`

	// Limit số record mỗi trang (tối đa 100)
	Limit int `form:"limit" binding:"min=0,max=100"`
}

// SetDefaults set giá trị mặc định cho pagination
func (p *PaginationRequest) SetDefaults() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 20
	}
}

// Offset tính offset cho database query
func (p *PaginationRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ===========================================================================
// Auth Requests
// ===========================================================================

// SignupRequest request đăng ký company mới với owner user
type SignupRequest struct {
	// CompanyName tên company (optional, derive từ tên user nếu rỗng)
	CompanyName string `json:"company_name" binding:"max=255"`

	// Name tên hiển thị của owner
	Name string `json:"name" binding:"required,min=1,max=255"`

	// Email địa chỉ đăng nhập
	Email string `json:"email" binding:"required,email"`

	// Password mật khẩu (tối thiểu 8 ký tự)
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest request đăng nhập
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ===========================================================================
// Lead Requests
// ===========================================================================

// ListLeadsRequest request lấy danh sách leads
type ListLeadsRequest struct {
	PaginationRequest

	// Channel filter theo kênh
	Channel string `form:"channel" binding:"omitempty,oneof=TELEGRAM WEBSITE"`

	// Search từ khóa tìm theo tên hoặc contact
	Search string `form:"q" binding:"max=100"`
}

// PublicLeadRequest request từ public website form (không cần auth)
type PublicLeadRequest struct {
	// CompanyID company đích (optional, rỗng = company mặc định)
	CompanyID *uuid.UUID `json:"company_id"`

	// Name tên khách hàng
	Name string `json:"name" binding:"max=255"`

	// Contact email hoặc số điện thoại
	Contact string `json:"contact" binding:"required,min=3,max=255"`
}

// ===========================================================================
// Conversation Requests
// ===========================================================================

// ListConversationsRequest request lấy danh sách hội thoại
type ListConversationsRequest struct {
	PaginationRequest

	// Mode filter theo mode hiện tại
	Mode string `form:"mode" binding:"omitempty,oneof=BOT HUMAN"`

	// Channel filter theo kênh
	Channel string `form:"channel" binding:"omitempty,oneof=TELEGRAM WEBSITE"`
}

// UpdateModeRequest request đổi mode hội thoại từ dashboard
type UpdateModeRequest struct {
	// Mode mode mới: BOT hoặc HUMAN
	Mode string `json:"mode" binding:"required,oneof=BOT HUMAN"`
}

// ===========================================================================
// Message Requests
// ===========================================================================

// CreateMessageRequest request agent gửi tin nhắn mới
type CreateMessageRequest struct {
	// Content nội dung text (bắt buộc, 1-5000 ký tự)
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

// ===========================================================================
// Integration Requests
// ===========================================================================

// AttachTelegramRequest request gắn Telegram bot cho company
type AttachTelegramRequest struct {
	// BotToken token từ BotFather
	BotToken string `json:"bot_token" binding:"required,min=10,max=255"`
}
