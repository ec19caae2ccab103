package handlers

import (
	"errors"
	"net/http"

	"leadsync/internal/dto"
	apperrors "leadsync/internal/errors"
	"leadsync/internal/middleware"
	"leadsync/internal/models"
	"leadsync/internal/repositories"
	"leadsync/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Conversation Handler
// Quản lý API cho conversations, messages và AI assist
// Tất cả endpoints đều scoped theo company của user đang đăng nhập
// ===========================================================================

// ConversationHandler xử lý các endpoint conversation
type ConversationHandler struct {
	conversationRepo repositories.ConversationRepository
	messageRepo      repositories.MessageRepository
	messageService   services.MessageService
	assistService    services.AssistService
	logger           *zap.Logger
}

// NewConversationHandler tạo handler mới
func NewConversationHandler(
	conversationRepo repositories.ConversationRepository,
	messageRepo repositories.MessageRepository,
	messageService services.MessageService,
	assistService services.AssistService,
	logger *zap.Logger,
) *ConversationHandler {
	return &ConversationHandler{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		messageService:   messageService,
		assistService:    assistService,
		logger:           logger,
	}
}

// ===========================================================================
// Error Helper
// Xử lý lỗi DB và trả về response phù hợp
// ===========================================================================

// handleDBError xử lý lỗi từ database và trả về error response
// Giúp user hiểu được vấn đề thay vì thấy lỗi kỹ thuật
func (h *ConversationHandler) handleDBError(c *gin.Context, requestID string, err error, entity string) {
	// Ghi log lỗi chi tiết cho developer
	h.logger.Error("database error",
		zap.String("request_id", requestID),
		zap.String("entity", entity),
		zap.Error(err),
	)

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.Error(
			"NOT_FOUND",
			"Không tìm thấy "+entity+" yêu cầu",
		))
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, dto.Error(
			"DUPLICATE",
			entity+" đã tồn tại",
		))
	default:
		c.JSON(http.StatusInternalServerError, dto.Error(
			"DB_ERROR",
			"Có lỗi khi truy vấn dữ liệu. Vui lòng thử lại sau.",
		))
	}
}

// companyConversation fetch conversation trong scope company của user
// Conversation của company khác coi như not found
func (h *ConversationHandler) companyConversation(c *gin.Context) (*models.Conversation, uuid.UUID, bool) {
	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Error("UNAUTHORIZED", "Chưa đăng nhập"))
		return nil, uuid.Nil, false
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "Conversation ID không hợp lệ"))
		return nil, uuid.Nil, false
	}

	conversation, err := h.conversationRepo.FindByID(c.Request.Context(), conversationID)
	if err != nil || conversation.CompanyID != companyID {
		c.JSON(http.StatusNotFound, dto.Error("NOT_FOUND", "Không tìm thấy conversation yêu cầu"))
		return nil, uuid.Nil, false
	}

	return conversation, companyID, true
}

// ===========================================================================
// Handlers
// ===========================================================================

// List lấy danh sách conversations của company
// GET /api/v1/conversations?mode=HUMAN&channel=TELEGRAM&page=1&limit=20
func (h *ConversationHandler) List(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	ctx := c.Request.Context()

	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Error("UNAUTHORIZED", "Chưa đăng nhập"))
		return
	}

	var query dto.ListConversationsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}
	query.SetDefaults()

	opts := repositories.FindOptions{
		Offset:   query.Offset(),
		Limit:    query.Limit,
		OrderBy:  "last_message_at",
		OrderDir: "desc",
		Filters:  make(map[string]interface{}),
	}
	if query.Mode != "" {
		opts.Filters["mode"] = query.Mode
	}
	if query.Channel != "" {
		opts.Filters["channel"] = query.Channel
	}

	conversations, total, err := h.conversationRepo.FindByCompany(ctx, companyID, opts)
	if err != nil {
		h.handleDBError(c, requestID, err, "conversations")
		return
	}

	c.JSON(http.StatusOK, dto.SuccessWithMeta(
		conversations,
		dto.NewMeta(query.Page, query.Limit, total),
	))
}

// Get lấy chi tiết conversation
// GET /api/v1/conversations/:id
func (h *ConversationHandler) Get(c *gin.Context) {
	conversation, _, ok := h.companyConversation(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.Success(conversation))
}

// ListMessages lấy danh sách messages của conversation
// GET /api/v1/conversations/:id/messages
func (h *ConversationHandler) ListMessages(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	ctx := c.Request.Context()

	conversation, _, ok := h.companyConversation(c)
	if !ok {
		return
	}

	var pagination dto.PaginationRequest
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}
	pagination.SetDefaults()

	opts := repositories.FindOptions{
		Offset:   pagination.Offset(),
		Limit:    pagination.Limit,
		OrderBy:  "created_at",
		OrderDir: "asc", // Messages theo thứ tự thời gian
	}

	messages, total, err := h.messageRepo.FindByConversation(ctx, conversation.ID, opts)
	if err != nil {
		h.handleDBError(c, requestID, err, "messages")
		return
	}

	c.JSON(http.StatusOK, dto.SuccessWithMeta(
		messages,
		dto.NewMeta(pagination.Page, pagination.Limit, total),
	))
}

// SendMessage gửi tin nhắn từ agent đến khách
// POST /api/v1/conversations/:id/messages
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	ctx := c.Request.Context()

	conversation, companyID, ok := h.companyConversation(c)
	if !ok {
		return
	}

	var body dto.CreateMessageRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}

	var senderUserID *uuid.UUID
	if userID, ok := middleware.GetUserID(c); ok {
		senderUserID = &userID
	}

	message, err := h.messageService.SendOutbound(ctx, companyID, conversation.ID, body.Content, models.SenderAgent, senderUserID)
	if err != nil {
		h.handleDBError(c, requestID, err, "message")
		return
	}

	h.logger.Info("agent message sent",
		zap.String("request_id", requestID),
		zap.String("message_id", message.ID.String()),
	)

	c.JSON(http.StatusCreated, dto.Success(message))
}

// UpdateMode đổi mode conversation từ dashboard (BOT ↔ HUMAN)
// PATCH /api/v1/conversations/:id/mode
func (h *ConversationHandler) UpdateMode(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	ctx := c.Request.Context()

	conversation, companyID, ok := h.companyConversation(c)
	if !ok {
		return
	}

	var body dto.UpdateModeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}

	updated, err := h.messageService.SetMode(ctx, companyID, conversation.ID, models.ConversationMode(body.Mode))
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
			return
		}
		h.handleDBError(c, requestID, err, "conversation")
		return
	}

	h.logger.Info("conversation mode updated",
		zap.String("request_id", requestID),
		zap.String("conversation_id", updated.ID.String()),
		zap.String("mode", string(updated.Mode)),
	)

	c.JSON(http.StatusOK, dto.Success(updated))
}

// ===========================================================================
// AI Assist
// ===========================================================================

// Suggest sinh gợi ý câu trả lời cho agent
// POST /api/v1/conversations/:id/suggest
func (h *ConversationHandler) Suggest(c *gin.Context) {
	conversation, companyID, ok := h.companyConversation(c)
	if !ok {
		return
	}

	suggestion, err := h.assistService.SuggestReply(c.Request.Context(), companyID, conversation.ID)
	if err != nil {
		h.handleAssistError(c, err, suggestion)
		return
	}

	c.JSON(http.StatusOK, dto.Success(gin.H{"suggestion": suggestion}))
}

// Summary tóm tắt hội thoại cho agent
// POST /api/v1/conversations/:id/summary
func (h *ConversationHandler) Summary(c *gin.Context) {
	conversation, companyID, ok := h.companyConversation(c)
	if !ok {
		return
	}

	summary, err := h.assistService.Summarize(c.Request.Context(), companyID, conversation.ID)
	if err != nil {
		h.handleAssistError(c, err, summary)
		return
	}

	c.JSON(http.StatusOK, dto.Success(gin.H{"summary": summary}))
}

// AIReply sinh câu trả lời bán hàng và gửi thẳng cho khách
// POST /api/v1/conversations/:id/ai-reply
func (h *ConversationHandler) AIReply(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	ctx := c.Request.Context()

	conversation, companyID, ok := h.companyConversation(c)
	if !ok {
		return
	}

	reply, err := h.assistService.SalesReply(ctx, companyID, conversation.ID)
	if err != nil {
		h.handleDBError(c, requestID, err, "conversation")
		return
	}

	// Lưu và gửi như tin nhắn SYSTEM
	message, err := h.messageService.SendOutbound(ctx, companyID, conversation.ID, reply, models.SenderSystem, nil)
	if err != nil {
		h.handleDBError(c, requestID, err, "message")
		return
	}

	c.JSON(http.StatusCreated, dto.Success(message))
}

// handleAssistError map lỗi AI assist sang HTTP response
// AI chưa cấu hình → 503 với message cố định từ service
func (h *ConversationHandler) handleAssistError(c *gin.Context, err error, message string) {
	if errors.Is(err, apperrors.ErrAIDisabled) {
		c.JSON(http.StatusServiceUnavailable, dto.Error("AI_DISABLED", message))
		return
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, dto.Error("NOT_FOUND", "Không tìm thấy conversation yêu cầu"))
		return
	}
	h.logger.Error("assist request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, dto.Error("INTERNAL_ERROR", "Đã có lỗi xảy ra"))
}

// ===========================================================================
// Route Registration
// ===========================================================================

// RegisterRoutes đăng ký routes
func (h *ConversationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	conversations := rg.Group("/conversations")
	{
		conversations.GET("", h.List)
		conversations.GET("/:id", h.Get)
		conversations.GET("/:id/messages", h.ListMessages)
		conversations.POST("/:id/messages", h.SendMessage)
		conversations.PATCH("/:id/mode", h.UpdateMode)
		conversations.POST("/:id/suggest", h.Suggest)
		conversations.POST("/:id/summary", h.Summary)
		conversations.POST("/:id/ai-reply", h.AIReply)
	}
}
