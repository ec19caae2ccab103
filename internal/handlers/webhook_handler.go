package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"leadsync/internal/middleware"
	"leadsync/internal/models"
	"leadsync/internal/repositories"
	"leadsync/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/mymmrac/telego"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Webhook Handler
// Nhận inbound updates từ Telegram Bot API
//
// Webhook LUÔN trả về 200 {"ok":true} bất kể kết quả xử lý — trả lỗi
// sẽ khiến Telegram retry cùng update liên tục. Update lạ/lỗi được ghi
// vào webhook_events để debug thay vì báo lỗi cho Telegram
// ===========================================================================

// WebhookHandler xử lý webhook endpoints
type WebhookHandler struct {
	messageService   services.MessageService
	webhookEventRepo repositories.WebhookEventRepository
	logger           *zap.Logger
}

// NewWebhookHandler tạo handler mới
func NewWebhookHandler(
	messageService services.MessageService,
	webhookEventRepo repositories.WebhookEventRepository,
	logger *zap.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		messageService:   messageService,
		webhookEventRepo: webhookEventRepo,
		logger:           logger,
	}
}

// ack response cố định cho Telegram
func (h *WebhookHandler) ack(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// eventKey định danh update để dedup: hash(bot token) + update_id
// Không lưu token thô trong event key
func eventKey(botToken string, updateID int) string {
	sum := sha256.Sum256([]byte(botToken))
	return fmt.Sprintf("%s:%d", hex.EncodeToString(sum[:8]), updateID)
}

// TelegramWebhook xử lý POST update từ Telegram
// POST /api/v1/telegram/webhook/:token
func (h *WebhookHandler) TelegramWebhook(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	ctx := c.Request.Context()
	botToken := c.Param("token")

	var update telego.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		h.logger.Warn("telegram webhook malformed payload",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		h.ack(c)
		return
	}

	// Dedup theo (bot, update_id) — Telegram retry gửi lại cùng update
	event := &models.WebhookEvent{
		Channel: models.ChannelTelegram,
		EventID: eventKey(botToken, update.UpdateID),
		Payload: models.WebhookPayload{"update_id": update.UpdateID},
	}
	if update.Message != nil {
		event.Payload["chat_id"] = update.Message.Chat.ID
		event.Payload["text"] = update.Message.Text
	}
	if err := h.webhookEventRepo.Create(c.Request.Context(), event); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			h.logger.Debug("duplicate telegram update, ignoring",
				zap.Int("update_id", update.UpdateID),
			)
			h.ack(c)
			return
		}
		// Event log là best-effort, vẫn xử lý message
		h.logger.Warn("save webhook event failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		event = nil
	}

	// Chỉ xử lý text message, các update khác (sticker, edit, ...) bỏ qua
	if update.Message == nil || update.Message.Text == "" {
		h.finishEvent(c, event, func(e *models.WebhookEvent) {
			e.MarkSkipped("no text message")
		})
		h.ack(c)
		return
	}

	inbound := &services.InboundMessage{
		BotToken: botToken,
		ChatID:   strconv.FormatInt(update.Message.Chat.ID, 10),
		Username: senderName(update.Message),
		Text:     update.Message.Text,
	}

	result, err := h.messageService.ProcessInbound(ctx, inbound)
	switch {
	case err != nil:
		h.logger.Error("process inbound failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		h.finishEvent(c, event, func(e *models.WebhookEvent) {
			e.MarkFailed(err)
		})
	case result.Ignored:
		h.finishEvent(c, event, func(e *models.WebhookEvent) {
			e.MarkSkipped(result.IgnoreReason)
		})
	default:
		h.logger.Info("telegram update processed",
			zap.String("request_id", requestID),
			zap.String("conversation_id", result.ConversationID.String()),
			zap.String("mode", string(result.Mode)),
			zap.Bool("reply_sent", result.ReplySent),
		)
		h.finishEvent(c, event, func(e *models.WebhookEvent) {
			e.CompanyID = &result.CompanyID
			e.MarkProcessed()
		})
	}

	h.ack(c)
}

// finishEvent cập nhật trạng thái webhook event, best-effort
func (h *WebhookHandler) finishEvent(c *gin.Context, event *models.WebhookEvent, apply func(*models.WebhookEvent)) {
	if event == nil {
		return
	}
	apply(event)
	if err := h.webhookEventRepo.Update(c.Request.Context(), event); err != nil {
		h.logger.Warn("update webhook event failed", zap.Error(err))
	}
}

// senderName lấy tên hiển thị của người gửi từ Telegram message
func senderName(msg *telego.Message) string {
	if msg.From == nil {
		return ""
	}
	if msg.From.Username != "" {
		return msg.From.Username
	}
	return msg.From.FirstName
}

// ===========================================================================
// Route Registration
// ===========================================================================

// WebhookHealth health check cho webhook endpoint
// GET /api/v1/telegram/webhook/:token
func (h *WebhookHandler) WebhookHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "status": "healthy"})
}

// RegisterRoutes đăng ký webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	telegram := rg.Group("/telegram")
	{
		telegram.POST("/webhook/:token", h.TelegramWebhook)
		telegram.GET("/webhook/:token", h.WebhookHealth)
	}
}
