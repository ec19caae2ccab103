package handlers

import (
	"errors"
	"net/http"

	"leadsync/internal/dto"
	"leadsync/internal/middleware"
	"leadsync/internal/repositories"
	"leadsync/internal/telegram"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Integration Handler
// Gắn Telegram bot cho company và đăng ký webhook với Telegram
// Chỉ OWNER được phép thao tác
// ===========================================================================

// IntegrationHandler xử lý các endpoint integration
type IntegrationHandler struct {
	companyRepo    repositories.CompanyRepository
	sender         telegram.Sender
	webhookBaseURL string
	logger         *zap.Logger
}

// NewIntegrationHandler tạo handler mới
func NewIntegrationHandler(
	companyRepo repositories.CompanyRepository,
	sender telegram.Sender,
	webhookBaseURL string,
	logger *zap.Logger,
) *IntegrationHandler {
	return &IntegrationHandler{
		companyRepo:    companyRepo,
		sender:         sender,
		webhookBaseURL: webhookBaseURL,
		logger:         logger,
	}
}

// AttachTelegram gắn bot token cho company và đăng ký webhook
// POST /api/v1/integrations/telegram
func (h *IntegrationHandler) AttachTelegram(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	ctx := c.Request.Context()

	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Error("UNAUTHORIZED", "Chưa đăng nhập"))
		return
	}

	var req dto.AttachTelegramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}

	company, err := h.companyRepo.FindByID(ctx, companyID)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.Error("NOT_FOUND", "Không tìm thấy company"))
		return
	}

	company.AttachTelegramBot(req.BotToken)
	if err := h.companyRepo.Update(ctx, company); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, dto.Error("DUPLICATE", "Bot token đã được company khác sử dụng"))
			return
		}
		h.logger.Error("attach telegram bot failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.Error("INTERNAL_ERROR", "Đã có lỗi xảy ra"))
		return
	}

	// Đăng ký webhook với Telegram; thất bại không rollback token —
	// owner có thể gọi lại endpoint để retry
	webhookRegistered := false
	if h.webhookBaseURL != "" {
		webhookURL := h.webhookBaseURL + "/api/v1/telegram/webhook/" + req.BotToken
		if err := h.sender.RegisterWebhook(ctx, req.BotToken, webhookURL); err != nil {
			h.logger.Warn("register telegram webhook failed",
				zap.String("request_id", requestID),
				zap.Error(err),
			)
		} else {
			webhookRegistered = true
		}
	} else {
		h.logger.Warn("webhook base url not configured, skipping webhook registration")
	}

	h.logger.Info("telegram bot attached",
		zap.String("request_id", requestID),
		zap.String("company_id", companyID.String()),
		zap.Bool("webhook_registered", webhookRegistered),
	)

	c.JSON(http.StatusOK, dto.Success(gin.H{
		"company_id":         companyID,
		"webhook_registered": webhookRegistered,
	}))
}

// ===========================================================================
// Route Registration
// ===========================================================================

// RegisterRoutes đăng ký routes, yêu cầu OWNER role
func (h *IntegrationHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	integrations := rg.Group("/integrations", authMiddleware, middleware.RequireOwner())
	{
		integrations.POST("/telegram", h.AttachTelegram)
	}
}
