package handlers

import (
	"errors"
	"net/http"

	"leadsync/internal/dto"
	apperrors "leadsync/internal/errors"
	"leadsync/internal/middleware"
	"leadsync/internal/repositories"
	"leadsync/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Lead Handler
// API quản lý leads cho dashboard + public endpoint cho website form
// ===========================================================================

// LeadHandler xử lý các endpoint lead
type LeadHandler struct {
	leadRepo       repositories.LeadRepository
	messageService services.MessageService
	logger         *zap.Logger
}

// NewLeadHandler tạo handler mới
func NewLeadHandler(
	leadRepo repositories.LeadRepository,
	messageService services.MessageService,
	logger *zap.Logger,
) *LeadHandler {
	return &LeadHandler{
		leadRepo:       leadRepo,
		messageService: messageService,
		logger:         logger,
	}
}

// ===========================================================================
// Handlers
// ===========================================================================

// List lấy danh sách leads của company
// GET /api/v1/leads?channel=TELEGRAM&q=abc&page=1&limit=20
func (h *LeadHandler) List(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	ctx := c.Request.Context()

	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Error("UNAUTHORIZED", "Chưa đăng nhập"))
		return
	}

	var query dto.ListLeadsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}
	query.SetDefaults()

	opts := repositories.FindOptions{
		Offset:   query.Offset(),
		Limit:    query.Limit,
		OrderBy:  "created_at",
		OrderDir: "desc", // Lead mới nhất lên đầu
		Filters:  make(map[string]interface{}),
	}
	if query.Channel != "" {
		opts.Filters["channel"] = query.Channel
	}
	if query.Search != "" {
		opts.Search = query.Search
	}

	leads, total, err := h.leadRepo.FindByCompany(ctx, companyID, opts)
	if err != nil {
		h.logger.Error("list leads failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.Error("DB_ERROR", "Có lỗi khi truy vấn dữ liệu. Vui lòng thử lại sau."))
		return
	}

	c.JSON(http.StatusOK, dto.SuccessWithMeta(
		leads,
		dto.NewMeta(query.Page, query.Limit, total),
	))
}

// Get lấy chi tiết lead
// GET /api/v1/leads/:id
func (h *LeadHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	companyID, ok := middleware.GetCompanyID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Error("UNAUTHORIZED", "Chưa đăng nhập"))
		return
	}

	leadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", "Lead ID không hợp lệ"))
		return
	}

	lead, err := h.leadRepo.FindByID(ctx, leadID)
	if err != nil || lead.CompanyID != companyID {
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			h.logger.Error("get lead failed", zap.Error(err))
		}
		c.JSON(http.StatusNotFound, dto.Error("NOT_FOUND", "Không tìm thấy lead yêu cầu"))
		return
	}

	c.JSON(http.StatusOK, dto.Success(lead))
}

// PublicCreate nhận lead từ public website form (không cần auth)
// Idempotent: submit lại cùng contact trả về lead đã có
// POST /api/v1/public/leads
func (h *LeadHandler) PublicCreate(c *gin.Context) {
	requestID := middleware.GetRequestID(c)
	ctx := c.Request.Context()

	var req dto.PublicLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}

	input := &services.WebsiteLeadInput{
		Name:    req.Name,
		Contact: req.Contact,
	}
	if req.CompanyID != nil {
		input.CompanyID = *req.CompanyID
	}

	result, err := h.messageService.CaptureWebsiteLead(ctx, input)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.Error("NOT_FOUND", err.Error()))
			return
		}
		h.logger.Error("capture website lead failed",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, dto.Error("INTERNAL_ERROR", "Đã có lỗi xảy ra"))
		return
	}

	status := http.StatusOK
	if result.LeadCreated {
		status = http.StatusCreated
	}
	c.JSON(status, dto.Success(gin.H{
		"lead":         result.Lead,
		"conversation": result.Conversation,
		"created":      result.LeadCreated,
	}))
}

// ===========================================================================
// Route Registration
// ===========================================================================

// RegisterRoutes đăng ký routes
// authMiddleware chỉ áp cho dashboard routes, public form không cần
func (h *LeadHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	leads := rg.Group("/leads", authMiddleware)
	{
		leads.GET("", h.List)
		leads.GET("/:id", h.Get)
	}

	public := rg.Group("/public")
	{
		public.POST("/leads", h.PublicCreate)
	}
}
