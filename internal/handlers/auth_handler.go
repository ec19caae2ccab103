package handlers

import (
	"errors"
	"net/http"

	"leadsync/internal/dto"
	apperrors "leadsync/internal/errors"
	"leadsync/internal/middleware"
	"leadsync/internal/models"
	"leadsync/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ===========================================================================
// Auth Handler
// Handle authentication endpoints: signup, login, refresh, me, logout
// ===========================================================================

// AuthHandler xử lý các endpoint auth
type AuthHandler struct {
	authService services.AuthService
	logger      *zap.Logger
}

// NewAuthHandler tạo auth handler mới
func NewAuthHandler(
	authService services.AuthService,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ===========================================================================
// Response DTOs
// ===========================================================================

// UserResponse user data (không có password)
type UserResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id"`
}

func newUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		CompanyID: user.CompanyID.String(),
	}
}

// ===========================================================================
// Handlers
// ===========================================================================

// setAuthCookies set httpOnly token cookies + CSRF cookie sau login/signup/refresh
func (h *AuthHandler) setAuthCookies(c *gin.Context, tokens *services.TokenPair) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie("access_token", tokens.AccessToken, tokens.ExpiresIn, "/", "", false, true)
	c.SetCookie("refresh_token", tokens.RefreshToken, 604800, "/", "", false, true)

	// CSRF token readable bởi JS
	csrfToken, err := middleware.GenerateCSRFToken()
	if err != nil {
		h.logger.Error("generate csrf token failed", zap.Error(err))
	} else {
		middleware.SetCSRFCookie(c, csrfToken)
	}
}

// Signup đăng ký company mới với owner user
// POST /api/v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := h.authService.Signup(c.Request.Context(), services.SignupInput{
		CompanyName: req.CompanyName,
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicateEntry) {
			c.JSON(http.StatusConflict, dto.Error("DUPLICATE_ENTRY", "Email đã được đăng ký"))
			return
		}
		h.logger.Error("signup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Error("INTERNAL_ERROR", "Đã có lỗi xảy ra"))
		return
	}

	h.setAuthCookies(c, result.Tokens)
	c.JSON(http.StatusCreated, dto.Success(newUserResponse(result.User)))
}

// Login đăng nhập user
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error("INVALID_REQUEST", err.Error()))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, dto.Error("INVALID_CREDENTIALS", "Email hoặc mật khẩu không đúng"))
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Error("INTERNAL_ERROR", "Đã có lỗi xảy ra"))
		return
	}

	h.setAuthCookies(c, result.Tokens)
	c.JSON(http.StatusOK, dto.Success(newUserResponse(result.User)))
}

// Refresh làm mới tokens
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	// Read refresh token from cookie
	refreshToken, err := c.Cookie("refresh_token")
	if err != nil || refreshToken == "" {
		c.JSON(http.StatusUnauthorized, dto.Error("NO_TOKEN", "Refresh token không tồn tại"))
		return
	}

	result, err := h.authService.RefreshTokens(c.Request.Context(), refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			c.SetCookie("access_token", "", -1, "/", "", false, true)
			c.SetCookie("refresh_token", "", -1, "/", "", false, true)
			c.JSON(http.StatusUnauthorized, dto.Error("TOKEN_EXPIRED", "Refresh token đã hết hạn"))
			return
		}
		if errors.Is(err, apperrors.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, dto.Error("INVALID_TOKEN", "Refresh token không hợp lệ"))
			return
		}
		h.logger.Error("refresh failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, dto.Error("INTERNAL_ERROR", "Đã có lỗi xảy ra"))
		return
	}

	h.setAuthCookies(c, result.Tokens)
	c.JSON(http.StatusOK, dto.Success(newUserResponse(result.User)))
}

// Me lấy thông tin user hiện tại
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.Error("UNAUTHORIZED", "Chưa đăng nhập"))
		return
	}

	user, err := h.authService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, dto.Error("USER_NOT_FOUND", "Người dùng không tồn tại"))
		return
	}

	c.JSON(http.StatusOK, dto.Success(newUserResponse(user)))
}

// Logout đăng xuất - Revoke token và clear cookies
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	// Revoke refresh token từ DB
	userID, ok := middleware.GetUserID(c)
	if ok {
		if err := h.authService.RevokeRefreshToken(c.Request.Context(), userID); err != nil {
			h.logger.Warn("revoke refresh token failed", zap.Error(err))
		}
	}

	// Clear all auth cookies
	c.SetCookie("access_token", "", -1, "/", "", false, true)
	c.SetCookie("refresh_token", "", -1, "/", "", false, true)
	c.SetCookie("csrf_token", "", -1, "/", "", false, false)

	c.JSON(http.StatusOK, dto.Success(gin.H{"message": "Đăng xuất thành công"}))
}

// ===========================================================================
// Route Registration
// ===========================================================================

// RegisterRoutes đăng ký routes cho auth
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	auth := rg.Group("/auth")
	{
		// Public routes (không cần auth)
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/refresh", h.Refresh)

		// Protected routes (cần auth)
		auth.GET("/me", authMiddleware, h.Me)
		auth.POST("/logout", authMiddleware, h.Logout)
	}
}
