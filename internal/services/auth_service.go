package services

import (
	"context"

	"leadsync/internal/models"

	"github.com/google/uuid"
)

// ===========================================================================
// Auth Service Interface
// Handle authentication: signup, login, refresh, token validation
// ===========================================================================

// TokenPair contains access and refresh tokens
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // seconds
}

// LoginResult result of login operation
type LoginResult struct {
	User   *models.User
	Tokens *TokenPair
}

// SignupInput dữ liệu đăng ký company mới
type SignupInput struct {
	// CompanyName tên company, rỗng thì derive từ tên user
	CompanyName string
	Name        string
	Email       string
	Password    string
}

// Claims extracted token claims
type Claims struct {
	UserID    uuid.UUID
	CompanyID uuid.UUID
	Email     string
	Role      models.UserRole
}

// AuthService interface for authentication operations
type AuthService interface {
	// Signup creates a new company with its first OWNER user
	// Returns the user and tokens, giống như login thành công
	Signup(ctx context.Context, input SignupInput) (*LoginResult, error)

	// Login authenticates user with email and password
	// Returns user and tokens if successful
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// RefreshTokens generate new token pair using refresh token
	RefreshTokens(ctx context.Context, refreshToken string) (*LoginResult, error)

	// ValidateAccessToken validates access token and returns claims
	ValidateAccessToken(token string) (*Claims, error)

	// ValidateRefreshToken validates refresh token and returns claims
	ValidateRefreshToken(token string) (*Claims, error)

	// GetUserByID gets user by ID
	GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error)

	// RevokeRefreshToken invalidates refresh token (for logout)
	RevokeRefreshToken(ctx context.Context, userID uuid.UUID) error
}
