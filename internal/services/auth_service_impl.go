package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"leadsync/internal/auth"
	apperrors "leadsync/internal/errors"
	"leadsync/internal/models"
	"leadsync/internal/repositories"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ===========================================================================
// Auth Service Implementation
// ===========================================================================

// authServiceImpl implements AuthService
type authServiceImpl struct {
	userRepo    repositories.UserRepository
	companyRepo repositories.CompanyRepository
	jwtService  *auth.JWTService
	logger      *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.UserRepository,
	companyRepo repositories.CompanyRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) AuthService {
	return &authServiceImpl{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		jwtService:  jwtService,
		logger:      logger,
	}
}

// hashToken creates SHA256 hash of token for storage
func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

// issueTokens generates a token pair and persists the refresh token hash
func (s *authServiceImpl) issueTokens(ctx context.Context, user *models.User) (*LoginResult, error) {
	tokens, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("generate token failed",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		return nil, fmt.Errorf("generate token: %w", err)
	}

	// Hash và lưu refresh token vào DB
	tokenHash := hashToken(tokens.RefreshToken)
	user.RefreshTokenHash = &tokenHash
	user.UpdateLastSeen()

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error("save refresh token hash failed",
			zap.Error(err),
			zap.String("user_id", user.ID.String()),
		)
		// Không return error, vẫn cho đăng nhập nhưng log warning
	}

	return &LoginResult{
		User: user,
		Tokens: &TokenPair{
			AccessToken:  tokens.AccessToken,
			RefreshToken: tokens.RefreshToken,
			ExpiresIn:    900, // 15 minutes
		},
	}, nil
}

// Signup creates a new company with its first OWNER user
func (s *authServiceImpl) Signup(ctx context.Context, input SignupInput) (*LoginResult, error) {
	// Email phải unique toàn hệ thống (uuid.Nil = global search)
	_, err := s.userRepo.FindByEmail(ctx, uuid.Nil, input.Email)
	if err == nil {
		return nil, apperrors.New(apperrors.ErrDuplicateEntry, "email already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	companyName := input.CompanyName
	if companyName == "" {
		companyName = fmt.Sprintf("%s's Company", input.Name)
	}

	company := &models.Company{
		Name: companyName,
		Settings: models.CompanySettings{
			Timezone:   "UTC",
			BotEnabled: true,
			Language:   "en",
		},
		IsActive: true,
	}
	if err := s.companyRepo.Create(ctx, company); err != nil {
		s.logger.Error("create company failed",
			zap.Error(err),
			zap.String("company_name", companyName),
		)
		return nil, fmt.Errorf("create company: %w", err)
	}

	user := &models.User{
		CompanyID: company.ID,
		Email:     input.Email,
		Name:      input.Name,
		Role:      models.RoleOwner,
		IsActive:  true,
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.New(apperrors.ErrDuplicateEntry, "email already registered")
		}
		s.logger.Error("create owner user failed",
			zap.Error(err),
			zap.String("email", input.Email),
		)
		return nil, fmt.Errorf("create user: %w", err)
	}
	user.Company = *company

	s.logger.Info("company signed up",
		zap.String("company_id", company.ID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	return s.issueTokens(ctx, user)
}

// Login authenticates user with email and password
func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	// Find user by email (uuid.Nil = global search)
	user, err := s.userRepo.FindByEmail(ctx, uuid.Nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		s.logger.Error("find user by email failed",
			zap.Error(err),
			zap.String("email", email),
		)
		return nil, fmt.Errorf("find user by email: %w", err)
	}

	// Verify password
	if !user.CheckPassword(password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	result, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email),
	)

	return result, nil
}

// RefreshTokens generates new token pair using refresh token
func (s *authServiceImpl) RefreshTokens(ctx context.Context, refreshToken string) (*LoginResult, error) {
	// Validate refresh token JWT
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		if err == auth.ErrExpiredToken {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	// Get user
	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}

	// Validate refresh token hash với DB
	tokenHash := hashToken(refreshToken)
	if user.RefreshTokenHash == nil || *user.RefreshTokenHash != tokenHash {
		s.logger.Warn("refresh token hash mismatch - token possibly revoked",
			zap.String("user_id", user.ID.String()),
		)
		return nil, apperrors.ErrInvalidToken
	}

	// Token rotation: issueTokens lưu hash của token mới
	return s.issueTokens(ctx, user)
}

// ValidateAccessToken validates access token and returns claims
func (s *authServiceImpl) ValidateAccessToken(token string) (*Claims, error) {
	jwtClaims, err := s.jwtService.ValidateAccessToken(token)
	if err != nil {
		if err == auth.ErrExpiredToken {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	return &Claims{
		UserID:    jwtClaims.UserID,
		CompanyID: jwtClaims.CompanyID,
		Email:     jwtClaims.Email,
		Role:      jwtClaims.Role,
	}, nil
}

// ValidateRefreshToken validates refresh token and returns claims
func (s *authServiceImpl) ValidateRefreshToken(token string) (*Claims, error) {
	jwtClaims, err := s.jwtService.ValidateRefreshToken(token)
	if err != nil {
		if err == auth.ErrExpiredToken {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	return &Claims{
		UserID:    jwtClaims.UserID,
		CompanyID: jwtClaims.CompanyID,
		Email:     jwtClaims.Email,
		Role:      jwtClaims.Role,
	}, nil
}

// GetUserByID gets user by ID
func (s *authServiceImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user, nil
}

// RevokeRefreshToken invalidates refresh token (for logout)
func (s *authServiceImpl) RevokeRefreshToken(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return apperrors.ErrNotFound
	}

	// Clear refresh token hash
	user.RefreshTokenHash = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	s.logger.Info("refresh token revoked",
		zap.String("user_id", userID.String()),
	)

	return nil
}
