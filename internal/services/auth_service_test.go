package services

import (
	"context"
	"testing"
	"time"

	"leadsync/internal/auth"
	"leadsync/internal/config"
	apperrors "leadsync/internal/errors"
	"leadsync/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ===========================================================================
// Auth Service Tests
// ===========================================================================

type authServiceFixture struct {
	userRepo    *fakeUserRepo
	companyRepo *fakeCompanyRepo
	service     AuthService
}

func newAuthServiceFixture(t *testing.T) *authServiceFixture {
	t.Helper()

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:          "test-secret-key-for-unit-tests",
		AccessDuration:  15 * time.Minute,
		RefreshDuration: 7 * 24 * time.Hour,
	})

	f := &authServiceFixture{
		userRepo:    newFakeUserRepo(),
		companyRepo: newFakeCompanyRepo(),
	}
	f.service = NewAuthService(f.userRepo, f.companyRepo, jwtService, zap.NewNop())
	return f
}

func signupInput() SignupInput {
	return SignupInput{
		CompanyName: "Acme Store",
		Name:        "Jane Owner",
		Email:       "jane@acme.test",
		Password:    "Password123!",
	}
}

func TestSignup_CreatesCompanyAndOwner(t *testing.T) {
	f := newAuthServiceFixture(t)

	result, err := f.service.Signup(context.Background(), signupInput())

	require.NoError(t, err)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)
	assert.Equal(t, 900, result.Tokens.ExpiresIn)

	user := result.User
	assert.Equal(t, models.RoleOwner, user.Role)
	assert.True(t, user.IsActive)
	assert.True(t, user.CheckPassword("Password123!"))
	assert.NotNil(t, user.RefreshTokenHash)

	company, err := f.companyRepo.FindByID(context.Background(), user.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Store", company.Name)
	assert.True(t, company.IsActive)
	assert.True(t, company.Settings.BotEnabled)
}

func TestSignup_DefaultCompanyName(t *testing.T) {
	f := newAuthServiceFixture(t)

	input := signupInput()
	input.CompanyName = ""

	result, err := f.service.Signup(context.Background(), input)

	require.NoError(t, err)
	company, err := f.companyRepo.FindByID(context.Background(), result.User.CompanyID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Owner's Company", company.Name)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Signup(ctx, signupInput())
	require.NoError(t, err)

	_, err = f.service.Signup(ctx, signupInput())
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEntry)
}

func TestLogin_Success(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Signup(ctx, signupInput())
	require.NoError(t, err)

	result, err := f.service.Login(ctx, "jane@acme.test", "Password123!")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.Equal(t, "jane@acme.test", result.User.Email)

	claims, err := f.service.ValidateAccessToken(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, result.User.CompanyID, claims.CompanyID)
	assert.Equal(t, models.RoleOwner, claims.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()

	_, err := f.service.Signup(ctx, signupInput())
	require.NoError(t, err)

	_, err = f.service.Login(ctx, "jane@acme.test", "wrong-password")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	f := newAuthServiceFixture(t)

	_, err := f.service.Login(context.Background(), "nobody@acme.test", "Password123!")
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestRefreshTokens_Rotation(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()

	signup, err := f.service.Signup(ctx, signupInput())
	require.NoError(t, err)
	oldRefresh := signup.Tokens.RefreshToken

	refreshed, err := f.service.RefreshTokens(ctx, oldRefresh)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.Tokens.AccessToken)

	// Hash trong DB giờ là của refresh token mới
	user, err := f.userRepo.FindByID(ctx, signup.User.ID)
	require.NoError(t, err)
	require.NotNil(t, user.RefreshTokenHash)
	assert.Equal(t, hashToken(refreshed.Tokens.RefreshToken), *user.RefreshTokenHash)
}

func TestRefreshTokens_RejectsAccessToken(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()

	signup, err := f.service.Signup(ctx, signupInput())
	require.NoError(t, err)

	_, err = f.service.RefreshTokens(ctx, signup.Tokens.AccessToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}

func TestRevokeRefreshToken(t *testing.T) {
	f := newAuthServiceFixture(t)
	ctx := context.Background()

	signup, err := f.service.Signup(ctx, signupInput())
	require.NoError(t, err)

	require.NoError(t, f.service.RevokeRefreshToken(ctx, signup.User.ID))

	_, err = f.service.RefreshTokens(ctx, signup.Tokens.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
}
