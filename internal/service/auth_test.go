package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/bookstore-server/internal/domain"
	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
)

func TestAuthService_Register(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	user, err := env.auth.Register(ctx, RegisterRequest{
		Email:          "  Reader@Example.COM ",
		Password:       "correct horse battery",
		RepeatPassword: "correct horse battery",
		FirstName:      "Ada",
		LastName:       "Reader",
	})
	require.NoError(t, err)

	assert.Equal(t, "reader@example.com", user.Email)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.NotEqual(t, "correct horse battery", user.PasswordHash)

	cart, err := env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err, "registration must provision a cart")
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, user.ID, cart.UserID)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := setupTest(t)
	env.registerUser(t, "reader@example.com")

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:          "READER@example.com",
		Password:       "another password",
		RepeatPassword: "another password",
		FirstName:      "Copy",
		LastName:       "Cat",
	})
	assert.ErrorIs(t, err, domainerrors.ErrConflict)
}

func TestAuthService_Register_Validation(t *testing.T) {
	env := setupTest(t)

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"bad email", RegisterRequest{Email: "nope", Password: "longenough", RepeatPassword: "longenough", FirstName: "A", LastName: "B"}},
		{"short password", RegisterRequest{Email: "a@b.co", Password: "short", RepeatPassword: "short", FirstName: "A", LastName: "B"}},
		{"missing name", RegisterRequest{Email: "a@b.co", Password: "longenough", RepeatPassword: "longenough"}},
		{"missing repeat password", RegisterRequest{Email: "a@b.co", Password: "longenough", FirstName: "A", LastName: "B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(context.Background(), tt.req)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)
		})
	}
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	env := setupTest(t)

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Email:          "reader@example.com",
		Password:       "correct horse battery",
		RepeatPassword: "correct horse staple",
		FirstName:      "Ada",
		LastName:       "Reader",
	})
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{"repeat_password": "passwords do not match"}, domainErr.Details)

	_, err = env.auth.Login(context.Background(), LoginRequest{
		Email:    "reader@example.com",
		Password: "correct horse battery",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials, "no account is created on mismatch")
}

func TestAuthService_Login(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "READER@example.com", Password: "correct horse battery"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotEmpty(t, resp.AccessToken)

	claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	env := setupTest(t)
	env.registerUser(t, "reader@example.com")

	_, wrongPassword := env.auth.Login(context.Background(), LoginRequest{Email: "reader@example.com", Password: "wrong password"})
	require.ErrorIs(t, wrongPassword, domainerrors.ErrInvalidCredentials)

	_, unknownEmail := env.auth.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	require.ErrorIs(t, unknownEmail, domainerrors.ErrInvalidCredentials)

	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthService_VerifyAccessToken_Invalid(t *testing.T) {
	env := setupTest(t)

	_, err := env.auth.VerifyAccessToken(context.Background(), "")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = env.auth.VerifyAccessToken(context.Background(), "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	admin, err := env.auth.EnsureAdmin(ctx, "admin@example.com", "admin password")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	again, err := env.auth.EnsureAdmin(ctx, "ADMIN@example.com", "different password")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "admin@example.com", Password: "admin password"})
	require.NoError(t, err)
	claims, err := env.auth.VerifyAccessToken(ctx, resp.AccessToken)
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())

	_, err = env.carts.GetCart(ctx, admin.ID)
	assert.NoError(t, err)
}
