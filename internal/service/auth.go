package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shelfmark/bookstore-server/internal/auth"
	"github.com/shelfmark/bookstore-server/internal/domain"
	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
	"github.com/shelfmark/bookstore-server/internal/id"
	"github.com/shelfmark/bookstore-server/internal/store"
	"github.com/shelfmark/bookstore-server/internal/validation"
)

const msgInvalidLogin = "invalid email or password"

// AuthService handles registration, login and token verification.
type AuthService struct {
	store     store.Store
	tokens    *auth.TokenService
	carts     *CartService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokens *auth.TokenService,
	carts *CartService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:     store,
		tokens:    tokens,
		carts:     carts,
		validator: validator,
		logger:    discardIfNil(logger),
	}
}

// RegisterRequest contains user registration data.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,min=8,max=1024"`
	RepeatPassword  string `json:"repeat_password" validate:"required,eqfield=Password"`
	FirstName       string `json:"first_name" validate:"required,max=100"`
	LastName        string `json:"last_name" validate:"required,max=100"`
	ShippingAddress string `json:"shipping_address" validate:"max=500"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse contains an access token and the user it was issued to.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
}

// Register creates a customer account together with its empty cart.
// A duplicate email (case-insensitive) is a Conflict.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// createUser inserts the user and provisions their cart in one transaction,
// so no account ever exists without a cart.
func (s *AuthService) createUser(ctx context.Context, req RegisterRequest, role domain.Role) (*domain.User, error) {
	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) || errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, domainerrors.ValidationWithDetails("validation failed", map[string]string{
				"password": err.Error(),
			})
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.Generate(id.PrefixUser)
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		Email:           domain.NormalizeEmail(req.Email),
		PasswordHash:    passwordHash,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		ShippingAddress: strings.TrimSpace(req.ShippingAddress),
		Role:            role,
	}
	user.ID = userID
	user.InitTimestamps()

	err = s.store.InTx(ctx, func(repo store.Repository) error {
		if err := repo.CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return domainerrors.Conflict("email already in use")
			}
			return storeError(err, "create user")
		}
		_, err := s.carts.ProvisionCart(ctx, repo, user.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.InvalidCredentials(msgInvalidLogin)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials(msgInvalidLogin)
	}

	token, expires, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &AuthResponse{
		User:        user,
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expires,
	}, nil
}

// VerifyAccessToken validates a bearer token and returns its claims.
func (s *AuthService) VerifyAccessToken(_ context.Context, token string) (*auth.AccessClaims, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("missing access token")
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired access token").WithCause(err)
	}
	return claims, nil
}

// EnsureAdmin creates the bootstrap administrator if no account uses email.
// An existing account is left untouched.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error) {
	existing, err := s.store.GetUserByEmail(ctx, email)
	if err == nil {
		if !existing.IsAdmin() {
			s.logger.Warn("bootstrap admin email belongs to a non-admin account", "user_id", existing.ID)
		}
		return existing, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup admin: %w", err)
	}

	req := RegisterRequest{
		Email:          domain.NormalizeEmail(email),
		Password:       password,
		RepeatPassword: password,
		FirstName:      "Store",
		LastName:       "Admin",
	}
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.createUser(ctx, req, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bootstrap admin created", "user_id", user.ID, "email", user.Email)
	return user, nil
}
