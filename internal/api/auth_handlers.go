package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfmark/bookstore-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	register(s, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/auth/register",
		Summary:       "Register new user",
		Description:   "Creates a customer account together with its empty cart",
		Tags:          []string{"Authentication"},
		DefaultStatus: http.StatusCreated,
	}, s.handleRegister)

	register(s, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        apiPrefix + "/auth/login",
		Summary:     "User login",
		Description: "Authenticates a user and returns a PASETO access token",
		Tags:        []string{"Authentication"},
		Middlewares: huma.Middlewares{s.limitLogins},
	}, s.handleLogin)
}

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Email           string `json:"email" doc:"Email address"`
	Password        string `json:"password" doc:"Password, at least 8 characters"`
	RepeatPassword  string `json:"repeat_password" doc:"Password again, must match"`
	FirstName       string `json:"first_name" doc:"First name"`
	LastName        string `json:"last_name" doc:"Last name"`
	ShippingAddress string `json:"shipping_address,omitempty" doc:"Default shipping address"`
}

// RegisterInput wraps the registration request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*UserOutput, error) {
	user, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:           input.Body.Email,
		Password:        input.Body.Password,
		RepeatPassword:  input.Body.RepeatPassword,
		FirstName:       input.Body.FirstName,
		LastName:        input.Body.LastName,
		ShippingAddress: input.Body.ShippingAddress,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" doc:"Email address"`
	Password string `json:"password" doc:"Password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// AuthResponse is returned by a successful login.
type AuthResponse struct {
	AccessToken string       `json:"access_token" doc:"PASETO access token"`
	TokenType   string       `json:"token_type" doc:"Always Bearer"`
	ExpiresAt   time.Time    `json:"expires_at" doc:"Token expiry"`
	User        UserResponse `json:"user" doc:"Authenticated user"`
}

// AuthOutput wraps the auth response for Huma.
type AuthOutput struct {
	Body AuthResponse
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &AuthOutput{
		Body: AuthResponse{
			AccessToken: resp.AccessToken,
			TokenType:   resp.TokenType,
			ExpiresAt:   resp.ExpiresAt,
			User:        toUserResponse(resp.User),
		},
	}, nil
}
