package api

import (
	"context"
	"strings"

	"github.com/shelfmark/bookstore-server/internal/auth"
	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
)

// authenticateRequest validates the Authorization header and returns the
// caller's token claims.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (*auth.AccessClaims, error) {
	if authHeader == "" {
		return nil, domainerrors.Unauthorized("missing authorization header")
	}

	scheme, token, ok := strings.Cut(authHeader, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return nil, domainerrors.Unauthorized("invalid authorization header format")
	}

	return s.services.Auth.VerifyAccessToken(ctx, strings.TrimSpace(token))
}

// authenticateAndRequireAdmin validates the token and requires the admin role.
func (s *Server) authenticateAndRequireAdmin(ctx context.Context, authHeader string) (*auth.AccessClaims, error) {
	claims, err := s.authenticateRequest(ctx, authHeader)
	if err != nil {
		return nil, err
	}
	if !claims.IsAdmin() {
		return nil, domainerrors.Forbidden("admin access required")
	}
	return claims, nil
}
