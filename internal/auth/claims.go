package auth

import (
	"time"

	"github.com/shelfmark/bookstore-server/internal/domain"
)

// AccessClaims is the identity carried inside an access token.
type AccessClaims struct {
	UserID    string
	Email     string
	Role      domain.Role
	TokenID   string
	ExpiresAt time.Time
}

// IsAdmin reports whether the token grants admin access.
func (c *AccessClaims) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}
