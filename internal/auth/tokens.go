package auth

import (
	"fmt"
	"time"

	"aidanwoods.dev/go-paseto"

	"github.com/shelfmark/bookstore-server/internal/domain"
	"github.com/shelfmark/bookstore-server/internal/id"
)

const (
	tokenIssuer   = "bookstore-server"
	tokenAudience = "bookstore-client"
)

// TokenService issues and verifies PASETO v4.local access tokens.
type TokenService struct {
	key      paseto.V4SymmetricKey
	duration time.Duration
	now      func() time.Time
}

// NewTokenService creates a token service from a 32-byte symmetric key.
func NewTokenService(key []byte, duration time.Duration) (*TokenService, error) {
	if len(key) != keyLength {
		return nil, fmt.Errorf("token key must be %d bytes, got %d", keyLength, len(key))
	}
	if duration <= 0 {
		return nil, fmt.Errorf("token duration must be positive, got %s", duration)
	}

	k, err := paseto.V4SymmetricKeyFromBytes(key)
	if err != nil {
		return nil, fmt.Errorf("create PASETO key: %w", err)
	}

	return &TokenService{key: k, duration: duration, now: time.Now}, nil
}

// Issue creates an access token for the user and returns it with its expiry.
func (s *TokenService) Issue(user *domain.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.duration)

	token := paseto.NewToken()
	token.SetIssuer(tokenIssuer)
	token.SetSubject(user.ID)
	token.SetAudience(tokenAudience)
	token.SetIssuedAt(now)
	token.SetNotBefore(now)
	token.SetExpiration(expires)

	jti, err := id.Generate(id.PrefixToken)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate token ID: %w", err)
	}
	token.SetJti(jti)

	//nolint:errcheck // Set only fails on unmarshalable values
	_ = token.Set("email", user.Email)
	//nolint:errcheck // Set only fails on unmarshalable values
	_ = token.Set("role", string(user.Role))

	return token.V4Encrypt(s.key, nil), expires, nil
}

// Verify decrypts a token and checks issuer, audience and validity window.
func (s *TokenService) Verify(tokenString string) (*AccessClaims, error) {
	parser := paseto.NewParserWithoutExpiryCheck()
	parser.AddRule(paseto.ForAudience(tokenAudience))
	parser.AddRule(paseto.IssuedBy(tokenIssuer))
	parser.AddRule(paseto.ValidAt(s.now()))

	token, err := parser.ParseV4Local(s.key, tokenString, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	subject, err := token.GetSubject()
	if err != nil {
		return nil, fmt.Errorf("token subject: %w", err)
	}
	expires, err := token.GetExpiration()
	if err != nil {
		return nil, fmt.Errorf("token expiration: %w", err)
	}
	jti, _ := token.GetJti()
	email, _ := token.GetString("email")
	role, _ := token.GetString("role")

	return &AccessClaims{
		UserID:    subject,
		Email:     email,
		Role:      domain.Role(role),
		TokenID:   jti,
		ExpiresAt: expires,
	}, nil
}

// Duration returns the configured access token lifetime.
func (s *TokenService) Duration() time.Duration {
	return s.duration
}
