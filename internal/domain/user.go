package domain

import "strings"

// Role represents the user's permission level in the store.
type Role string

const (
	// RoleUser can browse the catalog, manage a cart and place orders.
	RoleUser Role = "user"
	// RoleAdmin can additionally manage the catalog and order statuses.
	RoleAdmin Role = "admin"
)

// User represents a registered customer or administrator.
type User struct {
	Record
	Email           string `json:"email"`
	PasswordHash    string `json:"-"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ShippingAddress string `json:"shipping_address,omitempty"`
	Role            Role   `json:"role"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// DisplayName returns "First Last", falling back to the email address.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// NormalizeEmail lowercases and trims an email address for lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
