package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shelfmark/bookstore-server/internal/domain"
	"github.com/shelfmark/bookstore-server/internal/store"
)

const userColumns = `id, created_at, updated_at, deleted_at, email, password_hash,
	first_name, last_name, shipping_address, role`

func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u         domain.User
		createdAt string
		updatedAt string
		deletedAt sql.NullString
		address   sql.NullString
		role      string
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&address,
		&role,
	)
	if err != nil {
		return nil, err
	}

	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if u.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}
	u.ShippingAddress = address.String
	u.Role = domain.Role(role)

	return &u, nil
}

// CreateUser inserts a user. Email uniqueness is case-insensitive.
func (q *queries) CreateUser(ctx context.Context, u *domain.User) error {
	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}

	_, err := q.db.ExecContext(ctx, `
		INSERT INTO users (
			id, created_at, updated_at, deleted_at, email, password_hash,
			first_name, last_name, shipping_address, role
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID,
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
		nullTimeString(u.DeletedAt),
		domain.NormalizeEmail(u.Email),
		u.PasswordHash,
		u.FirstName,
		u.LastName,
		nullString(u.ShippingAddress),
		string(role),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("email already registered")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves an active user by ID.
func (q *queries) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ? AND deleted_at IS NULL`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}

// GetUserByEmail retrieves an active user by email, ignoring case.
func (q *queries) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`,
		domain.NormalizeEmail(email))
	u, err := scanUser(row)
	if err != nil {
		return nil, notFound(err, "user not found")
	}
	return u, nil
}
