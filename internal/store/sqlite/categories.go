package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shelfmark/bookstore-server/internal/domain"
	"github.com/shelfmark/bookstore-server/internal/store"
)

const categoryColumns = `id, created_at, updated_at, name, slug, description`

var categorySortColumns = map[string]string{
	"id":   "id",
	"name": "name COLLATE NOCASE",
	"slug": "slug",
}

func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var (
		c           domain.Category
		createdAt   string
		updatedAt   string
		description sql.NullString
	)

	err := scanner.Scan(&c.ID, &createdAt, &updatedAt, &c.Name, &c.Slug, &description)
	if err != nil {
		return nil, err
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	c.Description = description.String

	return &c, nil
}

// CreateCategory inserts a category.
// Returns store.ErrAlreadyExists when the slug is taken.
func (q *queries) CreateCategory(ctx context.Context, c *domain.Category) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO categories (id, created_at, updated_at, name, slug, description)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
		c.Name,
		c.Slug,
		nullString(c.Description),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("category %q already exists", c.Name))
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// GetCategory retrieves a category by ID.
func (q *queries) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("category %s not found", id))
	}
	return c, nil
}

// UpdateCategory overwrites name, slug and description.
func (q *queries) UpdateCategory(ctx context.Context, c *domain.Category) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE categories SET updated_at = ?, name = ?, slug = ?, description = ?
		WHERE id = ?`,
		formatTime(c.UpdatedAt),
		c.Name,
		c.Slug,
		nullString(c.Description),
		c.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("category %q already exists", c.Name))
		}
		return fmt.Errorf("update category: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("category %s not found", c.ID))
}

// DeleteCategory removes a category. Book links cascade.
func (q *queries) DeleteCategory(ctx context.Context, id string) error {
	res, err := q.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("category %s not found", id))
}

// ListCategories returns a page of categories ordered by name by default.
func (q *queries) ListCategories(ctx context.Context, req store.PageRequest) (*store.Page[*domain.Category], error) {
	req = req.Normalize()
	order, err := orderBy(req.Sort, categorySortColumns, "name COLLATE NOCASE ASC, id ASC", "id")
	if err != nil {
		return nil, err
	}

	var total int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories`+order+` LIMIT ? OFFSET ?`,
		req.Size, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return store.NewPage(categories, req, total), nil
}
