package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shelfmark/bookstore-server/internal/domain"
	"github.com/shelfmark/bookstore-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, created_at, updated_at, deleted_at, title, author, isbn, price, description, cover_image`

var bookSortColumns = map[string]string{
	"id":         "id",
	"title":      "title COLLATE NOCASE",
	"author":     "author COLLATE NOCASE",
	"isbn":       "isbn",
	"price":      "CAST(price AS REAL)",
	"createdAt":  "created_at",
	"created_at": "created_at",
}

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		createdAt   string
		updatedAt   string
		deletedAt   sql.NullString
		price       string
		description sql.NullString
		coverImage  sql.NullString
	)

	err := scanner.Scan(
		&b.ID,
		&createdAt,
		&updatedAt,
		&deletedAt,
		&b.Title,
		&b.Author,
		&b.ISBN,
		&price,
		&description,
		&coverImage,
	)
	if err != nil {
		return nil, err
	}

	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if b.DeletedAt, err = parseNullableTime(deletedAt); err != nil {
		return nil, err
	}
	if b.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("book %s price %q: %w", b.ID, price, err)
	}
	b.Description = description.String
	b.CoverImage = coverImage.String

	return &b, nil
}

// CreateBook inserts a book and its category links.
// Returns store.ErrAlreadyExists on a duplicate ID or ISBN and
// store.ErrNotFound when a category does not exist.
func (q *queries) CreateBook(ctx context.Context, book *domain.Book) error {
	return q.atomic(ctx, func(q *queries) error {
		_, err := q.db.ExecContext(ctx, `
			INSERT INTO books (
				id, created_at, updated_at, deleted_at, title, author, isbn, price, description, cover_image
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			book.ID,
			formatTime(book.CreatedAt),
			formatTime(book.UpdatedAt),
			nullTimeString(book.DeletedAt),
			book.Title,
			book.Author,
			book.ISBN,
			book.Price.String(),
			nullString(book.Description),
			nullString(book.CoverImage),
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("book with isbn %s already exists", book.ISBN))
			}
			return fmt.Errorf("insert book: %w", err)
		}
		return q.setBookCategories(ctx, book.ID, book.CategoryIDs)
	})
}

func (q *queries) setBookCategories(ctx context.Context, bookID string, categoryIDs []string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM book_categories WHERE book_id = ?`, bookID); err != nil {
		return fmt.Errorf("clear book categories: %w", err)
	}
	for _, categoryID := range categoryIDs {
		_, err := q.db.ExecContext(ctx, `
			INSERT OR IGNORE INTO book_categories (book_id, category_id) VALUES (?, ?)`,
			bookID, categoryID,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return store.ErrNotFound.WithMessage(fmt.Sprintf("category %s not found", categoryID))
			}
			return fmt.Errorf("insert book category %s: %w", categoryID, err)
		}
	}
	return nil
}

// loadCategoryIDs fills CategoryIDs for every book in one query.
func (q *queries) loadCategoryIDs(ctx context.Context, books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := make(map[string]*domain.Book, len(books))
	args := make([]any, 0, len(books))
	for _, b := range books {
		byID[b.ID] = b
		args = append(args, b.ID)
	}

	rows, err := q.db.QueryContext(ctx,
		`SELECT book_id, category_id FROM book_categories WHERE book_id IN (`+placeholders(len(args))+`) ORDER BY category_id`,
		args...)
	if err != nil {
		return fmt.Errorf("query book categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var bookID, categoryID string
		if err := rows.Scan(&bookID, &categoryID); err != nil {
			return err
		}
		if b, ok := byID[bookID]; ok {
			b.CategoryIDs = append(b.CategoryIDs, categoryID)
		}
	}
	return rows.Err()
}

// GetBook returns an active book. Soft-deleted books are reported as missing.
func (q *queries) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND deleted_at IS NULL`, id)

	b, err := scanBook(row)
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("book %s not found", id))
	}
	if err := q.loadCategoryIDs(ctx, []*domain.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBooksByIDs returns the active books among ids. Missing ids are skipped.
func (q *queries) GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return []*domain.Book{}, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	books, err := q.queryBooks(ctx,
		`SELECT `+bookColumns+` FROM books WHERE deleted_at IS NULL AND id IN (`+placeholders(len(ids))+`)`,
		args...)
	if err != nil {
		return nil, err
	}
	return books, q.loadCategoryIDs(ctx, books)
}

func (q *queries) queryBooks(ctx context.Context, query string, args ...any) ([]*domain.Book, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	books := make([]*domain.Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// UpdateBook overwrites an active book and replaces its category links.
func (q *queries) UpdateBook(ctx context.Context, book *domain.Book) error {
	return q.atomic(ctx, func(q *queries) error {
		res, err := q.db.ExecContext(ctx, `
			UPDATE books SET
				updated_at = ?, title = ?, author = ?, isbn = ?, price = ?, description = ?, cover_image = ?
			WHERE id = ? AND deleted_at IS NULL`,
			formatTime(book.UpdatedAt),
			book.Title,
			book.Author,
			book.ISBN,
			book.Price.String(),
			nullString(book.Description),
			nullString(book.CoverImage),
			book.ID,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return store.ErrAlreadyExists.WithMessage(fmt.Sprintf("book with isbn %s already exists", book.ISBN))
			}
			return fmt.Errorf("update book: %w", err)
		}
		if err := requireAffected(res, fmt.Sprintf("book %s not found", book.ID)); err != nil {
			return err
		}
		return q.setBookCategories(ctx, book.ID, book.CategoryIDs)
	})
}

// SoftDeleteBook marks a book deleted. Orders keep referencing it.
func (q *queries) SoftDeleteBook(ctx context.Context, id string) error {
	now := formatTime(timeNow())
	res, err := q.db.ExecContext(ctx,
		`UPDATE books SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`,
		now, now, id)
	if err != nil {
		return fmt.Errorf("soft delete book: %w", err)
	}
	return requireAffected(res, fmt.Sprintf("book %s not found", id))
}

// ListBooks returns a page of active books.
func (q *queries) ListBooks(ctx context.Context, req store.PageRequest) (*store.Page[*domain.Book], error) {
	return q.pageBooks(ctx, `FROM books WHERE deleted_at IS NULL`, nil, req)
}

// ListBooksByCategory returns a page of active books filed under categoryID.
func (q *queries) ListBooksByCategory(ctx context.Context, categoryID string, req store.PageRequest) (*store.Page[*domain.Book], error) {
	return q.pageBooks(ctx, `
		FROM books WHERE deleted_at IS NULL
		AND id IN (SELECT book_id FROM book_categories WHERE category_id = ?)`,
		[]any{categoryID}, req)
}

func (q *queries) pageBooks(ctx context.Context, from string, args []any, req store.PageRequest) (*store.Page[*domain.Book], error) {
	req = req.Normalize()
	order, err := orderBy(req.Sort, bookSortColumns, "title COLLATE NOCASE ASC, id ASC", "id")
	if err != nil {
		return nil, err
	}

	var total int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) `+from, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}

	books, err := q.queryBooks(ctx,
		`SELECT `+bookColumns+` `+from+order+` LIMIT ? OFFSET ?`,
		append(args, req.Size, req.Offset())...)
	if err != nil {
		return nil, err
	}
	if err := q.loadCategoryIDs(ctx, books); err != nil {
		return nil, err
	}

	return store.NewPage(books, req, total), nil
}
