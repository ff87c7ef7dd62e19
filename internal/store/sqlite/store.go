package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/shelfmark/bookstore-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements store.Repository over a pool or a single transaction.
type queries struct {
	db dbtx
}

// Store provides SQLite-backed persistence for the bookstore server.
type Store struct {
	*queries

	db     *sql.DB
	logger *slog.Logger
}

var _ store.Store = (*Store)(nil)

// pragmas are applied to every pooled connection through the DSN.
// _txlock=immediate takes the write lock at BEGIN, which serializes
// read-then-write sequences such as the cart merge.
var pragmas = []string{
	"foreign_keys(1)",
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
}

func dsn(path string) string {
	v := url.Values{}
	for _, p := range pragmas {
		v.Add("_pragma", p)
	}
	v.Set("_txlock", "immediate")
	return path + "?" + v.Encode()
}

// Open creates a new SQLite store at the given path and runs the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{
		queries: &queries{db: db},
		db:      db,
		logger:  logger,
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InTx runs fn with a repository bound to one transaction.
// A returned error or a panic rolls the transaction back.
func (s *Store) InTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// atomic runs fn in a transaction unless q is already bound to one.
func (q *queries) atomic(ctx context.Context, fn func(q *queries) error) error {
	db, ok := q.db.(*sql.DB)
	if !ok {
		return fn(q)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

// isUniqueViolation reports whether err came from a UNIQUE or PRIMARY KEY constraint.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "PRIMARY KEY constraint failed")
}

// isForeignKeyViolation reports whether err came from a FOREIGN KEY constraint.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// notFound converts sql.ErrNoRows into store.ErrNotFound with a message.
func notFound(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound.WithMessage(msg)
	}
	return err
}

// requireAffected returns ErrNotFound when the statement touched no rows.
func requireAffected(res sql.Result, msg string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound.WithMessage(msg)
	}
	return nil
}

// orderBy resolves a sort against an allow-list of column expressions.
// Unknown fields are rejected instead of being interpolated. idColumn breaks
// ties so page boundaries stay stable.
func orderBy(s store.Sort, columns map[string]string, fallback, idColumn string) (string, error) {
	if s.Field == "" {
		return " ORDER BY " + fallback, nil
	}
	col, ok := columns[s.Field]
	if !ok {
		return "", store.ErrInvalidInput.WithMessage(fmt.Sprintf("cannot sort by %q", s.Field))
	}
	dir := "ASC"
	if s.Direction == store.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, %s %s", col, dir, idColumn, dir), nil
}

// timeNow is the store's clock for timestamps it stamps itself.
var timeNow = func() time.Time { return time.Now().UTC() }

// timeLayout is fixed-width UTC so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// formatTime formats a time.Time for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime parses a stored timestamp. RFC3339 values written by hand are accepted too.
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// parseNullableTime parses an optional time string.
func parseNullableTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := parseTime(s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// nullString returns a sql.NullString, NULL for the empty string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullTimeString returns a sql.NullString from a *time.Time.
func nullTimeString(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: formatTime(*t), Valid: true}
}

// placeholders returns "?, ?, ..." for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
