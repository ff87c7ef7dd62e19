package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/bookstore-server/internal/auth"
	"github.com/shelfmark/bookstore-server/internal/domain"
	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
	"github.com/shelfmark/bookstore-server/internal/logger"
	"github.com/shelfmark/bookstore-server/internal/search"
	"github.com/shelfmark/bookstore-server/internal/store"
	"github.com/shelfmark/bookstore-server/internal/store/sqlite"
	"github.com/shelfmark/bookstore-server/internal/validation"
)

type testEnv struct {
	store   *sqlite.Store
	index   *search.CatalogIndex
	tokens  *auth.TokenService
	carts   *CartService
	orders  *OrderService
	catalog *CatalogService
	auth    *AuthService
}

// setupTest wires every service against a fresh SQLite file and an
// in-memory search index.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	log := logger.Discard()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewCatalogIndex(search.Options{Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{7}, 32), time.Hour)
	require.NoError(t, err)

	v := validation.New()
	carts := NewCartService(s, log)

	return &testEnv{
		store:   s,
		index:   index,
		tokens:  tokens,
		carts:   carts,
		orders:  NewOrderService(s, log),
		catalog: NewCatalogService(s, index, v, log),
		auth:    NewAuthService(s, tokens, carts, v, log),
	}
}

func (e *testEnv) registerUser(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := e.auth.Register(context.Background(), RegisterRequest{
		Email:           email,
		Password:        "correct horse battery",
		RepeatPassword:  "correct horse battery",
		FirstName:       "Test",
		LastName:        "Reader",
		ShippingAddress: "1 Library Lane",
	})
	require.NoError(t, err)
	return user
}

var isbnSeq atomic.Int64

func (e *testEnv) createBook(t *testing.T, title, price string) *domain.Book {
	t.Helper()
	book, err := e.catalog.CreateBook(context.Background(), BookInput{
		Title:  title,
		Author: "Test Author",
		ISBN:   fmt.Sprintf("978%010d", isbnSeq.Add(1)),
		Price:  price,
	})
	require.NoError(t, err)
	return book
}

// clearFailingStore injects a failure into ClearCart inside transactions,
// between the order insert and the cart clear.
type clearFailingStore struct {
	store.Store
}

var errInjected = errors.New("injected failure")

type clearFailingRepo struct {
	store.Repository
}

func (clearFailingRepo) ClearCart(context.Context, string) error { return errInjected }

func (s clearFailingStore) InTx(ctx context.Context, fn func(repo store.Repository) error) error {
	return s.Store.InTx(ctx, func(repo store.Repository) error {
		return fn(clearFailingRepo{Repository: repo})
	})
}

func TestStoreError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want *domainerrors.Error
	}{
		{"not found", store.ErrNotFound.WithMessage("book x not found"), domainerrors.ErrNotFound},
		{"already exists", store.ErrAlreadyExists, domainerrors.ErrAlreadyExists},
		{"invalid input", store.ErrInvalidInput.WithMessage("bad sort"), domainerrors.ErrValidation},
		{"domain passthrough", domainerrors.Forbidden("nope"), domainerrors.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := storeError(tt.in, "op")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("keeps store message", func(t *testing.T) {
		err := storeError(store.ErrNotFound.WithMessage("order not found"), "op")
		assert.Equal(t, "order not found", err.Error())
	})

	t.Run("wraps unknown errors", func(t *testing.T) {
		err := storeError(errInjected, "clear cart")
		assert.ErrorIs(t, err, errInjected)
		assert.Equal(t, "clear cart: injected failure", err.Error())
	})

	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, storeError(nil, "op"))
	})
}
