// Package store defines the persistence interface for the bookstore server.
package store

import (
	"context"

	"github.com/shelfmark/bookstore-server/internal/domain"
)

// BookRepository is the catalog's book storage.
// Soft-deleted books are invisible to every method except SoftDeleteBook.
type BookRepository interface {
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	SoftDeleteBook(ctx context.Context, id string) error
	ListBooks(ctx context.Context, req PageRequest) (*Page[*domain.Book], error)
	ListBooksByCategory(ctx context.Context, categoryID string, req PageRequest) (*Page[*domain.Book], error)
}

// CategoryRepository stores catalog categories.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *domain.Category) error
	GetCategory(ctx context.Context, id string) (*domain.Category, error)
	UpdateCategory(ctx context.Context, c *domain.Category) error
	DeleteCategory(ctx context.Context, id string) error
	ListCategories(ctx context.Context, req PageRequest) (*Page[*domain.Category], error)
}

// UserRepository stores accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
}

// CartRepository stores one cart per user and its line items.
type CartRepository interface {
	CreateCart(ctx context.Context, cart *domain.Cart) error
	// GetCartByUser loads the cart aggregate owned by userID.
	GetCartByUser(ctx context.Context, userID string) (*domain.Cart, error)
	// SaveCartItem upserts on (cart_id, book_id) with an absolute quantity.
	SaveCartItem(ctx context.Context, item *domain.CartItem) error
	// DeleteCartItem removes itemID only if it belongs to cartID.
	DeleteCartItem(ctx context.Context, cartID, itemID string) error
	ClearCart(ctx context.Context, cartID string) error
}

// OrderRepository stores orders. Every read is scoped to the owning user
// except GetOrder, which backs admin operations.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	GetUserOrder(ctx context.Context, userID, orderID string) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status domain.Status) error
	ListOrdersByUser(ctx context.Context, userID string, req PageRequest) (*Page[*domain.Order], error)
	ListOrderItems(ctx context.Context, userID, orderID string, req PageRequest) (*Page[*domain.OrderItem], error)
	GetOrderItem(ctx context.Context, userID, orderID, itemID string) (*domain.OrderItem, error)
}

// Repository is the full set of persistence operations. It is satisfied both
// by the Store and by the transaction-bound view passed to InTx.
type Repository interface {
	BookRepository
	CategoryRepository
	UserRepository
	CartRepository
	OrderRepository
}

// Store is a Repository with lifecycle and unit-of-work support.
type Store interface {
	Repository

	// InTx runs fn inside a single transaction. The transaction commits when
	// fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(repo Repository) error) error
	Ping(ctx context.Context) error
	Close() error
}

// SearchIndexer keeps the catalog search index in sync with book writes.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, bookID string) error
}
