package sqlite

import (
	"context"
	"fmt"

	"github.com/shelfmark/bookstore-server/internal/domain"
	"github.com/shelfmark/bookstore-server/internal/store"
)

// CreateCart inserts an empty cart for its user.
// Returns store.ErrAlreadyExists if the user already has one.
func (q *queries) CreateCart(ctx context.Context, cart *domain.Cart) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO carts (id, user_id) VALUES (?, ?)`, cart.ID, cart.UserID)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists.WithMessage("user already has a cart")
		}
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithMessage("user not found")
		}
		return fmt.Errorf("insert cart: %w", err)
	}
	return nil
}

// GetCartByUser loads the user's cart with its items in insertion order.
// Item titles come from the books table, including soft-deleted books.
func (q *queries) GetCartByUser(ctx context.Context, userID string) (*domain.Cart, error) {
	var cartID string
	err := q.db.QueryRowContext(ctx, `SELECT id FROM carts WHERE user_id = ?`, userID).Scan(&cartID)
	if err != nil {
		return nil, notFound(err, "shopping cart not found")
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT ci.id, ci.cart_id, ci.book_id, b.title, ci.quantity
		FROM cart_items ci
		JOIN books b ON b.id = ci.book_id
		WHERE ci.cart_id = ?
		ORDER BY ci.rowid`, cartID)
	if err != nil {
		return nil, fmt.Errorf("query cart items: %w", err)
	}
	defer rows.Close()

	var items []*domain.CartItem
	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.BookID, &item.BookTitle, &item.Quantity); err != nil {
			return nil, err
		}
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return domain.NewCart(cartID, userID, items), nil
}

// SaveCartItem writes the item's absolute quantity. An existing row for the
// same (cart, book) pair is updated in place and its ID copied back to item.
func (q *queries) SaveCartItem(ctx context.Context, item *domain.CartItem) error {
	if item.Quantity <= 0 {
		return store.ErrInvalidInput.WithMessage("quantity must be greater than zero")
	}

	res, err := q.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ? WHERE id = ? AND cart_id = ?`,
		item.Quantity, item.ID, item.CartID)
	if err != nil {
		return fmt.Errorf("update cart item: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n > 0 {
		return nil
	}

	err = q.db.QueryRowContext(ctx, `
		INSERT INTO cart_items (id, cart_id, book_id, quantity) VALUES (?, ?, ?, ?)
		ON CONFLICT (cart_id, book_id) DO UPDATE SET quantity = excluded.quantity
		RETURNING id`,
		item.ID, item.CartID, item.BookID, item.Quantity,
	).Scan(&item.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound.WithMessage("cart or book not found")
		}
		return fmt.Errorf("upsert cart item: %w", err)
	}
	return nil
}

// DeleteCartItem removes an item only when it belongs to cartID.
func (q *queries) DeleteCartItem(ctx context.Context, cartID, itemID string) error {
	res, err := q.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = ? AND cart_id = ?`, itemID, cartID)
	if err != nil {
		return fmt.Errorf("delete cart item: %w", err)
	}
	return requireAffected(res, "cart item not found")
}

// ClearCart removes every item from the cart. The cart row stays.
func (q *queries) ClearCart(ctx context.Context, cartID string) error {
	if _, err := q.db.ExecContext(ctx, `DELETE FROM cart_items WHERE cart_id = ?`, cartID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}
