package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/shelfmark/bookstore-server/internal/domain"
	"github.com/shelfmark/bookstore-server/internal/store"
)

func TestGetCartByUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetCartByUser(context.Background(), "usr-none"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateCart_OnePerUser(t *testing.T) {
	s := newTestStore(t)
	insertTestUser(t, s, "usr-1")

	err := s.CreateCart(context.Background(), domain.NewCart("cart-2", "usr-1", nil))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestSaveCartItem_UpsertsOnBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "usr-1")
	insertTestBook(t, s, "book-1", "Dune", "10.00")

	first := &domain.CartItem{ID: "ci-1", CartID: "cart-usr-1", BookID: "book-1", Quantity: 2}
	if err := s.SaveCartItem(ctx, first); err != nil {
		t.Fatalf("SaveCartItem: %v", err)
	}

	// A second row for the same book must land on the existing one.
	second := &domain.CartItem{ID: "ci-2", CartID: "cart-usr-1", BookID: "book-1", Quantity: 5}
	if err := s.SaveCartItem(ctx, second); err != nil {
		t.Fatalf("SaveCartItem: %v", err)
	}
	if second.ID != "ci-1" {
		t.Errorf("expected canonical id ci-1, got %s", second.ID)
	}

	cart, err := s.GetCartByUser(ctx, "usr-1")
	if err != nil {
		t.Fatalf("GetCartByUser: %v", err)
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 || cart.Items[0].BookTitle != "Dune" {
		t.Errorf("unexpected item: %+v", cart.Items[0])
	}
}

func TestSaveCartItem_RejectsZeroQuantity(t *testing.T) {
	s := newTestStore(t)
	insertTestUser(t, s, "usr-1")
	insertTestBook(t, s, "book-1", "Dune", "10.00")

	err := s.SaveCartItem(context.Background(), &domain.CartItem{ID: "ci-1", CartID: "cart-usr-1", BookID: "book-1"})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestDeleteCartItem_ScopedToCart(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "usr-1")
	insertTestUser(t, s, "usr-2")
	insertTestBook(t, s, "book-1", "Dune", "10.00")

	if err := s.SaveCartItem(ctx, &domain.CartItem{ID: "ci-1", CartID: "cart-usr-1", BookID: "book-1", Quantity: 1}); err != nil {
		t.Fatal(err)
	}

	// usr-2's cart cannot remove usr-1's item.
	if err := s.DeleteCartItem(ctx, "cart-usr-2", "ci-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteCartItem(ctx, "cart-usr-1", "ci-1"); err != nil {
		t.Errorf("DeleteCartItem: %v", err)
	}
	if err := s.DeleteCartItem(ctx, "cart-usr-1", "ci-1"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestClearCart_KeepsCart(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	insertTestUser(t, s, "usr-1")
	insertTestBook(t, s, "book-1", "Dune", "10.00")
	insertTestBook(t, s, "book-2", "Emma", "5.00")

	for i, bookID := range []string{"book-1", "book-2"} {
		item := &domain.CartItem{ID: "ci-" + bookID, CartID: "cart-usr-1", BookID: bookID, Quantity: i + 1}
		if err := s.SaveCartItem(ctx, item); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.ClearCart(ctx, "cart-usr-1"); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}

	cart, err := s.GetCartByUser(ctx, "usr-1")
	if err != nil {
		t.Fatalf("cart should still exist: %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart, got %d items", len(cart.Items))
	}
}
