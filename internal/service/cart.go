package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shelfmark/bookstore-server/internal/domain"
	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
	"github.com/shelfmark/bookstore-server/internal/id"
	"github.com/shelfmark/bookstore-server/internal/store"
)

const (
	msgInvalidQuantity  = "quantity must be greater than zero"
	msgQuantityOverflow = "quantity is too large"
)

// CartService manages each user's single shopping cart.
// Every mutation loads the cart, applies the change to the aggregate and
// persists it inside one transaction.
type CartService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCartService creates a new cart service.
func NewCartService(store store.Store, logger *slog.Logger) *CartService {
	return &CartService{store: store, logger: discardIfNil(logger)}
}

// ProvisionCart creates the empty cart for a new user on repo, which is
// expected to be bound to the registration transaction.
func (s *CartService) ProvisionCart(ctx context.Context, repo store.Repository, userID string) (*domain.Cart, error) {
	cartID, err := id.Generate(id.PrefixCart)
	if err != nil {
		return nil, fmt.Errorf("generate cart ID: %w", err)
	}

	cart := domain.NewCart(cartID, userID, nil)
	if err := repo.CreateCart(ctx, cart); err != nil {
		return nil, storeError(err, "create cart")
	}
	return cart, nil
}

// GetCart returns the user's cart with book titles on each line.
// A user without a cart gets NotFound; carts are never created lazily.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.store.GetCartByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "get cart")
	}
	return cart, nil
}

// AddItem puts quantity copies of a book into the cart. If the book already
// has a line, its quantity grows instead of a second line appearing.
func (s *CartService) AddItem(ctx context.Context, userID, bookID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domainerrors.Validation(msgInvalidQuantity)
	}

	var (
		updated *domain.Cart
		merged  bool
	)
	err := s.store.InTx(ctx, func(repo store.Repository) error {
		book, err := repo.GetBook(ctx, bookID)
		if err != nil {
			return storeError(err, "get book")
		}

		cart, err := repo.GetCartByUser(ctx, userID)
		if err != nil {
			return storeError(err, "get cart")
		}

		itemID, err := id.Generate(id.PrefixCartItem)
		if err != nil {
			return fmt.Errorf("generate cart item ID: %w", err)
		}

		var item *domain.CartItem
		item, merged, err = cart.Add(itemID, book.ID, book.Title, quantity)
		if err != nil {
			return quantityError(err)
		}

		if err := repo.SaveCartItem(ctx, item); err != nil {
			return storeError(err, "save cart item")
		}

		updated, err = repo.GetCartByUser(ctx, userID)
		return storeError(err, "reload cart")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cart item added",
		"user_id", userID,
		"cart_id", updated.ID,
		"book_id", bookID,
		"quantity", quantity,
		"merged", merged,
	)
	return updated, nil
}

// UpdateItem sets the absolute quantity of a line in the user's cart.
// Items in other users' carts are reported as not found.
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, domainerrors.Validation(msgInvalidQuantity)
	}

	var updated *domain.Cart
	err := s.store.InTx(ctx, func(repo store.Repository) error {
		cart, err := repo.GetCartByUser(ctx, userID)
		if err != nil {
			return storeError(err, "get cart")
		}

		item, ok, err := cart.SetQuantity(itemID, quantity)
		if err != nil {
			return quantityError(err)
		}
		if !ok {
			return domainerrors.NotFound("cart item not found")
		}

		if err := repo.SaveCartItem(ctx, item); err != nil {
			return storeError(err, "save cart item")
		}

		updated, err = repo.GetCartByUser(ctx, userID)
		return storeError(err, "reload cart")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cart item updated",
		"user_id", userID,
		"item_id", itemID,
		"quantity", quantity,
	)
	return updated, nil
}

// RemoveItem deletes a line from the user's cart. Removing an item that is
// missing or belongs to another cart is NotFound, including a second removal.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) error {
	err := s.store.InTx(ctx, func(repo store.Repository) error {
		cart, err := repo.GetCartByUser(ctx, userID)
		if err != nil {
			return storeError(err, "get cart")
		}
		if !cart.Remove(itemID) {
			return domainerrors.NotFound("cart item not found")
		}
		return storeError(repo.DeleteCartItem(ctx, cart.ID, itemID), "delete cart item")
	})
	if err != nil {
		return err
	}

	s.logger.Info("cart item removed", "user_id", userID, "item_id", itemID)
	return nil
}

func quantityError(err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return domainerrors.Validation(msgInvalidQuantity)
	case errors.Is(err, domain.ErrQuantityOverflow):
		return domainerrors.Validation(msgQuantityOverflow)
	}
	return err
}
