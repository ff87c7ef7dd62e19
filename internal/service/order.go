package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shelfmark/bookstore-server/internal/domain"
	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
	"github.com/shelfmark/bookstore-server/internal/id"
	"github.com/shelfmark/bookstore-server/internal/store"
)

// OrderService turns carts into orders and serves owner-scoped order reads.
type OrderService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(store store.Store, logger *slog.Logger) *OrderService {
	return &OrderService{
		store:  store,
		logger: discardIfNil(logger),
		now:    time.Now,
	}
}

// CreateOrder converts the user's cart into a PENDING order. Each line is
// snapshotted at the book's current price, the total is computed once, and
// the cart is emptied. All of it commits together or not at all.
//
// A blank shippingAddress falls back to the address on the user's account.
func (s *OrderService) CreateOrder(ctx context.Context, userID, shippingAddress string) (*domain.Order, error) {
	var created *domain.Order
	err := s.store.InTx(ctx, func(repo store.Repository) error {
		cart, err := repo.GetCartByUser(ctx, userID)
		if err != nil {
			return storeError(err, "get cart")
		}
		if cart.IsEmpty() {
			return domainerrors.PreconditionFailed(domain.ErrEmptyCart.Error())
		}

		address, err := resolveShippingAddress(ctx, repo, userID, shippingAddress)
		if err != nil {
			return err
		}

		prices, err := currentPrices(ctx, repo, cart)
		if err != nil {
			return err
		}

		orderID, err := id.Generate(id.PrefixOrder)
		if err != nil {
			return fmt.Errorf("generate order ID: %w", err)
		}

		order, err := domain.NewOrderFromCart(cart, orderID, address,
			func() (string, error) { return id.Generate(id.PrefixOrderItem) },
			func(bookID string) (decimal.Decimal, error) {
				price, ok := prices[bookID]
				if !ok {
					return decimal.Zero, domainerrors.NotFoundf("book %s not found", bookID)
				}
				return price, nil
			},
			s.now(),
		)
		if err != nil {
			if errors.Is(err, domain.ErrEmptyCart) {
				return domainerrors.PreconditionFailed(err.Error())
			}
			return err
		}

		if err := repo.CreateOrder(ctx, order); err != nil {
			return storeError(err, "create order")
		}
		if err := repo.ClearCart(ctx, cart.ID); err != nil {
			return storeError(err, "clear cart")
		}

		created, err = repo.GetUserOrder(ctx, userID, order.ID)
		return storeError(err, "reload order")
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		"user_id", userID,
		"order_id", created.ID,
		"items", len(created.Items),
		"total", created.Total.String(),
	)
	return created, nil
}

func resolveShippingAddress(ctx context.Context, repo store.Repository, userID, requested string) (string, error) {
	if address := strings.TrimSpace(requested); address != "" {
		return address, nil
	}

	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return "", storeError(err, "get user")
	}
	if address := strings.TrimSpace(user.ShippingAddress); address != "" {
		return address, nil
	}
	return "", domainerrors.ValidationWithDetails("validation failed", map[string]string{
		"shipping_address": "is required",
	})
}

// currentPrices loads every book in the cart in one query. Books that were
// soft-deleted since they were added are absent from the result.
func currentPrices(ctx context.Context, repo store.Repository, cart *domain.Cart) (map[string]decimal.Decimal, error) {
	ids := make([]string, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.BookID)
	}

	books, err := repo.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(err, "get books")
	}

	prices := make(map[string]decimal.Decimal, len(books))
	for _, b := range books {
		prices[b.ID] = b.Price
	}
	return prices, nil
}

// UpdateStatus overwrites an order's status. Any legal status may follow any
// other. The status is parsed before the store is touched, so an unknown
// value never reaches persisted state.
func (s *OrderService) UpdateStatus(ctx context.Context, adminID, orderID, status string) (*domain.Order, error) {
	parsed, err := domain.ParseStatus(status)
	if err != nil {
		return nil, domainerrors.ValidationWithDetails(
			fmt.Sprintf("unknown order status %q", status),
			map[string]any{"allowed": domain.StatusNames()},
		)
	}

	var updated *domain.Order
	err = s.store.InTx(ctx, func(repo store.Repository) error {
		if err := repo.UpdateOrderStatus(ctx, orderID, parsed); err != nil {
			return storeError(err, "update order status")
		}
		order, err := repo.GetOrder(ctx, orderID)
		if err != nil {
			return storeError(err, "reload order")
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		"admin_id", adminID,
		"order_id", orderID,
		"status", parsed.String(),
	)
	return updated, nil
}

// GetOrder returns one of the user's orders with its items.
func (s *OrderService) GetOrder(ctx context.Context, userID, orderID string) (*domain.Order, error) {
	order, err := s.store.GetUserOrder(ctx, userID, orderID)
	if err != nil {
		return nil, storeError(err, "get order")
	}
	return order, nil
}

// ListOrders returns a page of the user's orders.
func (s *OrderService) ListOrders(ctx context.Context, userID string, req store.PageRequest) (*store.Page[*domain.Order], error) {
	page, err := s.store.ListOrdersByUser(ctx, userID, req)
	if err != nil {
		return nil, storeError(err, "list orders")
	}
	return page, nil
}

// ListOrderItems returns a page of items from one of the user's orders.
// An order that is missing or owned by someone else is NotFound.
func (s *OrderService) ListOrderItems(ctx context.Context, userID, orderID string, req store.PageRequest) (*store.Page[*domain.OrderItem], error) {
	page, err := s.store.ListOrderItems(ctx, userID, orderID, req)
	if err != nil {
		return nil, storeError(err, "list order items")
	}
	return page, nil
}

// GetOrderItem returns one item of one of the user's orders.
func (s *OrderService) GetOrderItem(ctx context.Context, userID, orderID, itemID string) (*domain.OrderItem, error) {
	item, err := s.store.GetOrderItem(ctx, userID, orderID, itemID)
	if err != nil {
		return nil, storeError(err, "get order item")
	}
	return item, nil
}
