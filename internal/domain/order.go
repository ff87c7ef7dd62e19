package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ErrEmptyCart is returned when an order is requested from a cart with no items.
var ErrEmptyCart = errors.New("cannot order empty cart")

// OrderItem is an immutable snapshot of a cart line at purchase time.
// Price is the unit price copied from the book and never recomputed.
type OrderItem struct {
	ID       string          `json:"id"`
	OrderID  string          `json:"order_id"`
	BookID   string          `json:"book_id"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// Subtotal returns Quantity × Price.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is created from a cart and is immutable apart from Status.
type Order struct {
	CreatedAt       time.Time       `json:"created_at"`
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	ShippingAddress string          `json:"shipping_address"`
	Status          Status          `json:"status"`
	Total           decimal.Decimal `json:"total"`
	Items           []*OrderItem    `json:"items"`
}

// ComputeTotal sums the subtotals of items with exact decimal arithmetic.
func ComputeTotal(items []*OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// PriceLookup resolves the current unit price of a book.
type PriceLookup func(bookID string) (decimal.Decimal, error)

// IDSource hands out identifiers for new order rows.
type IDSource func() (string, error)

// NewOrderFromCart snapshots every cart line into a PENDING order.
// The cart is not modified; clearing it is the caller's job so that both
// writes share one transaction.
func NewOrderFromCart(cart *Cart, orderID, shippingAddress string, newItemID IDSource, price PriceLookup, now time.Time) (*Order, error) {
	if cart.IsEmpty() {
		return nil, ErrEmptyCart
	}

	order := &Order{
		ID:              orderID,
		UserID:          cart.UserID,
		ShippingAddress: shippingAddress,
		Status:          StatusPending,
		CreatedAt:       now.UTC(),
		Items:           make([]*OrderItem, 0, len(cart.Items)),
	}

	for _, line := range cart.Items {
		unit, err := price(line.BookID)
		if err != nil {
			return nil, err
		}
		itemID, err := newItemID()
		if err != nil {
			return nil, fmt.Errorf("order item id: %w", err)
		}
		order.Items = append(order.Items, &OrderItem{
			ID:       itemID,
			OrderID:  orderID,
			BookID:   line.BookID,
			Quantity: line.Quantity,
			Price:    unit,
		})
	}

	order.Total = ComputeTotal(order.Items)
	return order, nil
}
