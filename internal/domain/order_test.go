package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequentialIDs(prefix string) IDSource {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("%s-%d", prefix, n), nil
	}
}

func priceTable(prices map[string]string) PriceLookup {
	return func(bookID string) (decimal.Decimal, error) {
		p, ok := prices[bookID]
		if !ok {
			return decimal.Zero, fmt.Errorf("book %s not found", bookID)
		}
		return decimal.RequireFromString(p), nil
	}
}

func TestNewOrderFromCart_Total(t *testing.T) {
	cart := NewCart("cart-1", "usr-1", []*CartItem{
		{ID: "ci-1", BookID: "book-a", Quantity: 2},
		{ID: "ci-2", BookID: "book-b", Quantity: 1},
	})
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	order, err := NewOrderFromCart(cart, "ord-1", "1 Main St", sequentialIDs("oi"),
		priceTable(map[string]string{"book-a": "10.00", "book-b": "5.50"}), now)
	require.NoError(t, err)

	assert.Equal(t, "25.50", order.Total.StringFixed(2))
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, "usr-1", order.UserID)
	assert.Equal(t, now, order.CreatedAt)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "oi-1", order.Items[0].ID)
	assert.Equal(t, "ord-1", order.Items[1].OrderID)

	// the cart is untouched; clearing happens in the same transaction as the insert
	assert.Len(t, cart.Items, 2)
}

func TestNewOrderFromCart_NoFloatDrift(t *testing.T) {
	cart := NewCart("cart-1", "usr-1", nil)
	prices := map[string]string{}
	for i := range 10 {
		bookID := fmt.Sprintf("book-%d", i)
		prices[bookID] = "0.10"
		_, _, err := cart.Add(fmt.Sprintf("ci-%d", i), bookID, "", 1)
		require.NoError(t, err)
	}

	order, err := NewOrderFromCart(cart, "ord-1", "addr", sequentialIDs("oi"), priceTable(prices), time.Now())
	require.NoError(t, err)

	assert.True(t, order.Total.Equal(decimal.NewFromInt(1)), "got %s", order.Total)
}

func TestNewOrderFromCart_EmptyCart(t *testing.T) {
	cart := NewCart("cart-1", "usr-1", nil)

	_, err := NewOrderFromCart(cart, "ord-1", "addr", sequentialIDs("oi"), priceTable(nil), time.Now())

	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestNewOrderFromCart_PriceLookupError(t *testing.T) {
	cart := NewCart("cart-1", "usr-1", []*CartItem{{ID: "ci-1", BookID: "gone", Quantity: 1}})
	sentinel := errors.New("gone")

	_, err := NewOrderFromCart(cart, "ord-1", "addr", sequentialIDs("oi"),
		func(string) (decimal.Decimal, error) { return decimal.Zero, sentinel }, time.Now())

	assert.ErrorIs(t, err, sentinel)
}

func TestOrderItem_Subtotal(t *testing.T) {
	item := &OrderItem{Quantity: 3, Price: decimal.RequireFromString("19.99")}

	assert.Equal(t, "59.97", item.Subtotal().StringFixed(2))
}
