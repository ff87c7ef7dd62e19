package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelfmark/bookstore-server/internal/domain"
	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
	"github.com/shelfmark/bookstore-server/internal/store"
)

// placeTwoBookOrder orders 2 × 10.00 and 1 × 5.50 for the user.
func placeTwoBookOrder(t *testing.T, env *testEnv, userID string) *domain.Order {
	t.Helper()
	ctx := context.Background()
	a := env.createBook(t, "Ten", "10.00")
	b := env.createBook(t, "Five Fifty", "5.50")

	_, err := env.carts.AddItem(ctx, userID, a.ID, 2)
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, userID, b.ID, 1)
	require.NoError(t, err)

	order, err := env.orders.CreateOrder(ctx, userID, "221B Baker Street")
	require.NoError(t, err)
	return order
}

func TestOrderService_CreateOrder(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")

	order := placeTwoBookOrder(t, env, user.ID)

	assert.True(t, decimal.RequireFromString("25.50").Equal(order.Total), "total = %s", order.Total)
	assert.Equal(t, domain.StatusPending, order.Status)
	assert.Equal(t, user.ID, order.UserID)
	assert.Equal(t, "221B Baker Street", order.ShippingAddress)
	assert.False(t, order.CreatedAt.IsZero())
	require.Len(t, order.Items, 2)
	assert.True(t, order.Total.Equal(domain.ComputeTotal(order.Items)))

	cart, err := env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err, "cart must survive order creation")
	assert.True(t, cart.IsEmpty())
}

func TestOrderService_CreateOrder_SnapshotsPrice(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Dune", "12.00")

	_, err := env.carts.AddItem(ctx, user.ID, book.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.CreateOrder(ctx, user.ID, "addr")
	require.NoError(t, err)

	_, err = env.catalog.UpdateBook(ctx, book.ID, BookInput{
		Title:  book.Title,
		Author: book.Author,
		ISBN:   book.ISBN,
		Price:  "99.00",
	})
	require.NoError(t, err)

	item, err := env.orders.GetOrderItem(ctx, user.ID, order.ID, order.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.00").Equal(item.Price))

	reloaded, err := env.orders.GetOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.00").Equal(reloaded.Total))
}

func TestOrderService_CreateOrder_EmptyCart(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")

	_, err := env.orders.CreateOrder(ctx, user.ID, "addr")
	require.ErrorIs(t, err, domainerrors.ErrPreconditionFailed)
	assert.Contains(t, err.Error(), "cannot order empty cart")

	page, err := env.orders.ListOrders(ctx, user.ID, store.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalItems)
}

func TestOrderService_CreateOrder_MissingCart(t *testing.T) {
	env := setupTest(t)

	_, err := env.orders.CreateOrder(context.Background(), "usr-ghost", "addr")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestOrderService_CreateOrder_RollsBackOnFailure(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Dune", "9.99")
	_, err := env.carts.AddItem(ctx, user.ID, book.ID, 3)
	require.NoError(t, err)

	failing := NewOrderService(clearFailingStore{Store: env.store}, nil)
	_, err = failing.CreateOrder(ctx, user.ID, "addr")
	require.ErrorIs(t, err, errInjected)

	page, err := env.orders.ListOrders(ctx, user.ID, store.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, page.TotalItems, "order insert must be rolled back")

	cart, err := env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
}

func TestOrderService_CreateOrder_DeletedBookInCart(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Dune", "9.99")
	_, err := env.carts.AddItem(ctx, user.ID, book.ID, 1)
	require.NoError(t, err)
	require.NoError(t, env.catalog.DeleteBook(ctx, book.ID))

	_, err = env.orders.CreateOrder(ctx, user.ID, "addr")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)

	cart, err := env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
}

func TestOrderService_CreateOrder_ShippingAddressFallback(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Dune", "9.99")

	_, err := env.carts.AddItem(ctx, user.ID, book.ID, 1)
	require.NoError(t, err)
	order, err := env.orders.CreateOrder(ctx, user.ID, "   ")
	require.NoError(t, err)
	assert.Equal(t, "1 Library Lane", order.ShippingAddress)

	noAddress, err := env.auth.Register(ctx, RegisterRequest{
		Email:          "nomad@example.com",
		Password:       "correct horse battery",
		RepeatPassword: "correct horse battery",
		FirstName:      "No",
		LastName:       "Address",
	})
	require.NoError(t, err)
	_, err = env.carts.AddItem(ctx, noAddress.ID, book.ID, 1)
	require.NoError(t, err)

	_, err = env.orders.CreateOrder(ctx, noAddress.ID, "")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestOrderService_UpdateStatus_RoundTrip(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	order := placeTwoBookOrder(t, env, user.ID)

	for _, status := range domain.Statuses() {
		t.Run(status.String(), func(t *testing.T) {
			updated, err := env.orders.UpdateStatus(ctx, "usr-admin", order.ID, status.String())
			require.NoError(t, err)
			assert.Equal(t, status, updated.Status)

			reloaded, err := env.orders.GetOrder(ctx, user.ID, order.ID)
			require.NoError(t, err)
			assert.Equal(t, status, reloaded.Status)
		})
	}
}

func TestOrderService_UpdateStatus_NormalizesInput(t *testing.T) {
	env := setupTest(t)
	user := env.registerUser(t, "reader@example.com")
	order := placeTwoBookOrder(t, env, user.ID)

	updated, err := env.orders.UpdateStatus(context.Background(), "usr-admin", order.ID, "  shipped ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusShipped, updated.Status)
}

func TestOrderService_UpdateStatus_RejectsUnknown(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	order := placeTwoBookOrder(t, env, user.ID)

	_, err := env.orders.UpdateStatus(ctx, "usr-admin", order.ID, "LOST")
	require.ErrorIs(t, err, domainerrors.ErrValidation)

	var de *domainerrors.Error
	require.ErrorAs(t, err, &de)
	details, ok := de.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, domain.StatusNames(), details["allowed"])

	reloaded, err := env.orders.GetOrder(ctx, user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, reloaded.Status)

	// Parsing happens before the lookup, so a bad status on a missing order
	// is still a validation error.
	_, err = env.orders.UpdateStatus(ctx, "usr-admin", "ord-missing", "LOST")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestOrderService_UpdateStatus_MissingOrder(t *testing.T) {
	env := setupTest(t)

	_, err := env.orders.UpdateStatus(context.Background(), "usr-admin", "ord-missing", "SHIPPED")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestOrderService_OwnershipIsolation(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	order := placeTwoBookOrder(t, env, alice.ID)
	itemID := order.Items[0].ID

	_, err := env.orders.GetOrder(ctx, bob.ID, order.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.orders.ListOrderItems(ctx, bob.ID, order.ID, store.PageRequest{})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, foreignErr := env.orders.GetOrderItem(ctx, bob.ID, order.ID, itemID)
	require.ErrorIs(t, foreignErr, domainerrors.ErrNotFound)

	_, missingErr := env.orders.GetOrderItem(ctx, alice.ID, order.ID, "oi-missing")
	require.ErrorIs(t, missingErr, domainerrors.ErrNotFound)
	assert.Equal(t, missingErr.Error(), foreignErr.Error(), "foreign and missing must be indistinguishable")

	bobOrders, err := env.orders.ListOrders(ctx, bob.ID, store.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, bobOrders.Items)

	items, err := env.orders.ListOrderItems(ctx, alice.ID, order.ID, store.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 2, items.TotalItems)
}

func TestOrderService_ListOrders_Sorting(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	first := placeTwoBookOrder(t, env, user.ID)
	second := placeTwoBookOrder(t, env, user.ID)

	sort, err := store.ParseSort("createdAt,DESC")
	require.NoError(t, err)
	page, err := env.orders.ListOrders(ctx, user.ID, store.PageRequest{Sort: sort})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, second.ID, page.Items[0].ID)
	assert.Equal(t, first.ID, page.Items[1].ID)

	_, err = env.orders.ListOrders(ctx, user.ID, store.PageRequest{Sort: store.Sort{Field: "password", Direction: store.SortAsc}})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}
