package service

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
)

func TestCartService_AddItem_MergesSameBook(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Dune", "9.99")

	_, err := env.carts.AddItem(ctx, user.ID, book.ID, 2)
	require.NoError(t, err)
	cart, err := env.carts.AddItem(ctx, user.ID, book.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.Equal(t, "Dune", cart.Items[0].BookTitle)
	assert.Equal(t, book.ID, cart.Items[0].BookID)
}

func TestCartService_AddItem_DistinctBooks(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	a := env.createBook(t, "A", "1.00")
	b := env.createBook(t, "B", "2.00")

	_, err := env.carts.AddItem(ctx, user.ID, a.ID, 1)
	require.NoError(t, err)
	cart, err := env.carts.AddItem(ctx, user.ID, b.ID, 4)
	require.NoError(t, err)

	require.Len(t, cart.Items, 2)
	assert.Equal(t, 5, cart.TotalQuantity())
}

func TestCartService_AddItem_InvalidQuantity(t *testing.T) {
	env := setupTest(t)
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Dune", "9.99")

	for _, q := range []int{0, -1} {
		_, err := env.carts.AddItem(context.Background(), user.ID, book.ID, q)
		assert.ErrorIs(t, err, domainerrors.ErrValidation)
	}

	cart, err := env.carts.GetCart(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartService_AddItem_QuantityOverflow(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Dune", "9.99")

	_, err := env.carts.AddItem(ctx, user.ID, book.ID, math.MaxInt)
	require.NoError(t, err)

	_, err = env.carts.AddItem(ctx, user.ID, book.ID, 1)
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Contains(t, err.Error(), "quantity is too large")

	cart, err := env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, math.MaxInt, cart.Items[0].Quantity)
}

func TestCartService_AddItem_UnknownOrDeletedBook(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Gone", "3.00")
	require.NoError(t, env.catalog.DeleteBook(ctx, book.ID))

	_, err := env.carts.AddItem(ctx, user.ID, "book-missing", 1)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.carts.AddItem(ctx, user.ID, book.ID, 1)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCartService_GetCart_MissingCart(t *testing.T) {
	env := setupTest(t)

	_, err := env.carts.GetCart(context.Background(), "usr-without-cart")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = env.carts.AddItem(context.Background(), "usr-without-cart", env.createBook(t, "X", "1.00").ID, 1)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCartService_UpdateItem(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Dune", "9.99")

	cart, err := env.carts.AddItem(ctx, user.ID, book.ID, 5)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = env.carts.UpdateItem(ctx, user.ID, itemID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, itemID, cart.Items[0].ID)

	_, err = env.carts.UpdateItem(ctx, user.ID, itemID, 0)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = env.carts.UpdateItem(ctx, user.ID, "ci-missing", 1)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCartService_ItemsAreScopedToOwner(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	alice := env.registerUser(t, "alice@example.com")
	bob := env.registerUser(t, "bob@example.com")
	book := env.createBook(t, "Dune", "9.99")

	cart, err := env.carts.AddItem(ctx, alice.ID, book.ID, 1)
	require.NoError(t, err)
	aliceItem := cart.Items[0].ID

	_, err = env.carts.UpdateItem(ctx, bob.ID, aliceItem, 9)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	err = env.carts.RemoveItem(ctx, bob.ID, aliceItem)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	cart, err = env.carts.GetCart(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 1, cart.Items[0].Quantity)
}

func TestCartService_RemoveItem(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Dune", "9.99")

	cart, err := env.carts.AddItem(ctx, user.ID, book.ID, 1)
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	require.NoError(t, env.carts.RemoveItem(ctx, user.ID, itemID))

	cart, err = env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	// A second removal is not silently accepted.
	err = env.carts.RemoveItem(ctx, user.ID, itemID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestCartService_ConcurrentAddsMerge(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()
	user := env.registerUser(t, "reader@example.com")
	book := env.createBook(t, "Dune", "9.99")

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.carts.AddItem(ctx, user.ID, book.ID, 1)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	cart, err := env.carts.GetCart(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, workers, cart.Items[0].Quantity)
}
