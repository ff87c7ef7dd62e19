package domain

import (
	"errors"
	"math"
)

var (
	// ErrInvalidQuantity is returned when a line item quantity is not positive.
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	// ErrQuantityOverflow is returned when a merge would exceed the largest representable quantity.
	ErrQuantityOverflow = errors.New("quantity is too large")
)

// CartItem is one (book, quantity) line in a cart.
type CartItem struct {
	ID        string `json:"id"`
	CartID    string `json:"cart_id"`
	BookID    string `json:"book_id"`
	BookTitle string `json:"book_title,omitempty"`
	Quantity  int    `json:"quantity"`
}

// Cart is a user's pre-order collection of line items.
// At most one item exists per book; the byBook index enforces it.
type Cart struct {
	ID     string      `json:"id"`
	UserID string      `json:"user_id"`
	Items  []*CartItem `json:"items"`

	byBook map[string]*CartItem
}

// NewCart builds a cart aggregate from persisted rows.
// If rows repeat a book, the later row wins the index.
func NewCart(id, userID string, items []*CartItem) *Cart {
	c := &Cart{
		ID:     id,
		UserID: userID,
		Items:  make([]*CartItem, 0, len(items)),
		byBook: make(map[string]*CartItem, len(items)),
	}
	for _, item := range items {
		c.Items = append(c.Items, item)
		c.byBook[item.BookID] = item
	}
	return c
}

func (c *Cart) index() map[string]*CartItem {
	if c.byBook == nil {
		c.byBook = make(map[string]*CartItem, len(c.Items))
		for _, item := range c.Items {
			c.byBook[item.BookID] = item
		}
	}
	return c.byBook
}

// ItemForBook returns the line item holding bookID, if any.
func (c *Cart) ItemForBook(bookID string) (*CartItem, bool) {
	item, ok := c.index()[bookID]
	return item, ok
}

// Add merges quantity into the existing line for bookID, or appends a new
// line with newItemID. merged reports which of the two happened.
func (c *Cart) Add(newItemID, bookID, bookTitle string, quantity int) (item *CartItem, merged bool, err error) {
	if quantity <= 0 {
		return nil, false, ErrInvalidQuantity
	}
	if existing, ok := c.ItemForBook(bookID); ok {
		if existing.Quantity > math.MaxInt-quantity {
			return nil, false, ErrQuantityOverflow
		}
		existing.Quantity += quantity
		if bookTitle != "" {
			existing.BookTitle = bookTitle
		}
		return existing, true, nil
	}

	item = &CartItem{
		ID:        newItemID,
		CartID:    c.ID,
		BookID:    bookID,
		BookTitle: bookTitle,
		Quantity:  quantity,
	}
	c.Items = append(c.Items, item)
	c.index()[bookID] = item
	return item, false, nil
}

// Find returns the line item with the given id. Items from other carts are
// never present, so a miss covers both absence and foreign ownership.
func (c *Cart) Find(itemID string) (*CartItem, bool) {
	for _, item := range c.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return nil, false
}

// SetQuantity overwrites the quantity of an item.
func (c *Cart) SetQuantity(itemID string, quantity int) (*CartItem, bool, error) {
	if quantity <= 0 {
		return nil, false, ErrInvalidQuantity
	}
	item, ok := c.Find(itemID)
	if !ok {
		return nil, false, nil
	}
	item.Quantity = quantity
	return item, true, nil
}

// Remove drops an item from the cart. Returns false if it was not present.
func (c *Cart) Remove(itemID string) bool {
	for i, item := range c.Items {
		if item.ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			delete(c.index(), item.BookID)
			return true
		}
	}
	return false
}

// IsEmpty reports whether the cart has no line items.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// TotalQuantity returns the number of copies across all lines.
func (c *Cart) TotalQuantity() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Clear empties the cart. The cart itself keeps existing.
func (c *Cart) Clear() {
	c.Items = c.Items[:0]
	c.byBook = make(map[string]*CartItem)
}
