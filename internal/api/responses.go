package api

import (
	"time"

	"github.com/shelfmark/bookstore-server/internal/domain"
	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
	"github.com/shelfmark/bookstore-server/internal/store"
)

// Money is rendered as a fixed two-decimal string so clients never see
// binary floating point.
const moneyPlaces = 2

// PageParams are the shared pagination query parameters.
type PageParams struct {
	Page int    `query:"page" minimum:"0" default:"0" doc:"Zero-based page number"`
	Size int    `query:"size" minimum:"1" maximum:"100" default:"20" doc:"Page size"`
	Sort string `query:"sort" doc:"Sort as field or field,ASC|DESC (e.g. createdAt,DESC)"`
}

func (p PageParams) toRequest() (store.PageRequest, error) {
	sort, err := store.ParseSort(p.Sort)
	if err != nil {
		return store.PageRequest{}, domainerrors.Validation(err.Error())
	}
	return store.PageRequest{Page: p.Page, Size: p.Size, Sort: sort}, nil
}

// PageInfo describes where a page sits in the full result set.
type PageInfo struct {
	Page       int  `json:"page" doc:"Zero-based page number"`
	Size       int  `json:"size" doc:"Requested page size"`
	TotalItems int  `json:"total_items" doc:"Total matching items"`
	TotalPages int  `json:"total_pages" doc:"Total number of pages"`
	HasNext    bool `json:"has_next" doc:"Whether a later page exists"`
}

func pageInfo[T any](p *store.Page[T]) PageInfo {
	return PageInfo{
		Page:       p.Page,
		Size:       p.Size,
		TotalItems: p.TotalItems,
		TotalPages: p.TotalPages,
		HasNext:    p.HasNext(),
	}
}

func mapSlice[T, R any](in []T, fn func(T) R) []R {
	out := make([]R, 0, len(in))
	for _, v := range in {
		out = append(out, fn(v))
	}
	return out
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID              string    `json:"id" doc:"User ID"`
	Email           string    `json:"email" doc:"Email address"`
	FirstName       string    `json:"first_name" doc:"First name"`
	LastName        string    `json:"last_name" doc:"Last name"`
	ShippingAddress string    `json:"shipping_address,omitempty" doc:"Default shipping address"`
	Role            string    `json:"role" doc:"user or admin"`
	CreatedAt       time.Time `json:"created_at" doc:"Creation time"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		ShippingAddress: u.ShippingAddress,
		Role:            string(u.Role),
		CreatedAt:       u.CreatedAt,
	}
}

// BookResponse is a catalog entry.
type BookResponse struct {
	ID          string    `json:"id" doc:"Book ID"`
	Title       string    `json:"title" doc:"Title"`
	Author      string    `json:"author" doc:"Author"`
	ISBN        string    `json:"isbn" doc:"Normalized ISBN"`
	Price       string    `json:"price" doc:"Unit price, two decimals" example:"12.99"`
	Description string    `json:"description,omitempty" doc:"Description"`
	CoverImage  string    `json:"cover_image,omitempty" doc:"Cover image URL"`
	CategoryIDs []string  `json:"category_ids" doc:"Categories the book is filed under"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

func toBookResponse(b *domain.Book) BookResponse {
	categories := b.CategoryIDs
	if categories == nil {
		categories = []string{}
	}
	return BookResponse{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Price:       b.Price.StringFixed(moneyPlaces),
		Description: b.Description,
		CoverImage:  b.CoverImage,
		CategoryIDs: categories,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// BookPage is a page of books.
type BookPage struct {
	Items []BookResponse `json:"items" doc:"Books on this page"`
	PageInfo
}

func toBookPage(p *store.Page[*domain.Book]) BookPage {
	return BookPage{Items: mapSlice(p.Items, toBookResponse), PageInfo: pageInfo(p)}
}

// CategoryResponse is a browsing category.
type CategoryResponse struct {
	ID          string    `json:"id" doc:"Category ID"`
	Name        string    `json:"name" doc:"Display name"`
	Slug        string    `json:"slug" doc:"URL-safe unique slug"`
	Description string    `json:"description,omitempty" doc:"Description"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt   time.Time `json:"updated_at" doc:"Last update time"`
}

func toCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Slug:        c.Slug,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// CategoryPage is a page of categories.
type CategoryPage struct {
	Items []CategoryResponse `json:"items" doc:"Categories on this page"`
	PageInfo
}

// CartItemResponse is one cart line.
type CartItemResponse struct {
	ID        string `json:"id" doc:"Cart item ID"`
	BookID    string `json:"book_id" doc:"Book ID"`
	BookTitle string `json:"book_title,omitempty" doc:"Book title"`
	Quantity  int    `json:"quantity" doc:"Quantity"`
}

// CartResponse is the caller's cart.
type CartResponse struct {
	ID            string             `json:"id" doc:"Cart ID"`
	UserID        string             `json:"user_id" doc:"Owner"`
	Items         []CartItemResponse `json:"items" doc:"Line items, one per book"`
	TotalQuantity int                `json:"total_quantity" doc:"Sum of item quantities"`
}

func toCartResponse(c *domain.Cart) CartResponse {
	return CartResponse{
		ID:     c.ID,
		UserID: c.UserID,
		Items: mapSlice(c.Items, func(i *domain.CartItem) CartItemResponse {
			return CartItemResponse{ID: i.ID, BookID: i.BookID, BookTitle: i.BookTitle, Quantity: i.Quantity}
		}),
		TotalQuantity: c.TotalQuantity(),
	}
}

// OrderItemResponse is a purchased line with its snapshotted price.
type OrderItemResponse struct {
	ID       string `json:"id" doc:"Order item ID"`
	OrderID  string `json:"order_id" doc:"Order ID"`
	BookID   string `json:"book_id" doc:"Book ID"`
	Quantity int    `json:"quantity" doc:"Quantity"`
	Price    string `json:"price" doc:"Unit price at purchase time" example:"10.00"`
	Subtotal string `json:"subtotal" doc:"Quantity times price" example:"20.00"`
}

func toOrderItemResponse(i *domain.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		ID:       i.ID,
		OrderID:  i.OrderID,
		BookID:   i.BookID,
		Quantity: i.Quantity,
		Price:    i.Price.StringFixed(moneyPlaces),
		Subtotal: i.Subtotal().StringFixed(moneyPlaces),
	}
}

// OrderResponse is a placed order.
type OrderResponse struct {
	ID              string              `json:"id" doc:"Order ID"`
	UserID          string              `json:"user_id" doc:"Owner"`
	Status          string              `json:"status" doc:"Order status" enum:"PENDING,CONFIRMED,SHIPPED,DELIVERED,CANCELLED,COMPLETED"`
	Total           string              `json:"total" doc:"Order total" example:"25.50"`
	ShippingAddress string              `json:"shipping_address" doc:"Shipping address"`
	CreatedAt       time.Time           `json:"created_at" doc:"Creation time"`
	Items           []OrderItemResponse `json:"items,omitempty" doc:"Line items"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status.String(),
		Total:           o.Total.StringFixed(moneyPlaces),
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		Items:           mapSlice(o.Items, toOrderItemResponse),
	}
}

// OrderPage is a page of orders.
type OrderPage struct {
	Items []OrderResponse `json:"items" doc:"Orders on this page"`
	PageInfo
}

// OrderItemPage is a page of order items.
type OrderItemPage struct {
	Items []OrderItemResponse `json:"items" doc:"Items on this page"`
	PageInfo
}
