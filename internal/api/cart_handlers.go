package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerCartRoutes() {
	register(s, huma.Operation{
		OperationID: "getCart",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/cart",
		Summary:     "Get cart",
		Description: "Returns the caller's cart with book titles",
		Tags:        []string{"Cart"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCart)

	register(s, huma.Operation{
		OperationID:   "addCartItem",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/cart",
		Summary:       "Add to cart",
		Description:   "Adds a book to the cart. Adding a book already in the cart increases its quantity.",
		Tags:          []string{"Cart"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleAddCartItem)

	register(s, huma.Operation{
		OperationID: "updateCartItem",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/cart/items/{id}",
		Summary:     "Update cart item",
		Description: "Replaces the quantity of a line in the caller's cart",
		Tags:        []string{"Cart"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCartItem)

	register(s, huma.Operation{
		OperationID:   "removeCartItem",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/cart/items/{id}",
		Summary:       "Remove cart item",
		Description:   "Removes a line from the caller's cart",
		Tags:          []string{"Cart"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleRemoveCartItem)
}

// AuthInput carries only the bearer token.
type AuthInput struct {
	Authorization string `header:"Authorization"`
}

// CartOutput wraps a cart response for Huma.
type CartOutput struct {
	Body CartResponse
}

func (s *Server) handleGetCart(ctx context.Context, input *AuthInput) (*CartOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	cart, err := s.services.Cart.GetCart(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	return &CartOutput{Body: toCartResponse(cart)}, nil
}

// AddCartItemRequest is the request body for adding a book to the cart.
type AddCartItemRequest struct {
	BookID   string `json:"book_id" doc:"Book to add"`
	Quantity int    `json:"quantity" minimum:"1" doc:"Copies to add, greater than zero"`
}

// AddCartItemInput wraps the add request for Huma.
type AddCartItemInput struct {
	Authorization string `header:"Authorization"`
	Body          AddCartItemRequest
}

func (s *Server) handleAddCartItem(ctx context.Context, input *AddCartItemInput) (*CartOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	cart, err := s.services.Cart.AddItem(ctx, claims.UserID, input.Body.BookID, input.Body.Quantity)
	if err != nil {
		return nil, err
	}
	return &CartOutput{Body: toCartResponse(cart)}, nil
}

// UpdateCartItemRequest is the request body for changing a line's quantity.
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" minimum:"1" doc:"New quantity, greater than zero"`
}

// UpdateCartItemInput wraps the update request for Huma.
type UpdateCartItemInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Cart item ID"`
	Body          UpdateCartItemRequest
}

func (s *Server) handleUpdateCartItem(ctx context.Context, input *UpdateCartItemInput) (*CartOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	cart, err := s.services.Cart.UpdateItem(ctx, claims.UserID, input.ID, input.Body.Quantity)
	if err != nil {
		return nil, err
	}
	return &CartOutput{Body: toCartResponse(cart)}, nil
}

// CartItemPathInput identifies one line of the caller's cart.
type CartItemPathInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Cart item ID"`
}

func (s *Server) handleRemoveCartItem(ctx context.Context, input *CartItemPathInput) (*struct{}, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Cart.RemoveItem(ctx, claims.UserID, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
