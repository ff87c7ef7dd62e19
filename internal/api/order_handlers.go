package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerOrderRoutes() {
	register(s, huma.Operation{
		OperationID:   "createOrder",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/orders",
		Summary:       "Place order",
		Description:   "Converts the caller's cart into an order at current prices and empties the cart",
		Tags:          []string{"Orders"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateOrder)

	register(s, huma.Operation{
		OperationID: "listOrders",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/orders",
		Summary:     "List orders",
		Description: "Returns a page of the caller's orders",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListOrders)

	register(s, huma.Operation{
		OperationID: "getOrder",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/orders/{id}",
		Summary:     "Get order",
		Description: "Returns one of the caller's orders with its items",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetOrder)

	register(s, huma.Operation{
		OperationID: "updateOrderStatus",
		Method:      http.MethodPatch,
		Path:        apiPrefix + "/orders/{id}",
		Summary:     "Update order status",
		Description: "Sets the status of any order (admin only)",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateOrderStatus)

	register(s, huma.Operation{
		OperationID: "listOrderItems",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/orders/{id}/items",
		Summary:     "List order items",
		Description: "Returns a page of items from one of the caller's orders",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListOrderItems)

	register(s, huma.Operation{
		OperationID: "getOrderItem",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/orders/{id}/items/{itemId}",
		Summary:     "Get order item",
		Description: "Returns a single item from one of the caller's orders",
		Tags:        []string{"Orders"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetOrderItem)
}

// CreateOrderRequest is the request body for placing an order.
type CreateOrderRequest struct {
	ShippingAddress string `json:"shipping_address,omitempty" doc:"Shipping address; defaults to the account address"`
}

// CreateOrderInput wraps the order request for Huma.
type CreateOrderInput struct {
	Authorization string             `header:"Authorization"`
	Body          CreateOrderRequest `required:"false"`
}

// OrderOutput wraps an order response for Huma.
type OrderOutput struct {
	Body OrderResponse
}

func (s *Server) handleCreateOrder(ctx context.Context, input *CreateOrderInput) (*OrderOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Order.CreateOrder(ctx, claims.UserID, input.Body.ShippingAddress)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: toOrderResponse(order)}, nil
}

// ListOrdersInput contains pagination parameters.
type ListOrdersInput struct {
	Authorization string `header:"Authorization"`
	PageParams
}

// OrderPageOutput wraps a page of orders for Huma.
type OrderPageOutput struct {
	Body OrderPage
}

func (s *Server) handleListOrders(ctx context.Context, input *ListOrdersInput) (*OrderPageOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	req, err := input.toRequest()
	if err != nil {
		return nil, err
	}

	page, err := s.services.Order.ListOrders(ctx, claims.UserID, req)
	if err != nil {
		return nil, err
	}
	return &OrderPageOutput{
		Body: OrderPage{Items: mapSlice(page.Items, toOrderResponse), PageInfo: pageInfo(page)},
	}, nil
}

// OrderPathInput identifies an order.
type OrderPathInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Order ID"`
}

func (s *Server) handleGetOrder(ctx context.Context, input *OrderPathInput) (*OrderOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Order.GetOrder(ctx, claims.UserID, input.ID)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: toOrderResponse(order)}, nil
}

// UpdateOrderStatusRequest is the request body for a status change.
type UpdateOrderStatusRequest struct {
	Status string `json:"status" doc:"New status, case-insensitive"`
}

// UpdateOrderStatusInput wraps the status change for Huma.
type UpdateOrderStatusInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Order ID"`
	Body          UpdateOrderStatusRequest
}

func (s *Server) handleUpdateOrderStatus(ctx context.Context, input *UpdateOrderStatusInput) (*OrderOutput, error) {
	claims, err := s.authenticateAndRequireAdmin(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Order.UpdateStatus(ctx, claims.UserID, input.ID, input.Body.Status)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: toOrderResponse(order)}, nil
}

// ListOrderItemsInput identifies an order and a page of its items.
type ListOrderItemsInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Order ID"`
	PageParams
}

// OrderItemPageOutput wraps a page of order items for Huma.
type OrderItemPageOutput struct {
	Body OrderItemPage
}

func (s *Server) handleListOrderItems(ctx context.Context, input *ListOrderItemsInput) (*OrderItemPageOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}
	req, err := input.toRequest()
	if err != nil {
		return nil, err
	}

	page, err := s.services.Order.ListOrderItems(ctx, claims.UserID, input.ID, req)
	if err != nil {
		return nil, err
	}
	return &OrderItemPageOutput{
		Body: OrderItemPage{Items: mapSlice(page.Items, toOrderItemResponse), PageInfo: pageInfo(page)},
	}, nil
}

// OrderItemPathInput identifies one item of an order.
type OrderItemPathInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Order ID"`
	ItemID        string `path:"itemId" doc:"Order item ID"`
}

// OrderItemOutput wraps an order item response for Huma.
type OrderItemOutput struct {
	Body OrderItemResponse
}

func (s *Server) handleGetOrderItem(ctx context.Context, input *OrderItemPathInput) (*OrderItemOutput, error) {
	claims, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	item, err := s.services.Order.GetOrderItem(ctx, claims.UserID, input.ID, input.ItemID)
	if err != nil {
		return nil, err
	}
	return &OrderItemOutput{Body: toOrderItemResponse(item)}, nil
}
