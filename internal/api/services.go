package api

import (
	"github.com/shelfmark/bookstore-server/internal/service"
)

// IndexStatus reports on the full-text catalog index.
type IndexStatus interface {
	DocumentCount() (uint64, error)
}

// Services groups the business services used by the API server.
type Services struct {
	Auth    *service.AuthService
	Cart    *service.CartService
	Order   *service.OrderService
	Catalog *service.CatalogService
	Index   IndexStatus // Optional; health reports degraded when nil
}
