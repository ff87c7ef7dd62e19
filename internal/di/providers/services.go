package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfmark/bookstore-server/internal/auth"
	"github.com/shelfmark/bookstore-server/internal/service"
	"github.com/shelfmark/bookstore-server/internal/validation"
)

// ProvideCartService provides the cart service.
func ProvideCartService(i do.Injector) (*service.CartService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewCartService(storeHandle.Store, log), nil
}

// ProvideOrderService provides the order service.
func ProvideOrderService(i do.Injector) (*service.OrderService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewOrderService(storeHandle.Store, log), nil
}

// ProvideCatalogService provides the catalog service, wired to the search index.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewCatalogService(storeHandle.Store, indexHandle.CatalogIndex, v, log), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	carts := do.MustInvoke[*service.CartService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*slog.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, carts, v, log), nil
}
