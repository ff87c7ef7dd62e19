// Package di provides dependency injection configuration for the bookstore server.
package di

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfmark/bookstore-server/internal/auth"
	"github.com/shelfmark/bookstore-server/internal/config"
	"github.com/shelfmark/bookstore-server/internal/di/providers"
	"github.com/shelfmark/bookstore-server/internal/service"
	"github.com/shelfmark/bookstore-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideAuthKey)

	// Persistence and search
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideCartService)
	do.Provide(injector, providers.ProvideOrderService)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideAdminBootstrap)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of every provider.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*slog.Logger](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.CartService](injector)
	_ = do.MustInvoke[*service.OrderService](injector)
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	if _, err := do.Invoke[*providers.AdminBootstrap](injector); err != nil {
		return err
	}

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}
