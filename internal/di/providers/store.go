package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfmark/bookstore-server/internal/config"
	"github.com/shelfmark/bookstore-server/internal/domain"
	"github.com/shelfmark/bookstore-server/internal/service"
	"github.com/shelfmark/bookstore-server/internal/store/sqlite"
)

// StoreHandle wraps the SQLite store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the database and applies the schema.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	dbPath := cfg.Data.DatabasePath()
	db, err := sqlite.Open(dbPath, log)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// AdminBootstrap records the administrator ensured at startup, if any.
type AdminBootstrap struct {
	Admin *domain.User
}

// ProvideAdminBootstrap creates the configured administrator account when it
// does not exist yet.
func ProvideAdminBootstrap(i do.Injector) (*AdminBootstrap, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	if !cfg.Admin.Enabled() {
		log.Info("Admin bootstrap disabled; set ADMIN_EMAIL and ADMIN_PASSWORD to enable")
		return &AdminBootstrap{}, nil
	}

	authService := do.MustInvoke[*service.AuthService](i)
	admin, err := authService.EnsureAdmin(context.Background(), cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return nil, err
	}

	return &AdminBootstrap{Admin: admin}, nil
}
