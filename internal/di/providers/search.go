package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/shelfmark/bookstore-server/internal/config"
	"github.com/shelfmark/bookstore-server/internal/search"
	"github.com/shelfmark/bookstore-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.CatalogIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve catalog index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*slog.Logger](i)

	index, err := search.NewCatalogIndex(search.Options{
		DataPath: cfg.Data.SearchPath(),
		Logger:   log,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{CatalogIndex: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the index in the background when it
// is empty, e.g. after the index directory was removed.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	catalog := do.MustInvoke[*service.CatalogService](i)
	log := do.MustInvoke[*slog.Logger](i)

	docCount, err := indexHandle.DocumentCount()
	if err != nil || docCount > 0 {
		return
	}

	go func() {
		n, err := catalog.ReindexCatalog(context.Background())
		if err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		if n > 0 {
			log.Info("Initial search reindex completed", "documents", n)
		}
	}()
}
