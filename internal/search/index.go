package search

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"

	"github.com/shelfmark/bookstore-server/internal/domain"
	"github.com/shelfmark/bookstore-server/internal/store"
)

// CatalogIndex wraps a Bleve index of catalog books.
//
// All public methods are safe for concurrent use. The mutex guards the
// index handle against Rebuild swapping it out.
type CatalogIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

var _ store.SearchIndexer = (*CatalogIndex)(nil)

// Options configures the search index.
type Options struct {
	DataPath string       // Directory for index storage; empty keeps the index in memory
	Logger   *slog.Logger // Logger for operations (uses discard if nil)
}

// mappingVersion is incremented whenever the index mapping changes.
// A mismatch on startup triggers a rebuild.
const mappingVersion = "1"

// NewCatalogIndex creates or opens the catalog index.
// A corrupted index or one built with an older mapping is removed and recreated.
func NewCatalogIndex(opts Options) (*CatalogIndex, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.DataPath == "" {
		index, err := bleve.NewMemOnly(buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create in-memory index: %w", err)
		}
		return &CatalogIndex{index: index, logger: logger}, nil
	}

	indexPath := filepath.Join(opts.DataPath, "catalog.bleve")
	versionPath := filepath.Join(opts.DataPath, "catalog.version")

	var index bleve.Index
	var err error
	needsRebuild := false

	indexExists := false
	if _, statErr := os.Stat(indexPath); statErr == nil {
		indexExists = true
	}

	if indexExists {
		existingVersion, readErr := os.ReadFile(versionPath)
		if readErr != nil || string(existingVersion) != mappingVersion {
			logger.Info("search index mapping version changed, will rebuild",
				"old_version", string(existingVersion),
				"new_version", mappingVersion,
			)
			needsRebuild = true
		}
	}

	if !needsRebuild && indexExists {
		index, err = bleve.Open(indexPath)
		if err != nil {
			logger.Warn("failed to open existing index, will recreate",
				"path", indexPath,
				"error", err,
			)
			needsRebuild = true
		}
	}

	if needsRebuild {
		if removeErr := os.RemoveAll(indexPath); removeErr != nil {
			return nil, fmt.Errorf("remove old index: %w", removeErr)
		}
		index = nil
	}

	if index == nil {
		index, err = bleve.New(indexPath, buildIndexMapping())
		if err != nil {
			return nil, fmt.Errorf("create index: %w", err)
		}
		if writeErr := os.WriteFile(versionPath, []byte(mappingVersion), 0o644); writeErr != nil {
			logger.Warn("failed to write search version file", "error", writeErr)
		}
		logger.Info("created new search index", "path", indexPath, "mapping_version", mappingVersion)
	} else {
		logger.Info("opened existing search index", "path", indexPath)
	}

	return &CatalogIndex{
		index:  index,
		path:   indexPath,
		logger: logger,
	}, nil
}

// Close closes the index and releases resources.
func (s *CatalogIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// IndexBook adds or replaces a book. Soft-deleted books are removed instead.
func (s *CatalogIndex) IndexBook(_ context.Context, book *domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if book.IsDeleted() {
		return s.index.Delete(book.ID)
	}
	return s.index.Index(book.ID, BookToDocument(book).ToMap())
}

// IndexBooks indexes books in batches.
func (s *CatalogIndex) IndexBooks(books []*domain.Book) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	const batchSize = 500

	for i := 0; i < len(books); i += batchSize {
		end := min(i+batchSize, len(books))

		batch := s.index.NewBatch()
		for _, b := range books[i:end] {
			if b.IsDeleted() {
				batch.Delete(b.ID)
				continue
			}
			if err := batch.Index(b.ID, BookToDocument(b).ToMap()); err != nil {
				return fmt.Errorf("batch index %s: %w", b.ID, err)
			}
		}

		if err := s.index.Batch(batch); err != nil {
			return fmt.Errorf("commit batch %d-%d: %w", i, end, err)
		}
	}

	return nil
}

// DeleteBook removes a book from the index.
func (s *CatalogIndex) DeleteBook(_ context.Context, bookID string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Delete(bookID)
}

// DocumentCount returns the total number of indexed books.
func (s *CatalogIndex) DocumentCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Rebuild drops the index and reindexes books from scratch.
// It holds the exclusive lock for the whole operation.
func (s *CatalogIndex) Rebuild(books []*domain.Book) error {
	s.mu.Lock()

	if err := s.index.Close(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("close index: %w", err)
	}

	var (
		index bleve.Index
		err   error
	)
	if s.path == "" {
		index, err = bleve.NewMemOnly(buildIndexMapping())
	} else {
		if err := os.RemoveAll(s.path); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("remove index: %w", err)
		}
		index, err = bleve.New(s.path, buildIndexMapping())
	}
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("create index: %w", err)
	}
	s.index = index
	s.mu.Unlock()

	if err := s.IndexBooks(books); err != nil {
		return err
	}
	s.logger.Info("rebuilt search index", "path", s.path, "books", len(books))
	return nil
}
