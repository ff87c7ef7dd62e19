package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/shelfmark/bookstore-server/internal/domain"
	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
	"github.com/shelfmark/bookstore-server/internal/id"
	"github.com/shelfmark/bookstore-server/internal/search"
	"github.com/shelfmark/bookstore-server/internal/store"
	"github.com/shelfmark/bookstore-server/internal/util"
	"github.com/shelfmark/bookstore-server/internal/validation"
)

// BookIndex is the full-text index the catalog keeps in sync with book writes.
type BookIndex interface {
	store.SearchIndexer
	Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error)
	Rebuild(books []*domain.Book) error
}

// CatalogService manages books and categories.
type CatalogService struct {
	store     store.Store
	index     BookIndex
	validator *validation.Validator
	logger    *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, index BookIndex, validator *validation.Validator, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:     store,
		index:     index,
		validator: validator,
		logger:    discardIfNil(logger),
	}
}

// BookInput carries the writable fields of a book.
type BookInput struct {
	Title       string   `json:"title" validate:"required,max=500"`
	Author      string   `json:"author" validate:"required,max=300"`
	ISBN        string   `json:"isbn" validate:"required,max=32"`
	Price       string   `json:"price" validate:"required,money"`
	Description string   `json:"description" validate:"max=5000"`
	CoverImage  string   `json:"cover_image" validate:"omitempty,url"`
	CategoryIDs []string `json:"category_ids" validate:"max=20,dive,required"`
}

// CategoryInput carries the writable fields of a category.
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=1000"`
}

// BookSearchResult is a page of search hits resolved to catalog books.
type BookSearchResult struct {
	Query string         `json:"query"`
	Total uint64         `json:"total"`
	Books []*domain.Book `json:"books"`
}

func (s *CatalogService) applyBookInput(book *domain.Book, in BookInput) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}

	isbn := util.NormalizeISBN(in.ISBN)
	if len(isbn) != 10 && len(isbn) != 13 {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"isbn": "must have 10 or 13 digits",
		})
	}

	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if err != nil {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"price": "must be a decimal amount",
		})
	}

	book.Title = strings.TrimSpace(in.Title)
	book.Author = strings.TrimSpace(in.Author)
	book.ISBN = isbn
	book.Price = price
	book.Description = strings.TrimSpace(in.Description)
	book.CoverImage = strings.TrimSpace(in.CoverImage)
	book.CategoryIDs = dedupe(in.CategoryIDs)
	return nil
}

// CreateBook adds a book to the catalog and indexes it.
func (s *CatalogService) CreateBook(ctx context.Context, in BookInput) (*domain.Book, error) {
	book := &domain.Book{}
	if err := s.applyBookInput(book, in); err != nil {
		return nil, err
	}

	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}
	book.ID = bookID
	book.InitTimestamps()

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, storeError(err, "create book")
	}
	s.reindex(ctx, book)

	s.logger.Info("book created", "book_id", book.ID, "isbn", book.ISBN)
	return book, nil
}

// GetBook returns an active book.
func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, storeError(err, "get book")
	}
	return book, nil
}

// UpdateBook replaces the writable fields of an active book. Existing order
// items keep the price they were bought at.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, in BookInput) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, storeError(err, "get book")
	}
	if err := s.applyBookInput(book, in); err != nil {
		return nil, err
	}
	book.Touch()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, storeError(err, "update book")
	}
	s.reindex(ctx, book)

	s.logger.Info("book updated", "book_id", book.ID)
	return book, nil
}

// DeleteBook soft-deletes a book. It disappears from listings, search and
// carts but stays referenced by past orders.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.SoftDeleteBook(ctx, bookID); err != nil {
		return storeError(err, "delete book")
	}
	if err := s.index.DeleteBook(ctx, bookID); err != nil {
		s.logger.Warn("failed to remove book from search index", "book_id", bookID, "error", err)
	}

	s.logger.Info("book deleted", "book_id", bookID)
	return nil
}

// ListBooks returns a page of active books.
func (s *CatalogService) ListBooks(ctx context.Context, req store.PageRequest) (*store.Page[*domain.Book], error) {
	page, err := s.store.ListBooks(ctx, req)
	if err != nil {
		return nil, storeError(err, "list books")
	}
	return page, nil
}

// ListBooksByCategory returns a page of active books in a category.
// A missing category is NotFound rather than an empty page.
func (s *CatalogService) ListBooksByCategory(ctx context.Context, categoryID string, req store.PageRequest) (*store.Page[*domain.Book], error) {
	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return nil, storeError(err, "get category")
	}
	page, err := s.store.ListBooksByCategory(ctx, categoryID, req)
	if err != nil {
		return nil, storeError(err, "list books by category")
	}
	return page, nil
}

// SearchBooks runs a full-text query and loads the matching books in hit
// order. Hits for books deleted since they were indexed are dropped.
func (s *CatalogService) SearchBooks(ctx context.Context, params search.SearchParams) (*BookSearchResult, error) {
	res, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		ids = append(ids, hit.ID)
	}

	books, err := s.store.GetBooksByIDs(ctx, ids)
	if err != nil {
		return nil, storeError(err, "load search hits")
	}
	byID := make(map[string]*domain.Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}

	out := &BookSearchResult{Query: res.Query, Total: res.Total, Books: make([]*domain.Book, 0, len(ids))}
	for _, bookID := range ids {
		if b, ok := byID[bookID]; ok {
			out.Books = append(out.Books, b)
		}
	}
	return out, nil
}

// ReindexCatalog rebuilds the search index from every active book.
func (s *CatalogService) ReindexCatalog(ctx context.Context) (int, error) {
	var books []*domain.Book
	req := store.PageRequest{Page: 0, Size: store.MaxPageSize}
	for {
		page, err := s.store.ListBooks(ctx, req)
		if err != nil {
			return 0, storeError(err, "list books")
		}
		books = append(books, page.Items...)
		if !page.HasNext() {
			break
		}
		req.Page++
	}

	if err := s.index.Rebuild(books); err != nil {
		return 0, fmt.Errorf("rebuild search index: %w", err)
	}

	s.logger.Info("search index rebuilt", "books", len(books))
	return len(books), nil
}

func (s *CatalogService) reindex(ctx context.Context, book *domain.Book) {
	if err := s.index.IndexBook(ctx, book); err != nil {
		s.logger.Warn("failed to index book", "book_id", book.ID, "error", err)
	}
}

func (s *CatalogService) applyCategoryInput(c *domain.Category, in CategoryInput) error {
	if err := s.validator.Validate(in); err != nil {
		return err
	}
	slug := util.Slugify(in.Name)
	if slug == "" {
		return domainerrors.ValidationWithDetails("validation failed", map[string]string{
			"name": "must contain at least one letter or digit",
		})
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Slug = slug
	c.Description = strings.TrimSpace(in.Description)
	return nil
}

// CreateCategory adds a category. Names that slugify to an existing slug conflict.
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	c := &domain.Category{}
	if err := s.applyCategoryInput(c, in); err != nil {
		return nil, err
	}

	categoryID, err := id.Generate(id.PrefixCategory)
	if err != nil {
		return nil, fmt.Errorf("generate category ID: %w", err)
	}
	c.ID = categoryID
	c.InitTimestamps()

	if err := s.store.CreateCategory(ctx, c); err != nil {
		return nil, storeError(err, "create category")
	}

	s.logger.Info("category created", "category_id", c.ID, "slug", c.Slug)
	return c, nil
}

// GetCategory returns a category.
func (s *CatalogService) GetCategory(ctx context.Context, categoryID string) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, storeError(err, "get category")
	}
	return c, nil
}

// UpdateCategory renames a category and recomputes its slug.
func (s *CatalogService) UpdateCategory(ctx context.Context, categoryID string, in CategoryInput) (*domain.Category, error) {
	c, err := s.store.GetCategory(ctx, categoryID)
	if err != nil {
		return nil, storeError(err, "get category")
	}
	if err := s.applyCategoryInput(c, in); err != nil {
		return nil, err
	}
	c.Touch()

	if err := s.store.UpdateCategory(ctx, c); err != nil {
		return nil, storeError(err, "update category")
	}
	return c, nil
}

// DeleteCategory removes a category and its book links. Books stay.
func (s *CatalogService) DeleteCategory(ctx context.Context, categoryID string) error {
	if err := s.store.DeleteCategory(ctx, categoryID); err != nil {
		return storeError(err, "delete category")
	}
	s.logger.Info("category deleted", "category_id", categoryID)
	return nil
}

// ListCategories returns a page of categories.
func (s *CatalogService) ListCategories(ctx context.Context, req store.PageRequest) (*store.Page[*domain.Category], error) {
	page, err := s.store.ListCategories(ctx, req)
	if err != nil {
		return nil, storeError(err, "list categories")
	}
	return page, nil
}

func dedupe(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
