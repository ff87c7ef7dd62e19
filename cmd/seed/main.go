// Package main seeds the catalog with a starter set of categories and books.
//
// It writes through the catalog service so books are validated, normalized and
// indexed exactly as if an administrator had created them over the API.
// Entries that already exist are skipped, so the tool is safe to re-run.
//
// Usage:
//
//	DATA_PATH=~/.bookstore go run ./cmd/seed
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/shelfmark/bookstore-server/internal/config"
	domainerrors "github.com/shelfmark/bookstore-server/internal/errors"
	"github.com/shelfmark/bookstore-server/internal/logger"
	"github.com/shelfmark/bookstore-server/internal/search"
	"github.com/shelfmark/bookstore-server/internal/service"
	"github.com/shelfmark/bookstore-server/internal/store"
	"github.com/shelfmark/bookstore-server/internal/store/sqlite"
	"github.com/shelfmark/bookstore-server/internal/validation"
)

type seedBook struct {
	service.BookInput
	categories []string
}

var categories = []service.CategoryInput{
	{Name: "Science Fiction", Description: "Speculative futures, space and technology."},
	{Name: "Fantasy", Description: "Magic, myth and other worlds."},
	{Name: "Classics", Description: "Enduring works of literature."},
	{Name: "Computing", Description: "Programming and computer science."},
}

var books = []seedBook{
	{service.BookInput{Title: "Dune", Author: "Frank Herbert", ISBN: "9780441013593", Price: "9.99"}, []string{"Science Fiction"}},
	{service.BookInput{Title: "The Left Hand of Darkness", Author: "Ursula K. Le Guin", ISBN: "9780441478125", Price: "14.50"}, []string{"Science Fiction", "Classics"}},
	{service.BookInput{Title: "Neuromancer", Author: "William Gibson", ISBN: "9780441569595", Price: "7.99"}, []string{"Science Fiction"}},
	{service.BookInput{Title: "A Wizard of Earthsea", Author: "Ursula K. Le Guin", ISBN: "9780547773742", Price: "8.75"}, []string{"Fantasy"}},
	{service.BookInput{Title: "The Hobbit", Author: "J. R. R. Tolkien", ISBN: "9780547928227", Price: "10.00"}, []string{"Fantasy", "Classics"}},
	{service.BookInput{Title: "Pride and Prejudice", Author: "Jane Austen", ISBN: "9780141439518", Price: "5.50"}, []string{"Classics"}},
	{service.BookInput{Title: "The Go Programming Language", Author: "Alan Donovan and Brian Kernighan", ISBN: "9780134190440", Price: "39.99"}, []string{"Computing"}},
	{service.BookInput{Title: "Structure and Interpretation of Computer Programs", Author: "Harold Abelson and Gerald Jay Sussman", ISBN: "9780262510875", Price: "55.00"}, []string{"Computing", "Classics"}},
}

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		Environment: cfg.App.Environment,
		Service:     "seed",
	})

	st, err := sqlite.Open(cfg.Data.DatabasePath(), log)
	if err != nil {
		return err
	}
	defer st.Close()

	index, err := search.NewCatalogIndex(search.Options{DataPath: cfg.Data.SearchPath(), Logger: log})
	if err != nil {
		return err
	}
	defer index.Close()

	catalog := service.NewCatalogService(st, index, validation.New(), log)

	categoryIDs, err := seedCategories(ctx, catalog)
	if err != nil {
		return err
	}

	created := 0
	for _, b := range books {
		in := b.BookInput
		for _, name := range b.categories {
			in.CategoryIDs = append(in.CategoryIDs, categoryIDs[name])
		}

		book, err := catalog.CreateBook(ctx, in)
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			log.Info("book already present", "isbn", in.ISBN)
			continue
		}
		if err != nil {
			return fmt.Errorf("create book %q: %w", in.Title, err)
		}
		log.Info("book created", "book_id", book.ID, "title", book.Title)
		created++
	}

	log.Info("seed complete", "books_created", created, "categories", len(categoryIDs))
	return nil
}

// seedCategories creates missing categories and returns every seed category's ID by name.
func seedCategories(ctx context.Context, catalog *service.CatalogService) (map[string]string, error) {
	ids := make(map[string]string, len(categories))

	for _, in := range categories {
		c, err := catalog.CreateCategory(ctx, in)
		if err == nil {
			ids[in.Name] = c.ID
			continue
		}
		if !errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, fmt.Errorf("create category %q: %w", in.Name, err)
		}
	}

	if len(ids) == len(categories) {
		return ids, nil
	}

	// Some already existed; resolve them by name.
	req := store.PageRequest{Size: store.MaxPageSize}
	for {
		page, err := catalog.ListCategories(ctx, req)
		if err != nil {
			return nil, err
		}
		for _, c := range page.Items {
			if _, ok := ids[c.Name]; !ok {
				ids[c.Name] = c.ID
			}
		}
		if !page.HasNext() {
			return ids, nil
		}
		req.Page++
	}
}
