// Package search provides full-text catalog search using Bleve.
package search

import (
	"github.com/shelfmark/bookstore-server/internal/domain"
)

// BookDocument is the indexed form of a catalog book.
type BookDocument struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	ISBN        string   `json:"isbn"`
	Description string   `json:"description,omitempty"`
	CategoryIDs []string `json:"category_ids,omitempty"`

	// Price is a float for range filters only. Money is never read back from the index.
	Price     float64 `json:"price"`
	CreatedAt int64   `json:"created_at"` // Unix millis
}

// BookToDocument converts a book for indexing.
func BookToDocument(b *domain.Book) *BookDocument {
	price, _ := b.Price.Float64()
	return &BookDocument{
		ID:          b.ID,
		Title:       b.Title,
		Author:      b.Author,
		ISBN:        b.ISBN,
		Description: b.Description,
		CategoryIDs: b.CategoryIDs,
		Price:       price,
		CreatedAt:   b.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map whose keys match the index mapping.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"author":     d.Author,
		"isbn":       d.ISBN,
		"price":      d.Price,
		"created_at": d.CreatedAt,
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if len(d.CategoryIDs) > 0 {
		m["category_ids"] = d.CategoryIDs
	}
	return m
}
