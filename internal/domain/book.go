package domain

import "github.com/shopspring/decimal"

// Book is a catalog entry. Soft-deleted books stay in storage for order history
// but are invisible to every active query.
type Book struct {
	Record
	Title       string          `json:"title"`
	Author      string          `json:"author"`
	ISBN        string          `json:"isbn"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	CoverImage  string          `json:"cover_image,omitempty"`
	CategoryIDs []string        `json:"category_ids,omitempty"`
}

// HasCategory reports whether the book is filed under the category.
func (b *Book) HasCategory(categoryID string) bool {
	for _, id := range b.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}
