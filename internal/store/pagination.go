package store

import (
	"fmt"
	"strings"
)

const (
	// DefaultPageSize is used when a request does not specify a size.
	DefaultPageSize = 20
	// MaxPageSize caps the number of rows a single page may return.
	MaxPageSize = 100
)

// SortDirection is ASC or DESC.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Sort orders results by a single field.
type Sort struct {
	Field     string
	Direction SortDirection
}

// PageRequest asks for a zero-based page of results.
type PageRequest struct {
	Sort Sort
	Page int
	Size int
}

// ParseSort parses "field" or "field,ASC|DESC". Direction defaults to ASC.
// An empty expression yields the zero Sort, which leaves ordering to the store.
func ParseSort(expr string) (Sort, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Sort{}, nil
	}

	field, dir, hasDir := strings.Cut(expr, ",")
	field = strings.TrimSpace(field)
	if field == "" {
		return Sort{}, ErrInvalidInput.WithMessage(fmt.Sprintf("invalid sort %q: missing field", expr))
	}

	s := Sort{Field: field, Direction: SortAsc}
	if hasDir {
		switch SortDirection(strings.ToUpper(strings.TrimSpace(dir))) {
		case SortAsc, "":
		case SortDesc:
			s.Direction = SortDesc
		default:
			return Sort{}, ErrInvalidInput.WithMessage(fmt.Sprintf("invalid sort direction %q", dir))
		}
	}
	return s, nil
}

// Normalize clamps page and size into their allowed ranges.
func (r PageRequest) Normalize() PageRequest {
	if r.Page < 0 {
		r.Page = 0
	}
	if r.Size <= 0 {
		r.Size = DefaultPageSize
	}
	if r.Size > MaxPageSize {
		r.Size = MaxPageSize
	}
	if r.Sort.Field != "" && r.Sort.Direction == "" {
		r.Sort.Direction = SortAsc
	}
	return r
}

// Offset returns the number of rows to skip.
func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	Size       int `json:"size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// NewPage builds a page for req (already normalized) with the given total.
func NewPage[T any](items []T, req PageRequest, total int) *Page[T] {
	if items == nil {
		items = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = (total + req.Size - 1) / req.Size
	}
	return &Page[T]{
		Items:      items,
		Page:       req.Page,
		Size:       req.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// HasNext reports whether a later page exists.
func (p *Page[T]) HasNext() bool {
	return p.Page+1 < p.TotalPages
}
