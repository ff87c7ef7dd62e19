package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfmark/bookstore-server/internal/search"
	"github.com/shelfmark/bookstore-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	register(s, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/books",
		Summary:     "List books",
		Description: "Returns a page of catalog books",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	register(s, huma.Operation{
		OperationID: "searchBooks",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/books/search",
		Summary:     "Search books",
		Description: "Full-text search over title, author, ISBN and description",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchBooks)

	register(s, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/books/{id}",
		Summary:     "Get book",
		Description: "Returns a catalog book",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	register(s, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/books",
		Summary:       "Create book",
		Description:   "Adds a book to the catalog (admin only)",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateBook)

	register(s, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/books/{id}",
		Summary:     "Update book",
		Description: "Replaces a book's writable fields (admin only). Existing orders keep their prices.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	register(s, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/books/{id}",
		Summary:       "Delete book",
		Description:   "Soft-deletes a book (admin only)",
		Tags:          []string{"Books"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteBook)
}

// ListBooksInput contains pagination parameters.
type ListBooksInput struct {
	Authorization string `header:"Authorization"`
	PageParams
}

// BookPageOutput wraps a page of books for Huma.
type BookPageOutput struct {
	Body BookPage
}

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*BookPageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}
	req, err := input.toRequest()
	if err != nil {
		return nil, err
	}

	page, err := s.services.Catalog.ListBooks(ctx, req)
	if err != nil {
		return nil, err
	}
	return &BookPageOutput{Body: toBookPage(page)}, nil
}

// SearchBooksInput contains search parameters.
type SearchBooksInput struct {
	Authorization string  `header:"Authorization"`
	Query         string  `query:"q" doc:"Search query"`
	CategoryID    string  `query:"category_id" doc:"Restrict to one category"`
	MinPrice      float64 `query:"min_price" minimum:"0" doc:"Minimum price, inclusive"`
	MaxPrice      float64 `query:"max_price" minimum:"0" doc:"Maximum price, inclusive"`
	SortBy        string  `query:"sort_by" enum:"relevance,title,author,price,recent" default:"relevance" doc:"Sort field"`
	SortOrder     string  `query:"sort_order" enum:"asc,desc" default:"desc" doc:"Sort direction"`
	Limit         int     `query:"limit" minimum:"1" maximum:"100" default:"20" doc:"Maximum results"`
	Offset        int     `query:"offset" minimum:"0" default:"0" doc:"Results to skip"`
}

// SearchBooksResponse is a page of search results.
type SearchBooksResponse struct {
	Query string         `json:"query" doc:"The query that was run"`
	Total uint64         `json:"total" doc:"Total matching books"`
	Books []BookResponse `json:"books" doc:"Matching books in rank order"`
}

// SearchBooksOutput wraps search results for Huma.
type SearchBooksOutput struct {
	Body SearchBooksResponse
}

func (s *Server) handleSearchBooks(ctx context.Context, input *SearchBooksInput) (*SearchBooksOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	res, err := s.services.Catalog.SearchBooks(ctx, search.SearchParams{
		Query:      input.Query,
		CategoryID: input.CategoryID,
		MinPrice:   input.MinPrice,
		MaxPrice:   input.MaxPrice,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
		Limit:      input.Limit,
		Offset:     input.Offset,
	})
	if err != nil {
		return nil, err
	}

	return &SearchBooksOutput{
		Body: SearchBooksResponse{
			Query: res.Query,
			Total: res.Total,
			Books: mapSlice(res.Books, toBookResponse),
		},
	}, nil
}

// BookPathInput identifies a book.
type BookPathInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// BookOutput wraps a book response for Huma.
type BookOutput struct {
	Body BookResponse
}

func (s *Server) handleGetBook(ctx context.Context, input *BookPathInput) (*BookOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.GetBook(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

// BookRequest is the request body for creating or replacing a book.
type BookRequest struct {
	Title       string   `json:"title" doc:"Title"`
	Author      string   `json:"author" doc:"Author"`
	ISBN        string   `json:"isbn" doc:"ISBN-10 or ISBN-13; hyphens and spaces are ignored"`
	Price       string   `json:"price" doc:"Unit price as a decimal string" example:"12.99"`
	Description string   `json:"description,omitempty" doc:"Description"`
	CoverImage  string   `json:"cover_image,omitempty" doc:"Cover image URL"`
	CategoryIDs []string `json:"category_ids,omitempty" doc:"Categories to file the book under"`
}

func (r BookRequest) toInput() service.BookInput {
	return service.BookInput{
		Title:       r.Title,
		Author:      r.Author,
		ISBN:        r.ISBN,
		Price:       r.Price,
		Description: r.Description,
		CoverImage:  r.CoverImage,
		CategoryIDs: r.CategoryIDs,
	}
}

// CreateBookInput wraps the create request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          BookRequest
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.CreateBook(ctx, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

// UpdateBookInput wraps the replace request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          BookRequest
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	book, err := s.services.Catalog.UpdateBook(ctx, input.ID, input.Body.toInput())
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *BookPathInput) (*struct{}, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteBook(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
