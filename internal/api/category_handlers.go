package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/shelfmark/bookstore-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	register(s, huma.Operation{
		OperationID: "listCategories",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/categories",
		Summary:     "List categories",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategories)

	register(s, huma.Operation{
		OperationID: "getCategory",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/categories/{id}",
		Summary:     "Get category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCategory)

	register(s, huma.Operation{
		OperationID: "listCategoryBooks",
		Method:      http.MethodGet,
		Path:        apiPrefix + "/categories/{id}/books",
		Summary:     "List books in category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListCategoryBooks)

	register(s, huma.Operation{
		OperationID:   "createCategory",
		Method:        http.MethodPost,
		Path:          apiPrefix + "/categories",
		Summary:       "Create category",
		Description:   "Creates a category; the slug is derived from the name (admin only)",
		Tags:          []string{"Categories"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateCategory)

	register(s, huma.Operation{
		OperationID: "updateCategory",
		Method:      http.MethodPut,
		Path:        apiPrefix + "/categories/{id}",
		Summary:     "Update category",
		Tags:        []string{"Categories"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateCategory)

	register(s, huma.Operation{
		OperationID:   "deleteCategory",
		Method:        http.MethodDelete,
		Path:          apiPrefix + "/categories/{id}",
		Summary:       "Delete category",
		Description:   "Deletes a category and unfiles its books (admin only)",
		Tags:          []string{"Categories"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteCategory)
}

// ListCategoriesInput contains pagination parameters.
type ListCategoriesInput struct {
	Authorization string `header:"Authorization"`
	PageParams
}

// CategoryPageOutput wraps a page of categories for Huma.
type CategoryPageOutput struct {
	Body CategoryPage
}

func (s *Server) handleListCategories(ctx context.Context, input *ListCategoriesInput) (*CategoryPageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}
	req, err := input.toRequest()
	if err != nil {
		return nil, err
	}

	page, err := s.services.Catalog.ListCategories(ctx, req)
	if err != nil {
		return nil, err
	}
	return &CategoryPageOutput{
		Body: CategoryPage{Items: mapSlice(page.Items, toCategoryResponse), PageInfo: pageInfo(page)},
	}, nil
}

// CategoryPathInput identifies a category.
type CategoryPathInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
}

// CategoryOutput wraps a category response for Huma.
type CategoryOutput struct {
	Body CategoryResponse
}

func (s *Server) handleGetCategory(ctx context.Context, input *CategoryPathInput) (*CategoryOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	category, err := s.services.Catalog.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: toCategoryResponse(category)}, nil
}

// ListCategoryBooksInput identifies a category and a page of its books.
type ListCategoryBooksInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
	PageParams
}

func (s *Server) handleListCategoryBooks(ctx context.Context, input *ListCategoryBooksInput) (*BookPageOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}
	req, err := input.toRequest()
	if err != nil {
		return nil, err
	}

	page, err := s.services.Catalog.ListBooksByCategory(ctx, input.ID, req)
	if err != nil {
		return nil, err
	}
	return &BookPageOutput{Body: toBookPage(page)}, nil
}

// CategoryRequest is the request body for creating or renaming a category.
type CategoryRequest struct {
	Name        string `json:"name" doc:"Display name"`
	Description string `json:"description,omitempty" doc:"Description"`
}

// CreateCategoryInput wraps the create request for Huma.
type CreateCategoryInput struct {
	Authorization string `header:"Authorization"`
	Body          CategoryRequest
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*CategoryOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	category, err := s.services.Catalog.CreateCategory(ctx, service.CategoryInput{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: toCategoryResponse(category)}, nil
}

// UpdateCategoryInput wraps the update request for Huma.
type UpdateCategoryInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Category ID"`
	Body          CategoryRequest
}

func (s *Server) handleUpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*CategoryOutput, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	category, err := s.services.Catalog.UpdateCategory(ctx, input.ID, service.CategoryInput{
		Name:        input.Body.Name,
		Description: input.Body.Description,
	})
	if err != nil {
		return nil, err
	}
	return &CategoryOutput{Body: toCategoryResponse(category)}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *CategoryPathInput) (*struct{}, error) {
	if _, err := s.authenticateAndRequireAdmin(ctx, input.Authorization); err != nil {
		return nil, err
	}

	if err := s.services.Catalog.DeleteCategory(ctx, input.ID); err != nil {
		return nil, err
	}
	return nil, nil
}
