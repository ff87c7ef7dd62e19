package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooks_CreateAndGet(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.adminToken(t)
	token := ts.registerAndLogin(t, "reader@example.com")

	resp := ts.api.Post("/api/v1/books", bearer(admin), map[string]any{
		"title":  "The Dispossessed",
		"author": "Ursula K. Le Guin",
		"isbn":   "978-0-06-051275-4",
		"price":  "15.5",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var created BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, "9780060512754", created.ISBN)
	assert.Equal(t, "15.50", created.Price)
	assert.Empty(t, created.CategoryIDs)

	resp = ts.api.Get("/api/v1/books/"+created.ID, bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	var got BookResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &got))
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "15.50", got.Price)
}

func TestBooks_WritesRequireAdmin(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.adminToken(t)
	token := ts.registerAndLogin(t, "reader@example.com")
	book := ts.createBook(t, admin, "Dune", "9.99")

	body := map[string]any{"title": "T", "author": "A", "isbn": "9781111111111", "price": "1.00"}

	resp := ts.api.Post("/api/v1/books", bearer(token), body)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Put("/api/v1/books/"+book.ID, bearer(token), body)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Delete("/api/v1/books/"+book.ID, bearer(token))
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Post("/api/v1/books", body)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestBooks_Validation(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.adminToken(t)

	resp := ts.api.Post("/api/v1/books", bearer(admin), map[string]any{
		"title":  "T",
		"author": "A",
		"isbn":   "9781111111111",
		"price":  "1.999",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	details, ok := decodeError(t, resp).Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "price")
}

func TestBooks_DuplicateISBN(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.adminToken(t)
	body := map[string]any{"title": "T", "author": "A", "isbn": "9781111111111", "price": "1.00"}

	resp := ts.api.Post("/api/v1/books", bearer(admin), body)
	require.Equal(t, http.StatusCreated, resp.Code)

	resp = ts.api.Post("/api/v1/books", bearer(admin), body)
	assert.Equal(t, http.StatusConflict, resp.Code)
	assert.Equal(t, "ALREADY_EXISTS", decodeError(t, resp).Code)
}

func TestBooks_DeleteHidesBook(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.adminToken(t)
	token := ts.registerAndLogin(t, "reader@example.com")
	book := ts.createBook(t, admin, "Ephemeral", "2.00")

	resp := ts.api.Delete("/api/v1/books/"+book.ID, bearer(admin))
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/books/"+book.ID, bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/books", bearer(token))
	var page BookPage
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Empty(t, page.Items)

	resp = ts.api.Post("/api/v1/cart", bearer(token), map[string]any{"book_id": book.ID, "quantity": 1})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBooks_ListAndSearch(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.adminToken(t)
	token := ts.registerAndLogin(t, "reader@example.com")
	dune := ts.createBook(t, admin, "Dune", "9.99")
	ts.createBook(t, admin, "Neuromancer", "7.99")

	resp := ts.api.Get("/api/v1/books?sort=title,DESC", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var page BookPage
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "Neuromancer", page.Items[0].Title)

	resp = ts.api.Get("/api/v1/books/search?q=dune", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var res SearchBooksResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &res))
	require.NotEmpty(t, res.Books)
	assert.Equal(t, dune.ID, res.Books[0].ID)
	assert.Equal(t, "9.99", res.Books[0].Price)

	resp = ts.api.Get("/api/v1/health")
	var health HealthResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Components["search"].Status)
}

func TestCategories(t *testing.T) {
	ts := setupTestServer(t)
	admin := ts.adminToken(t)
	token := ts.registerAndLogin(t, "reader@example.com")

	resp := ts.api.Post("/api/v1/categories", bearer(token), map[string]any{"name": "Science Fiction"})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	resp = ts.api.Post("/api/v1/categories", bearer(admin), map[string]any{"name": "Science Fiction"})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var scifi CategoryResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &scifi))
	assert.Equal(t, "science-fiction", scifi.Slug)

	resp = ts.api.Post("/api/v1/categories", bearer(admin), map[string]any{"name": "science fiction"})
	assert.Equal(t, http.StatusConflict, resp.Code)

	resp = ts.api.Post("/api/v1/books", bearer(admin), map[string]any{
		"title":        "Dune",
		"author":       "Frank Herbert",
		"isbn":         "9780441013593",
		"price":        "9.99",
		"category_ids": []string{scifi.ID},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	ts.createBook(t, admin, "Uncategorized", "1.00")

	resp = ts.api.Get("/api/v1/categories/"+scifi.ID+"/books", bearer(token))
	require.Equal(t, http.StatusOK, resp.Code)
	var books BookPage
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &books))
	require.Len(t, books.Items, 1)
	assert.Equal(t, "Dune", books.Items[0].Title)

	resp = ts.api.Put("/api/v1/categories/"+scifi.ID, bearer(admin), map[string]any{"name": "Sci-Fi"})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/categories", bearer(token))
	var cats CategoryPage
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &cats))
	require.Len(t, cats.Items, 1)
	assert.Equal(t, "sci-fi", cats.Items[0].Slug)

	resp = ts.api.Delete("/api/v1/categories/"+scifi.ID, bearer(admin))
	require.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/categories/"+scifi.ID, bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/categories/"+scifi.ID+"/books", bearer(token))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
