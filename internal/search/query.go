package search

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams configures a catalog query.
type SearchParams struct {
	Query      string
	CategoryID string  // Filter to one category
	MinPrice   float64 // Inclusive; zero means unbounded
	MaxPrice   float64 // Inclusive; zero means unbounded

	Limit  int
	Offset int

	SortBy    string // "relevance", "title", "author", "price", "recent"
	SortOrder string // "asc", "desc"
}

// SearchResult is one page of hits.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit is a matching book. Callers load the book from the store for
// authoritative data such as price.
type SearchHit struct {
	ID         string            `json:"id"`
	Score      float64           `json:"score"`
	Title      string            `json:"title"`
	Author     string            `json:"author,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search executes a catalog query.
func (s *CatalogIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(req, params)

	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("title")
	req.Highlight.AddField("author")
	req.Fields = []string{"title", "author"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(res.Hits)),
	}

	for _, hit := range res.Hits {
		h := SearchHit{ID: hit.ID, Score: hit.Score}
		if t, ok := hit.Fields["title"].(string); ok {
			h.Title = t
		}
		if a, ok := hit.Fields["author"].(string); ok {
			h.Author = a
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
// Text matches are ORed across fields; filters are ANDed on top.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	if q := strings.TrimSpace(params.Query); q != "" {
		titleMatch := bleve.NewMatchQuery(q)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		authorMatch := bleve.NewMatchQuery(q)
		authorMatch.SetField("author")
		authorMatch.SetBoost(2.0)

		descMatch := bleve.NewMatchQuery(q)
		descMatch.SetField("description")
		descMatch.SetBoost(0.5)

		isbnMatch := bleve.NewTermQuery(q)
		isbnMatch.SetField("isbn")
		isbnMatch.SetBoost(5.0)

		// Typo tolerance on the title
		fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
		fuzzy.SetFuzziness(1)
		fuzzy.SetField("title")
		fuzzy.SetBoost(0.8)

		textQueries := []query.Query{titleMatch, authorMatch, descMatch, isbnMatch, fuzzy}

		if len(q) >= 2 {
			prefix := bleve.NewPrefixQuery(strings.ToLower(q))
			prefix.SetField("title")
			prefix.SetBoost(0.5)
			textQueries = append(textQueries, prefix)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if params.CategoryID != "" {
		cq := bleve.NewTermQuery(params.CategoryID)
		cq.SetField("category_ids")
		queries = append(queries, cq)
	}

	if params.MinPrice > 0 || params.MaxPrice > 0 {
		lo := params.MinPrice
		hi := params.MaxPrice
		if hi == 0 {
			hi = math.MaxFloat64
		}
		inclusive := true
		rq := bleve.NewNumericRangeInclusiveQuery(&lo, &hi, &inclusive, &inclusive)
		rq.SetField("price")
		queries = append(queries, rq)
	}

	switch len(queries) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return queries[0]
	default:
		return bleve.NewConjunctionQuery(queries...)
	}
}

// addSorting configures sort order. Relevance is the default.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	desc := params.SortOrder == "desc"
	field := func(name string) string {
		if desc {
			return "-" + name
		}
		return name
	}

	switch params.SortBy {
	case "title":
		req.SortBy([]string{field("title"), "_id"})
	case "author":
		req.SortBy([]string{field("author"), field("title"), "_id"})
	case "price":
		req.SortBy([]string{field("price"), "_id"})
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at", "_id"})
		} else {
			req.SortBy([]string{"-created_at", "_id"})
		}
	default:
		req.SortBy([]string{"-_score", "_id"})
	}
}
