package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query string // User's search query

	// Filters
	CategorySlug string // Filter by exact category slug
	OwnerID      string // Filter by owning user

	// Pagination
	Limit  int
	Offset int

	// Sorting
	SortBy    string // "relevance", "title", "author", "recent", "views"
	SortOrder string // "asc", "desc"

	// Options
	IncludeFacets bool // Include category facet counts
	Highlight     bool // Include match highlighting
}

// DefaultParams returns sensible defaults.
func DefaultParams() Params {
	return Params{
		Limit:         20,
		Offset:        0,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// Result represents the search results.
type Result struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []Hit        `json:"hits"`
	Facets []FacetCount `json:"facets,omitempty"`
}

// Hit represents a single search result.
type Hit struct {
	ID           string            `json:"id"`
	Score        float64           `json:"score"`
	Title        string            `json:"title"`
	Author       string            `json:"author,omitempty"`
	CategorySlug string            `json:"category_slug,omitempty"`
	ViewCount    int64             `json:"view_count,omitempty"`
	ReviewCount  int               `json:"review_count,omitempty"`
	Highlights   map[string]string `json:"highlights,omitempty"`
}

// FacetCount represents a category facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchQuery := buildSearchQuery(params)

	searchRequest := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)

	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("category_slug", bleve.NewFacetRequest("category_slug", 20))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("author")
	}

	searchRequest.Fields = []string{
		"id", "title", "author", "category_slug", "view_count", "review_count",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := Hit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if t, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = t
		}
		if a, ok := hit.Fields["author"].(string); ok {
			searchHit.Author = a
		}
		if c, ok := hit.Fields["category_slug"].(string); ok {
			searchHit.CategorySlug = c
		}
		if v, ok := hit.Fields["view_count"].(float64); ok {
			searchHit.ViewCount = int64(v)
		}
		if rc, ok := hit.Fields["review_count"].(float64); ok {
			searchHit.ReviewCount = int(rc)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if params.IncludeFacets {
		if categoryFacet, ok := searchResult.Facets["category_slug"]; ok {
			for _, term := range categoryFacet.Terms.Terms() {
				result.Facets = append(result.Facets, FacetCount{
					Value: term.Term,
					Count: term.Count,
				})
			}
		}
	}

	return result, nil
}

// buildSearchQuery constructs the Bleve query from params.
func buildSearchQuery(params Params) query.Query {
	var queries []query.Query

	// Main text query across title, author and description.
	// Title carries the highest boost; fuzzy and prefix variants on the
	// title give typo tolerance and as-you-type behavior.
	if params.Query != "" {
		textQueries := []query.Query{}

		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)
		textQueries = append(textQueries, titleMatch)

		authorMatch := bleve.NewMatchQuery(params.Query)
		authorMatch.SetField("author")
		authorMatch.SetBoost(1.5)
		textQueries = append(textQueries, authorMatch)

		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("description")
		textQueries = append(textQueries, descMatch)

		// Fuzzy matching for typo tolerance. Runs against the unstemmed
		// title copy; fuzzy terms are compared to index terms verbatim,
		// so they must target tokens the simple analyzer produced.
		fuzzyQuery := bleve.NewFuzzyQuery(strings.ToLower(params.Query))
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title_simple")
		fuzzyQuery.SetBoost(0.8)
		textQueries = append(textQueries, fuzzyQuery)

		// Prefix query for autocomplete (minimum 2 chars)
		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title_simple")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		// Combine with OR (match any field)
		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	// Category filter (exact match)
	if params.CategorySlug != "" {
		cq := bleve.NewTermQuery(params.CategorySlug)
		cq.SetField("category_slug")
		queries = append(queries, cq)
	}

	// Owner filter
	if params.OwnerID != "" {
		oq := bleve.NewTermQuery(params.OwnerID)
		oq.SetField("owner_id")
		queries = append(queries, oq)
	}

	// Combine all queries with AND
	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, params Params) {
	switch params.SortBy {
	case "title":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-title"})
		} else {
			req.SortBy([]string{"title"})
		}
	case "author":
		if params.SortOrder == "desc" {
			req.SortBy([]string{"-author", "-title"})
		} else {
			req.SortBy([]string{"author", "title"})
		}
	case "recent":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"created_at"})
		} else {
			req.SortBy([]string{"-created_at"})
		}
	case "views":
		if params.SortOrder == "asc" {
			req.SortBy([]string{"view_count"})
		} else {
			req.SortBy([]string{"-view_count"})
		}
	default:
		// Relevance (score) is default
		req.SortBy([]string{"-_score"})
	}
}
