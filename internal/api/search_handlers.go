package api

import (
	"net/http"
	"strconv"

	"github.com/reviewshelf/reviewshelf-server/internal/http/response"
	"github.com/reviewshelf/reviewshelf-server/internal/search"
)

// handleSearch runs a full-text query over the catalog.
//
// Query parameters:
//
//	q        query text (empty matches everything, useful with filters)
//	category filter by category slug
//	owner    filter by owner ID
//	limit    page size (default 20, max 100)
//	offset   page offset
//	sort     relevance, title, author, recent, views
//	order    asc or desc
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	params := search.DefaultParams()
	q := r.URL.Query()

	params.Query = q.Get("q")
	params.CategorySlug = q.Get("category")
	params.OwnerID = q.Get("owner")

	if limitStr := q.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 && limit <= 100 {
			params.Limit = limit
		}
	}
	if offsetStr := q.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			params.Offset = offset
		}
	}
	if sortBy := q.Get("sort"); sortBy != "" {
		params.SortBy = sortBy
	}
	if order := q.Get("order"); order != "" {
		params.SortOrder = order
	}

	result, err := s.searchService.Search(r.Context(), params)
	if err != nil {
		s.logger.Error("search failed", "query", params.Query, "error", err)
		response.InternalError(w, "Search failed", s.logger)
		return
	}

	response.Success(w, result, s.logger)
}
