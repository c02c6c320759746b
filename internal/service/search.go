package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/reviewshelf/reviewshelf-server/internal/search"
	"github.com/reviewshelf/reviewshelf-server/internal/store"
)

// SearchService exposes full-text search over the book catalog.
type SearchService struct {
	index  *search.Index
	store  *store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.Index, store *store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: logger,
	}
}

// Search runs a query against the book index.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	return s.index.Search(ctx, params)
}

// DocumentCount returns the number of indexed books.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}

// RebuildFromStore drops the index and reindexes every book in the
// store. Run after a mapping change or suspected index corruption.
func (s *SearchService) RebuildFromStore(ctx context.Context) (int, error) {
	start := time.Now()

	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	books, err := s.store.ListAllBooks(ctx)
	if err != nil {
		return 0, fmt.Errorf("list books: %w", err)
	}

	if err := s.index.IndexBooks(books); err != nil {
		return 0, fmt.Errorf("reindex books: %w", err)
	}

	s.logger.Info("search index rebuilt",
		"books", len(books),
		"duration", time.Since(start).Round(time.Millisecond),
	)

	return len(books), nil
}
