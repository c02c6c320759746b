package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/reviewshelf/reviewshelf-server/internal/config"
	"github.com/reviewshelf/reviewshelf-server/internal/logger"
	"github.com/reviewshelf/reviewshelf-server/internal/search"
	"github.com/reviewshelf/reviewshelf-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(search.Options{
		DataPath: cfg.SearchIndexPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service and wires the index
// into the store for automatic indexing on book writes.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	storeHandle.SetSearchIndexer(indexHandle.Index)

	return service.NewSearchService(indexHandle.Index, storeHandle.Store, log.Logger), nil
}

// TriggerSearchReindexIfNeeded rebuilds an empty index when the store
// already holds books, which happens after an index wipe or a mapping
// version bump. Call after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*service.SearchService](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := searchService.DocumentCount()
	if docCount > 0 {
		return
	}

	books, err := storeHandle.ListAllBooks(context.Background())
	if err != nil || len(books) == 0 {
		return
	}

	log.Info("Search index is empty but books exist, triggering initial reindex",
		"book_count", len(books),
	)

	go func() {
		if count, err := searchService.RebuildFromStore(context.Background()); err != nil {
			log.Error("Initial search reindex failed", "error", err)
		} else {
			log.Info("Initial search reindex completed", "documents", count)
		}
	}()
}
