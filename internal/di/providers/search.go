package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/modelshare/modelshare-server/internal/config"
	"github.com/modelshare/modelshare-server/internal/logger"
	"github.com/modelshare/modelshare-server/internal/search"
	"github.com/modelshare/modelshare-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
// SearchIndex is nil when search is disabled.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	if h.SearchIndex == nil {
		return nil
	}
	return h.Close()
}

// ProvideSearchIndex provides the Bleve search index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if !cfg.Search.Enabled {
		log.Info("Model search disabled by configuration")
		return &SearchIndexHandle{}, nil
	}

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.SearchIndexPath(),
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// SearchServiceHandle carries the search service. SearchService is nil when
// search is disabled, and the API falls back to listing.
type SearchServiceHandle struct {
	*service.SearchService
}

// ProvideSearchService provides the search service.
func ProvideSearchService(i do.Injector) (*SearchServiceHandle, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	if indexHandle.SearchIndex == nil {
		return &SearchServiceHandle{}, nil
	}

	svc := service.NewSearchService(indexHandle.SearchIndex, storeHandle.Store, log.WithComponent("search"))
	return &SearchServiceHandle{SearchService: svc}, nil
}

// TriggerSearchBackfillIfNeeded indexes stored models in the background when
// the index was created empty on this start.
func TriggerSearchBackfillIfNeeded(i do.Injector) {
	searchService := do.MustInvoke[*SearchServiceHandle](i).SearchService
	log := do.MustInvoke[*logger.Logger](i)

	if searchService == nil {
		return
	}

	go func() {
		if err := searchService.BackfillIfFresh(context.Background()); err != nil {
			log.Error("Search index backfill failed", "error", err)
			return
		}
		count, _ := searchService.DocumentCount()
		log.Debug("Search index ready", "documents", count)
	}()
}
