package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/search"
	"github.com/modelshare/modelshare-server/internal/store"
)

// SearchService keeps the model search index in step with the store and
// runs queries against it.
type SearchService struct {
	index  *search.SearchIndex
	store  store.ModelStore
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, s store.ModelStore, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  s,
		logger: logger,
	}
}

// Search runs a model query.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	return s.index.Search(ctx, params)
}

// IndexModel indexes a single model. Index failures are logged, not
// returned: the store is the source of truth and Reindex recovers.
func (s *SearchService) IndexModel(m *domain.Model) {
	if err := s.index.IndexModel(m); err != nil {
		s.logger.Warn("failed to index model", "model_id", m.ID, "error", err)
		return
	}
	s.logger.Debug("indexed model", "model_id", m.ID, "name", m.Name)
}

// RemoveModel drops a model from the index.
func (s *SearchService) RemoveModel(modelID string) {
	if err := s.index.DeleteModel(modelID); err != nil {
		s.logger.Warn("failed to remove model from index", "model_id", modelID, "error", err)
	}
}

// Reindex rebuilds the index from every stored model.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	if err := s.index.Rebuild(); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}
	return s.indexAll(ctx)
}

// BackfillIfFresh indexes every stored model when the index was created
// empty on open. It does nothing for an existing index.
func (s *SearchService) BackfillIfFresh(ctx context.Context) error {
	if !s.index.Fresh() {
		return nil
	}
	n, err := s.indexAll(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("search index backfilled", "models", n)
	return nil
}

func (s *SearchService) indexAll(ctx context.Context) (int, error) {
	models, err := s.store.ListModels(ctx, store.Query[domain.Model]{})
	if err != nil {
		return 0, fmt.Errorf("list models: %w", err)
	}
	if err := s.index.IndexModels(models); err != nil {
		return 0, fmt.Errorf("index models: %w", err)
	}
	return len(models), nil
}

// DocumentCount reports how many models the index holds.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
