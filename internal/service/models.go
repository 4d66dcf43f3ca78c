package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/id"
	"github.com/modelshare/modelshare-server/internal/search"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/store"
	"github.com/modelshare/modelshare-server/internal/validation"
)

// CreateModelInput carries the fields of a new model.
type CreateModelInput struct {
	Name         string    `json:"name" validate:"required,max=256"`
	File         string    `json:"file"`
	Creator      string    `json:"creator" validate:"omitempty,username"`
	CreationDate time.Time `json:"creationDate"` // zero means now
	Thumbnail    string    `json:"thumbnail"`
	Tags         []string  `json:"tags" validate:"max=64,dive,max=64"`
	PublicRead   bool      `json:"publicRead"`
	PublicWrite  bool      `json:"publicWrite"`
}

// ModelService manages model documents. Rights are changed through
// RightsService only.
type ModelService struct {
	store     store.ModelStore
	search    *SearchService // nil when search is disabled
	validator *validation.Validator
	events    EventEmitter
	logger    *slog.Logger
}

// NewModelService creates a model service. searchService may be nil.
func NewModelService(s store.ModelStore, searchService *SearchService, v *validation.Validator, events EventEmitter, logger *slog.Logger) *ModelService {
	return &ModelService{
		store:     s,
		search:    searchService,
		validator: v,
		events:    events,
		logger:    logger,
	}
}

// Create stores a new model with empty reader and writer sets.
func (s *ModelService) Create(ctx context.Context, in CreateModelInput) (*domain.Model, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Creator = domain.NormalizeUsername(in.Creator)
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	modelID, err := id.Generate(id.PrefixModel)
	if err != nil {
		return nil, err
	}

	created := in.CreationDate
	if created.IsZero() {
		created = time.Now()
	}

	m := &domain.Model{
		Document:     domain.Document{ID: modelID},
		Name:         in.Name,
		File:         in.File,
		Creator:      in.Creator,
		CreationDate: created.UTC(),
		Thumbnail:    in.Thumbnail,
		Tags:         domain.NormalizeTags(in.Tags),
		PublicRead:   in.PublicRead,
		PublicWrite:  in.PublicWrite,
		Readers:      domain.IDSet{},
		Writers:      domain.IDSet{},
	}
	m.InitTimestamps()

	if err := s.store.CreateModel(ctx, m); err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}

	if s.search != nil {
		s.search.IndexModel(m)
	}
	s.events.Emit(sse.NewModelEvent(sse.EventModelCreated, m))
	s.logger.Info("model created", "model_id", m.ID, "name", m.Name, "creator", m.Creator)

	return m, nil
}

// Get returns a single model.
func (s *ModelService) Get(ctx context.Context, modelID string) (*domain.Model, Status, error) {
	m, err := s.store.GetModel(ctx, modelID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, StatusModelMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get model: %w", err)
	}
	return m, StatusOK, nil
}

// List returns models ordered by name.
func (s *ModelService) List(ctx context.Context, offset, limit int) ([]*domain.Model, error) {
	return s.list(ctx, nil, offset, limit)
}

// ListPublicRead returns the publicly readable models.
func (s *ModelService) ListPublicRead(ctx context.Context, offset, limit int) ([]*domain.Model, error) {
	return s.list(ctx, func(m *domain.Model) bool { return m.PublicRead }, offset, limit)
}

// ListPublicWrite returns the publicly writable models.
func (s *ModelService) ListPublicWrite(ctx context.Context, offset, limit int) ([]*domain.Model, error) {
	return s.list(ctx, func(m *domain.Model) bool { return m.PublicWrite }, offset, limit)
}

// ListByCreator returns the models a user created.
func (s *ModelService) ListByCreator(ctx context.Context, creator string, offset, limit int) ([]*domain.Model, error) {
	creator = domain.NormalizeUsername(creator)
	return s.list(ctx, func(m *domain.Model) bool { return m.Creator == creator }, offset, limit)
}

func (s *ModelService) list(ctx context.Context, filter func(*domain.Model) bool, offset, limit int) ([]*domain.Model, error) {
	models, err := s.store.ListModels(ctx, store.Query[domain.Model]{
		Filter: filter,
		Less:   func(a, b *domain.Model) bool { return a.Name < b.Name },
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	return models, nil
}

// Update applies typed updates to a model and reindexes it.
func (s *ModelService) Update(ctx context.Context, modelID string, updates ...domain.ModelUpdate) (*domain.Model, Status, error) {
	m, err := s.store.UpdateModel(ctx, modelID, updates...)
	if errors.Is(err, store.ErrNotFound) {
		return nil, StatusModelMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("update model: %w", err)
	}

	if s.search != nil {
		s.search.IndexModel(m)
	}
	s.events.Emit(sse.NewModelEvent(sse.EventModelUpdated, m))
	return m, StatusOK, nil
}

// Delete removes a model. Comments and user rights entries that point at it
// are left in place.
func (s *ModelService) Delete(ctx context.Context, modelID string) (Status, error) {
	if _, status, err := s.Get(ctx, modelID); err != nil || !status.OK() {
		return status, err
	}

	if err := s.store.DeleteModel(ctx, modelID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StatusModelMissing, nil
		}
		return "", fmt.Errorf("delete model: %w", err)
	}

	if s.search != nil {
		s.search.RemoveModel(modelID)
	}
	s.events.Emit(sse.NewModelDeletedEvent(modelID))
	s.logger.Info("model deleted", "model_id", modelID)
	return StatusOK, nil
}

// Search runs a full-text query. With search disabled it falls back to a
// case-insensitive name match over the store, honouring the tag, creator and
// public filters.
func (s *ModelService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if s.search != nil {
		return s.search.Search(ctx, params)
	}

	start := time.Now()
	needle := strings.ToLower(strings.TrimSpace(params.Query))
	tags := domain.NormalizeTags(params.Tags)

	matches, err := s.store.ListModels(ctx, store.Query[domain.Model]{
		Filter: func(m *domain.Model) bool {
			if params.PublicOnly && !m.PublicRead {
				return false
			}
			if params.Creator != "" && m.Creator != params.Creator {
				return false
			}
			for _, t := range tags {
				if !slices.Contains(m.Tags, t) {
					return false
				}
			}
			return needle == "" || strings.Contains(strings.ToLower(m.Name), needle)
		},
		Less: func(a, b *domain.Model) bool { return a.Name < b.Name },
	})
	if err != nil {
		return nil, fmt.Errorf("search models: %w", err)
	}

	page := store.Page[domain.Model](params.Offset, params.Limit).Apply(matches)
	result := &search.SearchResult{
		Query: params.Query,
		Total: uint64(len(matches)),
		Hits:  make([]search.SearchHit, 0, len(page)),
	}
	for _, m := range page {
		result.Hits = append(result.Hits, search.SearchHit{
			ID:      m.ID,
			Score:   1,
			Name:    m.Name,
			Creator: m.Creator,
			Tags:    m.Tags,
		})
	}
	result.TookMs = time.Since(start).Milliseconds()
	return result, nil
}
