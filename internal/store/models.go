package store

import (
	"context"
	"fmt"

	"github.com/modelshare/modelshare-server/internal/domain"
)

// CreateModel stores a new model.
func (s *DB) CreateModel(ctx context.Context, m *domain.Model) error {
	if m.ID == "" {
		return ErrInvalidInput
	}
	if err := s.models.Create(ctx, m.ID, m); err != nil {
		return fmt.Errorf("create model: %w", err)
	}
	return nil
}

// GetModel retrieves a model by id.
func (s *DB) GetModel(ctx context.Context, id string) (*domain.Model, error) {
	return s.models.Get(ctx, id)
}

// GetModelsByIDs populates a list of model ids.
func (s *DB) GetModelsByIDs(ctx context.Context, ids []string) ([]*domain.Model, error) {
	return s.models.GetMany(ctx, ids)
}

// ListModels returns models matching q.
func (s *DB) ListModels(ctx context.Context, q Query[domain.Model]) ([]*domain.Model, error) {
	return s.models.Collect(ctx, q)
}

// UpdateModel applies typed updates to a model in one transaction.
func (s *DB) UpdateModel(ctx context.Context, id string, updates ...domain.ModelUpdate) (*domain.Model, error) {
	return s.models.Mutate(ctx, id, func(m *domain.Model) (bool, error) {
		return m.Apply(updates...), nil
	})
}

// DeleteModel removes a model. Comments and user rights sets are not touched.
func (s *DB) DeleteModel(ctx context.Context, id string) error {
	return s.models.Delete(ctx, id)
}
