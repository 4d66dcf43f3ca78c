package store

import (
	"context"
	"fmt"

	"github.com/modelshare/modelshare-server/internal/domain"
)

// CreateFile stores a new file document.
func (s *DB) CreateFile(ctx context.Context, f *domain.File) error {
	if f.ID == "" {
		return ErrInvalidInput
	}
	if err := s.files.Create(ctx, f.ID, f); err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// GetFile retrieves a file by id.
func (s *DB) GetFile(ctx context.Context, id string) (*domain.File, error) {
	return s.files.Get(ctx, id)
}

// ListFiles returns files matching q.
func (s *DB) ListFiles(ctx context.Context, q Query[domain.File]) ([]*domain.File, error) {
	return s.files.Collect(ctx, q)
}

// UpdateFile applies typed updates to a file.
func (s *DB) UpdateFile(ctx context.Context, id string, updates ...domain.FileUpdate) (*domain.File, error) {
	return s.files.Mutate(ctx, id, func(f *domain.File) (bool, error) {
		return f.Apply(updates...), nil
	})
}

// DeleteFile removes a file document.
func (s *DB) DeleteFile(ctx context.Context, id string) error {
	return s.files.Delete(ctx, id)
}
