package sqlite

import (
	"context"
	"fmt"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/store"
)

const fileColumns = `id, created_at, updated_at, content, content_ref, size, content_type, blur_hash`

func scanFile(sc scanner) (*domain.File, error) {
	var (
		f         domain.File
		createdAt string
		updatedAt string
	)

	err := sc.Scan(&f.ID, &createdAt, &updatedAt, &f.Content, &f.ContentRef, &f.Size, &f.ContentType, &f.BlurHash)
	if err != nil {
		return nil, notFound(err)
	}
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// CreateFile inserts a new file document.
func (s *Store) CreateFile(ctx context.Context, f *domain.File) error {
	if f.ID == "" {
		return store.ErrInvalidInput
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO files (`+fileColumns+`) VALUES (?,?,?,?,?,?,?,?)`,
		f.ID, formatTime(f.CreatedAt), formatTime(f.UpdatedAt), f.Content, f.ContentRef, f.Size, f.ContentType, f.BlurHash)
	if err != nil {
		return fmt.Errorf("create file: %w", mapInsertError(err))
	}
	return nil
}

func getFile(ctx context.Context, q querier, id string) (*domain.File, error) {
	return scanFile(q.QueryRowContext(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ?`, id))
}

func putFile(ctx context.Context, q querier, f *domain.File) error {
	_, err := q.ExecContext(ctx, `UPDATE files SET updated_at = ?, content = ?, content_ref = ?, size = ?,
		content_type = ?, blur_hash = ? WHERE id = ?`,
		formatTime(f.UpdatedAt), f.Content, f.ContentRef, f.Size, f.ContentType, f.BlurHash, f.ID)
	if err != nil {
		return fmt.Errorf("update file: %w", err)
	}
	return nil
}

// GetFile retrieves a file by id.
func (s *Store) GetFile(ctx context.Context, id string) (*domain.File, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return getFile(ctx, s.db, id)
}

// ListFiles returns files matching q.
func (s *Store) ListFiles(ctx context.Context, q store.Query[domain.File]) ([]*domain.File, error) {
	return collect(ctx, s.db, `SELECT `+fileColumns+` FROM files ORDER BY id`, scanFile, q)
}

// UpdateFile applies typed updates to a file.
func (s *Store) UpdateFile(ctx context.Context, id string, updates ...domain.FileUpdate) (*domain.File, error) {
	return mutate(ctx, s, id, getFile, putFile, func(f *domain.File) bool {
		return f.Apply(updates...)
	})
}

// DeleteFile removes a file document.
func (s *Store) DeleteFile(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "files", id)
}
