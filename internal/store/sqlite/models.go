package sqlite

import (
	"context"
	"fmt"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/store"
)

const modelColumns = `id, created_at, updated_at, name, file, creator, creation_date, thumbnail,
	tags, public_read, public_write, readers, writers`

func scanModel(sc scanner) (*domain.Model, error) {
	var (
		m            domain.Model
		createdAt    string
		updatedAt    string
		creationDate string
		tags         string
		publicRead   int
		publicWrite  int
		readers      string
		writers      string
	)

	err := sc.Scan(&m.ID, &createdAt, &updatedAt, &m.Name, &m.File, &m.Creator, &creationDate, &m.Thumbnail,
		&tags, &publicRead, &publicWrite, &readers, &writers)
	if err != nil {
		return nil, notFound(err)
	}

	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if m.CreationDate, err = parseTime(creationDate); err != nil {
		return nil, err
	}
	if m.Tags, err = decodeList(tags); err != nil {
		return nil, err
	}

	r, err := decodeList(readers)
	if err != nil {
		return nil, err
	}
	w, err := decodeList(writers)
	if err != nil {
		return nil, err
	}
	m.Readers = domain.IDSet(r)
	m.Writers = domain.IDSet(w)
	m.PublicRead = publicRead != 0
	m.PublicWrite = publicWrite != 0

	return &m, nil
}

func modelArgs(m *domain.Model) ([]any, error) {
	tags, err := encodeList(m.Tags)
	if err != nil {
		return nil, err
	}
	readers, err := encodeList(m.Readers)
	if err != nil {
		return nil, err
	}
	writers, err := encodeList(m.Writers)
	if err != nil {
		return nil, err
	}
	return []any{
		formatTime(m.UpdatedAt), m.Name, m.File, m.Creator, formatTime(m.CreationDate), m.Thumbnail,
		tags, boolToInt(m.PublicRead), boolToInt(m.PublicWrite), readers, writers,
	}, nil
}

// CreateModel inserts a new model.
func (s *Store) CreateModel(ctx context.Context, m *domain.Model) error {
	if m.ID == "" {
		return store.ErrInvalidInput
	}
	args, err := modelArgs(m)
	if err != nil {
		return err
	}
	args = append([]any{m.ID, formatTime(m.CreatedAt)}, args...)

	_, err = s.db.ExecContext(ctx, `INSERT INTO models (`+modelColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`, args...)
	if err != nil {
		return fmt.Errorf("create model: %w", mapInsertError(err))
	}
	return nil
}

func getModel(ctx context.Context, q querier, id string) (*domain.Model, error) {
	return scanModel(q.QueryRowContext(ctx, `SELECT `+modelColumns+` FROM models WHERE id = ?`, id))
}

func putModel(ctx context.Context, q querier, m *domain.Model) error {
	args, err := modelArgs(m)
	if err != nil {
		return err
	}
	args = append(args, m.ID)

	_, err = q.ExecContext(ctx, `UPDATE models SET updated_at = ?, name = ?, file = ?, creator = ?,
		creation_date = ?, thumbnail = ?, tags = ?, public_read = ?, public_write = ?,
		readers = ?, writers = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update model: %w", err)
	}
	return nil
}

// GetModel retrieves a model by id.
func (s *Store) GetModel(ctx context.Context, id string) (*domain.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return getModel(ctx, s.db, id)
}

// GetModelsByIDs populates a list of model ids.
func (s *Store) GetModelsByIDs(ctx context.Context, ids []string) ([]*domain.Model, error) {
	return getMany(ctx, ids, s.GetModel)
}

// ListModels returns models matching q.
func (s *Store) ListModels(ctx context.Context, q store.Query[domain.Model]) ([]*domain.Model, error) {
	return collect(ctx, s.db, `SELECT `+modelColumns+` FROM models ORDER BY id`, scanModel, q)
}

// UpdateModel applies typed updates to a model in one transaction.
func (s *Store) UpdateModel(ctx context.Context, id string, updates ...domain.ModelUpdate) (*domain.Model, error) {
	return mutate(ctx, s, id, getModel, putModel, func(m *domain.Model) bool {
		return m.Apply(updates...)
	})
}

// DeleteModel removes a model.
func (s *Store) DeleteModel(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "models", id)
}
