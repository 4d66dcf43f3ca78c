package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"unicode/utf8"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/store"
)

const commentColumns = `id, created_at, updated_at, model_id, author, text, markdown, posted_date, parent_id, slug`

func scanComment(sc scanner) (*domain.Comment, error) {
	var (
		c          domain.Comment
		createdAt  string
		updatedAt  string
		postedDate string
		parentID   sql.NullString
	)

	err := sc.Scan(&c.ID, &createdAt, &updatedAt, &c.ModelID, &c.Author, &c.Text, &c.Markdown, &postedDate, &parentID, &c.Slug)
	if err != nil {
		return nil, notFound(err)
	}

	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if c.PostedDate, err = parseTime(postedDate); err != nil {
		return nil, err
	}
	if parentID.Valid {
		c.ParentID = parentID.String
	}
	return &c, nil
}

// CreateComment inserts a new comment.
// Returns store.ErrAlreadyExists if the id or slug is taken.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	if c.ID == "" || c.Slug == "" {
		return store.ErrInvalidInput
	}

	var parentID sql.NullString
	if c.ParentID != "" {
		parentID = sql.NullString{String: c.ParentID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO comments (`+commentColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		c.ID, formatTime(c.CreatedAt), formatTime(c.UpdatedAt), c.ModelID, c.Author, c.Text, c.Markdown,
		formatTime(c.PostedDate), parentID, c.Slug)
	if err != nil {
		return fmt.Errorf("create comment: %w", mapInsertError(err))
	}
	return nil
}

func getComment(ctx context.Context, q querier, id string) (*domain.Comment, error) {
	return scanComment(q.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = ?`, id))
}

func putComment(ctx context.Context, q querier, c *domain.Comment) error {
	_, err := q.ExecContext(ctx, `UPDATE comments SET updated_at = ?, text = ?, markdown = ? WHERE id = ?`,
		formatTime(c.UpdatedAt), c.Text, c.Markdown, c.ID)
	if err != nil {
		return fmt.Errorf("update comment: %w", err)
	}
	return nil
}

// GetComment retrieves a comment by id.
func (s *Store) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return getComment(ctx, s.db, id)
}

// ListComments returns comments matching q.
func (s *Store) ListComments(ctx context.Context, q store.Query[domain.Comment]) ([]*domain.Comment, error) {
	return collect(ctx, s.db, `SELECT `+commentColumns+` FROM comments ORDER BY id`, scanComment, q)
}

// ListCommentsBySlugPrefix returns comments whose slug starts with prefix,
// ordered by slug. substr counts characters, so the prefix length is a rune count.
func (s *Store) ListCommentsBySlugPrefix(ctx context.Context, prefix string) ([]*domain.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE substr(slug, 1, ?) = ? ORDER BY slug`,
		utf8.RuneCountInString(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("query comments by slug: %w", err)
	}
	defer rows.Close()

	var out []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// UpdateComment applies typed updates to a comment.
func (s *Store) UpdateComment(ctx context.Context, id string, updates ...domain.CommentUpdate) (*domain.Comment, error) {
	return mutate(ctx, s, id, getComment, putComment, func(c *domain.Comment) bool {
		return c.Apply(updates...)
	})
}

// DeleteComment removes a comment. Replies are left in place.
func (s *Store) DeleteComment(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "comments", id)
}
