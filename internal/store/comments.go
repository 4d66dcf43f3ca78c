package store

import (
	"context"
	"fmt"

	"github.com/modelshare/modelshare-server/internal/domain"
)

// CreateComment stores a new comment.
func (s *DB) CreateComment(ctx context.Context, c *domain.Comment) error {
	if c.ID == "" || c.Slug == "" {
		return ErrInvalidInput
	}
	if err := s.comments.Create(ctx, c.ID, c); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// GetComment retrieves a comment by id.
func (s *DB) GetComment(ctx context.Context, id string) (*domain.Comment, error) {
	return s.comments.Get(ctx, id)
}

// ListComments returns comments matching q.
func (s *DB) ListComments(ctx context.Context, q Query[domain.Comment]) ([]*domain.Comment, error) {
	return s.comments.Collect(ctx, q)
}

// ListCommentsBySlugPrefix walks the slug index, so results come back in
// slug order.
func (s *DB) ListCommentsBySlugPrefix(ctx context.Context, prefix string) ([]*domain.Comment, error) {
	ids, err := s.comments.ScanIndex(ctx, "slug", prefix)
	if err != nil {
		return nil, fmt.Errorf("scan slug index: %w", err)
	}
	return s.comments.GetMany(ctx, ids)
}

// UpdateComment applies typed updates to a comment.
func (s *DB) UpdateComment(ctx context.Context, id string, updates ...domain.CommentUpdate) (*domain.Comment, error) {
	return s.comments.Mutate(ctx, id, func(c *domain.Comment) (bool, error) {
		return c.Apply(updates...), nil
	})
}

// DeleteComment removes a comment. Replies are left in place.
func (s *DB) DeleteComment(ctx context.Context, id string) error {
	return s.comments.Delete(ctx, id)
}
