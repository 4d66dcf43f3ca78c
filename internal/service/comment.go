package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/id"
	"github.com/modelshare/modelshare-server/internal/markup"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/store"
	"github.com/modelshare/modelshare-server/internal/validation"
)

// CreateCommentInput carries the fields of a new comment.
type CreateCommentInput struct {
	ModelID    string
	Author     string
	Text       string
	PostedDate time.Time // zero means now
	ParentID   string
}

// CommentService manages comments and their reply hierarchy.
type CommentService struct {
	store     store.CommentStore
	validator *validation.Validator
	events    EventEmitter
	logger    *slog.Logger
	now       func() time.Time
}

// NewCommentService creates a comment service.
func NewCommentService(s store.CommentStore, v *validation.Validator, events EventEmitter, logger *slog.Logger) *CommentService {
	return &CommentService{
		store:     s,
		validator: v,
		events:    events,
		logger:    logger,
		now:       time.Now,
	}
}

// Create stores a comment, placing it under its parent when ParentID is set.
//
// The slug is the parent's slug, a separator and the comment's local segment
// (author plus posting time). If another comment already holds that slug the
// segment is made unique with the new comment's id and the write is retried
// once. The author must be a valid username so that it cannot carry a slug
// separator into the path.
func (s *CommentService) Create(ctx context.Context, in CreateCommentInput) (*domain.Comment, Status, error) {
	if err := s.validator.UsernameField("author", in.Author); err != nil {
		return nil, "", err
	}

	var parentSlug string
	if in.ParentID != "" {
		parent, err := s.store.GetComment(ctx, in.ParentID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, StatusParentMissing, nil
		}
		if err != nil {
			return nil, "", fmt.Errorf("load parent comment: %w", err)
		}
		parentSlug = parent.Slug
	}

	commentID, err := id.Generate(id.PrefixComment)
	if err != nil {
		return nil, "", err
	}

	posted := in.PostedDate
	if posted.IsZero() {
		posted = s.now()
	}
	// Millisecond precision, matching what the slug records.
	posted = posted.UTC().Truncate(time.Millisecond)

	segment := domain.LocalSegment(in.Author, posted)
	c := &domain.Comment{
		Document:   domain.Document{ID: commentID},
		ModelID:    in.ModelID,
		Author:     in.Author,
		Text:       in.Text,
		Markdown:   markup.Render(in.Text),
		PostedDate: posted,
		ParentID:   in.ParentID,
		Slug:       domain.ChildSlug(parentSlug, segment),
	}
	c.InitTimestamps()

	err = s.store.CreateComment(ctx, c)
	if errors.Is(err, store.ErrAlreadyExists) {
		s.logger.Debug("comment slug taken, strengthening", "slug", c.Slug, "comment_id", c.ID)
		c.Slug = domain.ChildSlug(parentSlug, domain.StrengthenSegment(segment, c.ID))
		err = s.store.CreateComment(ctx, c)
	}
	if err != nil {
		return nil, "", fmt.Errorf("create comment: %w", err)
	}

	s.events.Emit(sse.NewCommentEvent(sse.EventCommentCreated, c))

	s.logger.Info("comment created",
		"comment_id", c.ID,
		"model_id", c.ModelID,
		"author", c.Author,
		"slug", c.Slug,
	)

	return c, StatusOK, nil
}

// Get returns a single comment.
func (s *CommentService) Get(ctx context.Context, commentID string) (*domain.Comment, Status, error) {
	c, err := s.store.GetComment(ctx, commentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, StatusCommentMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("get comment: %w", err)
	}
	return c, StatusOK, nil
}

// List returns comments ordered by posting date.
func (s *CommentService) List(ctx context.Context, offset, limit int) ([]*domain.Comment, error) {
	return s.list(ctx, nil, offset, limit)
}

// ListByModel returns the comments on a model ordered by slug, which keeps
// every reply directly below its ancestors.
func (s *CommentService) ListByModel(ctx context.Context, modelID string, offset, limit int) ([]*domain.Comment, error) {
	comments, err := s.store.ListComments(ctx, store.Query[domain.Comment]{
		Filter: func(c *domain.Comment) bool { return c.ModelID == modelID },
		Less:   func(a, b *domain.Comment) bool { return a.Slug < b.Slug },
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list comments for model: %w", err)
	}
	return comments, nil
}

// ListByAuthor returns the comments written by a user.
func (s *CommentService) ListByAuthor(ctx context.Context, author string, offset, limit int) ([]*domain.Comment, error) {
	return s.list(ctx, func(c *domain.Comment) bool { return c.Author == author }, offset, limit)
}

func (s *CommentService) list(ctx context.Context, filter func(*domain.Comment) bool, offset, limit int) ([]*domain.Comment, error) {
	comments, err := s.store.ListComments(ctx, store.Query[domain.Comment]{
		Filter: filter,
		Less:   func(a, b *domain.Comment) bool { return a.PostedDate.Before(b.PostedDate) },
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Thread returns the comment followed by all of its descendants in slug order.
func (s *CommentService) Thread(ctx context.Context, commentID string) ([]*domain.Comment, Status, error) {
	root, status, err := s.Get(ctx, commentID)
	if err != nil || !status.OK() {
		return nil, status, err
	}

	descendants, err := s.store.ListCommentsBySlugPrefix(ctx, domain.SubtreePrefix(root.Slug))
	if err != nil {
		return nil, "", fmt.Errorf("list thread: %w", err)
	}

	return append([]*domain.Comment{root}, descendants...), StatusOK, nil
}

// SetText replaces the comment body. HTML is converted like on creation.
func (s *CommentService) SetText(ctx context.Context, commentID, text string) (*domain.Comment, Status, error) {
	c, err := s.store.UpdateComment(ctx, commentID, domain.SetText{Text: text, Markdown: markup.Render(text)})
	if errors.Is(err, store.ErrNotFound) {
		return nil, StatusCommentMissing, nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("update comment: %w", err)
	}

	s.events.Emit(sse.NewCommentEvent(sse.EventCommentUpdated, c))
	return c, StatusOK, nil
}

// Delete removes a comment. Its replies stay, still carrying its slug as prefix.
func (s *CommentService) Delete(ctx context.Context, commentID string) (Status, error) {
	c, status, err := s.Get(ctx, commentID)
	if err != nil || !status.OK() {
		return status, err
	}

	if err := s.store.DeleteComment(ctx, commentID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return StatusCommentMissing, nil
		}
		return "", fmt.Errorf("delete comment: %w", err)
	}

	s.events.Emit(sse.NewCommentDeletedEvent(c))
	s.logger.Info("comment deleted", "comment_id", commentID)
	return StatusOK, nil
}
