package store

import (
	"context"

	"github.com/modelshare/modelshare-server/internal/domain"
)

// Store is the document persistence contract the services depend on.
//
// Every single-document write is atomic. Nothing spans documents: a rights
// change touches a user and a model in two separate calls.
type Store interface {
	UserStore
	ModelStore
	CommentStore
	FileStore

	Ping(ctx context.Context) error
	Close() error
}

// UserStore persists users. Usernames are unique.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)
	// ResolveUserID returns ErrNotFound when no user has the username.
	ResolveUserID(ctx context.Context, username string) (string, error)
	// GetUsersByIDs skips ids that do not resolve and keeps input order.
	GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	ListUsers(ctx context.Context, q Query[domain.User]) ([]*domain.User, error)
	UpdateUser(ctx context.Context, id string, updates ...domain.UserUpdate) (*domain.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ModelStore persists models.
type ModelStore interface {
	CreateModel(ctx context.Context, m *domain.Model) error
	GetModel(ctx context.Context, id string) (*domain.Model, error)
	GetModelsByIDs(ctx context.Context, ids []string) ([]*domain.Model, error)
	ListModels(ctx context.Context, q Query[domain.Model]) ([]*domain.Model, error)
	UpdateModel(ctx context.Context, id string, updates ...domain.ModelUpdate) (*domain.Model, error)
	DeleteModel(ctx context.Context, id string) error
}

// CommentStore persists comments. Slugs are unique.
type CommentStore interface {
	// CreateComment returns ErrAlreadyExists when the slug is taken.
	CreateComment(ctx context.Context, c *domain.Comment) error
	GetComment(ctx context.Context, id string) (*domain.Comment, error)
	ListComments(ctx context.Context, q Query[domain.Comment]) ([]*domain.Comment, error)
	// ListCommentsBySlugPrefix returns matching comments ordered by slug.
	ListCommentsBySlugPrefix(ctx context.Context, prefix string) ([]*domain.Comment, error)
	UpdateComment(ctx context.Context, id string, updates ...domain.CommentUpdate) (*domain.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// FileStore persists file documents.
type FileStore interface {
	CreateFile(ctx context.Context, f *domain.File) error
	GetFile(ctx context.Context, id string) (*domain.File, error)
	ListFiles(ctx context.Context, q Query[domain.File]) ([]*domain.File, error)
	UpdateFile(ctx context.Context, id string, updates ...domain.FileUpdate) (*domain.File, error)
	DeleteFile(ctx context.Context, id string) error
}
