package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelshare/modelshare-server/internal/domain"
)

// CreateUser stores a new user. The username must be unused.
func (s *DB) CreateUser(ctx context.Context, u *domain.User) error {
	if u.ID == "" || domain.NormalizeUsername(u.Username) == "" {
		return ErrInvalidInput
	}
	if err := s.users.Create(ctx, u.ID, u); err != nil {
		return fmt.Errorf("create user %s: %w", u.Username, err)
	}
	return nil
}

// GetUser retrieves a user by id.
func (s *DB) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.Get(ctx, id)
}

// GetUserByUsername retrieves a user by username.
func (s *DB) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.users.GetByIndex(ctx, "username", username)
}

// ResolveUserID maps a username to the user id.
func (s *DB) ResolveUserID(ctx context.Context, username string) (string, error) {
	id, err := s.users.LookupID(ctx, "username", username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", err
		}
		return "", fmt.Errorf("resolve username: %w", err)
	}
	return id, nil
}

// GetUsersByIDs populates a list of user ids.
func (s *DB) GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	return s.users.GetMany(ctx, ids)
}

// ListUsers returns users matching q.
func (s *DB) ListUsers(ctx context.Context, q Query[domain.User]) ([]*domain.User, error) {
	return s.users.Collect(ctx, q)
}

// UpdateUser applies typed updates to a user in one transaction.
func (s *DB) UpdateUser(ctx context.Context, id string, updates ...domain.UserUpdate) (*domain.User, error) {
	return s.users.Mutate(ctx, id, func(u *domain.User) (bool, error) {
		return u.Apply(updates...), nil
	})
}

// DeleteUser removes a user. Model reader and writer sets are left as they are.
func (s *DB) DeleteUser(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}
