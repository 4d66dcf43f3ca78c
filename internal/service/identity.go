package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/store"
)

// IdentityResolver maps usernames to durable user ids.
type IdentityResolver struct {
	users store.UserStore
}

// NewIdentityResolver creates a resolver over the user collection.
func NewIdentityResolver(users store.UserStore) *IdentityResolver {
	return &IdentityResolver{users: users}
}

// Resolve returns the id of the user with the given username. A missing
// user is found == false with a nil error; err is only set when storage failed.
func (r *IdentityResolver) Resolve(ctx context.Context, username string) (id string, found bool, err error) {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return "", false, nil
	}

	id, err = r.users.ResolveUserID(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("resolve user %q: %w", username, err)
	}
	return id, true, nil
}
