package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/modelshare/modelshare-server/internal/auth"
	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
	"github.com/modelshare/modelshare-server/internal/ratelimit"
	"github.com/modelshare/modelshare-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthTest(t *testing.T, limiter *ratelimit.KeyedRateLimiter) (*AuthService, *UserService) {
	t.Helper()

	s := newTestStore(t)
	v := validation.New()
	users := NewUserService(s, auth.NewPasswordHasher(4), v, NoopEmitter{}, testLogger())

	tokens, err := auth.NewTokenService(bytes.Repeat([]byte{7}, 32), 15*time.Minute)
	require.NoError(t, err)

	return NewAuthService(users, s, tokens, limiter, v, testLogger()), users
}

func TestAuth_LoginAndWhoAmI(t *testing.T) {
	svc, users := setupAuthTest(t, nil)
	ctx := context.Background()

	created, _, err := users.Create(ctx, CreateUserInput{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	result, err := svc.Login(ctx, LoginInput{Username: "alice", Password: "correct horse"}, "10.0.0.1")
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.True(t, result.ExpiresAt.After(time.Now()))
	assert.Equal(t, created.ID, result.User.ID)

	me, err := svc.WhoAmI(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestAuth_LoginFailures(t *testing.T) {
	svc, users := setupAuthTest(t, nil)
	ctx := context.Background()

	_, _, err := users.Create(ctx, CreateUserInput{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "wrong"}, "10.0.0.1")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "mallory", Password: "wrong"}, "10.0.0.1")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, LoginInput{Username: "alice"}, "10.0.0.1")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestAuth_LoginIsRateLimitedPerClient(t *testing.T) {
	limiter := ratelimit.New(0.001, 2)
	t.Cleanup(limiter.Stop)

	svc, _ := setupAuthTest(t, limiter)
	ctx := context.Background()

	for range 2 {
		_, err := svc.Login(ctx, LoginInput{Username: "nobody", Password: "pw"}, "10.0.0.1")
		require.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
	}

	_, err := svc.Login(ctx, LoginInput{Username: "nobody", Password: "pw"}, "10.0.0.1")
	assert.ErrorIs(t, err, domainerrors.ErrRateLimited)

	// Another client has its own bucket.
	_, err = svc.Login(ctx, LoginInput{Username: "nobody", Password: "pw"}, "10.0.0.2")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuth_WhoAmIRejectsBadTokens(t *testing.T) {
	svc, _ := setupAuthTest(t, nil)
	ctx := context.Background()

	_, err := svc.WhoAmI(ctx, "")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	_, err = svc.WhoAmI(ctx, "v4.local.garbage")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}
