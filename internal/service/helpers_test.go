package service

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/store"
	"github.com/modelshare/modelshare-server/internal/store/sqlite"
	"github.com/modelshare/modelshare-server/internal/store/storetest"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestStore opens an in-memory Badger store.
func newTestStore(t *testing.T) *store.DB {
	t.Helper()

	s, err := store.New("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// newSQLiteStore opens a SQLite store in a temp directory.
func newSQLiteStore(t *testing.T) *sqlite.Store {
	t.Helper()

	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// recordingEmitter keeps every emitted event.
type recordingEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (r *recordingEmitter) Emit(e sse.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingEmitter) types() []sse.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]sse.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// faultStore fails selected writes.
type faultStore struct {
	store.Store
	updateModelErr error
	updateUserErr  error
}

func (f *faultStore) UpdateModel(ctx context.Context, id string, updates ...domain.ModelUpdate) (*domain.Model, error) {
	if f.updateModelErr != nil {
		return nil, f.updateModelErr
	}
	return f.Store.UpdateModel(ctx, id, updates...)
}

func (f *faultStore) UpdateUser(ctx context.Context, id string, updates ...domain.UserUpdate) (*domain.User, error) {
	if f.updateUserErr != nil {
		return nil, f.updateUserErr
	}
	return f.Store.UpdateUser(ctx, id, updates...)
}

func seedUser(t *testing.T, s store.Store, id, username string) *domain.User {
	t.Helper()
	u := storetest.NewUser(id, username)
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func seedModel(t *testing.T, s store.Store, id, name, creator string) *domain.Model {
	t.Helper()
	m := storetest.NewModel(id, name, creator)
	require.NoError(t, s.CreateModel(context.Background(), m))
	return m
}

func loadUser(t *testing.T, s store.Store, id string) *domain.User {
	t.Helper()
	u, err := s.GetUser(context.Background(), id)
	require.NoError(t, err)
	return u
}

func loadModel(t *testing.T, s store.Store, id string) *domain.Model {
	t.Helper()
	m, err := s.GetModel(context.Background(), id)
	require.NoError(t, err)
	return m
}
