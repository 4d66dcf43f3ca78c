package sse

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(slog.New(slog.DiscardHandler))
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case e := <-c.EventChan:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case e := <-c.EventChan:
		t.Fatalf("unexpected event %s", e.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestManager_ConnectDisconnect(t *testing.T) {
	m := newTestManager(t)

	c := m.Connect(Filter{})
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, 1, m.ClientCount())

	m.Disconnect(c.ID)
	assert.Equal(t, 0, m.ClientCount())

	// Unknown ids are ignored.
	m.Disconnect("nope")
}

func TestManager_BroadcastFilters(t *testing.T) {
	m := newTestManager(t)

	all := m.Connect(Filter{})
	bob := m.Connect(Filter{UserID: "usr-bob"})
	watcher := m.Connect(Filter{ModelID: "mdl-1"})
	other := m.Connect(Filter{ModelID: "mdl-2"})

	m.Emit(NewRightsEvent(EventRightsGranted, "mdl-1", "usr-bob", "bob", domain.RightsComplete))

	for _, c := range []*Client{all, bob, watcher} {
		e := receive(t, c)
		assert.Equal(t, EventRightsGranted, e.Type)
		data, ok := e.Data.(RightsEventData)
		require.True(t, ok)
		assert.Equal(t, "read+write", data.Rights)
	}
	assertNoEvent(t, other)
}

func TestManager_EmitAfterShutdown(t *testing.T) {
	m := NewManager(slog.New(slog.DiscardHandler))
	c := m.Connect(Filter{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))

	// Dropped silently.
	m.Emit(NewModelDeletedEvent("mdl-1"))

	_, open := <-c.EventChan
	assert.False(t, open)
	assert.Equal(t, 0, m.ClientCount())

	// Second shutdown is a no-op.
	require.NoError(t, m.Shutdown(ctx))
}

func TestFilter_Matches(t *testing.T) {
	f := Filter{ModelID: "mdl-1"}
	assert.True(t, Filter{}.matches(NewModelDeletedEvent("mdl-2")))
	assert.False(t, f.matches(NewModelDeletedEvent("mdl-2")))
	assert.True(t, f.matches(NewModelDeletedEvent("mdl-1")))
}
