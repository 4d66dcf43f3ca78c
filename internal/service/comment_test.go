package service

import (
	"context"
	"testing"
	"time"

	domainerrors "github.com/modelshare/modelshare-server/internal/errors"
	"github.com/modelshare/modelshare-server/internal/sse"
	"github.com/modelshare/modelshare-server/internal/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCommentTest(t *testing.T) (*CommentService, *recordingEmitter) {
	t.Helper()

	events := &recordingEmitter{}
	return NewCommentService(newTestStore(t), validation.New(), events, testLogger()), events
}

func TestComment_RootAndReplySlugs(t *testing.T) {
	svc, events := setupCommentTest(t)
	ctx := context.Background()

	t1 := time.Date(2024, 3, 1, 12, 0, 0, 123_000_000, time.UTC)
	t2 := time.Date(2024, 3, 1, 12, 5, 0, 0, time.UTC)

	c1, status, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "bob", Text: "nice", PostedDate: t1})
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, "bob2024-03-01T12:00:00.123Z", c1.Slug)
	assert.Empty(t, c1.ParentID)

	c2, status, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "alice", Text: "thanks", PostedDate: t2, ParentID: c1.ID})
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, "bob2024-03-01T12:00:00.123Z/alice2024-03-01T12:05:00.000Z", c2.Slug)
	assert.Equal(t, c1.ID, c2.ParentID)

	assert.Equal(t, []sse.EventType{sse.EventCommentCreated, sse.EventCommentCreated}, events.types())
}

func TestComment_MissingParentWritesNothing(t *testing.T) {
	svc, events := setupCommentTest(t)
	ctx := context.Background()

	c, status, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "alice", Text: "hi", ParentID: "cmt-gone"})
	require.NoError(t, err)
	assert.Equal(t, StatusParentMissing, status)
	assert.Nil(t, c)

	all, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, events.types())
}

func TestComment_AuthorCannotForgeSlugPath(t *testing.T) {
	svc, events := setupCommentTest(t)
	ctx := context.Background()

	posted := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	root, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "bob", Text: "root", PostedDate: posted})
	require.NoError(t, err)

	for _, author := range []string{root.Slug + "/eve", "eve~cmt-1", "", "eve smith"} {
		c, status, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: author, Text: "x", PostedDate: posted})
		require.Error(t, err, author)
		assert.ErrorIs(t, err, domainerrors.ErrValidation, author)
		assert.Empty(t, status)
		assert.Nil(t, c)
	}

	thread, status, err := svc.Thread(ctx, root.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	assert.Len(t, thread, 1)
	assert.Equal(t, []sse.EventType{sse.EventCommentCreated}, events.types())
}

func TestComment_SlugCollisionIsStrengthened(t *testing.T) {
	svc, _ := setupCommentTest(t)
	ctx := context.Background()

	posted := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	in := CreateCommentInput{ModelID: "mdl-1", Author: "bob", Text: "one", PostedDate: posted}

	first, _, err := svc.Create(ctx, in)
	require.NoError(t, err)

	in.Text = "two"
	second, status, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	assert.Equal(t, "bob2024-03-01T12:00:00.000Z", first.Slug)
	assert.Equal(t, "bob2024-03-01T12:00:00.000Z~"+second.ID, second.Slug)

	// A reply under the strengthened comment keeps the prefix property.
	reply, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "carol", Text: "re", ParentID: second.ID})
	require.NoError(t, err)
	assert.True(t, reply.IsDescendantOf(second.Slug))
	assert.False(t, reply.IsDescendantOf(first.Slug))
}

func TestComment_ThreadReturnsSubtreeInSlugOrder(t *testing.T) {
	svc, _ := setupCommentTest(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	root, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "bob", Text: "root", PostedDate: at(0)})
	require.NoError(t, err)
	other, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "bob", Text: "other", PostedDate: at(1)})
	require.NoError(t, err)
	r1, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "alice", Text: "r1", PostedDate: at(2), ParentID: root.ID})
	require.NoError(t, err)
	r2, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "carol", Text: "r2", PostedDate: at(3), ParentID: root.ID})
	require.NoError(t, err)
	r11, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "bob", Text: "r11", PostedDate: at(4), ParentID: r1.ID})
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "dave", Text: "elsewhere", PostedDate: at(5), ParentID: other.ID})
	require.NoError(t, err)

	thread, status, err := svc.Thread(ctx, root.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)

	ids := make([]string, len(thread))
	for i, c := range thread {
		ids[i] = c.ID
	}
	assert.Equal(t, []string{root.ID, r1.ID, r11.ID, r2.ID}, ids)

	_, status, err = svc.Thread(ctx, "cmt-gone")
	require.NoError(t, err)
	assert.Equal(t, StatusCommentMissing, status)
}

func TestComment_TextIsStoredAsSentWithMarkdownRendering(t *testing.T) {
	svc, _ := setupCommentTest(t)
	ctx := context.Background()

	html := "<p>Looks <strong>great</strong></p>"
	c, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "bob", Text: html})
	require.NoError(t, err)
	assert.Equal(t, html, c.Text)
	assert.Equal(t, "Looks **great**", c.Markdown)

	stored, _, err := svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, html, stored.Text)
	assert.Equal(t, "Looks **great**", stored.Markdown)

	c, status, err := svc.SetText(ctx, c.ID, "plain text")
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, "plain text", c.Text)
	assert.Empty(t, c.Markdown)
}

func TestComment_DeleteKeepsReplies(t *testing.T) {
	svc, events := setupCommentTest(t)
	ctx := context.Background()

	root, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "bob", Text: "root"})
	require.NoError(t, err)
	reply, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "alice", Text: "reply", ParentID: root.ID})
	require.NoError(t, err)

	status, err := svc.Delete(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, status)

	got, status, err := svc.Get(ctx, reply.ID)
	require.NoError(t, err)
	require.Equal(t, StatusOK, status)
	assert.Equal(t, root.ID, got.ParentID)

	status, err = svc.Delete(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCommentMissing, status)

	assert.Contains(t, events.types(), sse.EventCommentDeleted)
}

func TestComment_Listings(t *testing.T) {
	svc, _ := setupCommentTest(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	_, _, err := svc.Create(ctx, CreateCommentInput{ModelID: "mdl-2", Author: "alice", Text: "b", PostedDate: base.Add(time.Hour)})
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "bob", Text: "a", PostedDate: base})
	require.NoError(t, err)
	_, _, err = svc.Create(ctx, CreateCommentInput{ModelID: "mdl-1", Author: "alice", Text: "c", PostedDate: base.Add(2 * time.Hour)})
	require.NoError(t, err)

	all, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Text)
	assert.Equal(t, "b", all[1].Text)
	assert.Equal(t, "c", all[2].Text)

	byModel, err := svc.ListByModel(ctx, "mdl-1", 0, 0)
	require.NoError(t, err)
	assert.Len(t, byModel, 2)

	byAuthor, err := svc.ListByAuthor(ctx, "alice", 0, 1)
	require.NoError(t, err)
	require.Len(t, byAuthor, 1)
	assert.Equal(t, "b", byAuthor[0].Text)
}
