// Package storetest holds a behavioral suite every store.Store backend must pass.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/modelshare/modelshare-server/internal/domain"
	"github.com/modelshare/modelshare-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory opens a fresh, empty store for one subtest.
type Factory func(t *testing.T) store.Store

// Run exercises the store contract against the backend produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("UsernameIsUnique", func(t *testing.T) { usernameIsUnique(t, newStore(t)) })
	t.Run("ResolveUserID", func(t *testing.T) { resolveUserID(t, newStore(t)) })
	t.Run("TypedUserUpdates", func(t *testing.T) { typedUserUpdates(t, newStore(t)) })
	t.Run("ModelRoundTrip", func(t *testing.T) { modelRoundTrip(t, newStore(t)) })
	t.Run("PopulateSkipsMissing", func(t *testing.T) { populateSkipsMissing(t, newStore(t)) })
	t.Run("SlugIsUnique", func(t *testing.T) { slugIsUnique(t, newStore(t)) })
	t.Run("SlugPrefixScan", func(t *testing.T) { slugPrefixScan(t, newStore(t)) })
	t.Run("FileContent", func(t *testing.T) { fileContent(t, newStore(t)) })
	t.Run("DeleteIsIdempotent", func(t *testing.T) { deleteIsIdempotent(t, newStore(t)) })
}

// NewUser builds a user ready to store.
func NewUser(id, username string) *domain.User {
	u := &domain.User{Username: username, Email: username + "@example.com"}
	u.ID = id
	u.InitTimestamps()
	return u
}

// NewModel builds a model ready to store.
func NewModel(id, name, creator string) *domain.Model {
	m := &domain.Model{Name: name, Creator: creator, CreationDate: time.Now().UTC(), Tags: []string{}}
	m.ID = id
	m.InitTimestamps()
	return m
}

// NewComment builds a comment ready to store.
func NewComment(id, modelID, author, slug string) *domain.Comment {
	c := &domain.Comment{ModelID: modelID, Author: author, Slug: slug, PostedDate: time.Now().UTC()}
	c.ID = id
	c.InitTimestamps()
	return c
}

func usernameIsUnique(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, NewUser("usr-1", "alice")))

	err := s.CreateUser(ctx, NewUser("usr-2", "alice"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)
}

func resolveUserID(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, NewUser("usr-1", "alice")))

	id, err := s.ResolveUserID(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "usr-1", id)

	_, err = s.ResolveUserID(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	u, err := s.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
}

func typedUserUpdates(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, NewUser("usr-1", "alice")))

	_, err := s.UpdateUser(ctx, "usr-1",
		domain.GrantModelRights{ModelID: "mdl-1", Rights: domain.RightsComplete},
		domain.GrantModelRights{ModelID: "mdl-2", Rights: domain.RightRead},
		domain.SetPasswordHash{Hash: "hash"},
	)
	require.NoError(t, err)

	_, err = s.UpdateUser(ctx, "usr-1", domain.RevokeModelRights{ModelID: "mdl-1", Rights: domain.RightWrite})
	require.NoError(t, err)

	u, err := s.GetUser(ctx, "usr-1")
	require.NoError(t, err)
	assert.Equal(t, domain.IDSet{"mdl-1", "mdl-2"}, u.ReadModels)
	assert.Empty(t, u.WriteModels)
	assert.Equal(t, "hash", u.PasswordHash)

	_, err = s.UpdateUser(ctx, "usr-missing", domain.SetEmail{Email: "x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func modelRoundTrip(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateModel(ctx, NewModel("mdl-1", "teapot", "bob")))

	_, err := s.UpdateModel(ctx, "mdl-1",
		domain.SetTags{Tags: []string{"Kitchen", "kitchen"}},
		domain.SetPublicWrite{Public: true},
		domain.GrantUserRights{UserID: "usr-1", Rights: domain.RightsComplete},
	)
	require.NoError(t, err)

	m, err := s.GetModel(ctx, "mdl-1")
	require.NoError(t, err)
	assert.Equal(t, "teapot", m.Name)
	assert.Equal(t, []string{"kitchen"}, m.Tags)
	assert.True(t, m.PublicWrite)
	assert.False(t, m.PublicRead)
	assert.Equal(t, domain.IDSet{"usr-1"}, m.Readers)
	assert.Equal(t, domain.IDSet{"usr-1"}, m.Writers)

	byCreator, err := s.ListModels(ctx, store.Query[domain.Model]{
		Filter: func(m *domain.Model) bool { return m.Creator == "bob" },
	})
	require.NoError(t, err)
	assert.Len(t, byCreator, 1)
}

func populateSkipsMissing(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateModel(ctx, NewModel("mdl-1", "a", "bob")))
	require.NoError(t, s.CreateModel(ctx, NewModel("mdl-2", "b", "bob")))

	models, err := s.GetModelsByIDs(ctx, []string{"mdl-2", "mdl-gone", "mdl-1"})
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "mdl-2", models[0].ID)
	assert.Equal(t, "mdl-1", models[1].ID)
}

func slugIsUnique(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateComment(ctx, NewComment("cmt-1", "mdl-1", "bob", "bobT1")))

	err := s.CreateComment(ctx, NewComment("cmt-2", "mdl-1", "bob", "bobT1"))
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = s.GetComment(ctx, "cmt-2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func slugPrefixScan(t *testing.T, s store.Store) {
	ctx := context.Background()
	for _, c := range []*domain.Comment{
		NewComment("cmt-1", "mdl-1", "bob", "bobT1"),
		NewComment("cmt-3", "mdl-1", "carol", "bobT1/aliceT2/carolT3"),
		NewComment("cmt-2", "mdl-1", "alice", "bobT1/aliceT2"),
		NewComment("cmt-4", "mdl-1", "bob", "bobT1~cmt-4"),
		NewComment("cmt-5", "mdl-1", "dave", "daveT5"),
	} {
		require.NoError(t, s.CreateComment(ctx, c))
	}

	sub, err := s.ListCommentsBySlugPrefix(ctx, domain.SubtreePrefix("bobT1"))
	require.NoError(t, err)
	require.Len(t, sub, 2)
	assert.Equal(t, "bobT1/aliceT2", sub[0].Slug)
	assert.Equal(t, "bobT1/aliceT2/carolT3", sub[1].Slug)

	_, err = s.UpdateComment(ctx, "cmt-2", domain.SetText{Text: "<b>edited</b>", Markdown: "**edited**"})
	require.NoError(t, err)
	c, err := s.GetComment(ctx, "cmt-2")
	require.NoError(t, err)
	assert.Equal(t, "<b>edited</b>", c.Text)
	assert.Equal(t, "**edited**", c.Markdown)
	assert.Equal(t, "bobT1/aliceT2", c.Slug)
}

func fileContent(t *testing.T, s store.Store) {
	ctx := context.Background()
	f := &domain.File{Content: "solid cube", Size: 10}
	f.ID = "fil-1"
	f.InitTimestamps()
	require.NoError(t, s.CreateFile(ctx, f))

	_, err := s.UpdateFile(ctx, "fil-1", domain.SetContent{Content: "solid sphere", Size: 12, ContentType: "text/plain"})
	require.NoError(t, err)

	got, err := s.GetFile(ctx, "fil-1")
	require.NoError(t, err)
	assert.Equal(t, "solid sphere", got.Content)
	assert.Equal(t, 12, got.Size)

	files, err := s.ListFiles(ctx, store.Query[domain.File]{})
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func deleteIsIdempotent(t *testing.T, s store.Store) {
	ctx := context.Background()
	require.NoError(t, s.CreateUser(ctx, NewUser("usr-1", "alice")))

	require.NoError(t, s.DeleteUser(ctx, "usr-1"))
	require.NoError(t, s.DeleteUser(ctx, "usr-1"))
	require.NoError(t, s.DeleteModel(ctx, "mdl-missing"))
	require.NoError(t, s.DeleteComment(ctx, "cmt-missing"))
	require.NoError(t, s.DeleteFile(ctx, "fil-missing"))

	// The username is free again.
	require.NoError(t, s.CreateUser(ctx, NewUser("usr-2", "alice")))
}
