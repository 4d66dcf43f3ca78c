package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestModel_FieldUpdates(t *testing.T) {
	m := &Model{Name: "Fox", Creator: "alice"}

	changed := m.Apply(
		SetName{Name: "Low Poly Fox"},
		SetFile{FileID: "fil-1"},
		SetThumbnail{FileID: "fil-2"},
		SetCreator{Username: "bob"},
	)

	assert.True(t, changed)
	assert.Equal(t, "Low Poly Fox", m.Name)
	assert.Equal(t, "fil-1", m.File)
	assert.Equal(t, "fil-2", m.Thumbnail)
	assert.Equal(t, "bob", m.Creator)
	assert.False(t, m.UpdatedAt.IsZero())
}

func TestModel_SetCreationDateStoresUTC(t *testing.T) {
	m := &Model{}
	local := time.Date(2024, 3, 1, 14, 0, 0, 0, time.FixedZone("CET", 3600))

	assert.True(t, m.Apply(SetCreationDate{Date: local}))
	assert.Equal(t, time.UTC, m.CreationDate.Location())
	assert.True(t, m.CreationDate.Equal(local))

	// Same instant in another zone is not a change.
	assert.False(t, m.Apply(SetCreationDate{Date: local.UTC()}))
}

func TestModel_NoopUpdateKeepsTimestamp(t *testing.T) {
	m := &Model{Name: "Fox", PublicRead: true}

	assert.False(t, m.Apply(SetName{Name: "Fox"}, SetPublicRead{Public: true}))
	assert.True(t, m.UpdatedAt.IsZero())
}

func TestFile_SetContent(t *testing.T) {
	f := &File{Content: "old", Size: 3}

	assert.True(t, f.Apply(SetContent{ContentRef: "fil-1", Size: 42, ContentType: "image/png", BlurHash: "LEHV6n"}))
	assert.Empty(t, f.Content)
	assert.Equal(t, "fil-1", f.ContentRef)
	assert.Equal(t, 42, f.Size)
	assert.Equal(t, "LEHV6n", f.BlurHash)
}
