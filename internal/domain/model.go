package domain

import (
	"slices"
	"time"
)

// Model is a shared 3D model document. Readers and Writers hold the ids of
// users granted personal access and mirror the users' ReadModels and WriteModels.
type Model struct {
	Document
	Name         string    `json:"name"`
	File         string    `json:"file"`
	Creator      string    `json:"creator"` // username
	CreationDate time.Time `json:"creationDate"`
	Thumbnail    string    `json:"thumbnail"`
	Tags         []string  `json:"tags"`
	PublicRead   bool      `json:"publicRead"`
	PublicWrite  bool      `json:"publicWrite"`
	Readers      IDSet     `json:"readers"`
	Writers      IDSet     `json:"writers"`
}

// RightsOf returns the personal rights a user holds on the model.
func (m *Model) RightsOf(userID string) Rights {
	var r Rights
	if m.Readers.Contains(userID) {
		r |= RightRead
	}
	if m.Writers.Contains(userID) {
		r |= RightWrite
	}
	return r
}

// CanRead reports whether the user may view the model, either through the
// public flag or a personal grant.
func (m *Model) CanRead(userID string) bool {
	return m.PublicRead || m.Readers.Contains(userID) || m.Writers.Contains(userID)
}

// CanWrite reports whether the user may modify the model.
func (m *Model) CanWrite(userID string) bool {
	return m.PublicWrite || m.Writers.Contains(userID)
}

// ModelUpdate is a single typed mutation of a Model document.
type ModelUpdate interface {
	applyModel(m *Model) bool
}

type (
	// SetName renames the model.
	SetName struct{ Name string }
	// SetFile points the model at a different file document.
	SetFile struct{ FileID string }
	// SetCreator changes the creator username.
	SetCreator struct{ Username string }
	// SetCreationDate overrides the creation date.
	SetCreationDate struct{ Date time.Time }
	// SetThumbnail points the model at a different thumbnail file.
	SetThumbnail struct{ FileID string }
	// SetTags replaces the tag set. Tags are normalized and deduplicated.
	SetTags struct{ Tags []string }
	// SetPublicRead toggles public read access.
	SetPublicRead struct{ Public bool }
	// SetPublicWrite toggles public write access.
	SetPublicWrite struct{ Public bool }
	// GrantUserRights adds a user to the model's readers and/or writers.
	GrantUserRights struct {
		UserID string
		Rights Rights
	}
	// RevokeUserRights removes a user from the model's readers and/or writers.
	RevokeUserRights struct {
		UserID string
		Rights Rights
	}
)

func (s SetName) applyModel(m *Model) bool {
	if m.Name == s.Name {
		return false
	}
	m.Name = s.Name
	return true
}

func (s SetFile) applyModel(m *Model) bool {
	if m.File == s.FileID {
		return false
	}
	m.File = s.FileID
	return true
}

func (s SetCreator) applyModel(m *Model) bool {
	if m.Creator == s.Username {
		return false
	}
	m.Creator = s.Username
	return true
}

func (s SetCreationDate) applyModel(m *Model) bool {
	if m.CreationDate.Equal(s.Date) {
		return false
	}
	m.CreationDate = s.Date.UTC()
	return true
}

func (s SetThumbnail) applyModel(m *Model) bool {
	if m.Thumbnail == s.FileID {
		return false
	}
	m.Thumbnail = s.FileID
	return true
}

func (s SetTags) applyModel(m *Model) bool {
	tags := NormalizeTags(s.Tags)
	if slices.Equal(m.Tags, tags) {
		return false
	}
	m.Tags = tags
	return true
}

func (s SetPublicRead) applyModel(m *Model) bool {
	if m.PublicRead == s.Public {
		return false
	}
	m.PublicRead = s.Public
	return true
}

func (s SetPublicWrite) applyModel(m *Model) bool {
	if m.PublicWrite == s.Public {
		return false
	}
	m.PublicWrite = s.Public
	return true
}

func (g GrantUserRights) applyModel(m *Model) bool {
	return applyRights(&m.Readers, &m.Writers, g.UserID, g.Rights, true)
}

func (r RevokeUserRights) applyModel(m *Model) bool {
	return applyRights(&m.Readers, &m.Writers, r.UserID, r.Rights, false)
}

// Apply runs the updates in order and reports whether the model changed.
func (m *Model) Apply(updates ...ModelUpdate) bool {
	changed := false
	for _, up := range updates {
		if up.applyModel(m) {
			changed = true
		}
	}
	if changed {
		m.Touch()
	}
	return changed
}
