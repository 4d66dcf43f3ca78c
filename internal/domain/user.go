package domain

import "strings"

// User is a registered account. ReadModels and WriteModels hold the ids of
// models the user was granted personally; each entry should be mirrored by
// the model's Readers and Writers.
type User struct {
	Document
	Username     string `json:"username"`
	PasswordHash string `json:"password,omitempty"` // bcrypt hash, filtered from API responses
	Email        string `json:"email"`
	ReadModels   IDSet  `json:"readModels"`
	WriteModels  IDSet  `json:"writeModels"`
}

// RightsOn returns the personal rights the user holds on a model.
func (u *User) RightsOn(modelID string) Rights {
	var r Rights
	if u.ReadModels.Contains(modelID) {
		r |= RightRead
	}
	if u.WriteModels.Contains(modelID) {
		r |= RightWrite
	}
	return r
}

// NormalizeUsername trims surrounding whitespace. Usernames are case sensitive.
func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// UserUpdate is a single typed mutation of a User document.
// The set of implementations is closed to this package.
type UserUpdate interface {
	applyUser(u *User) bool
}

// SetEmail replaces the email address.
type SetEmail struct{ Email string }

// SetPasswordHash replaces the stored password hash.
type SetPasswordHash struct{ Hash string }

// GrantModelRights adds a model to the user's read and/or write sets.
type GrantModelRights struct {
	ModelID string
	Rights  Rights
}

// RevokeModelRights removes a model from the user's read and/or write sets.
type RevokeModelRights struct {
	ModelID string
	Rights  Rights
}

func (s SetEmail) applyUser(u *User) bool {
	if u.Email == s.Email {
		return false
	}
	u.Email = s.Email
	return true
}

func (s SetPasswordHash) applyUser(u *User) bool {
	if u.PasswordHash == s.Hash {
		return false
	}
	u.PasswordHash = s.Hash
	return true
}

func (g GrantModelRights) applyUser(u *User) bool {
	return applyRights(&u.ReadModels, &u.WriteModels, g.ModelID, g.Rights, true)
}

func (r RevokeModelRights) applyUser(u *User) bool {
	return applyRights(&u.ReadModels, &u.WriteModels, r.ModelID, r.Rights, false)
}

// Apply runs the updates in order and reports whether any of them changed the user.
// UpdatedAt is refreshed when something changed.
func (u *User) Apply(updates ...UserUpdate) bool {
	changed := false
	for _, up := range updates {
		if up.applyUser(u) {
			changed = true
		}
	}
	if changed {
		u.Touch()
	}
	return changed
}
