package api

import (
	"time"

	"github.com/modelshare/modelshare-server/internal/domain"
)

// UserView is a user as clients see it. The password hash never leaves
// the server.
type UserView struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	ReadModels  []string  `json:"readModels"`
	WriteModels []string  `json:"writeModels"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toUserView(u *domain.User) *UserView {
	if u == nil {
		return nil
	}
	return &UserView{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		ReadModels:  nonNil(u.ReadModels),
		WriteModels: nonNil(u.WriteModels),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// UserSummary is a user in populated rights listings, without its own
// rights sets.
type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func toUserSummaries(users []*domain.User) []UserSummary {
	out := make([]UserSummary, len(users))
	for i, u := range users {
		out[i] = UserSummary{ID: u.ID, Username: u.Username, Email: u.Email}
	}
	return out
}

func toUserViews(users []*domain.User) []*UserView {
	out := make([]*UserView, len(users))
	for i, u := range users {
		out[i] = toUserView(u)
	}
	return out
}

// ModelView is a model with its reader and writer sets.
type ModelView struct {
	ModelSummary
	Readers []string `json:"readers"`
	Writers []string `json:"writers"`
}

// ModelSummary is a model without reader and writer sets, used by public
// and populated listings.
type ModelSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	File         string    `json:"file"`
	Creator      string    `json:"creator"`
	CreationDate time.Time `json:"creationDate"`
	Thumbnail    string    `json:"thumbnail"`
	Tags         []string  `json:"tags"`
	PublicRead   bool      `json:"publicRead"`
	PublicWrite  bool      `json:"publicWrite"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toModelSummary(m *domain.Model) ModelSummary {
	return ModelSummary{
		ID:           m.ID,
		Name:         m.Name,
		File:         m.File,
		Creator:      m.Creator,
		CreationDate: m.CreationDate,
		Thumbnail:    m.Thumbnail,
		Tags:         nonNil(m.Tags),
		PublicRead:   m.PublicRead,
		PublicWrite:  m.PublicWrite,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toModelView(m *domain.Model) *ModelView {
	if m == nil {
		return nil
	}
	return &ModelView{
		ModelSummary: toModelSummary(m),
		Readers:      nonNil(m.Readers),
		Writers:      nonNil(m.Writers),
	}
}

func toModelViews(models []*domain.Model) []*ModelView {
	out := make([]*ModelView, len(models))
	for i, m := range models {
		out[i] = toModelView(m)
	}
	return out
}

func toModelSummaries(models []*domain.Model) []ModelSummary {
	out := make([]ModelSummary, len(models))
	for i, m := range models {
		out[i] = toModelSummary(m)
	}
	return out
}

// FileSummary is file metadata without content.
type FileSummary struct {
	ID          string    `json:"id"`
	Size        int       `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	BlurHash    string    `json:"blurHash,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FileView is a file with its content.
type FileView struct {
	FileSummary
	Content string `json:"content"`
}

func toFileSummary(f *domain.File) FileSummary {
	return FileSummary{
		ID:          f.ID,
		Size:        f.Size,
		ContentType: f.ContentType,
		BlurHash:    f.BlurHash,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

func toFileView(f *domain.File) *FileView {
	if f == nil {
		return nil
	}
	return &FileView{FileSummary: toFileSummary(f), Content: f.Content}
}

func nonNil[S ~[]string](s S) []string {
	if s == nil {
		return []string{}
	}
	return []string(s)
}
