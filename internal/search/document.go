// Package search provides full-text search over models using Bleve, with
// tag and creator filters, fuzzy name matching and tag facets.
package search

import (
	"github.com/modelshare/modelshare-server/internal/domain"
)

// ModelDocument is the structure indexed for each model.
// Reader and writer sets are never indexed.
type ModelDocument struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Creator    string   `json:"creator"`
	Tags       []string `json:"tags,omitempty"`
	PublicRead bool     `json:"public_read"`
	CreatedAt  int64    `json:"created_at"` // Unix milliseconds
}

// ModelToDocument converts a domain model to its search document.
func ModelToDocument(m *domain.Model) *ModelDocument {
	return &ModelDocument{
		ID:         m.ID,
		Name:       m.Name,
		Creator:    m.Creator,
		Tags:       m.Tags,
		PublicRead: m.PublicRead,
		CreatedAt:  m.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map with field names matching the mapping.
func (d *ModelDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"name":        d.Name,
		"creator":     d.Creator,
		"public_read": d.PublicRead,
		"created_at":  d.CreatedAt,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}
