package domain

import "time"

// Document provides the identity and timestamp fields every stored entity carries.
// It gets embedded in each collection type so the stores can treat them uniformly.
type Document struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now().UTC()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (d *Document) InitTimestamps() {
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
}

// DocumentID returns the entity id. It lets generic store code reach the
// embedded field through a type parameter.
func (d *Document) DocumentID() string {
	return d.ID
}
