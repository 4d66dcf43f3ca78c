// Package sse implements Server-Sent Events for live collection and rights updates.
package sse

import (
	"time"

	"github.com/modelshare/modelshare-server/internal/domain"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	EventModelCreated EventType = "model.created"
	EventModelUpdated EventType = "model.updated"
	EventModelDeleted EventType = "model.deleted"

	EventUserCreated EventType = "user.created"
	EventUserUpdated EventType = "user.updated"
	EventUserDeleted EventType = "user.deleted"

	EventCommentCreated EventType = "comment.created"
	EventCommentUpdated EventType = "comment.updated"
	EventCommentDeleted EventType = "comment.deleted"

	EventFileCreated EventType = "file.created"
	EventFileUpdated EventType = "file.updated"
	EventFileDeleted EventType = "file.deleted"

	// EventRightsGranted is sent after both sides of a grant were written.
	EventRightsGranted EventType = "rights.granted"
	// EventRightsRevoked is sent after both sides of a revoke were written.
	EventRightsRevoked EventType = "rights.revoked"
	// EventRightsRepaired summarizes a repair pass.
	EventRightsRepaired EventType = "rights.repaired"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// Filtering fields. Empty means "broadcast to all".
	UserID  string `json:"-"`
	ModelID string `json:"-"`
}

func newEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data, Timestamp: time.Now().UTC()}
}

// ModelEventData is the payload for model create and update events.
// Reader and writer sets are left out.
type ModelEventData struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Creator    string    `json:"creator"`
	Tags       []string  `json:"tags"`
	PublicRead bool      `json:"publicRead"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DeletedEventData is the payload for every delete event.
type DeletedEventData struct {
	ID        string    `json:"id"`
	DeletedAt time.Time `json:"deletedAt"`
}

// UserEventData is the payload for user events.
type UserEventData struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CommentEventData is the payload for comment events.
type CommentEventData struct {
	Comment *domain.Comment `json:"comment"`
}

// FileEventData is the payload for file events. Content is never sent.
type FileEventData struct {
	ID          string `json:"id"`
	Size        int    `json:"size"`
	ContentType string `json:"contentType"`
}

// RightsEventData is the payload for grant and revoke events.
type RightsEventData struct {
	ModelID  string `json:"modelId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Rights   string `json:"rights"`
}

// RepairEventData is the payload for rights repair events.
type RepairEventData struct {
	Fixed int `json:"fixed"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"serverTime"`
}

// NewModelEvent builds a model created or updated event.
func NewModelEvent(t EventType, m *domain.Model) Event {
	e := newEvent(t, ModelEventData{
		ID:         m.ID,
		Name:       m.Name,
		Creator:    m.Creator,
		Tags:       m.Tags,
		PublicRead: m.PublicRead,
		UpdatedAt:  m.UpdatedAt,
	})
	e.ModelID = m.ID
	return e
}

// NewModelDeletedEvent builds a model deletion event.
func NewModelDeletedEvent(modelID string) Event {
	e := newEvent(EventModelDeleted, DeletedEventData{ID: modelID, DeletedAt: time.Now().UTC()})
	e.ModelID = modelID
	return e
}

// NewUserEvent builds a user created or updated event.
func NewUserEvent(t EventType, u *domain.User) Event {
	e := newEvent(t, UserEventData{ID: u.ID, Username: u.Username})
	e.UserID = u.ID
	return e
}

// NewUserDeletedEvent builds a user deletion event.
func NewUserDeletedEvent(userID string) Event {
	return newEvent(EventUserDeleted, DeletedEventData{ID: userID, DeletedAt: time.Now().UTC()})
}

// NewCommentEvent builds a comment created or updated event.
func NewCommentEvent(t EventType, c *domain.Comment) Event {
	e := newEvent(t, CommentEventData{Comment: c})
	e.ModelID = c.ModelID
	return e
}

// NewCommentDeletedEvent builds a comment deletion event.
func NewCommentDeletedEvent(c *domain.Comment) Event {
	e := newEvent(EventCommentDeleted, DeletedEventData{ID: c.ID, DeletedAt: time.Now().UTC()})
	e.ModelID = c.ModelID
	return e
}

// NewFileEvent builds a file created or updated event.
func NewFileEvent(t EventType, f *domain.File) Event {
	return newEvent(t, FileEventData{ID: f.ID, Size: f.Size, ContentType: f.ContentType})
}

// NewFileDeletedEvent builds a file deletion event.
func NewFileDeletedEvent(fileID string) Event {
	return newEvent(EventFileDeleted, DeletedEventData{ID: fileID, DeletedAt: time.Now().UTC()})
}

// NewRightsEvent builds a grant or revoke event. It is delivered to clients
// watching the model and to the user whose rights changed.
func NewRightsEvent(t EventType, modelID, userID, username string, rights domain.Rights) Event {
	e := newEvent(t, RightsEventData{
		ModelID:  modelID,
		UserID:   userID,
		Username: username,
		Rights:   rights.String(),
	})
	e.ModelID = modelID
	e.UserID = userID
	return e
}

// NewRepairEvent summarizes a rights repair pass.
func NewRepairEvent(fixed int) Event {
	return newEvent(EventRightsRepaired, RepairEventData{Fixed: fixed})
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now().UTC()
	return Event{Type: EventHeartbeat, Data: HeartbeatEventData{ServerTime: now}, Timestamp: now}
}
