// Package service holds the application operations behind the HTTP routes:
// the rights ledger, the comment hierarchy and plain document CRUD.
package service

import (
	"github.com/modelshare/modelshare-server/internal/sse"
)

// Status is a business outcome reported to clients in the "status" field.
// Outcomes are values, not errors: a missing user is a normal answer.
type Status string

// Outcomes clients depend on. The strings are part of the wire contract.
const (
	StatusOK             Status = "ok"
	StatusUserMissing    Status = "User doesn't exist"
	StatusModelMissing   Status = "Model doesn't exist"
	StatusParentMissing  Status = "Parent doesn't exist"
	StatusCommentMissing Status = "Comment doesn't exist"
	StatusFileMissing    Status = "File doesn't exist"
	StatusUserExists     Status = "User already exists"
)

// OK reports whether the outcome is a success.
func (s Status) OK() bool {
	return s == StatusOK
}

// EventEmitter receives change notifications. sse.Manager implements it.
type EventEmitter interface {
	Emit(event sse.Event)
}

// NoopEmitter discards every event.
type NoopEmitter struct{}

// Emit implements EventEmitter.
func (NoopEmitter) Emit(sse.Event) {}
