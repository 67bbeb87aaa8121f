package model

import "time"

// Document represents a stored PDF in the system.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
//
// StoredName is the blob key inside the storage backend and is never exposed
// to API clients; Filename is the user-supplied display name.
type Document struct {
	ID         int64     `json:"id"`
	Filename   string    `json:"filename"`
	StoredName string    `json:"-"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
}
