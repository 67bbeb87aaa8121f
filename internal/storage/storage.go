// Package storage contains blob storage abstractions for document content.
// The durable backends (filesystem, MinIO) stream reader contents without
// buffering whole objects in memory.
package storage

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotExist is returned by Get when no blob is stored under the given key.
// Delete never returns it: removing an absent blob already satisfies the
// caller's goal state and is treated as success.
var ErrNotExist = errors.New("blob does not exist")

// ObjectInfo contains basic information about a stored blob.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// BlobStore is the interface all blob backends implement.
// Keys are opaque stored names generated by the service layer; a key is
// written at most once and never rewritten.
type BlobStore interface {
	// Put streams the reader's contents to the backend under key and reports
	// the number of bytes actually written in the returned info.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Exists reports whether a blob is stored under key.
	Exists(ctx context.Context, key string) (bool, error)
	// Get retrieves a blob's content as a streaming reader alongside its info.
	// Returns ErrNotExist when the key is absent.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes a blob by key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// PutObjectOptions define optional parameters for uploading blobs.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation counts bytes as it writes.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}
