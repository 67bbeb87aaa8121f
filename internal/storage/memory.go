package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"
)

// memStore is an in-memory BlobStore for development and tests.
type memStore struct {
	mux   sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns an empty in-memory blob store.
func NewMemory() BlobStore {
	return &memStore{blobs: make(map[string][]byte)}
}

func (m *memStore) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return ObjectInfo{}, err
	}
	m.mux.Lock()
	m.blobs[key] = b
	m.mux.Unlock()
	return ObjectInfo{
		Key:          key,
		Size:         int64(len(b)),
		ContentType:  opt.ContentType,
		LastModified: time.Now(),
	}, nil
}

func (m *memStore) Exists(ctx context.Context, key string) (bool, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	_, ok := m.blobs[key]
	return ok, nil
}

func (m *memStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	m.mux.RLock()
	defer m.mux.RUnlock()
	b, ok := m.blobs[key]
	if !ok {
		return nil, ObjectInfo{}, ErrNotExist
	}
	info := ObjectInfo{Key: key, Size: int64(len(b))}
	return io.NopCloser(bytes.NewReader(b)), info, nil
}

func (m *memStore) Delete(ctx context.Context, key string) error {
	m.mux.Lock()
	delete(m.blobs, key)
	m.mux.Unlock()
	return nil
}
