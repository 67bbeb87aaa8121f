package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// fsStore implements BlobStore on the local filesystem. Each blob is one
// regular file under root. Writes go through a temp file and a rename so a
// crashed upload never leaves a half-written blob under its final key.
type fsStore struct {
	root string
}

// NewFilesystem returns a filesystem-backed blob store rooted at dir,
// creating the directory if needed.
func NewFilesystem(dir string) (BlobStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &fsStore{root: dir}, nil
}

// cleanKey rejects keys that would escape the root directory.
func (s *fsStore) cleanKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") || strings.HasPrefix(key, "/") || strings.ContainsRune(key, os.PathSeparator) {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.root, key), nil
}

func (s *fsStore) Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error) {
	path, err := s.cleanKey(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return ObjectInfo{}, err
	}
	defer os.Remove(tmp.Name())

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return ObjectInfo{}, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return ObjectInfo{}, err
	}
	if err := tmp.Close(); err != nil {
		return ObjectInfo{}, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return ObjectInfo{}, err
	}

	st, err := os.Stat(path)
	if err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{
		Key:          key,
		Size:         size,
		ContentType:  opt.ContentType,
		LastModified: st.ModTime(),
	}, nil
}

func (s *fsStore) Exists(ctx context.Context, key string) (bool, error) {
	path, err := s.cleanKey(key)
	if err != nil {
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *fsStore) Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	path, err := s.cleanKey(key)
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ObjectInfo{}, ErrNotExist
		}
		return nil, ObjectInfo{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, ObjectInfo{}, err
	}
	info := ObjectInfo{
		Key:          key,
		Size:         st.Size(),
		LastModified: st.ModTime(),
	}
	return f, info, nil
}

// Delete removes the blob file. A key that is already gone counts as success.
func (s *fsStore) Delete(ctx context.Context, key string) error {
	path, err := s.cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
