package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

// MediaTypePDF is the only media type accepted for upload.
const MediaTypePDF = "application/pdf"

var (
	// ErrInvalidMediaType rejects uploads whose declared media type is not PDF.
	ErrInvalidMediaType = errors.New("only PDF uploads are accepted")
	// ErrNotFound means no document record exists for the given id.
	ErrNotFound = errors.New("document not found")
	// ErrBlobMissing means the record exists but its blob is gone from
	// storage, or the stored content no longer matches the recorded size.
	// The record is left in place so the inconsistency stays visible; repair
	// is an out-of-band decision.
	ErrBlobMissing = errors.New("document content missing from storage")
	// ErrReaderNil rejects uploads without a content stream.
	ErrReaderNil = errors.New("reader is nil")

	// ErrStorageWrite, ErrStorageRead and ErrStorageDelete wrap blob store
	// I/O failures.
	ErrStorageWrite  = errors.New("blob write failed")
	ErrStorageRead   = errors.New("blob read failed")
	ErrStorageDelete = errors.New("blob delete failed")
	// ErrMetadataWrite and ErrMetadata wrap metadata store failures.
	ErrMetadataWrite = errors.New("metadata write failed")
	ErrMetadata      = errors.New("metadata store error")
)

// DocumentService defines the use cases for handling documents.
type DocumentService interface {
	// Upload validates the media type, writes the content to blob storage
	// under a freshly generated stored name, then inserts the metadata
	// record. The stored size is the measured byte count, never a
	// client-declared value. A blob written for a failed insert is removed
	// best-effort before the error is returned.
	Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string) (*model.Document, error)

	// List returns every document record in insertion order (id ascending).
	// Blob existence is not checked here; it is verified lazily on Download
	// and Delete.
	List(ctx context.Context) ([]model.Document, error)

	// Download returns the record and a streaming handle for its content.
	// Returns ErrBlobMissing when the record exists but the blob does not,
	// or when the blob's size no longer matches the record.
	Download(ctx context.Context, id int64) (*model.Document, io.ReadCloser, error)

	// Delete removes the blob first, then the metadata record. An
	// already-absent blob counts as deleted; a blob-delete failure leaves
	// the record untouched so the operation can be retried.
	Delete(ctx context.Context, id int64) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store storage.BlobStore
	repo  repository.DocumentRepository
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.BlobStore, repo repository.DocumentRepository) DocumentService {
	return &documentService{store: store, repo: repo}
}

func (s *documentService) Upload(ctx context.Context, r io.Reader, originalFilename string, contentType string) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	// Validation gate runs before any storage write so a rejected upload
	// never leaves a blob behind.
	if !isPDF(contentType) {
		return nil, ErrInvalidMediaType
	}

	key := newStoredName(originalFilename)

	objInfo, err := s.store.Put(ctx, key, r, storage.PutObjectOptions{
		Size:        -1,
		ContentType: MediaTypePDF,
		Metadata: map[string]string{
			"original-filename": originalFilename,
		},
	})
	if err != nil {
		// A failed write may leave a partial blob; removal is best effort
		// and never masks the write error.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logCleanupFailure("partial_blob_cleanup_failed", key, delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}

	doc := &model.Document{
		Filename:   originalFilename,
		StoredName: key,
		Size:       objInfo.Size,
		CreatedAt:  time.Now().UTC(),
	}
	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		// The blob is durable but has no record, i.e. an orphan.
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logCleanupFailure("orphan_blob_cleanup_failed", key, delErr)
		}
		return nil, fmt.Errorf("%w: %v", ErrMetadataWrite, err)
	}
	return stored, nil
}

func (s *documentService) List(ctx context.Context) ([]model.Document, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	return items, nil
}

func (s *documentService) Download(ctx context.Context, id int64) (*model.Document, io.ReadCloser, error) {
	doc, err := s.findByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.store.Exists(ctx, doc.StoredName)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	if !ok {
		return nil, nil, ErrBlobMissing
	}

	rc, info, err := s.store.Get(ctx, doc.StoredName)
	if err != nil {
		// The blob can vanish between the existence check and the open.
		if errors.Is(err, storage.ErrNotExist) {
			return nil, nil, ErrBlobMissing
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	// A blob shorter or longer than the record means the content was tampered
	// with out-of-band. Report it instead of streaming a truncated body.
	if info.Size != doc.Size {
		rc.Close()
		return nil, nil, ErrBlobMissing
	}
	return doc, rc, nil
}

func (s *documentService) Delete(ctx context.Context, id int64) error {
	doc, err := s.findByID(ctx, id)
	if err != nil {
		return err
	}

	// Blob before record: the only transient state this ordering can leave
	// is a record pointing at a missing blob, which Download surfaces as
	// ErrBlobMissing. The reverse ordering could strand an unreachable blob.
	if err := s.store.Delete(ctx, doc.StoredName); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageDelete, err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	return nil
}

func (s *documentService) findByID(ctx context.Context, id int64) (*model.Document, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrMetadata, err)
	}
	return doc, nil
}

func isPDF(contentType string) bool {
	mt := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mt = parsed
	}
	return mt == MediaTypePDF
}

// newStoredName derives a storage key from the current time and the original
// filename. Millisecond timestamps alone collide for concurrent uploads, so a
// random fragment keeps same-tick names distinct. Keys are independent of row
// ids, so a half-finished delete can never collide with a future insert.
func newStoredName(originalFilename string) string {
	base := sanitizeFilename(filepath.Base(originalFilename))
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], base)
}

// sanitizeFilename keeps stored names safe as flat blob keys regardless of
// what the client called the file. Dot runs collapse to a single dot so the
// key never contains "..", which every blob driver may refuse.
func sanitizeFilename(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			out = append(out, r)
		case r == '-' || r == '_':
			out = append(out, r)
		case r == '.':
			if len(out) == 0 || out[len(out)-1] != '.' {
				out = append(out, r)
			}
		default:
			out = append(out, '_')
		}
	}
	s := string(out)
	if s == "" || s == "." {
		return "document.pdf"
	}
	return s
}

func logCleanupFailure(event, key string, err error) {
	b, mErr := json.Marshal(map[string]any{
		"ts":          time.Now().UTC().Format(time.RFC3339Nano),
		"level":       "warn",
		"component":   "service",
		"event":       event,
		"stored_name": key,
		"error":       err.Error(),
	})
	if mErr != nil {
		return
	}
	log.SetFlags(0)
	log.Println(string(b))
}
