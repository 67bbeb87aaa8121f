// Package repository contains the data access layer for document metadata.
// Implementations live in subpackages (postgres, sqlite) and contain SQL only,
// no business logic.
package repository

import (
	"context"

	"docvault/internal/model"
)

// DocumentRepository defines data access for document metadata records.
type DocumentRepository interface {
	// Create inserts a new document record. The id is assigned by the
	// database (monotonically increasing, never reused) and returned on the
	// stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its id. Returns sql.ErrNoRows when the
	// id does not exist.
	FindByID(ctx context.Context, id int64) (*model.Document, error)

	// List returns every document ordered by id ascending (insertion order).
	List(ctx context.Context) ([]model.Document, error)

	// Delete removes a document by id. It returns nil if the row was deleted
	// or did not exist.
	Delete(ctx context.Context, id int64) error
}
