package sqlite

import (
	"context"
	"database/sql"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentSQLite is a SQLite implementation of repository.DocumentRepository
// backed by the CGo-free modernc driver. Ids come from an AUTOINCREMENT
// column, so they increase monotonically and are never reused after deletion.
type DocumentSQLite struct {
	db *sql.DB
}

// NewDocumentSQLite creates a new DocumentSQLite repository.
func NewDocumentSQLite(db *sql.DB) *DocumentSQLite {
	return &DocumentSQLite{db: db}
}

var _ repository.DocumentRepository = (*DocumentSQLite)(nil)

// Create inserts a new document row and returns the stored record with the
// database-assigned id.
func (r *DocumentSQLite) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	const q = `
		INSERT INTO documents (original_name, stored_name, size, created_at)
		VALUES (?, ?, ?, ?)
	`
	res, err := r.db.ExecContext(ctx, q,
		doc.Filename,
		doc.StoredName,
		doc.Size,
		doc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	out := *doc
	out.ID = id
	return &out, nil
}

// FindByID fetches a single document by its id.
func (r *DocumentSQLite) FindByID(ctx context.Context, id int64) (*model.Document, error) {
	const q = `
		SELECT id, original_name, stored_name, size, created_at
		FROM documents
		WHERE id = ?
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Document
	if err := row.Scan(
		&d.ID,
		&d.Filename,
		&d.StoredName,
		&d.Size,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns all documents in insertion order.
func (r *DocumentSQLite) List(ctx context.Context) ([]model.Document, error) {
	const q = `
		SELECT id, original_name, stored_name, size, created_at
		FROM documents
		ORDER BY id ASC
	`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		var d model.Document
		if err := rows.Scan(
			&d.ID,
			&d.Filename,
			&d.StoredName,
			&d.Size,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// Delete removes a document by id, tolerating an already-absent row.
func (r *DocumentSQLite) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM documents WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	_, _ = res.RowsAffected()
	return nil
}
