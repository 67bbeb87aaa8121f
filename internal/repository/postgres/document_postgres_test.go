package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"docvault/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestDocumentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	doc := &model.Document{
		Filename:   "report.pdf",
		StoredName: "1725000000000-ab12cd34-report.pdf",
		Size:       1024,
		CreatedAt:  now,
	}

	rows := sqlmock.NewRows([]string{"id", "original_name", "stored_name", "size", "created_at"}).
		AddRow(int64(1), doc.Filename, doc.StoredName, doc.Size, doc.CreatedAt)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs(doc.Filename, doc.StoredName, doc.Size, doc.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, doc)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, int64(1), result.ID)
	assert.Equal(t, doc.StoredName, result.StoredName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentPostgres_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "original_name", "stored_name", "size", "created_at"}).
			AddRow(int64(7), "file.pdf", "key-file.pdf", 100, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs(int64(7)).
			WillReturnRows(rows)

		doc, err := repo.FindByID(ctx, 7)

		assert.NoError(t, err)
		assert.NotNil(t, doc)
		assert.Equal(t, int64(7), doc.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM documents WHERE id = ?").
			WithArgs(int64(99)).
			WillReturnError(sql.ErrNoRows)

		doc, err := repo.FindByID(ctx, 99)

		assert.Error(t, err)
		assert.True(t, errors.Is(err, sql.ErrNoRows))
		assert.Nil(t, doc)
	})
}

func TestDocumentPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("ordered by id", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "original_name", "stored_name", "size", "created_at"}).
			AddRow(int64(1), "a.pdf", "key-a.pdf", 100, time.Now()).
			AddRow(int64(2), "b.pdf", "key-b.pdf", 200, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY id ASC").
			WillReturnRows(rows)

		items, err := repo.List(ctx)

		assert.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, int64(1), items[0].ID)
		assert.Equal(t, int64(2), items[1].ID)
	})

	t.Run("empty", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "original_name", "stored_name", "size", "created_at"})

		mock.ExpectQuery("SELECT (.+) FROM documents ORDER BY id ASC").
			WillReturnRows(rows)

		items, err := repo.List(ctx)

		assert.NoError(t, err)
		assert.NotNil(t, items)
		assert.Empty(t, items)
	})
}

func TestDocumentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewDocumentPostgres(db)
	ctx := context.Background()

	t.Run("existing row", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM documents WHERE id = ?").
			WithArgs(int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(ctx, 1))
	})

	t.Run("missing row is not an error", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM documents WHERE id = ?").
			WithArgs(int64(42)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, repo.Delete(ctx, 42))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
