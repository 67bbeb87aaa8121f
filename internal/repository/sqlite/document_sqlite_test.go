package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"docvault/internal/config"
	"docvault/internal/database/migration"
	"docvault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?_time_format=sqlite")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.EnsureMigrated(context.Background(), db, config.DBDriverSQLite, time.UTC, "memory"))
	return db
}

func newDoc(name, key string) *model.Document {
	return &model.Document{
		Filename:   name,
		StoredName: key,
		Size:       1024,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

func TestDocumentSQLite_CreateAndFind(t *testing.T) {
	repo := NewDocumentSQLite(newTestDB(t))
	ctx := context.Background()

	stored, err := repo.Create(ctx, newDoc("report.pdf", "key-report.pdf"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.ID)

	found, err := repo.FindByID(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", found.Filename)
	assert.Equal(t, "key-report.pdf", found.StoredName)
	assert.Equal(t, int64(1024), found.Size)
	assert.False(t, found.CreatedAt.IsZero())
}

func TestDocumentSQLite_FindByID_NotFound(t *testing.T) {
	repo := NewDocumentSQLite(newTestDB(t))

	doc, err := repo.FindByID(context.Background(), 99)

	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.Nil(t, doc)
}

func TestDocumentSQLite_ListOrder(t *testing.T) {
	repo := NewDocumentSQLite(newTestDB(t))
	ctx := context.Background()

	for _, key := range []string{"key-1", "key-2", "key-3"} {
		_, err := repo.Create(ctx, newDoc("same.pdf", key))
		require.NoError(t, err)
	}

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		assert.Greater(t, items[i].ID, items[i-1].ID)
	}
}

func TestDocumentSQLite_IDsNeverReused(t *testing.T) {
	repo := NewDocumentSQLite(newTestDB(t))
	ctx := context.Background()

	first, err := repo.Create(ctx, newDoc("a.pdf", "key-a"))
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, first.ID))

	second, err := repo.Create(ctx, newDoc("b.pdf", "key-b"))
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)
}

func TestDocumentSQLite_Delete(t *testing.T) {
	repo := NewDocumentSQLite(newTestDB(t))
	ctx := context.Background()

	stored, err := repo.Create(ctx, newDoc("a.pdf", "key-a"))
	require.NoError(t, err)

	assert.NoError(t, repo.Delete(ctx, stored.ID))
	// Deleting again is not an error.
	assert.NoError(t, repo.Delete(ctx, stored.ID))

	_, err = repo.FindByID(ctx, stored.ID)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestDocumentSQLite_UniqueStoredName(t *testing.T) {
	repo := NewDocumentSQLite(newTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, newDoc("a.pdf", "dup-key"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newDoc("b.pdf", "dup-key"))
	assert.Error(t, err)
}
