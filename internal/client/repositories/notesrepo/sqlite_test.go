package notesrepo

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/notes"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file:notesrepo?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS notes (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  modified_at INTEGER NOT NULL,
  version INTEGER NOT NULL,
  deleted INTEGER NOT NULL DEFAULT 0,
  synced INTEGER NOT NULL DEFAULT 0
);
DELETE FROM notes;
`)
	require.NoError(t, err)
	return db
}

func TestUpsert_InsertAndUpdate(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	n := notes.New("first", "body")
	require.NoError(t, repo.Upsert(ctx, n))

	n.Body = "edited"
	n.Touch()
	require.NoError(t, repo.Upsert(ctx, n))

	got, err := repo.GetByID(ctx, n.ID)
	require.NoError(t, err)
	require.Equal(t, "edited", got.Body)
	require.Equal(t, n.Version, got.Version)
}

func TestGetByID_NotFound(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDeleteByID_Tombstones(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	n := notes.New("doomed", "x")
	require.NoError(t, repo.Upsert(ctx, n))
	require.NoError(t, repo.DeleteByID(ctx, n.ID))

	// Gone from the live view.
	_, err := repo.GetByID(ctx, n.ID)
	require.ErrorIs(t, err, common.ErrNotFound)

	live, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, live)

	// But the tombstone survives for sync, with bumped metadata.
	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].Deleted)
	require.Equal(t, n.Version+1, all[0].Version)
	require.GreaterOrEqual(t, all[0].ModifiedAt, n.ModifiedAt)
}

func TestDeleteByID_MissingOrAlreadyDeleted(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.ErrorIs(t, repo.DeleteByID(ctx, "missing"), common.ErrNotFound)

	n := notes.New("once", "x")
	require.NoError(t, repo.Upsert(ctx, n))
	require.NoError(t, repo.DeleteByID(ctx, n.ID))
	require.ErrorIs(t, repo.DeleteByID(ctx, n.ID), common.ErrNotFound)
}

func TestMarkSynced_SetsFlag(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	n := notes.New("a", "x")
	require.NoError(t, repo.Upsert(ctx, n))
	require.NoError(t, repo.MarkSynced(ctx, n.ID, n.ModifiedAt))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, all[0].Synced)
}

func TestMarkSynced_StaleStampLeavesNoteDirty(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	n := notes.New("a", "x")
	require.NoError(t, repo.Upsert(ctx, n))

	// An acknowledgement for a stamp the note no longer carries is a
	// no-op, so the later edit still gets uploaded.
	require.NoError(t, repo.MarkSynced(ctx, n.ID, n.ModifiedAt-1))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.False(t, all[0].Synced)
}

func TestDeleteByID_ClearsSyncFlag(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	n := notes.New("a", "x")
	require.NoError(t, repo.Upsert(ctx, n))
	require.NoError(t, repo.MarkSynced(ctx, n.ID, n.ModifiedAt))
	require.NoError(t, repo.DeleteByID(ctx, n.ID))

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.True(t, all[0].Deleted)
	require.False(t, all[0].Synced)
}

func TestList_ExcludesTombstones(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	keep := notes.New("keep", "x")
	drop := notes.New("drop", "y")
	require.NoError(t, repo.Upsert(ctx, keep))
	require.NoError(t, repo.Upsert(ctx, drop))
	require.NoError(t, repo.DeleteByID(ctx, drop.ID))

	live, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, live, 1)
	require.Equal(t, keep.ID, live[0].ID)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
}
