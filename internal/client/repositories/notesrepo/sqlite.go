package notesrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/dbx"
	"github.com/dmitrijs2005/notekeeper/internal/notes"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const noteColumns = `id, title, body, created_at, modified_at, version, deleted, synced`

// Upsert inserts or replaces a note by id.
func (r *SQLiteRepository) Upsert(ctx context.Context, n *notes.Note) error {
	query := ` INSERT INTO notes (id, title, body, created_at, modified_at, version, deleted, synced)
			values (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET title = excluded.title,
				body = excluded.body,
				modified_at = excluded.modified_at,
				version = excluded.version,
				deleted = excluded.deleted,
				synced = excluded.synced
	`
	_, err := r.db.ExecContext(ctx, query,
		n.ID, n.Title, n.Body, n.CreatedAt, n.ModifiedAt, n.Version, boolToInt(n.Deleted), boolToInt(n.Synced))
	if err != nil {
		return fmt.Errorf("failed to upsert note: %w", err)
	}
	return nil
}

// All lists every note, tombstones included.
func (r *SQLiteRepository) All(ctx context.Context) ([]*notes.Note, error) {
	return r.selectNotes(ctx, `select `+noteColumns+` from notes order by id`)
}

// List lists live notes only.
func (r *SQLiteRepository) List(ctx context.Context) ([]*notes.Note, error) {
	return r.selectNotes(ctx, `select `+noteColumns+` from notes where deleted=0 order by modified_at desc`)
}

// GetByID returns a single live note.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*notes.Note, error) {
	query := `select ` + noteColumns + ` from notes where deleted=0 and id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	n, err := scanNote(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return n, nil
}

// DeleteByID tombstones a note. It expects exactly one live row to be affected.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, id string) error {
	query := `update notes set deleted=1, synced=0, version=version+1, modified_at=? where id=? and deleted=0`
	res, err := r.db.ExecContext(ctx, query, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrNotFound
	}
	return nil
}

// MarkSynced records that the server holds the copy stamped modifiedAt.
// A note edited since the push no longer matches the stamp and stays dirty;
// that is not an error.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, modifiedAt int64) error {
	query := `update notes set synced=1 where id=? and modified_at=?`
	if _, err := r.db.ExecContext(ctx, query, id, modifiedAt); err != nil {
		return fmt.Errorf("failed to mark note synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) selectNotes(ctx context.Context, query string) ([]*notes.Note, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select notes: %w", err)
	}
	defer rows.Close()

	var result []*notes.Note
	for rows.Next() {
		n, err := scanNote(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanNote(scan func(dest ...any) error) (*notes.Note, error) {
	n := &notes.Note{}
	var deleted, synced int
	if err := scan(&n.ID, &n.Title, &n.Body, &n.CreatedAt, &n.ModifiedAt, &n.Version, &deleted, &synced); err != nil {
		return nil, err
	}
	n.Deleted = deleted != 0
	n.Synced = synced != 0
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
