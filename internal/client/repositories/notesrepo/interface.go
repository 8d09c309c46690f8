// Package notesrepo provides the SQLite-backed local note store.
package notesrepo

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/notes"
)

// Repository describes CRUD and sync queries over locally stored notes.
// The store owns all note records; the sync reconciler only reads them and
// proposes mutations through Upsert.
type Repository interface {
	// Upsert inserts a new note or replaces an existing one by ID.
	Upsert(ctx context.Context, n *notes.Note) error

	// All returns every note including tombstones, as the reconciler needs.
	All(ctx context.Context) ([]*notes.Note, error)

	// List returns live (non-tombstoned) notes for display.
	List(ctx context.Context) ([]*notes.Note, error)

	// GetByID returns one live note, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*notes.Note, error)

	// DeleteByID tombstones a note, bumping its version and timestamp so
	// the deletion propagates on the next sync.
	DeleteByID(ctx context.Context, id string) error

	// MarkSynced records that the server holds the note's copy stamped
	// modifiedAt. A no-op if the note was edited since that stamp.
	MarkSynced(ctx context.Context, id string, modifiedAt int64) error
}
