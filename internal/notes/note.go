// Package notes defines the note model and the versioned payload codec that
// turns note fields into the plaintext buffer handed to encryption.
package notes

import (
	"time"

	"github.com/google/uuid"
)

// Note is a single note as held by the local store.
//
// ID is stable and globally unique across devices. Version is a local
// monotonic counter bumped on every edit; it tie-breaks merges when two
// copies share a modification timestamp. Deleted is a tombstone: deleted
// notes are kept so the deletion can propagate during sync.
type Note struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at"`  // unix milliseconds
	ModifiedAt int64  `json:"modified_at"` // unix milliseconds
	Version    int64  `json:"version"`
	Deleted    bool   `json:"deleted"`

	// Synced marks that the server holds this exact copy. Local bookkeeping
	// only: it never enters the encrypted payload and is cleared on every
	// edit so the next cycle pushes the note again.
	Synced bool `json:"-"`
}

// New returns a fresh note with a generated ID and both timestamps set to now.
func New(title, body string) *Note {
	now := time.Now().UnixMilli()
	return &Note{
		ID:         uuid.NewString(),
		Title:      title,
		Body:       body,
		CreatedAt:  now,
		ModifiedAt: now,
		Version:    1,
	}
}

// Touch records an edit: bumps the version and the modification timestamp,
// and marks the note as needing upload.
func (n *Note) Touch() {
	n.Version++
	n.ModifiedAt = time.Now().UnixMilli()
	n.Synced = false
}

// MarkDeleted tombstones the note. The record stays in the store until the
// deletion has propagated.
func (n *Note) MarkDeleted() {
	n.Deleted = true
	n.Touch()
}

// ContentEqual reports whether two copies of a note carry the same user
// content and tombstone state. Used to detect true conflicts when sync
// metadata alone cannot order two copies.
func (n *Note) ContentEqual(other *Note) bool {
	return n.Title == other.Title && n.Body == other.Body && n.Deleted == other.Deleted
}
