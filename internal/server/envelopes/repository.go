package envelopes

import "context"

// Repository persists envelopes per account.
//
// Upsert applies last-writer-wins: a row whose stored modified_at is newer
// than the incoming one is left untouched and the call still succeeds, since
// the caller will pick up the newer copy on its next pull.
type Repository interface {
	Upsert(ctx context.Context, env *Envelope) error
	ListSince(ctx context.Context, accountID string, since int64) ([]*Envelope, error)
}
