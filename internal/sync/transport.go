package sync

import "context"

// Envelope is the encrypted, server-stored representation of a note. The
// server only ever sees envelopes; ciphertext carries the GCM tag appended.
// ModifiedAt stays in plaintext so devices can order copies without
// decrypting, and Deleted marks a server-side tombstone: the row is kept and
// served so other devices observe the deletion instead of resurrecting the
// note on their next push.
type Envelope struct {
	ID         string `json:"id"`
	Ciphertext []byte `json:"ciphertext,omitempty"`
	Nonce      []byte `json:"nonce,omitempty"`
	ModifiedAt int64  `json:"modified_at"`
	Deleted    bool   `json:"deleted,omitempty"`
}

// Transport is the contract a server client must satisfy. Implementations
// handle wire details; the reconciler only distinguishes "unreachable" (health
// check fails) from "rejected" (an operation returns an error). Every method
// honors the context deadline.
type Transport interface {
	// HealthCheck probes the server. False aborts the cycle before any
	// local mutation.
	HealthCheck(ctx context.Context) bool

	// Pull returns envelopes modified strictly after since (unix ms).
	// since == 0 fetches everything, tombstones included.
	Pull(ctx context.Context, since int64) ([]Envelope, error)

	// Push upserts one envelope.
	Push(ctx context.Context, env Envelope) error

	// Delete tombstones the envelope with the given id. modifiedAt is the
	// deletion timestamp from the authoring device, preserved so merge
	// ordering keeps using author clocks rather than server clocks.
	Delete(ctx context.Context, id string, modifiedAt int64) error
}
