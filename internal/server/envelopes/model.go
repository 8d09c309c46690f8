package envelopes

// Envelope is the server-side row for one encrypted note. The payload stays
// opaque; modified_at is the authoring device's clock and drives last-writer-
// wins ordering. A deleted row is a tombstone: payload cleared, row kept and
// served so other devices observe the deletion.
type Envelope struct {
	ID         string `json:"id"`
	AccountID  string `json:"-"`
	Ciphertext []byte `json:"ciphertext,omitempty"`
	Nonce      []byte `json:"nonce,omitempty"`
	ModifiedAt int64  `json:"modified_at"`
	Deleted    bool   `json:"deleted,omitempty"`
}
