package notes

import (
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/notekeeper/internal/common"
)

// PayloadVersion is the current payload schema version. Decoders accept any
// version up to and including this one; newer versions fail with ErrFormat so
// an old client never misreads a payload it does not understand.
const PayloadVersion = 1

// payload is the wire schema of an encrypted note body. The note ID is
// deliberately absent: it travels in the envelope, outside the ciphertext.
type payload struct {
	V          int    `json:"v"`
	Title      string `json:"title"`
	Body       string `json:"body"`
	CreatedAt  int64  `json:"created_at"`
	ModifiedAt int64  `json:"modified_at"`
	Version    int64  `json:"version"`
	Deleted    bool   `json:"deleted"`
}

// EncodePayload serializes all note fields except the ID into the plaintext
// buffer that gets encrypted. Deterministic for a given note.
func EncodePayload(n *Note) ([]byte, error) {
	p := payload{
		V:          PayloadVersion,
		Title:      n.Title,
		Body:       n.Body,
		CreatedAt:  n.CreatedAt,
		ModifiedAt: n.ModifiedAt,
		Version:    n.Version,
		Deleted:    n.Deleted,
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return b, nil
}

// DecodePayload parses a payload buffer into note fields. The returned note
// has an empty ID; the caller fills it in from the envelope. Malformed input
// or an unsupported future schema version fails with common.ErrFormat.
func DecodePayload(b []byte) (*Note, error) {
	var p payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFormat, err)
	}
	if p.V < 1 || p.V > PayloadVersion {
		return nil, fmt.Errorf("%w: unsupported payload version %d", common.ErrFormat, p.V)
	}
	return &Note{
		Title:      p.Title,
		Body:       p.Body,
		CreatedAt:  p.CreatedAt,
		ModifiedAt: p.ModifiedAt,
		Version:    p.Version,
		Deleted:    p.Deleted,
	}, nil
}
