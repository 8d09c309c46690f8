package accounts

import "time"

// Account is a named key space on the server. The ID and verifier are both
// deterministic products of the seed phrase; the server never sees the phrase
// itself or any key able to decrypt note payloads.
type Account struct {
	ID        string
	Verifier  []byte
	CreatedAt time.Time
}
