// Package envelopes stores and serves encrypted note envelopes. The service
// never inspects payloads; it orders copies by the plaintext modified_at
// stamp and keeps tombstones so deletions propagate to every device.
package envelopes

import (
	"context"
	"fmt"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListSince returns the account's envelopes modified strictly after since,
// tombstones included.
func (s *Service) ListSince(ctx context.Context, accountID string, since int64) ([]*Envelope, error) {
	result, err := s.repo.ListSince(ctx, accountID, since)
	if err != nil {
		return nil, fmt.Errorf("error listing envelopes: %w", err)
	}
	return result, nil
}

// Upsert stores one envelope under last-writer-wins.
func (s *Service) Upsert(ctx context.Context, accountID string, env *Envelope) error {
	env.AccountID = accountID
	if err := s.repo.Upsert(ctx, env); err != nil {
		return fmt.Errorf("error upserting envelope: %w", err)
	}
	return nil
}

// Delete tombstones the envelope: the payload is dropped and the row kept
// with the author's deletion stamp. Deleting an ID the server has never seen
// still records the tombstone.
func (s *Service) Delete(ctx context.Context, accountID, id string, modifiedAt int64) error {
	// Empty, non-nil payload fields: the columns are NOT NULL, and a nil
	// slice binds as SQL NULL.
	env := &Envelope{
		ID:         id,
		AccountID:  accountID,
		Ciphertext: []byte{},
		Nonce:      []byte{},
		ModifiedAt: modifiedAt,
		Deleted:    true,
	}
	if err := s.repo.Upsert(ctx, env); err != nil {
		return fmt.Errorf("error tombstoning envelope: %w", err)
	}
	return nil
}
