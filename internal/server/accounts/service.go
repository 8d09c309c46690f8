// Package accounts implements first-contact registration and verifier checks
// for seed-phrase derived accounts.
package accounts

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/auth"
)

type Service struct {
	repo      Repository
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewService(repo Repository, secretKey string, tokenTTL time.Duration) *Service {
	return &Service{
		repo:      repo,
		jwtSecret: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}
}

// Authenticate checks the verifier for accountID and returns a signed session
// token. An unknown account is registered on first contact with the presented
// verifier; a known account whose stored verifier differs gets
// common.ErrUnauthorized.
func (s *Service) Authenticate(ctx context.Context, accountID string, verifier []byte) (string, error) {

	if accountID == "" || len(verifier) == 0 {
		return "", common.ErrUnauthorized
	}

	account, err := s.repo.GetByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return "", fmt.Errorf("error fetching account: %w", err)
		}
		account = &Account{ID: accountID, Verifier: verifier}
		if err := s.repo.Create(ctx, account); err != nil {
			return "", fmt.Errorf("error creating account: %w", err)
		}
	}

	if subtle.ConstantTimeCompare(account.Verifier, verifier) != 1 {
		return "", common.ErrUnauthorized
	}

	return auth.GenerateToken(accountID, s.jwtSecret, s.tokenTTL)
}

// VerifyToken validates a session token and returns the account it belongs to.
func (s *Service) VerifyToken(tokenString string) (string, error) {
	return auth.GetAccountIDFromToken(tokenString, s.jwtSecret)
}
