// Package session holds the per-login sync session: the keys derived from
// the active seed phrase and the operations the UI layer is allowed to call.
//
// A Session is created by Initialize after the phrase validates, and must be
// closed on logout or app shutdown so key material is wiped. There is no
// other way key material enters or leaves the process.
package session

import (
	"context"
	stdsync "sync"

	"github.com/dmitrijs2005/notekeeper/internal/client/client"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/notesrepo"
	"github.com/dmitrijs2005/notekeeper/internal/client/repositories/settingsrepo"
	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/cryptox"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/mnemonic"
	"github.com/dmitrijs2005/notekeeper/internal/sync"
)

// Session is the live crypto and sync context for one seed phrase.
type Session struct {
	key       cryptox.Key
	verifier  []byte
	accountID string

	notes    notesrepo.Repository
	settings settingsrepo.Repository
	log      logging.Logger

	// newTransport builds the transport for a server URL; replaced in tests.
	newTransport func(serverURL string) sync.Transport

	mu     stdsync.Mutex
	closed bool
}

// GenerateSeedPhrase produces a new random seed phrase. It does not touch any
// session state; the caller decides whether to initialize with it.
func GenerateSeedPhrase() (string, error) {
	return mnemonic.Generate()
}

// Initialize validates the phrase, derives the session keys and returns a
// ready Session. The phrase's entropy is wiped before returning; only the
// derived key, account ID and verifier stay in memory.
func Initialize(phrase string, notes notesrepo.Repository, settings settingsrepo.Repository, log logging.Logger) (*Session, error) {
	if !mnemonic.Validate(phrase) {
		return nil, common.ErrFormat
	}
	entropy, err := mnemonic.Entropy(phrase)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(entropy)

	key, err := cryptox.DeriveKey(entropy, cryptox.ContextEncryption)
	if err != nil {
		return nil, err
	}
	authKey, err := cryptox.DeriveKey(entropy, cryptox.ContextAuth)
	if err != nil {
		key.Zero()
		return nil, err
	}
	defer authKey.Zero()

	accountID, err := cryptox.AccountID(entropy)
	if err != nil {
		key.Zero()
		return nil, err
	}

	s := &Session{
		key:       key,
		verifier:  cryptox.MakeVerifier(authKey),
		accountID: accountID,
		notes:     notes,
		settings:  settings,
		log:       log.With("account", accountID),
	}
	s.newTransport = func(serverURL string) sync.Transport {
		return client.NewHTTPClient(serverURL, s.accountID, s.verifier)
	}
	return s, nil
}

// AccountID returns the derived account identifier.
func (s *Session) AccountID() string {
	return s.accountID
}

// HealthCheck probes the given server.
func (s *Session) HealthCheck(ctx context.Context, serverURL string) bool {
	if s.isClosed() {
		return false
	}
	return s.newTransport(serverURL).HealthCheck(ctx)
}

// RunSyncCycle executes one sync cycle against the given server and returns
// its outcome. On anything but a failed cycle the watermark is persisted so
// the next cycle pulls incrementally. Concurrent calls are rejected, not
// queued.
func (s *Session) RunSyncCycle(ctx context.Context, serverURL string) *sync.Outcome {
	if s.isClosed() {
		return &sync.Outcome{Status: sync.StatusFailed, Plan: &sync.Plan{}, Err: common.ErrUnauthorized}
	}
	if !s.mu.TryLock() {
		return &sync.Outcome{Status: sync.StatusFailed, Plan: &sync.Plan{}, Err: common.ErrSyncInProgress}
	}
	defer s.mu.Unlock()

	since, err := s.settings.Watermark(ctx)
	if err != nil {
		s.log.Warn(ctx, "watermark unavailable, running full sync", "error", err)
		since = 0
	}

	reconciler := sync.New(s.notes, s.newTransport(serverURL), s.key, s.log)
	outcome := reconciler.Run(ctx, since)

	if outcome.Status != sync.StatusFailed && outcome.Watermark > since {
		if err := s.settings.SetWatermark(ctx, outcome.Watermark); err != nil {
			s.log.Warn(ctx, "failed to persist watermark", "error", err)
		}
	}
	return outcome
}

// Close wipes the session's key material. The session is unusable afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.key.Zero()
	common.WipeByteArray(s.verifier)
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
