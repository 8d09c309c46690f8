// Package sync implements the client-driven reconciliation between the local
// note store and an untrusted envelope server. A cycle walks the fixed phase
// sequence HealthCheck → Pull → Merge → Push; the server never sees plaintext
// and performs no merging of its own.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/cryptox"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/notes"
)

// Phase names the states of a sync cycle.
type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseHealthCheck Phase = "healthcheck"
	PhasePull        Phase = "pull"
	PhaseMerge       Phase = "merge"
	PhasePush        Phase = "push"
	PhaseFailed      Phase = "failed"
)

// Store is the slice of the local note store the reconciler needs. The
// reconciler writes merged copies through Upsert and records server
// acknowledgements through MarkSynced; it never owns storage.
type Store interface {
	// All returns every note, tombstones included.
	All(ctx context.Context) ([]*notes.Note, error)

	// Upsert writes one note (create, update, or tombstone).
	Upsert(ctx context.Context, n *notes.Note) error

	// MarkSynced records that the server holds the note's copy stamped
	// modifiedAt. Must be a no-op if the note changed since that stamp.
	MarkSynced(ctx context.Context, id string, modifiedAt int64) error
}

const (
	pushAttempts  = 3
	retryBaseWait = 200 * time.Millisecond
)

// Reconciler runs sync cycles. At most one cycle per Reconciler is in flight
// at a time; a concurrent Run is rejected with common.ErrSyncInProgress
// rather than interleaved, so a plan can never be applied twice.
type Reconciler struct {
	mu        sync.Mutex
	store     Store
	transport Transport
	key       cryptox.Key
	log       logging.Logger
}

// New returns a reconciler bound to a local store, a transport and the active
// encryption key.
func New(store Store, transport Transport, key cryptox.Key, log logging.Logger) *Reconciler {
	return &Reconciler{store: store, transport: transport, key: key, log: log.With("component", "reconciler")}
}

// Run executes one sync cycle and returns a structured outcome. since is the
// watermark of the previous successful cycle (0 for a full sync).
//
// Local state is mutated only after a successful pull and merge, and
// cancellation is honored at phase boundaries only, so a cancelled cycle
// leaves the store either untouched or exactly as committed by the last
// completed phase.
func (r *Reconciler) Run(ctx context.Context, since int64) *Outcome {
	if !r.mu.TryLock() {
		return failed(PhaseIdle, common.ErrSyncInProgress)
	}
	defer r.mu.Unlock()

	// HealthCheck. No retry here: an unreachable server means "try again
	// on the next scheduled cycle".
	if !r.transport.HealthCheck(ctx) {
		return failed(PhaseHealthCheck, common.ErrServerUnreachable)
	}
	if err := ctx.Err(); err != nil {
		return failed(PhaseHealthCheck, err)
	}

	// Pull.
	envelopes, err := r.transport.Pull(ctx, since)
	if err != nil {
		return failed(PhasePull, fmt.Errorf("%w: %v", common.ErrServerUnreachable, err))
	}
	remote, skips := r.decryptAll(ctx, envelopes)
	if err := ctx.Err(); err != nil {
		return failed(PhasePull, err)
	}

	// Merge. Pure computation, then the serialized apply.
	local, err := r.localSet(ctx)
	if err != nil {
		return failed(PhaseMerge, err)
	}
	plan, conflicts := Merge(local, remote)

	for _, n := range plan.LocalUpserts {
		// A copy taken from the server is by definition held by it.
		n.Synced = true
		if err := r.store.Upsert(ctx, n); err != nil {
			return failed(PhaseMerge, fmt.Errorf("apply merge: %w", err))
		}
	}
	for _, n := range plan.Confirmations {
		if err := r.store.MarkSynced(ctx, n.ID, n.ModifiedAt); err != nil {
			return failed(PhaseMerge, fmt.Errorf("apply merge: %w", err))
		}
	}
	if err := ctx.Err(); err != nil {
		// Merge already committed; report the boundary we stopped at.
		return failed(PhasePush, err)
	}

	// Push. Individual failures are retried with backoff and never block
	// the remaining envelopes.
	failures := r.pushAll(ctx, plan)

	outcome := &Outcome{
		Status:       StatusSuccess,
		Plan:         plan,
		Skips:        skips,
		Conflicts:    conflicts,
		PushFailures: failures,
		Watermark:    watermark(since, envelopes, plan, failures),
	}
	if len(skips) > 0 || len(failures) > 0 {
		outcome.Status = StatusPartial
	}
	return outcome
}

// decryptAll turns pulled envelopes into plaintext notes. Envelopes that fail
// authentication or decoding are skipped and reported, never fatal: one
// corrupted record must not block the rest of the account.
func (r *Reconciler) decryptAll(ctx context.Context, envelopes []Envelope) (map[string]*notes.Note, []Skip) {
	remote := make(map[string]*notes.Note, len(envelopes))
	var skips []Skip

	for _, env := range envelopes {
		if env.Deleted {
			// Server tombstone: no ciphertext, just identity and time.
			remote[env.ID] = &notes.Note{ID: env.ID, ModifiedAt: env.ModifiedAt, Deleted: true}
			continue
		}
		plaintext, err := cryptox.Decrypt(r.key, env.Ciphertext, env.Nonce)
		if err != nil {
			r.log.Warn(ctx, "skipping undecryptable envelope", "id", env.ID)
			skips = append(skips, Skip{ID: env.ID, Reason: "authentication failed"})
			continue
		}
		n, err := notes.DecodePayload(plaintext)
		if err != nil {
			r.log.Warn(ctx, "skipping malformed envelope", "id", env.ID)
			skips = append(skips, Skip{ID: env.ID, Reason: "invalid payload format"})
			continue
		}
		n.ID = env.ID
		remote[env.ID] = n
	}
	return remote, skips
}

func (r *Reconciler) localSet(ctx context.Context) (map[string]*notes.Note, error) {
	all, err := r.store.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("read local notes: %w", err)
	}
	local := make(map[string]*notes.Note, len(all))
	for _, n := range all {
		local[n.ID] = n
	}
	return local, nil
}

func (r *Reconciler) pushAll(ctx context.Context, plan *Plan) []PushFailure {
	var failures []PushFailure

	for _, n := range plan.Pushes {
		env, err := r.seal(n)
		if err != nil {
			failures = append(failures, PushFailure{ID: n.ID, Err: err})
			continue
		}
		if err := r.withBackoff(ctx, func(ctx context.Context) error {
			return r.transport.Push(ctx, env)
		}); err != nil {
			r.log.Warn(ctx, "push failed after retries", "id", n.ID, "error", err)
			failures = append(failures, PushFailure{ID: n.ID, Err: fmt.Errorf("%w: %v", common.ErrTransport, err)})
			continue
		}
		r.markSynced(ctx, n)
	}

	for _, n := range plan.RemoteDeletes {
		id, modifiedAt := n.ID, n.ModifiedAt
		if err := r.withBackoff(ctx, func(ctx context.Context) error {
			return r.transport.Delete(ctx, id, modifiedAt)
		}); err != nil {
			r.log.Warn(ctx, "remote delete failed after retries", "id", id, "error", err)
			failures = append(failures, PushFailure{ID: id, Err: fmt.Errorf("%w: %v", common.ErrTransport, err)})
			continue
		}
		r.markSynced(ctx, n)
	}

	return failures
}

// markSynced records a server-acknowledged copy. Failure only means the note
// is pushed again next cycle, so it is logged, not propagated.
func (r *Reconciler) markSynced(ctx context.Context, n *notes.Note) {
	if err := r.store.MarkSynced(ctx, n.ID, n.ModifiedAt); err != nil {
		r.log.Warn(ctx, "failed to record sync state", "id", n.ID, "error", err)
	}
}

// seal encodes and encrypts one note into its envelope.
func (r *Reconciler) seal(n *notes.Note) (Envelope, error) {
	plaintext, err := notes.EncodePayload(n)
	if err != nil {
		return Envelope{}, err
	}
	ciphertext, nonce, err := cryptox.Encrypt(r.key, plaintext)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		ID:         n.ID,
		Ciphertext: ciphertext,
		Nonce:      nonce,
		ModifiedAt: n.ModifiedAt,
	}, nil
}

func (r *Reconciler) withBackoff(ctx context.Context, op func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(pushAttempts-1, retry.NewExponential(retryBaseWait))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := op(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
}

// watermark returns the highest modification timestamp this cycle confirmed
// on the server, so the next pull can be incremental. Operations that failed
// even after retries are excluded: their stamps must stay inside the next
// pull window until the server acknowledges them.
func watermark(since int64, pulled []Envelope, plan *Plan, failures []PushFailure) int64 {
	failedIDs := make(map[string]struct{}, len(failures))
	for _, f := range failures {
		failedIDs[f.ID] = struct{}{}
	}

	wm := since
	for _, env := range pulled {
		if env.ModifiedAt > wm {
			wm = env.ModifiedAt
		}
	}
	for _, n := range plan.Pushes {
		if _, failed := failedIDs[n.ID]; failed {
			continue
		}
		if n.ModifiedAt > wm {
			wm = n.ModifiedAt
		}
	}
	for _, n := range plan.RemoteDeletes {
		if _, failed := failedIDs[n.ID]; failed {
			continue
		}
		if n.ModifiedAt > wm {
			wm = n.ModifiedAt
		}
	}
	return wm
}

func failed(phase Phase, err error) *Outcome {
	return &Outcome{
		Status:      StatusFailed,
		Plan:        &Plan{},
		FailedPhase: phase,
		Err:         err,
	}
}

// IsRetryableFailure reports whether an outcome's error indicates the server
// was unreachable, i.e. the cycle should simply be retried on the next
// scheduled interval.
func IsRetryableFailure(o *Outcome) bool {
	return o.Status == StatusFailed && errors.Is(o.Err, common.ErrServerUnreachable)
}
