package sync

import (
	"bytes"
	"crypto/sha256"
	"sort"

	"github.com/dmitrijs2005/notekeeper/internal/notes"
)

// Merge compares the local and remote note sets and produces the minimal
// plan that converges both sides. A note absent from the (incremental) pull
// is pushed unless its Synced flag says the server already holds this exact
// copy; the flag, not the watermark, decides what needs uploading, so peers
// with skewed clocks cannot suppress a push.
//
// Ordering rule: the later ModifiedAt wins; equal timestamps fall back to the
// higher Version. A pair equal on both with differing content is a true
// conflict, settled deterministically (see resolveConflict) and reported.
//
// Merge is pure and idempotent: once a plan has been applied and pushed,
// re-running against the resulting state yields an empty plan.
func Merge(local, remote map[string]*notes.Note) (*Plan, []Conflict) {
	plan := &Plan{}
	var conflicts []Conflict

	for _, id := range sortedIDs(local, remote) {
		l, haveLocal := local[id]
		r, haveRemote := remote[id]

		switch {
		case haveLocal && !haveRemote:
			if l.Synced {
				// The server already holds this copy; it just fell
				// outside the incremental pull.
				continue
			}
			if l.Deleted {
				plan.RemoteDeletes = append(plan.RemoteDeletes, l)
			} else {
				plan.Pushes = append(plan.Pushes, l)
			}

		case !haveLocal && haveRemote:
			if r.Deleted {
				// Tombstone for a note this device never had.
				continue
			}
			plan.LocalUpserts = append(plan.LocalUpserts, r)

		default:
			mergePair(plan, &conflicts, l, r)
		}
	}

	return plan, conflicts
}

func mergePair(plan *Plan, conflicts *[]Conflict, l, r *notes.Note) {
	switch {
	case l.ModifiedAt > r.ModifiedAt || (l.ModifiedAt == r.ModifiedAt && l.Version > r.Version):
		if l.Deleted {
			if !r.Deleted {
				plan.RemoteDeletes = append(plan.RemoteDeletes, l)
			}
		} else {
			plan.Pushes = append(plan.Pushes, l)
		}

	case r.ModifiedAt > l.ModifiedAt || (l.ModifiedAt == r.ModifiedAt && r.Version > l.Version):
		if r.Deleted && l.Deleted {
			// Already converged; just stop re-sending our tombstone.
			if !l.Synced {
				plan.Confirmations = append(plan.Confirmations, l)
			}
			return
		}
		plan.LocalUpserts = append(plan.LocalUpserts, r)

	default:
		// Same timestamp and version.
		if l.ContentEqual(r) {
			if !l.Synced {
				// The server copy already matches; record that so the
				// note is not pushed again.
				plan.Confirmations = append(plan.Confirmations, l)
			}
			return
		}
		keepRemote := resolveConflict(l, r)
		if keepRemote {
			plan.LocalUpserts = append(plan.LocalUpserts, r)
		} else {
			plan.Pushes = append(plan.Pushes, l)
		}
		*conflicts = append(*conflicts, Conflict{ID: l.ID, KeptRemote: keepRemote})
	}
}

// resolveConflict settles a pair that cannot be ordered: the copy whose
// encoded payload has the lexicographically larger SHA-256 wins. Arbitrary
// but deterministic, so every device converges on the same copy and nothing
// is dropped silently.
func resolveConflict(l, r *notes.Note) (keepRemote bool) {
	lh := payloadHash(l)
	rh := payloadHash(r)
	return bytes.Compare(rh, lh) > 0
}

func payloadHash(n *notes.Note) []byte {
	b, err := notes.EncodePayload(n)
	if err != nil {
		// EncodePayload on an in-memory note cannot fail; keep the
		// comparison total anyway.
		b = []byte(n.Title + "\x00" + n.Body)
	}
	h := sha256.Sum256(b)
	return h[:]
}

func sortedIDs(local, remote map[string]*notes.Note) []string {
	seen := make(map[string]struct{}, len(local)+len(remote))
	ids := make([]string, 0, len(local)+len(remote))
	for id := range local {
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for id := range remote {
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
