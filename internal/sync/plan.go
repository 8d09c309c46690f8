package sync

import "github.com/dmitrijs2005/notekeeper/internal/notes"

// Plan is the output of a merge: the local mutations to apply and the remote
// operations to send. It is transient and discarded once applied.
type Plan struct {
	// LocalUpserts are notes to write into the local store: remote creates,
	// remote updates that won the merge, and remote tombstones (a local
	// delete is applied by upserting the tombstoned copy).
	LocalUpserts []*notes.Note

	// Pushes are local notes to encode, encrypt and upload.
	Pushes []*notes.Note

	// RemoteDeletes are locally tombstoned notes whose deletion must be
	// propagated to the server.
	RemoteDeletes []*notes.Note

	// Confirmations are local notes the pull proved the server already
	// holds; they only need their sync flag set, no upload. Not counted as
	// work by Empty.
	Confirmations []*notes.Note
}

// Empty reports whether the plan contains no work.
func (p *Plan) Empty() bool {
	return len(p.LocalUpserts) == 0 && len(p.Pushes) == 0 && len(p.RemoteDeletes) == 0
}

// Skip records an envelope that could not be processed during Pull. Skips are
// non-fatal: the rest of the cycle proceeds without the affected note.
type Skip struct {
	ID     string
	Reason string
}

// Conflict records a merge that could not be ordered by timestamp or version
// and was settled by the deterministic content rule. Informational, surfaced
// so the resolution is never silent.
type Conflict struct {
	ID         string
	KeptRemote bool
}

// PushFailure records a remote operation that still failed after retries.
// Local state already reflects the merge; the next cycle retries it.
type PushFailure struct {
	ID  string
	Err error
}

// Status classifies a cycle result.
type Status string

const (
	StatusSuccess Status = "success"
	StatusPartial Status = "partial"
	StatusFailed  Status = "failed"
)

// Outcome is the structured result handed back to the caller after a cycle.
type Outcome struct {
	Status       Status
	Plan         *Plan
	Skips        []Skip
	Conflicts    []Conflict
	PushFailures []PushFailure

	// Watermark is the highest modification timestamp among pulled
	// envelopes and remote operations the server acknowledged; pass it as
	// since on the next cycle. Failed pushes are excluded so their notes
	// stay inside the next pull window.
	Watermark int64

	// FailedPhase and Err are set only when Status is StatusFailed.
	FailedPhase Phase
	Err         error
}
