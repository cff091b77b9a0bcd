package batch

import (
	"context"
	"time"
)

// ObjectStore uploads item bytes and releases them on batch teardown.
// Implemented by internal/infrastructure/objectstore against a
// gocloud.dev blob.Bucket.
type ObjectStore interface {
	// Put stores bytes under a path derived from (batchID, itemID,
	// filename) and returns an opaque reference the Analyzer accepts.
	// The derived path must be unique per (batchID, itemID); a second
	// Put for the same pair returns ErrDuplicateFileRef.
	Put(ctx context.Context, batchID, itemID, filename string, data []byte) (fileRef string, err error)
	// DeleteAll removes every object ever written under batchID's
	// prefix. Idempotent; tolerates a missing prefix.
	DeleteAll(ctx context.Context, batchID string) error
}

// Analyzer is the opaque, injected scoring function. The engine never
// interprets its result beyond storing it verbatim.
type Analyzer interface {
	Analyze(ctx context.Context, fileRef, jobDescription string) (result []byte, class ErrorClass, message string, err error)
}

// NewItemInput describes one accepted work item at batch creation.
type NewItemInput struct {
	ItemID     string
	FileRef    string
	FileHash   string
	MaxRetries int
}

// CreateBatchInput is the atomic multi-record write the Batch
// Controller issues at creation time.
type CreateBatchInput struct {
	BatchID           string
	OwnerID           string
	JobDescription    string
	Items             []NewItemInput
	SkippedDuplicates int64
}

// ClaimResult is what ClaimNext hands back: a claimed item, or none.
type ClaimResult struct {
	Item  *Item
	Found bool
}

// ItemFilter narrows ListItems; a zero value matches every item.
type ItemFilter struct {
	Status ItemStatus
	// Cursor paginates by (last_updated_at, item_id) ascending; empty
	// starts from the beginning.
	AfterLastUpdatedAt time.Time
	AfterItemID        string
	Limit              int
}

// TransientFailure describes a running item's failed analyzer call
// for the transient-retry transition.
type TransientFailure struct {
	ItemID     string
	WorkerID   string
	ErrorCode  string
	ErrorMsg   string
}

// PermanentFailure describes a running item's failed analyzer call
// for the terminal-failure transition.
type PermanentFailure struct {
	ItemID    string
	WorkerID  string
	ErrorCode string
	ErrorMsg  string
}

// StateStore is the single source of truth for Batch and Item
// records. Every mutation that must be atomic under concurrent
// writers lives here: conditional writes, field increments, and the
// two queries the spec names (oldest pending item in a batch; expired
// leases across all batches).
type StateStore interface {
	// CreateBatch atomically persists a Batch and all of its Items.
	// No partial record is made visible on failure.
	CreateBatch(ctx context.Context, in CreateBatchInput) error

	GetBatch(ctx context.Context, batchID string) (*Batch, error)
	ListItems(ctx context.Context, batchID string, filter ItemFilter) ([]Item, error)

	// ClaimNext atomically transitions the oldest pending item in
	// batchID (FIFO by last_updated_at) to running under workerID.
	// Returns ClaimResult{Found: false} if there is none, without
	// error.
	ClaimNext(ctx context.Context, batchID, workerID string, now time.Time) (ClaimResult, error)

	// CompleteItem transitions a running item to complete, predicated
	// on workerID still holding the lease, and increments
	// Batch.Completed.
	CompleteItem(ctx context.Context, itemID, workerID string, result []byte, now time.Time) error

	// RetryItem transitions a running item back to pending (tail of
	// the FIFO queue), predicated on workerID, incrementing
	// RetryCount and recording the transient error.
	RetryItem(ctx context.Context, f TransientFailure, now time.Time) error

	// FailItem transitions a running item to failed, predicated on
	// workerID, and increments Batch.Failed.
	FailItem(ctx context.Context, f PermanentFailure, now time.Time) error

	// ReclaimExpiredLeases finds every item with status=running and
	// start_time older than before, across all batches, and applies
	// the transient-retry-or-fail transition the way a worker would,
	// predicated on the row being unchanged since it was read. Returns
	// the distinct batch IDs of items that were promoted to failed
	// (as opposed to back to pending), so the caller knows which
	// batches need a completion recomputation pass.
	ReclaimExpiredLeases(ctx context.Context, before time.Time, now time.Time) (failedBatchIDs []string, err error)

	// CancelPendingItems sweeps every pending item in batchID to
	// cancelled, incrementing CancelledCount, in one transaction with
	// the batch status flip to cancelled. The flip happens whatever the
	// current status is; Controller.Control checks the status before
	// calling it. Idempotent: repeating
	// it on a cancelled batch changes no counter or item.
	CancelPendingItems(ctx context.Context, batchID string, now time.Time) (cancelled int, err error)

	// SetBatchStatus performs a conditional batch-status transition,
	// succeeding only if the batch's current status equals from.
	SetBatchStatus(ctx context.Context, batchID string, from, to Status, now time.Time) (applied bool, err error)

	// RecomputeCompletion re-reads batchID's counters and, if closed
	// and still running, conditionally flips it to complete exactly
	// once.
	RecomputeCompletion(ctx context.Context, batchID string, now time.Time) error

	// PauseInvariantViolation flips a batch to paused unconditionally,
	// used when a counter invariant is found broken and the batch must
	// halt for operator intervention.
	PauseInvariantViolation(ctx context.Context, batchID string, now time.Time) error

	// DeleteBatch removes every item, then the batch row. Idempotent.
	DeleteBatch(ctx context.Context, batchID string) error

	// ListBatchIDsByStatus returns every batch currently in status,
	// used at process startup to reschedule a Worker for each batch
	// still running after a restart.
	ListBatchIDsByStatus(ctx context.Context, status Status) ([]string, error)
}
