package batch

import "errors"

var (
	// ErrNotFound is returned when a batch or item does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is returned when the caller's owner_id does not
	// match the batch's owner_id.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidJobDescription is returned when the job description is
	// blank at creation time.
	ErrInvalidJobDescription = errors.New("job description must not be empty")
	// ErrNoFiles is returned when a batch is created with zero input
	// files.
	ErrNoFiles = errors.New("at least one file is required")
	// ErrDuplicateFileRef is returned by the Object Store Gateway when
	// a caller attempts to overwrite an existing (batch_id, item_id)
	// object path.
	ErrDuplicateFileRef = errors.New("object already exists at this path")
	// ErrInvariantViolation is returned when a detected batch counter
	// invariant is violated; the caller must pause the batch rather
	// than continue processing it.
	ErrInvariantViolation = errors.New("batch counter invariant violated")
	// ErrWorkerMismatch is returned when a state-store write is
	// predicated on a worker_id that no longer matches the item's
	// current claim.
	ErrWorkerMismatch = errors.New("worker no longer holds this item's lease")
	// ErrNotPending is returned when a conditional write's status
	// predicate fails because the row has already moved on.
	ErrNotPending = errors.New("item is no longer pending")
	// ErrBatchNotRunning names the state of a batch that is not
	// accepting claims. The claim engine does not return it: a claim
	// against such a batch yields no item and no error.
	ErrBatchNotRunning = errors.New("batch is not running")
)
