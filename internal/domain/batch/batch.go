package batch

import "time"

// Status is a Batch's lifecycle state.
type Status string

const (
	StatusRunning   Status = "running"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusComplete  Status = "complete"
)

// Batch is a set of items sharing a job description, processed as a
// single unit with shared control.
type Batch struct {
	ID                string
	OwnerID           string
	Status            Status
	JobDescription    string
	Total             int64
	Completed         int64
	Failed            int64
	CancelledCount    int64
	SkippedDuplicates int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ClosedCount is the sum of the four monotonic counters that must
// reach Total for the batch to be complete.
func (b Batch) ClosedCount() int64 {
	return b.Completed + b.Failed + b.CancelledCount + b.SkippedDuplicates
}

// IsClosed reports whether every accepted item slot has reached a
// terminal disposition. Uses >= rather than == so a batch whose
// invariant has already been violated still reads as closed instead
// of hanging forever waiting for a count that can never be reached.
func (b Batch) IsClosed() bool {
	return b.ClosedCount() >= b.Total
}

// Valid reports whether the batch's counters satisfy the invariant
// that the closed count never exceeds the accepted total.
func (b Batch) Valid() bool {
	return b.ClosedCount() <= b.Total
}
