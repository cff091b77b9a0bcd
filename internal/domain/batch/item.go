package batch

import (
	"encoding/json"
	"time"
)

// ItemStatus is an Item's lifecycle state.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemRunning   ItemStatus = "running"
	ItemComplete  ItemStatus = "complete"
	ItemFailed    ItemStatus = "failed"
	ItemCancelled ItemStatus = "cancelled"
)

// ErrorDetail is the recorded reason for a transient retry or a
// permanent failure.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorClassTimeout is recorded by the watchdog on lease expiry.
const ErrorClassTimeout = "timeout"

// Item is one document within a batch; the unit of work.
type Item struct {
	ID             string
	BatchID        string
	FileRef        string
	FileHash       string
	Status         ItemStatus
	WorkerID       *string
	StartTime      *time.Time
	LastUpdatedAt  time.Time
	RetryCount     int
	MaxRetries     int
	Result         json.RawMessage
	Error          *ErrorDetail
}

// IsRunning reports whether the item carries a live claim, which must
// coincide exactly with a non-nil (WorkerID, StartTime) pair.
func (i Item) IsRunning() bool {
	return i.Status == ItemRunning
}

// LeaseConsistent reports the invariant that worker_id and start_time
// are non-nil if and only if the item is running.
func (i Item) LeaseConsistent() bool {
	claimed := i.WorkerID != nil && i.StartTime != nil
	unclaimed := i.WorkerID == nil && i.StartTime == nil
	if !claimed && !unclaimed {
		return false
	}
	return claimed == i.IsRunning()
}

// Terminal reports whether the item is in an absorbing state with no
// outgoing transitions.
func (i Item) Terminal() bool {
	switch i.Status {
	case ItemComplete, ItemFailed, ItemCancelled:
		return true
	default:
		return false
	}
}

// CanRetry reports whether a transient failure may still be retried
// rather than promoted to failed.
func (i Item) CanRetry() bool {
	return i.RetryCount < i.MaxRetries
}

// ErrorClass classifies an Analyzer Adapter outcome.
type ErrorClass string

const (
	ErrorClassNone      ErrorClass = ""
	ErrorClassTransient ErrorClass = "transient"
	ErrorClassPermanent ErrorClass = "permanent"
)
