package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// ControlAction is one of the three batch control verbs spec.md §4.8
// names.
type ControlAction string

const (
	ActionPause  ControlAction = "pause"
	ActionResume ControlAction = "resume"
	ActionCancel ControlAction = "cancel"
)

// ControlResult reports the outcome of a control action; NotApplicable
// covers every disallowed transition, which spec.md §4.8 treats as a
// successful no-op rather than an error.
type ControlResult string

const (
	ControlOK            ControlResult = "ok"
	ControlNotApplicable ControlResult = "not_applicable"
)

// ControlRequest is the Batch Controller's control operation input.
type ControlRequest struct {
	OwnerID string
	BatchID string
	Action  ControlAction
}

// Control applies pause/resume/cancel, authorized against OwnerID.
// Disallowed transitions are reported as ControlNotApplicable rather
// than an error, and resuming reschedules a Worker via
// OnBatchCreated.
func (c *Controller) Control(ctx context.Context, req ControlRequest) (ControlResult, error) {
	b, err := c.authorize(ctx, req.OwnerID, req.BatchID)
	if err != nil {
		return "", err
	}

	now := time.Now()
	switch req.Action {
	case ActionPause:
		applied, err := c.Store.SetBatchStatus(ctx, req.BatchID, batch.StatusRunning, batch.StatusPaused, now)
		if err != nil {
			return "", fmt.Errorf("pause %s: %w", req.BatchID, err)
		}
		if !applied {
			return ControlNotApplicable, nil
		}
		return ControlOK, nil

	case ActionResume:
		applied, err := c.Store.SetBatchStatus(ctx, req.BatchID, batch.StatusPaused, batch.StatusRunning, now)
		if err != nil {
			return "", fmt.Errorf("resume %s: %w", req.BatchID, err)
		}
		if !applied {
			return ControlNotApplicable, nil
		}
		if c.OnBatchCreated != nil {
			c.OnBatchCreated(req.BatchID)
		}
		return ControlOK, nil

	case ActionCancel:
		if b.Status != batch.StatusRunning && b.Status != batch.StatusPaused {
			return ControlNotApplicable, nil
		}
		if _, err := c.Store.CancelPendingItems(ctx, req.BatchID, now); err != nil {
			return "", fmt.Errorf("cancel %s: %w", req.BatchID, err)
		}
		return ControlOK, nil

	default:
		return ControlNotApplicable, nil
	}
}

// authorize loads the batch and checks OwnerID, translating a
// mismatch into batch.ErrForbidden per spec.md §4.8's authorization
// rule.
func (c *Controller) authorize(ctx context.Context, ownerID, batchID string) (*batch.Batch, error) {
	b, err := c.Store.GetBatch(ctx, batchID)
	if err != nil {
		return nil, fmt.Errorf("get batch %s: %w", batchID, err)
	}
	if b.OwnerID != ownerID {
		return nil, batch.ErrForbidden
	}
	return b, nil
}
