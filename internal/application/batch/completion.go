package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// RecomputeCompletion re-reads the batch's counters and, if the batch
// is closed and still running, flips it to complete exactly once.
// Called from both the Worker Loop after every terminal item
// transition and the Watchdog after every lease-expiry promotion to
// failed, per spec.md §4.9.
func RecomputeCompletion(ctx context.Context, store batch.StateStore, batchID string, now time.Time) error {
	b, err := store.GetBatch(ctx, batchID)
	if err != nil {
		return fmt.Errorf("recompute completion for %s: %w", batchID, err)
	}
	if !b.Valid() {
		if err := store.PauseInvariantViolation(ctx, batchID, now); err != nil {
			return fmt.Errorf("pause %s on invariant violation: %w", batchID, err)
		}
		return fmt.Errorf("batch %s: %w", batchID, batch.ErrInvariantViolation)
	}
	if b.Status != batch.StatusRunning || !b.IsClosed() {
		return nil
	}
	if err := store.RecomputeCompletion(ctx, batchID, now); err != nil {
		return fmt.Errorf("complete %s: %w", batchID, err)
	}
	return nil
}
