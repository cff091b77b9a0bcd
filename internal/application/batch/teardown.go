package batch

import (
	"context"
	"fmt"
)

// TeardownRequest is the Batch Controller's teardown operation
// input.
type TeardownRequest struct {
	OwnerID string
	BatchID string
}

// Teardown deletes a batch's items, the batch row, then its
// object-store prefix, per spec.md §4.8. Idempotent with respect to
// partial prior deletions. The batch's status is not checked, here or
// in the HTTP/CLI surface: a running batch is torn down like any other.
func (c *Controller) Teardown(ctx context.Context, req TeardownRequest) error {
	if _, err := c.authorize(ctx, req.OwnerID, req.BatchID); err != nil {
		return err
	}
	if err := c.Store.DeleteBatch(ctx, req.BatchID); err != nil {
		return fmt.Errorf("delete batch %s: %w", req.BatchID, err)
	}
	if err := c.Object.DeleteAll(ctx, req.BatchID); err != nil {
		return fmt.Errorf("delete objects for %s: %w", req.BatchID, err)
	}
	return nil
}
