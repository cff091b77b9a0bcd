package batch

import (
	"context"
	"fmt"

	"github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// GetBatchRequest is the Batch Controller's get operation input.
type GetBatchRequest struct {
	OwnerID string
	BatchID string
}

// Get returns a batch snapshot, authorized against OwnerID.
func (c *Controller) Get(ctx context.Context, req GetBatchRequest) (*batch.Batch, error) {
	return c.authorize(ctx, req.OwnerID, req.BatchID)
}

// ListItemsRequest is the Batch Controller's list_items operation
// input.
type ListItemsRequest struct {
	OwnerID string
	BatchID string
	Filter  batch.ItemFilter
}

// ListItems returns item snapshots for a batch, authorized against
// OwnerID, honoring an optional status/pagination filter.
func (c *Controller) ListItems(ctx context.Context, req ListItemsRequest) ([]batch.Item, error) {
	if _, err := c.authorize(ctx, req.OwnerID, req.BatchID); err != nil {
		return nil, err
	}
	items, err := c.Store.ListItems(ctx, req.BatchID, req.Filter)
	if err != nil {
		return nil, fmt.Errorf("list items for %s: %w", req.BatchID, err)
	}
	return items, nil
}
