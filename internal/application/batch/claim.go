package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// maxClaimAttempts bounds how many times ClaimNext calls the store's
// ClaimNext when that call returns an error.
const maxClaimAttempts = 3

// ClaimNext performs the Claim Engine's single public operation: it
// atomically selects and leases the oldest pending item in batchID,
// or reports that none is available (nil item, nil error). A race
// against another claimant is absorbed by the store itself, which
// skips rows already being claimed. A store error is retried up to
// maxClaimAttempts times; if every attempt fails, the last error is
// returned wrapped.
func ClaimNext(ctx context.Context, store batch.StateStore, batchID, workerID string, now time.Time) (*batch.Item, error) {
	var lastErr error
	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		result, err := store.ClaimNext(ctx, batchID, workerID, now)
		if err != nil {
			lastErr = err
			continue
		}
		if !result.Found {
			return nil, nil
		}
		return result.Item, nil
	}
	if lastErr == nil {
		return nil, nil
	}
	return nil, fmt.Errorf("claim %s: exhausted %d attempts: %w", batchID, maxClaimAttempts, lastErr)
}
