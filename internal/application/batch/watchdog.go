package batch

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// WatchdogDeps are the Watchdog's injected collaborators.
type WatchdogDeps struct {
	Store  batch.StateStore
	Logger *zap.Logger
	// OnRecovery, when set, is called once per item promoted to
	// pending or failed by a sweep.
	OnRecovery func(promotedToFailed bool)
}

// Watchdog periodically reclaims items whose lease has expired,
// per spec.md §4.10. It is independent of any Worker; the two
// communicate only through the State Store.
type Watchdog struct {
	deps WatchdogDeps
	cfg  EngineConfig
}

// NewWatchdog constructs a Watchdog. Missing cfg fields are
// backfilled with DefaultEngineConfig's values.
func NewWatchdog(deps WatchdogDeps, cfg EngineConfig) *Watchdog {
	if cfg.LeaseSeconds <= 0 {
		cfg.LeaseSeconds = DefaultEngineConfig().LeaseSeconds
	}
	if cfg.WatchdogIntervalMS <= 0 {
		cfg.WatchdogIntervalMS = DefaultEngineConfig().WatchdogIntervalMS
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Watchdog{deps: deps, cfg: cfg}
}

// Run loops on cfg.WatchdogInterval, sweeping for expired leases,
// until ctx is cancelled.
func (wd *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(wd.cfg.WatchdogInterval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := wd.Sweep(ctx); err != nil {
				wd.deps.Logger.Error("watchdog sweep failed", zap.Error(err))
			}
		}
	}
}

// Sweep performs one lease-expiry recovery pass across all batches
// and recomputes completion for every batch that had a promotion.
func (wd *Watchdog) Sweep(ctx context.Context) error {
	now := time.Now()
	deadline := now.Add(-wd.cfg.LeaseDuration())

	failedBatchIDs, err := wd.deps.Store.ReclaimExpiredLeases(ctx, deadline, now)
	if err != nil {
		return err
	}
	if len(failedBatchIDs) == 0 {
		return nil
	}

	wd.deps.Logger.Info("watchdog reclaimed expired leases", zap.Int("affected_batches", len(failedBatchIDs)))
	if wd.deps.OnRecovery != nil {
		for range failedBatchIDs {
			wd.deps.OnRecovery(true)
		}
	}

	for _, batchID := range failedBatchIDs {
		if err := RecomputeCompletion(ctx, wd.deps.Store, batchID, now); err != nil {
			wd.deps.Logger.Error("watchdog recompute completion failed", zap.String("batch_id", batchID), zap.Error(err))
		}
	}
	return nil
}
