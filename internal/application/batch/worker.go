package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// WorkerDeps are the gateways a Worker needs injected, following the
// teacher's pattern of passing narrow collaborators into the
// constructor rather than reaching for ambient globals.
type WorkerDeps struct {
	Store    batch.StateStore
	Analyzer batch.Analyzer
	Logger   *zap.Logger
	// OnOutcome, when set, is invoked after every claim attempt for
	// metrics; nil is a valid no-op recorder.
	OnOutcome func(outcome string)
}

// Worker runs one batch's items to exhaustion: claim, analyze, write
// outcome, recompute completion, self-reschedule. Mirrors the
// teacher's ImportWorker, specialized to one worker task per batch
// per spec.md §4.7's default deployment.
type Worker struct {
	deps WorkerDeps
	cfg  EngineConfig
	once sync.Once
}

// NewWorker constructs a Worker. Missing cfg fields are backfilled
// with DefaultEngineConfig's values.
func NewWorker(deps WorkerDeps, cfg EngineConfig) *Worker {
	if cfg.LeaseSeconds <= 0 {
		cfg.LeaseSeconds = DefaultEngineConfig().LeaseSeconds
	}
	if cfg.WorkerBackoffBaseMS <= 0 {
		cfg.WorkerBackoffBaseMS = DefaultEngineConfig().WorkerBackoffBaseMS
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Worker{deps: deps, cfg: cfg}
}

// Start spawns the worker loop for batchID in a background goroutine.
// Calling Start more than once on the same Worker is a no-op; a
// Worker is scoped to a single batch for its lifetime.
func (w *Worker) Start(ctx context.Context, batchID string) {
	w.once.Do(func() {
		go w.loop(ctx, batchID)
	})
}

// RunOnce executes a single claim-analyze-commit cycle for batchID.
// It returns (claimed=false, nil) when there was no pending work, and
// the caller should decide whether to keep polling or stop.
func (w *Worker) RunOnce(ctx context.Context, batchID string) (claimed bool, err error) {
	workerID := uuid.NewString()
	now := time.Now()

	b, err := w.deps.Store.GetBatch(ctx, batchID)
	if err != nil {
		return false, fmt.Errorf("worker read batch %s: %w", batchID, err)
	}
	if b.Status != batch.StatusRunning {
		return false, nil
	}

	item, err := ClaimNext(ctx, w.deps.Store, batchID, workerID, now)
	if err != nil {
		w.record("claim_error")
		return false, fmt.Errorf("worker claim in batch %s: %w", batchID, err)
	}
	if item == nil {
		w.record("no_work")
		return false, nil
	}
	w.record("claimed")

	result, class, message, analyzeErr := w.deps.Analyzer.Analyze(ctx, item.FileRef, b.JobDescription)
	if err := w.applyOutcome(ctx, *item, workerID, result, class, message, analyzeErr); err != nil {
		return true, fmt.Errorf("worker apply outcome for item %s: %w", item.ID, err)
	}
	if err := RecomputeCompletion(ctx, w.deps.Store, batchID, time.Now()); err != nil {
		return true, fmt.Errorf("worker recompute completion for batch %s: %w", batchID, err)
	}
	return true, nil
}

// applyOutcome writes the terminal or retry transition dictated by
// the analyzer's classified outcome, always predicating the write on
// workerID per spec.md §4.7 step 4.
func (w *Worker) applyOutcome(ctx context.Context, item batch.Item, workerID string, result []byte, class batch.ErrorClass, message string, analyzeErr error) error {
	now := time.Now()

	if analyzeErr == nil && class == batch.ErrorClassNone {
		w.record("completed")
		w.deps.Logger.Info("item completed",
			zap.String("batch_id", item.BatchID), zap.String("item_id", item.ID), zap.String("worker_id", workerID))
		return w.deps.Store.CompleteItem(ctx, item.ID, workerID, result, now)
	}

	errMsg := message
	if errMsg == "" && analyzeErr != nil {
		errMsg = analyzeErr.Error()
	}
	errCode := string(class)
	if errCode == "" {
		errCode = "permanent"
	}

	if class == batch.ErrorClassTransient && item.CanRetry() {
		w.record("retried")
		w.deps.Logger.Warn("item retry scheduled",
			zap.String("batch_id", item.BatchID), zap.String("item_id", item.ID), zap.String("worker_id", workerID), zap.String("error_code", errCode))
		return w.deps.Store.RetryItem(ctx, batch.TransientFailure{
			ItemID: item.ID, WorkerID: workerID, ErrorCode: errCode, ErrorMsg: errMsg,
		}, now)
	}

	w.record("failed")
	w.deps.Logger.Error("item failed",
		zap.String("batch_id", item.BatchID), zap.String("item_id", item.ID), zap.String("worker_id", workerID), zap.String("error_code", errCode))
	return w.deps.Store.FailItem(ctx, batch.PermanentFailure{
		ItemID: item.ID, WorkerID: workerID, ErrorCode: errCode, ErrorMsg: errMsg,
	}, now)
}

func (w *Worker) record(outcome string) {
	if w.deps.OnOutcome != nil {
		w.deps.OnOutcome(outcome)
	}
}

// loop self-reschedules RunOnce until the batch leaves the running
// state or ctx is cancelled, backing off exponentially after
// consecutive empty claims or errors and resetting as soon as work is
// found, the way the teacher's workerLoop backs off after an empty
// poll.
func (w *Worker) loop(ctx context.Context, batchID string) {
	bo := w.newBackoff()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		claimed, err := w.RunOnce(ctx, batchID)
		if err != nil {
			w.deps.Logger.Error("worker iteration failed", zap.String("batch_id", batchID), zap.Error(err))
			if !sleepWithContext(ctx, bo.NextBackOff()) {
				return
			}
			continue
		}
		if claimed {
			bo.Reset()
			continue
		}

		b, err := w.deps.Store.GetBatch(ctx, batchID)
		if err != nil || b.Status != batch.StatusRunning {
			return
		}
		if !sleepWithContext(ctx, bo.NextBackOff()) {
			return
		}
	}
}

// newBackoff builds the worker's poll backoff, grown exponentially
// from cfg.BackoffBase with no ceiling on the number of retries (the
// loop itself is bounded by ctx, not by the backoff).
func (w *Worker) newBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = w.cfg.BackoffBase()
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// sleepWithContext sleeps for d or until ctx is cancelled, reporting
// which happened first. Mirrors the teacher's helper of the same
// name in internal/application/user/import_worker.go.
func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
