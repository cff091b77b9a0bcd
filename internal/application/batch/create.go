package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mohammadpnp/resumebatch/internal/domain/batch"
	"github.com/mohammadpnp/resumebatch/internal/domain/hashing"
)

// InputFile is one caller-supplied file at batch creation, before
// hashing or upload.
type InputFile struct {
	Filename string
	Bytes    []byte
}

// CreateBatchRequest is the Batch Controller's create operation
// input.
type CreateBatchRequest struct {
	OwnerID        string
	JobDescription string
	Files          []InputFile
}

// CreateBatchResult is what a successful create returns.
type CreateBatchResult struct {
	BatchID string
}

// Controller implements the Batch Controller operations (create,
// control, get, list items, teardown), mirroring the teacher's
// use-case-per-file layering: each method here has a matching
// request/result pair and a single injected StateStore/ObjectStore
// pair of collaborators.
type Controller struct {
	Store  batch.StateStore
	Object batch.ObjectStore
	Cfg    EngineConfig
	// OnBatchCreated, when set, is invoked with batchID so the caller
	// can schedule a Worker for it; kept as an injected hook rather
	// than a hard Worker dependency so the Controller stays testable
	// without spinning up goroutines.
	OnBatchCreated func(batchID string)
}

// Create hashes and deduplicates the input files, uploads the
// survivors, and atomically opens the batch, per spec.md §4.8
// create().
func (c *Controller) Create(ctx context.Context, req CreateBatchRequest) (CreateBatchResult, error) {
	if req.OwnerID == "" {
		return CreateBatchResult{}, ErrInvalidOwnerID
	}
	if req.JobDescription == "" {
		return CreateBatchResult{}, batch.ErrInvalidJobDescription
	}
	if len(req.Files) == 0 {
		return CreateBatchResult{}, batch.ErrNoFiles
	}

	batchID := uuid.NewString()
	seenHashes := make(map[string]struct{}, len(req.Files))
	var items []batch.NewItemInput
	var skipped int64

	for _, f := range req.Files {
		digest := hashing.Bytes(f.Bytes)
		if _, dup := seenHashes[digest]; dup {
			skipped++
			continue
		}
		seenHashes[digest] = struct{}{}

		itemID := uuid.NewString()
		fileRef, err := c.Object.Put(ctx, batchID, itemID, f.Filename, f.Bytes)
		if err != nil {
			_ = c.Object.DeleteAll(ctx, batchID)
			return CreateBatchResult{}, fmt.Errorf("upload %s: %w", f.Filename, err)
		}

		items = append(items, batch.NewItemInput{
			ItemID:     itemID,
			FileRef:    fileRef,
			FileHash:   digest,
			MaxRetries: c.effectiveMaxRetries(),
		})
	}

	if err := c.Store.CreateBatch(ctx, batch.CreateBatchInput{
		BatchID:           batchID,
		OwnerID:           req.OwnerID,
		JobDescription:    req.JobDescription,
		Items:             items,
		SkippedDuplicates: skipped,
	}); err != nil {
		_ = c.Object.DeleteAll(ctx, batchID)
		return CreateBatchResult{}, fmt.Errorf("create batch: %w", err)
	}

	now := time.Now()
	if len(items) == 0 {
		// Boundary behavior: a batch with total=0 (every file a
		// duplicate) closes immediately rather than waiting for a
		// worker that will never find work.
		if err := RecomputeCompletion(ctx, c.Store, batchID, now); err != nil {
			return CreateBatchResult{}, fmt.Errorf("close empty batch: %w", err)
		}
	} else if c.OnBatchCreated != nil {
		c.OnBatchCreated(batchID)
	}

	return CreateBatchResult{BatchID: batchID}, nil
}

func (c *Controller) effectiveMaxRetries() int {
	if c.Cfg.MaxRetries > 0 {
		return c.Cfg.MaxRetries
	}
	return DefaultEngineConfig().MaxRetries
}
