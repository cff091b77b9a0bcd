package batch_test

import (
	"context"
	"sort"
	"sync"
	"time"

	domain "github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// fakeStateStore is an in-memory implementation of domain.StateStore,
// written by hand against the narrow interface rather than generated
// by a mocking framework, matching the teacher's fakeWorkerRepo style
// in internal/application/user/import_worker_test.go.
type fakeStateStore struct {
	mu      sync.Mutex
	batches map[string]*domain.Batch
	items   map[string]*domain.Item // item_id -> item

	completeCalls int
	retryCalls    int
	failCalls     int
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{
		batches: map[string]*domain.Batch{},
		items:   map[string]*domain.Item{},
	}
}

func (s *fakeStateStore) CreateBatch(_ context.Context, in domain.CreateBatchInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.batches[in.BatchID] = &domain.Batch{
		ID:                in.BatchID,
		OwnerID:           in.OwnerID,
		Status:            domain.StatusRunning,
		JobDescription:    in.JobDescription,
		Total:             int64(len(in.Items)),
		SkippedDuplicates: in.SkippedDuplicates,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	for _, it := range in.Items {
		s.items[it.ItemID] = &domain.Item{
			ID:            it.ItemID,
			BatchID:       in.BatchID,
			FileRef:       it.FileRef,
			FileHash:      it.FileHash,
			Status:        domain.ItemPending,
			MaxRetries:    it.MaxRetries,
			LastUpdatedAt: now,
		}
	}
	return nil
}

func (s *fakeStateStore) GetBatch(_ context.Context, batchID string) (*domain.Batch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[batchID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeStateStore) ListItems(_ context.Context, batchID string, filter domain.ItemFilter) ([]domain.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Item
	for _, it := range s.items {
		if it.BatchID != batchID {
			continue
		}
		if filter.Status != "" && it.Status != filter.Status {
			continue
		}
		out = append(out, *it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdatedAt.Before(out[j].LastUpdatedAt) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *fakeStateStore) ClaimNext(_ context.Context, batchID, workerID string, now time.Time) (domain.ClaimResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest *domain.Item
	for _, it := range s.items {
		if it.BatchID != batchID || it.Status != domain.ItemPending {
			continue
		}
		if oldest == nil || it.LastUpdatedAt.Before(oldest.LastUpdatedAt) {
			oldest = it
		}
	}
	if oldest == nil {
		return domain.ClaimResult{Found: false}, nil
	}

	wid := workerID
	start := now
	oldest.Status = domain.ItemRunning
	oldest.WorkerID = &wid
	oldest.StartTime = &start
	oldest.LastUpdatedAt = now

	cp := *oldest
	return domain.ClaimResult{Item: &cp, Found: true}, nil
}

func (s *fakeStateStore) CompleteItem(_ context.Context, itemID, workerID string, result []byte, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[itemID]
	if !ok {
		return domain.ErrNotFound
	}
	if it.Status != domain.ItemRunning {
		return domain.ErrNotPending
	}
	if it.WorkerID == nil || *it.WorkerID != workerID {
		return domain.ErrWorkerMismatch
	}
	it.Status = domain.ItemComplete
	it.WorkerID = nil
	it.StartTime = nil
	it.Result = result
	it.Error = nil
	it.LastUpdatedAt = now

	s.completeCalls++
	b := s.batches[it.BatchID]
	b.Completed++
	b.UpdatedAt = now
	return nil
}

func (s *fakeStateStore) RetryItem(_ context.Context, f domain.TransientFailure, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[f.ItemID]
	if !ok {
		return domain.ErrNotFound
	}
	if it.Status != domain.ItemRunning {
		return domain.ErrNotPending
	}
	if it.WorkerID == nil || *it.WorkerID != f.WorkerID {
		return domain.ErrWorkerMismatch
	}
	it.RetryCount++
	it.WorkerID = nil
	it.StartTime = nil
	it.Status = domain.ItemPending
	it.Error = &domain.ErrorDetail{Code: f.ErrorCode, Message: f.ErrorMsg}
	it.LastUpdatedAt = now

	s.retryCalls++
	b := s.batches[it.BatchID]
	b.UpdatedAt = now
	return nil
}

func (s *fakeStateStore) FailItem(_ context.Context, f domain.PermanentFailure, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[f.ItemID]
	if !ok {
		return domain.ErrNotFound
	}
	if it.Status != domain.ItemRunning {
		return domain.ErrNotPending
	}
	if it.WorkerID == nil || *it.WorkerID != f.WorkerID {
		return domain.ErrWorkerMismatch
	}
	it.Status = domain.ItemFailed
	it.WorkerID = nil
	it.StartTime = nil
	it.Error = &domain.ErrorDetail{Code: f.ErrorCode, Message: f.ErrorMsg}
	it.LastUpdatedAt = now

	s.failCalls++
	b := s.batches[it.BatchID]
	b.Failed++
	b.UpdatedAt = now
	return nil
}

func (s *fakeStateStore) ReclaimExpiredLeases(_ context.Context, before, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	failedBatches := map[string]struct{}{}
	for _, it := range s.items {
		if it.Status != domain.ItemRunning || it.StartTime == nil || !it.StartTime.Before(before) {
			continue
		}
		it.WorkerID = nil
		it.StartTime = nil
		it.Error = &domain.ErrorDetail{Code: domain.ErrorClassTimeout, Message: "lease expired before completion"}
		it.LastUpdatedAt = now

		b := s.batches[it.BatchID]
		if it.RetryCount+1 > it.MaxRetries {
			it.Status = domain.ItemFailed
			b.Failed++
			failedBatches[it.BatchID] = struct{}{}
		} else {
			it.RetryCount++
			it.Status = domain.ItemPending
		}
		b.UpdatedAt = now
	}

	out := make([]string, 0, len(failedBatches))
	for id := range failedBatches {
		out = append(out, id)
	}
	return out, nil
}

func (s *fakeStateStore) CancelPendingItems(_ context.Context, batchID string, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[batchID]
	if !ok {
		return 0, domain.ErrNotFound
	}

	cancelled := 0
	for _, it := range s.items {
		if it.BatchID != batchID || it.Status != domain.ItemPending {
			continue
		}
		it.Status = domain.ItemCancelled
		it.LastUpdatedAt = now
		cancelled++
	}
	b.CancelledCount += int64(cancelled)
	b.Status = domain.StatusCancelled
	b.UpdatedAt = now
	return cancelled, nil
}

func (s *fakeStateStore) SetBatchStatus(_ context.Context, batchID string, from, to domain.Status, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[batchID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if b.Status != from {
		return false, nil
	}
	b.Status = to
	b.UpdatedAt = now
	return true, nil
}

func (s *fakeStateStore) RecomputeCompletion(_ context.Context, batchID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.batches[batchID]
	if !ok {
		return domain.ErrNotFound
	}
	if b.Status != domain.StatusRunning {
		return nil
	}
	if !b.IsClosed() {
		return nil
	}
	b.Status = domain.StatusComplete
	b.UpdatedAt = now
	return nil
}

func (s *fakeStateStore) PauseInvariantViolation(_ context.Context, batchID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[batchID]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = domain.StatusPaused
	b.UpdatedAt = now
	return nil
}

func (s *fakeStateStore) DeleteBatch(_ context.Context, batchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, it := range s.items {
		if it.BatchID == batchID {
			delete(s.items, id)
		}
	}
	delete(s.batches, batchID)
	return nil
}

func (s *fakeStateStore) ListBatchIDsByStatus(_ context.Context, status domain.Status) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, b := range s.batches {
		if b.Status == status {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// fakeObjectStore is an in-memory implementation of domain.ObjectStore.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (o *fakeObjectStore) Put(_ context.Context, batchID, itemID, filename string, data []byte) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := batchID + "/" + itemID + "/" + filename
	if _, exists := o.objects[key]; exists {
		return "", domain.ErrDuplicateFileRef
	}
	o.objects[key] = data
	return "mem://" + key, nil
}

func (o *fakeObjectStore) DeleteAll(_ context.Context, batchID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	prefix := batchID + "/"
	for key := range o.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(o.objects, key)
		}
	}
	o.deleted = append(o.deleted, batchID)
	return nil
}
