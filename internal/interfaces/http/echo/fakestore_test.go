package echo_test

import (
	"context"
	"sync"
	"time"

	domain "github.com/mohammadpnp/resumebatch/internal/domain/batch"
)

// fakeStateStore is a minimal in-memory domain.StateStore for
// exercising the HTTP handlers end to end, hand-written against the
// interface rather than generated.
type fakeStateStore struct {
	mu      sync.Mutex
	batches map[string]*domain.Batch
	items   map[string]*domain.Item
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{batches: map[string]*domain.Batch{}, items: map[string]*domain.Item{}}
}

func (s *fakeStateStore) CreateBatch(_ context.Context, in domain.CreateBatchInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	s.batches[in.BatchID] = &domain.Batch{
		ID: in.BatchID, OwnerID: in.OwnerID, Status: domain.StatusRunning,
		JobDescription: in.JobDescription, Total: int64(len(in.Items)),
		SkippedDuplicates: in.SkippedDuplicates, CreatedAt: now, UpdatedAt: now,
	}
	for _, it := range in.Items {
		s.items[it.ItemID] = &domain.Item{
			ID: it.ItemID, BatchID: in.BatchID, FileRef: it.FileRef, FileHash: it.FileHash,
			Status: domain.ItemPending, MaxRetries: it.MaxRetries, LastUpdatedAt: now,
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
	return out, nil
}

func (s *fakeStateStore) ClaimNext(context.Context, string, string, time.Time) (domain.ClaimResult, error) {
	return domain.ClaimResult{Found: false}, nil
}

func (s *fakeStateStore) CompleteItem(context.Context, string, string, []byte, time.Time) error {
	return nil
}

func (s *fakeStateStore) RetryItem(context.Context, domain.TransientFailure, time.Time) error {
	return nil
}

func (s *fakeStateStore) FailItem(context.Context, domain.PermanentFailure, time.Time) error {
	return nil
}

func (s *fakeStateStore) ReclaimExpiredLeases(context.Context, time.Time, time.Time) ([]string, error) {
	return nil, nil
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
		if it.BatchID == batchID && it.Status == domain.ItemPending {
			it.Status = domain.ItemCancelled
			cancelled++
		}
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

func (s *fakeStateStore) RecomputeCompletion(context.Context, string, time.Time) error { return nil }

func (s *fakeStateStore) PauseInvariantViolation(context.Context, string, time.Time) error {
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

// fakeObjectStore is a minimal in-memory domain.ObjectStore.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (o *fakeObjectStore) Put(_ context.Context, batchID, itemID, filename string, data []byte) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := batchID + "/" + itemID + "/" + filename
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
	return nil
}
