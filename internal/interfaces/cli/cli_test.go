package cli_test

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	domain "github.com/mohammadpnp/resumebatch/internal/domain/batch"
	"github.com/mohammadpnp/resumebatch/internal/interfaces/cli"
	httpecho "github.com/mohammadpnp/resumebatch/internal/interfaces/http/echo"

	appbatch "github.com/mohammadpnp/resumebatch/internal/application/batch"
)

// fakeStateStore/fakeObjectStore duplicate the minimal in-memory
// domain.StateStore/domain.ObjectStore used by the HTTP handler
// tests, scoped to this package so the CLI can be exercised against
// a real engine server without importing an internal test helper
// from another package.
type fakeStateStore struct {
	batches map[string]*domain.Batch
	items   map[string]*domain.Item
}

func newFakeStateStore() *fakeStateStore {
	return &fakeStateStore{batches: map[string]*domain.Batch{}, items: map[string]*domain.Item{}}
}

func (s *fakeStateStore) CreateBatch(_ context.Context, in domain.CreateBatchInput) error {
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
	b, ok := s.batches[batchID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *fakeStateStore) ListItems(_ context.Context, batchID string, filter domain.ItemFilter) ([]domain.Item, error) {
	var out []domain.Item
	for _, it := range s.items {
		if it.BatchID == batchID {
			out = append(out, *it)
		}
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
	b, ok := s.batches[batchID]
	if !ok {
		return 0, domain.ErrNotFound
	}
	b.Status = domain.StatusCancelled
	b.UpdatedAt = now
	return 0, nil
}

func (s *fakeStateStore) SetBatchStatus(_ context.Context, batchID string, from, to domain.Status, now time.Time) (bool, error) {
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
	delete(s.batches, batchID)
	return nil
}
func (s *fakeStateStore) ListBatchIDsByStatus(context.Context, domain.Status) ([]string, error) {
	return nil, nil
}

type fakeObjectStore struct{ objects map[string][]byte }

func newFakeObjectStore() *fakeObjectStore { return &fakeObjectStore{objects: map[string][]byte{}} }

func (o *fakeObjectStore) Put(_ context.Context, batchID, itemID, filename string, data []byte) (string, error) {
	key := batchID + "/" + itemID + "/" + filename
	o.objects[key] = data
	return "mem://" + key, nil
}

func (o *fakeObjectStore) DeleteAll(context.Context, string) error { return nil }

func newTestEngine(t *testing.T) string {
	t.Helper()
	ctrl := &appbatch.Controller{Store: newFakeStateStore(), Object: newFakeObjectStore(), Cfg: appbatch.DefaultEngineConfig()}
	srv := httptest.NewServer(httpecho.NewServer(ctrl))
	t.Cleanup(srv.Close)
	return srv.URL
}

func runCLI(t *testing.T, engineURL string, args ...string) (string, error) {
	t.Helper()
	root := cli.NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(append([]string{"--engine-url", engineURL}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestCreateAndStatus(t *testing.T) {
	t.Parallel()
	url := newTestEngine(t)

	dir := t.TempDir()
	filePath := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(filePath, []byte("resume text"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	out, err := runCLI(t, url, "--owner-id", "owner-1", "create", "--job-description", "go engineer", "--file", filePath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	batchID := strings.TrimSpace(out)
	if batchID == "" {
		t.Fatal("expected a batch id on stdout")
	}

	statusOut, err := runCLI(t, url, "--owner-id", "owner-1", "status", batchID)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !strings.Contains(statusOut, batchID) {
		t.Fatalf("status output missing batch id: %s", statusOut)
	}
}

func TestStatusNotFoundExitsWithCode3(t *testing.T) {
	t.Parallel()
	url := newTestEngine(t)

	_, err := runCLI(t, url, "--owner-id", "owner-1", "status", "does-not-exist")
	var cliErr *cli.CLIError
	if err == nil {
		t.Fatal("expected an error")
	}
	if !assertAs(t, err, &cliErr) {
		return
	}
	if cliErr.Code != cli.ExitNotFound {
		t.Fatalf("code = %d, want %d", cliErr.Code, cli.ExitNotFound)
	}
}

func TestControlForbiddenExitsWithCode2(t *testing.T) {
	t.Parallel()
	url := newTestEngine(t)

	dir := t.TempDir()
	filePath := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(filePath, []byte("resume text"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	out, err := runCLI(t, url, "--owner-id", "owner-1", "create", "--job-description", "go engineer", "--file", filePath)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	batchID := strings.TrimSpace(out)

	_, err = runCLI(t, url, "--owner-id", "someone-else", "pause", batchID)
	var cliErr *cli.CLIError
	if err == nil {
		t.Fatal("expected an error")
	}
	if !assertAs(t, err, &cliErr) {
		return
	}
	if cliErr.Code != cli.ExitPermissionDenied {
		t.Fatalf("code = %d, want %d", cliErr.Code, cli.ExitPermissionDenied)
	}
}

func assertAs(t *testing.T, err error, target **cli.CLIError) bool {
	t.Helper()
	if e, ok := err.(*cli.CLIError); ok {
		*target = e
		return true
	}
	t.Fatalf("error is not *cli.CLIError: %v", err)
	return false
}
