// Package repository holds the State Store Gateway implementation,
// splitting reads and hot-path atomic writes across two drivers the
// same way the teacher splits ImportJobRepository (gorm) from
// UserBulkImportRepository (pgx).
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"

	domain "github.com/mohammadpnp/resumebatch/internal/domain/batch"
	"github.com/mohammadpnp/resumebatch/internal/infrastructure/db/models"
)

// PostgresStateStore implements domain.StateStore against a shared
// Postgres schema: pgxpool owns the atomic claim/transition SQL
// (raw UPDATE ... WHERE ... RETURNING), gorm owns the low-contention
// administrative reads.
type PostgresStateStore struct {
	pool *pgxpool.Pool
	db   *gorm.DB
}

// NewPostgresStateStore constructs a PostgresStateStore over an
// already-connected pool and gorm handle, the way the teacher wires
// both drivers from cmd/api/main.go.
func NewPostgresStateStore(pool *pgxpool.Pool, db *gorm.DB) *PostgresStateStore {
	return &PostgresStateStore{pool: pool, db: db}
}

func (s *PostgresStateStore) CreateBatch(ctx context.Context, in domain.CreateBatchInput) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin create batch tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	now := time.Now()
	_, err = tx.Exec(ctx, `
		INSERT INTO batches (id, owner_id, status, job_description, total, skipped_duplicates, created_at, updated_at)
		VALUES ($1, $2, 'running', $3, $4, $5, $6, $6)`,
		in.BatchID, in.OwnerID, in.JobDescription, len(in.Items), in.SkippedDuplicates, now)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	if len(in.Items) > 0 {
		rows := make([][]any, 0, len(in.Items))
		for _, item := range in.Items {
			rows = append(rows, []any{item.ItemID, in.BatchID, item.FileRef, item.FileHash, "pending", item.MaxRetries, now})
		}
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"items"},
			[]string{"id", "batch_id", "file_ref", "file_hash", "status", "max_retries", "last_updated_at"},
			pgx.CopyFromRows(rows))
		if err != nil {
			return fmt.Errorf("copy items: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit create batch tx: %w", err)
	}
	return nil
}

func (s *PostgresStateStore) GetBatch(ctx context.Context, batchID string) (*domain.Batch, error) {
	var row models.Batch
	if err := s.db.WithContext(ctx).First(&row, "id = ?", batchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get batch %s: %w", batchID, err)
	}
	return batchFromModel(row), nil
}

func (s *PostgresStateStore) ListItems(ctx context.Context, batchID string, filter domain.ItemFilter) ([]domain.Item, error) {
	q := s.db.WithContext(ctx).Where("batch_id = ?", batchID)
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if !filter.AfterLastUpdatedAt.IsZero() {
		q = q.Where("(last_updated_at, id) > (?, ?)", filter.AfterLastUpdatedAt, filter.AfterItemID)
	}
	q = q.Order("last_updated_at ASC, id ASC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []models.Item
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list items for batch %s: %w", batchID, err)
	}

	out := make([]domain.Item, len(rows))
	for i, r := range rows {
		out[i] = itemFromModel(r)
	}
	return out, nil
}

func (s *PostgresStateStore) ClaimNext(ctx context.Context, batchID, workerID string, now time.Time) (domain.ClaimResult, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE items SET status = 'running', worker_id = $1, start_time = $2, last_updated_at = $2
		WHERE id = (
			SELECT id FROM items
			WHERE batch_id = $3 AND status = 'pending'
			ORDER BY last_updated_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		AND EXISTS (SELECT 1 FROM batches WHERE id = $3 AND status = 'running')
		RETURNING id, batch_id, file_ref, file_hash, retry_count, max_retries, last_updated_at`,
		workerID, now, batchID)

	var it models.Item
	var itemID, itemBatchID, fileRef, fileHash string
	var retryCount, maxRetries int
	var lastUpdatedAt time.Time
	if err := row.Scan(&itemID, &itemBatchID, &fileRef, &fileHash, &retryCount, &maxRetries, &lastUpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ClaimResult{Found: false}, nil
		}
		return domain.ClaimResult{}, fmt.Errorf("claim next in batch %s: %w", batchID, err)
	}
	it = models.Item{ID: itemID, BatchID: itemBatchID, FileRef: fileRef, FileHash: fileHash, Status: "running", RetryCount: retryCount, MaxRetries: maxRetries, LastUpdatedAt: lastUpdatedAt}
	wid := workerID
	item := itemFromModel(it)
	item.WorkerID = &wid
	item.StartTime = &now
	return domain.ClaimResult{Item: &item, Found: true}, nil
}

func (s *PostgresStateStore) CompleteItem(ctx context.Context, itemID, workerID string, result []byte, now time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin complete tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var batchID string
	err = tx.QueryRow(ctx, `
		UPDATE items SET status = 'complete', worker_id = NULL, start_time = NULL,
			result = $1, error_code = NULL, error_message = NULL, last_updated_at = $2
		WHERE id = $3 AND status = 'running' AND worker_id = $4
		RETURNING batch_id`,
		result, now, itemID, workerID).Scan(&batchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrWorkerMismatch
		}
		return fmt.Errorf("complete item %s: %w", itemID, err)
	}

	if _, err := tx.Exec(ctx, `UPDATE batches SET completed = completed + 1, updated_at = $1 WHERE id = $2`, now, batchID); err != nil {
		return fmt.Errorf("increment completed for %s: %w", batchID, err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStateStore) RetryItem(ctx context.Context, f domain.TransientFailure, now time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE items SET status = 'pending', retry_count = retry_count + 1,
			worker_id = NULL, start_time = NULL, error_code = $1, error_message = $2, last_updated_at = $3
		WHERE id = $4 AND status = 'running' AND worker_id = $5`,
		f.ErrorCode, f.ErrorMsg, now, f.ItemID, f.WorkerID)
	if err != nil {
		return fmt.Errorf("retry item %s: %w", f.ItemID, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWorkerMismatch
	}
	return nil
}

func (s *PostgresStateStore) FailItem(ctx context.Context, f domain.PermanentFailure, now time.Time) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin fail tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	var batchID string
	err = tx.QueryRow(ctx, `
		UPDATE items SET status = 'failed', worker_id = NULL, start_time = NULL,
			error_code = $1, error_message = $2, last_updated_at = $3
		WHERE id = $4 AND status = 'running' AND worker_id = $5
		RETURNING batch_id`,
		f.ErrorCode, f.ErrorMsg, now, f.ItemID, f.WorkerID).Scan(&batchID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrWorkerMismatch
		}
		return fmt.Errorf("fail item %s: %w", f.ItemID, err)
	}

	if _, err := tx.Exec(ctx, `UPDATE batches SET failed = failed + 1, updated_at = $1 WHERE id = $2`, now, batchID); err != nil {
		return fmt.Errorf("increment failed for %s: %w", batchID, err)
	}
	return tx.Commit(ctx)
}

func (s *PostgresStateStore) ReclaimExpiredLeases(ctx context.Context, before, now time.Time) ([]string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin reclaim tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rows, err := tx.Query(ctx, `
		UPDATE items SET
			retry_count = CASE WHEN retry_count + 1 > max_retries THEN retry_count ELSE retry_count + 1 END,
			worker_id = NULL,
			start_time = NULL,
			error_code = 'timeout',
			error_message = 'lease expired before completion',
			last_updated_at = $1,
			status = CASE WHEN retry_count + 1 > max_retries THEN 'failed' ELSE 'pending' END
		WHERE status = 'running' AND start_time < $2
		RETURNING batch_id, status`,
		now, before)
	if err != nil {
		return nil, fmt.Errorf("reclaim expired leases: %w", err)
	}

	failedBatches := map[string]int64{}
	for rows.Next() {
		var batchID, status string
		if err := rows.Scan(&batchID, &status); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan reclaimed item: %w", err)
		}
		if status == "failed" {
			failedBatches[batchID]++
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reclaimed items: %w", err)
	}

	for batchID, n := range failedBatches {
		if _, err := tx.Exec(ctx, `UPDATE batches SET failed = failed + $1, updated_at = $2 WHERE id = $3`, n, now, batchID); err != nil {
			return nil, fmt.Errorf("increment failed for %s: %w", batchID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit reclaim tx: %w", err)
	}

	out := make([]string, 0, len(failedBatches))
	for id := range failedBatches {
		out = append(out, id)
	}
	return out, nil
}

func (s *PostgresStateStore) CancelPendingItems(ctx context.Context, batchID string, now time.Time) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	tag, err := tx.Exec(ctx, `
		UPDATE items SET status = 'cancelled', last_updated_at = $1
		WHERE batch_id = $2 AND status = 'pending'`,
		now, batchID)
	if err != nil {
		return 0, fmt.Errorf("sweep pending items for %s: %w", batchID, err)
	}
	cancelled := int(tag.RowsAffected())

	if _, err := tx.Exec(ctx, `
		UPDATE batches SET status = 'cancelled', cancelled_count = cancelled_count + $1, updated_at = $2
		WHERE id = $3`,
		cancelled, now, batchID); err != nil {
		return 0, fmt.Errorf("flip batch %s to cancelled: %w", batchID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit cancel tx: %w", err)
	}
	return cancelled, nil
}

func (s *PostgresStateStore) SetBatchStatus(ctx context.Context, batchID string, from, to domain.Status, now time.Time) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE batches SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`,
		string(to), now, batchID, string(from))
	if err != nil {
		return false, fmt.Errorf("set batch %s status %s->%s: %w", batchID, from, to, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresStateStore) RecomputeCompletion(ctx context.Context, batchID string, now time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE batches SET status = 'complete', updated_at = $1
		WHERE id = $2 AND status = 'running'
		AND completed + failed + cancelled_count + skipped_duplicates >= total`,
		now, batchID)
	if err != nil {
		return fmt.Errorf("recompute completion for %s: %w", batchID, err)
	}
	_ = tag
	return nil
}

func (s *PostgresStateStore) PauseInvariantViolation(ctx context.Context, batchID string, now time.Time) error {
	_, err := s.pool.Exec(ctx, `UPDATE batches SET status = 'paused', updated_at = $1 WHERE id = $2`, now, batchID)
	if err != nil {
		return fmt.Errorf("pause %s on invariant violation: %w", batchID, err)
	}
	return nil
}

func (s *PostgresStateStore) DeleteBatch(ctx context.Context, batchID string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete batch tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM items WHERE batch_id = $1`, batchID); err != nil {
		return fmt.Errorf("delete items for %s: %w", batchID, err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM batches WHERE id = $1`, batchID); err != nil {
		return fmt.Errorf("delete batch %s: %w", batchID, err)
	}
	return tx.Commit(ctx)
}

// ListBatchIDsByStatus implements domain.StateStore.
func (s *PostgresStateStore) ListBatchIDsByStatus(ctx context.Context, status domain.Status) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT id FROM batches WHERE status = $1`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list batches by status %s: %w", status, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan batch id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func batchFromModel(m models.Batch) *domain.Batch {
	return &domain.Batch{
		ID:                m.ID,
		OwnerID:           m.OwnerID,
		Status:            domain.Status(m.Status),
		JobDescription:    m.JobDescription,
		Total:             m.Total,
		Completed:         m.Completed,
		Failed:            m.Failed,
		CancelledCount:    m.CancelledCount,
		SkippedDuplicates: m.SkippedDuplicates,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

func itemFromModel(m models.Item) domain.Item {
	item := domain.Item{
		ID:            m.ID,
		BatchID:       m.BatchID,
		FileRef:       m.FileRef,
		FileHash:      m.FileHash,
		Status:        domain.ItemStatus(m.Status),
		WorkerID:      m.WorkerID,
		StartTime:     m.StartTime,
		LastUpdatedAt: m.LastUpdatedAt,
		RetryCount:    m.RetryCount,
		MaxRetries:    m.MaxRetries,
		Result:        m.Result,
	}
	if m.ErrorCode != nil {
		msg := ""
		if m.ErrorMessage != nil {
			msg = *m.ErrorMessage
		}
		item.Error = &domain.ErrorDetail{Code: *m.ErrorCode, Message: msg}
	}
	return item
}
