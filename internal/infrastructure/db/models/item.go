package models

import "time"

// Item is the gorm model backing the items table.
type Item struct {
	ID            string     `gorm:"column:id;primaryKey;type:uuid"`
	BatchID       string     `gorm:"column:batch_id;not null;index:idx_items_batch_status_updated,priority:1"`
	FileRef       string     `gorm:"column:file_ref;not null"`
	FileHash      string     `gorm:"column:file_hash;not null"`
	Status        string     `gorm:"column:status;not null;index:idx_items_batch_status_updated,priority:2;index:idx_items_status_start,priority:1"`
	WorkerID      *string    `gorm:"column:worker_id"`
	StartTime     *time.Time `gorm:"column:start_time;index:idx_items_status_start,priority:2"`
	LastUpdatedAt time.Time  `gorm:"column:last_updated_at;not null;index:idx_items_batch_status_updated,priority:3"`
	RetryCount    int        `gorm:"column:retry_count;not null;default:0"`
	MaxRetries    int        `gorm:"column:max_retries;not null;default:0"`
	Result        []byte     `gorm:"column:result;type:jsonb"`
	ErrorCode     *string    `gorm:"column:error_code"`
	ErrorMessage  *string    `gorm:"column:error_message"`
}

// TableName pins the table name.
func (Item) TableName() string { return "items" }
