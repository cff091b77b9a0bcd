// Package models holds the gorm row representations of the engine's
// persisted records, mirroring the teacher's
// internal/infrastructure/db/models package.
package models

import "time"

// Batch is the gorm model backing the batches table.
type Batch struct {
	ID                string    `gorm:"column:id;primaryKey;type:uuid"`
	OwnerID           string    `gorm:"column:owner_id;not null;index"`
	Status            string    `gorm:"column:status;not null"`
	JobDescription    string    `gorm:"column:job_description;not null"`
	Total             int64     `gorm:"column:total;not null;default:0"`
	Completed         int64     `gorm:"column:completed;not null;default:0"`
	Failed            int64     `gorm:"column:failed;not null;default:0"`
	CancelledCount    int64     `gorm:"column:cancelled_count;not null;default:0"`
	SkippedDuplicates int64     `gorm:"column:skipped_duplicates;not null;default:0"`
	CreatedAt         time.Time `gorm:"column:created_at;not null;default:now()"`
	UpdatedAt         time.Time `gorm:"column:updated_at;not null;default:now()"`
}

// TableName pins the table name the way the teacher's ImportJob model
// does, rather than relying on gorm's pluralization.
func (Batch) TableName() string { return "batches" }
