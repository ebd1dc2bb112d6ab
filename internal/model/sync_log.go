package model

import (
	"time"

	"github.com/google/uuid"
)

type SyncStatus string

const (
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusFailure SyncStatus = "failure"
)

// SupplierSyncLog records one attempt to reach a supplier API, whether from
// the resolver's live path or the refresh worker. Rows are append-only; the
// health monitor reads the most recent window per supplier.
type SupplierSyncLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID uuid.UUID  `gorm:"type:uuid;not null;index:idx_sync_supplier_created,priority:1"`
	Status     SyncStatus `gorm:"type:varchar(10);not null"` // success | failure
	DurationMs int64      `gorm:"not null;default:0"`
	Detail     *string
	CreatedAt  time.Time `gorm:"index:idx_sync_supplier_created,priority:2"`
}
