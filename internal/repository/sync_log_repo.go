package repository

import (
	"context"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SyncLogRepository appends and reads supplier sync attempts. The health
// monitor only ever looks at the newest rows, so ListRecent returns them
// newest first.
type SyncLogRepository interface {
	Append(ctx context.Context, entry *model.SupplierSyncLog) error
	ListRecent(ctx context.Context, supplierID uuid.UUID, limit int) ([]model.SupplierSyncLog, error)
}

type syncLogRepo struct{ db *gorm.DB }

func NewSyncLogRepository(db *gorm.DB) SyncLogRepository { return &syncLogRepo{db: db} }

func (r *syncLogRepo) Append(ctx context.Context, entry *model.SupplierSyncLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *syncLogRepo) ListRecent(ctx context.Context, supplierID uuid.UUID, limit int) ([]model.SupplierSyncLog, error) {
	var logs []model.SupplierSyncLog
	err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at DESC").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}
