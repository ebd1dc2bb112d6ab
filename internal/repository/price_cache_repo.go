package repository

import (
	"context"
	"time"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PriceCacheRepository is the data access contract for the fallback price
// cache. One row per supplier product, refreshed in place.
type PriceCacheRepository interface {
	FindByProductID(ctx context.Context, supplierProductID uuid.UUID) (*model.CachedPrice, error)
	FindByProductIDs(ctx context.Context, supplierProductIDs []uuid.UUID) ([]model.CachedPrice, error)
	// Upsert inserts or refreshes the single cache row of the product.
	Upsert(ctx context.Context, rec *model.CachedPrice) error
	MarkStaleByProductIDs(ctx context.Context, supplierProductIDs []uuid.UUID) (int64, error)
	MarkStaleBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error)
	// MarkStaleOlderThan flips the stale flag on fresh rows cached before
	// the cutoff. Used by the sweep cron.
	MarkStaleOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	ListStale(ctx context.Context, limit int) ([]model.CachedPrice, error)
	CountBySupplier(ctx context.Context, supplierID uuid.UUID) (total int64, stale int64, err error)
}

type priceCacheRepo struct{ db *gorm.DB }

func NewPriceCacheRepository(db *gorm.DB) PriceCacheRepository { return &priceCacheRepo{db: db} }

func (r *priceCacheRepo) FindByProductID(ctx context.Context, supplierProductID uuid.UUID) (*model.CachedPrice, error) {
	var c model.CachedPrice
	err := r.db.WithContext(ctx).Where("supplier_product_id = ?", supplierProductID).First(&c).Error
	return &c, err
}

func (r *priceCacheRepo) FindByProductIDs(ctx context.Context, supplierProductIDs []uuid.UUID) ([]model.CachedPrice, error) {
	var rows []model.CachedPrice
	if len(supplierProductIDs) == 0 {
		return rows, nil
	}
	err := r.db.WithContext(ctx).Where("supplier_product_id IN ?", supplierProductIDs).Find(&rows).Error
	return rows, err
}

func (r *priceCacheRepo) Upsert(ctx context.Context, rec *model.CachedPrice) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "supplier_product_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"supplier_id", "cost_price", "list_price", "available", "stock_qty",
			"lead_time_days", "cached_at", "source", "fallback_priority", "is_stale", "updated_at",
		}),
	}).Create(rec).Error
}

func (r *priceCacheRepo) MarkStaleByProductIDs(ctx context.Context, supplierProductIDs []uuid.UUID) (int64, error) {
	if len(supplierProductIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&model.CachedPrice{}).
		Where("supplier_product_id IN ? AND is_stale = false", supplierProductIDs).
		Update("is_stale", true)
	return res.RowsAffected, res.Error
}

func (r *priceCacheRepo) MarkStaleBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.CachedPrice{}).
		Where("supplier_id = ? AND is_stale = false", supplierID).
		Update("is_stale", true)
	return res.RowsAffected, res.Error
}

func (r *priceCacheRepo) MarkStaleOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.CachedPrice{}).
		Where("is_stale = false AND cached_at < ?", cutoff).
		Update("is_stale", true)
	return res.RowsAffected, res.Error
}

func (r *priceCacheRepo) ListStale(ctx context.Context, limit int) ([]model.CachedPrice, error) {
	var rows []model.CachedPrice
	err := r.db.WithContext(ctx).
		Where("is_stale = true").
		Order("cached_at ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *priceCacheRepo) CountBySupplier(ctx context.Context, supplierID uuid.UUID) (int64, int64, error) {
	var total, stale int64
	q := r.db.WithContext(ctx).Model(&model.CachedPrice{}).Where("supplier_id = ?", supplierID)
	if err := q.Count(&total).Error; err != nil {
		return 0, 0, err
	}
	err := q.Where("is_stale = true").Count(&stale).Error
	return total, stale, err
}
