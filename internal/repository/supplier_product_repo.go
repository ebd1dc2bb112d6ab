package repository

import (
	"context"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierProductRepository is the data access contract for catalog entries.
type SupplierProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.SupplierProduct, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SupplierProduct, error)
	// Search matches active entries by name or SKU across all active
	// suppliers, at most limit rows, one row per supplier+SKU.
	Search(ctx context.Context, term string, limit int) ([]model.SupplierProduct, error)
	MarkSynced(ctx context.Context, id uuid.UUID, snap model.PriceSnapshot) error
}

type supplierProductRepo struct{ db *gorm.DB }

func NewSupplierProductRepository(db *gorm.DB) SupplierProductRepository {
	return &supplierProductRepo{db: db}
}

func (r *supplierProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.SupplierProduct, error) {
	var p model.SupplierProduct
	err := r.db.WithContext(ctx).Preload("Supplier").First(&p, id).Error
	return &p, err
}

func (r *supplierProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.SupplierProduct, error) {
	var products []model.SupplierProduct
	if len(ids) == 0 {
		return products, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error
	return products, err
}

func (r *supplierProductRepo) Search(ctx context.Context, term string, limit int) ([]model.SupplierProduct, error) {
	var products []model.SupplierProduct
	pattern := "%" + term + "%"
	err := r.db.WithContext(ctx).
		Joins("JOIN suppliers ON suppliers.id = supplier_products.supplier_id AND suppliers.active = true").
		Where("supplier_products.active = true").
		Where("supplier_products.name ILIKE ? OR supplier_products.sku ILIKE ?", pattern, pattern).
		Preload("Supplier").
		Order("supplier_products.name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

// MarkSynced refreshes the catalog columns after a successful live fetch so
// the last-synced fallback tracks reality.
func (r *supplierProductRepo) MarkSynced(ctx context.Context, id uuid.UUID, snap model.PriceSnapshot) error {
	return r.db.WithContext(ctx).Model(&model.SupplierProduct{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"base_cost_price": snap.CostPrice,
			"available":       snap.Available,
			"last_synced_at":  snap.FetchedAt,
		}).Error
}
