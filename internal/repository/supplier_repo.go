package repository

import (
	"context"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SupplierRepository defines the data access contract for suppliers.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	ListActive(ctx context.Context) ([]model.Supplier, error)
}

type supplierRepo struct{ db *gorm.DB }

func NewSupplierRepository(db *gorm.DB) SupplierRepository { return &supplierRepo{db: db} }

func (r *supplierRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var s model.Supplier
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *supplierRepo) ListActive(ctx context.Context) ([]model.Supplier, error) {
	var suppliers []model.Supplier
	err := r.db.WithContext(ctx).Where("active = true").Order("name ASC").Find(&suppliers).Error
	return suppliers, err
}
