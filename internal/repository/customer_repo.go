package repository

import (
	"context"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CustomerRepository is the data access contract for customers and their
// pricing layers (tier, per-supplier agreement, per-product override).
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	FindTierByName(ctx context.Context, name string) (*model.CustomerTier, error)
	// FindOverride returns the override row for the customer+product pair,
	// gorm.ErrRecordNotFound when none exists. Validity windows are checked
	// by the caller.
	FindOverride(ctx context.Context, customerID, supplierProductID uuid.UUID) (*model.CustomerProductOverride, error)
	FindAgreement(ctx context.Context, customerID, supplierID uuid.UUID) (*model.CustomerAgreement, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Preload("Tier").First(&c, id).Error
	return &c, err
}

func (r *customerRepo) FindTierByName(ctx context.Context, name string) (*model.CustomerTier, error) {
	var t model.CustomerTier
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&t).Error
	return &t, err
}

func (r *customerRepo) FindOverride(ctx context.Context, customerID, supplierProductID uuid.UUID) (*model.CustomerProductOverride, error) {
	var o model.CustomerProductOverride
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND supplier_product_id = ?", customerID, supplierProductID).
		First(&o).Error
	return &o, err
}

func (r *customerRepo) FindAgreement(ctx context.Context, customerID, supplierID uuid.UUID) (*model.CustomerAgreement, error) {
	var a model.CustomerAgreement
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND supplier_id = ?", customerID, supplierID).
		First(&a).Error
	return &a, err
}
