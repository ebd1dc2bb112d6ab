package repository

import (
	"context"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AcceptedPriceRepository stores the prices customers actually said yes to.
type AcceptedPriceRepository interface {
	Record(ctx context.Context, rec *model.AcceptedPrice) error
	ListByProduct(ctx context.Context, supplierProductID uuid.UUID, page, limit int) ([]model.AcceptedPrice, int64, error)
	// RecentPrices returns up to limit accepted prices for the product,
	// newest first, as bare decimals for the suggestion percentile.
	RecentPrices(ctx context.Context, supplierProductID uuid.UUID, limit int) ([]decimal.Decimal, error)
}

type acceptedPriceRepo struct{ db *gorm.DB }

func NewAcceptedPriceRepository(db *gorm.DB) AcceptedPriceRepository {
	return &acceptedPriceRepo{db: db}
}

func (r *acceptedPriceRepo) Record(ctx context.Context, rec *model.AcceptedPrice) error {
	return r.db.WithContext(ctx).Create(rec).Error
}

func (r *acceptedPriceRepo) ListByProduct(ctx context.Context, supplierProductID uuid.UUID, page, limit int) ([]model.AcceptedPrice, int64, error) {
	var rows []model.AcceptedPrice
	var total int64

	q := r.db.WithContext(ctx).Model(&model.AcceptedPrice{}).
		Where("supplier_product_id = ?", supplierProductID)

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&rows).Error
	return rows, total, err
}

func (r *acceptedPriceRepo) RecentPrices(ctx context.Context, supplierProductID uuid.UUID, limit int) ([]decimal.Decimal, error) {
	var prices []decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.AcceptedPrice{}).
		Where("supplier_product_id = ?", supplierProductID).
		Order("created_at DESC").
		Limit(limit).
		Pluck("price", &prices).Error
	return prices, err
}
