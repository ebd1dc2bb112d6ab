package repository

import (
	"context"

	"github.com/wukjhc-create/elta-crm-sub009/internal/model"

	"gorm.io/gorm"
)

// VolumeBracketRepository serves the global quantity discount table.
type VolumeBracketRepository interface {
	ListOrdered(ctx context.Context) ([]model.VolumeBracket, error)
}

type volumeBracketRepo struct{ db *gorm.DB }

func NewVolumeBracketRepository(db *gorm.DB) VolumeBracketRepository {
	return &volumeBracketRepo{db: db}
}

func (r *volumeBracketRepo) ListOrdered(ctx context.Context) ([]model.VolumeBracket, error) {
	var brackets []model.VolumeBracket
	err := r.db.WithContext(ctx).Order("min_qty ASC").Find(&brackets).Error
	return brackets, err
}
