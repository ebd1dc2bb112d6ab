package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerProductOverride pins pricing for one customer on one supplier
// product. Exactly one of UnitPrice (absolute) or DiscountPct (relative)
// is set. An absolute override is terminal: no volume discount applies on
// top of it. ListPrice optionally pins the quoted sale price as well,
// bypassing margin computation.
type CustomerProductOverride struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID        uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_override_customer_product"`
	SupplierProductID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_override_customer_product"`
	UnitPrice         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ListPrice         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DiscountPct       *decimal.Decimal `gorm:"type:decimal(5,2)"`
	Source            CacheSource      `gorm:"type:varchar(10);not null;default:'manual'"` // manual | import | api
	ValidFrom         *time.Time
	ValidUntil        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (o *CustomerProductOverride) ActiveAt(now time.Time) bool {
	if o.ValidFrom != nil && now.Before(*o.ValidFrom) {
		return false
	}
	if o.ValidUntil != nil && now.After(*o.ValidUntil) {
		return false
	}
	return true
}

// Absolute reports whether the override fixes the unit price outright
// instead of discounting the supplier price.
func (o *CustomerProductOverride) Absolute() bool {
	return o.UnitPrice != nil
}
