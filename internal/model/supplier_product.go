package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SupplierProduct is one catalog entry of one supplier. The same physical
// article listed by two suppliers is two rows. BaseCostPrice is the last
// price a catalog sync wrote; LastSyncedAt is nil for rows that were created
// manually and never confirmed by a sync.
type SupplierProduct struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_supplier_sku"`
	SKU           string          `gorm:"not null;uniqueIndex:idx_supplier_sku"`
	Name          string          `gorm:"index;not null"`
	Description   *string
	BaseCostPrice decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ListPrice     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Available     bool             `gorm:"not null;default:true"`
	StockQty      *int
	LeadTimeDays  *int
	LastSyncedAt  *time.Time
	Active        bool `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

// CatalogSnapshot exposes the last-synced catalog price as a fallback
// source. It returns false when the row was never synced, because an
// unsynced BaseCostPrice is a placeholder, not a price.
func (p *SupplierProduct) CatalogSnapshot(now time.Time, maxAge time.Duration) (PriceSnapshot, bool) {
	if p.LastSyncedAt == nil {
		return PriceSnapshot{}, false
	}
	return PriceSnapshot{
		CostPrice:    p.BaseCostPrice,
		ListPrice:    p.ListPrice,
		Available:    p.Available,
		StockQty:     p.StockQty,
		LeadTimeDays: p.LeadTimeDays,
		FetchedAt:    *p.LastSyncedAt,
		Provenance:   CacheSourceImport,
		Stale:        now.Sub(*p.LastSyncedAt) > maxAge,
	}, true
}
