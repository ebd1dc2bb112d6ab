package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CacheSource tells where a cached price came from. It doubles as the
// provenance label on resolved prices.
type CacheSource string

const (
	CacheSourceAPI    CacheSource = "api"
	CacheSourceImport CacheSource = "import"
	CacheSourceManual CacheSource = "manual"
)

// fallbackPriority ranks sources for display. Recency always wins when
// picking a fallback; priority is informational only.
func (s CacheSource) fallbackPriority() int {
	switch s {
	case CacheSourceAPI:
		return 2
	case CacheSourceImport:
		return 1
	default:
		return 0
	}
}

// CachedPrice is the one-row-per-product price cache that keeps quoting
// alive while a supplier API is down. SupplierID is denormalized from the
// product so sweeps and health counters can filter without a join.
type CachedPrice struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierProductID uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	SupplierID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	CostPrice         decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	ListPrice         *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Available         bool             `gorm:"not null;default:true"`
	StockQty          *int
	LeadTimeDays      *int
	CachedAt          time.Time   `gorm:"not null;index"`
	Source            CacheSource `gorm:"type:varchar(10);not null;default:'api'"` // api | import | manual
	FallbackPriority  int         `gorm:"not null;default:2"`
	IsStale           bool        `gorm:"not null;default:false;index"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// StaleAt reports whether the entry counts as stale at the given instant:
// either explicitly invalidated or older than maxAge.
func (c *CachedPrice) StaleAt(now time.Time, maxAge time.Duration) bool {
	return c.IsStale || now.Sub(c.CachedAt) > maxAge
}

// Snapshot converts the row into the neutral price shape the resolver works
// with, computing staleness against maxAge.
func (c *CachedPrice) Snapshot(now time.Time, maxAge time.Duration) PriceSnapshot {
	return PriceSnapshot{
		CostPrice:    c.CostPrice,
		ListPrice:    c.ListPrice,
		Available:    c.Available,
		StockQty:     c.StockQty,
		LeadTimeDays: c.LeadTimeDays,
		FetchedAt:    c.CachedAt,
		Provenance:   c.Source,
		Stale:        c.StaleAt(now, maxAge),
	}
}

// NewCachedPrice builds a cache row from a snapshot, resetting the stale
// flag and stamping CachedAt. Upserting the result refreshes the single
// cache row of the product.
func NewCachedPrice(supplierID, supplierProductID uuid.UUID, snap PriceSnapshot, source CacheSource) *CachedPrice {
	fetched := snap.FetchedAt
	if fetched.IsZero() {
		fetched = time.Now()
	}
	return &CachedPrice{
		SupplierProductID: supplierProductID,
		SupplierID:        supplierID,
		CostPrice:         snap.CostPrice,
		ListPrice:         snap.ListPrice,
		Available:         snap.Available,
		StockQty:          snap.StockQty,
		LeadTimeDays:      snap.LeadTimeDays,
		CachedAt:          fetched,
		Source:            source,
		FallbackPriority:  source.fallbackPriority(),
		IsStale:           false,
	}
}

// PriceSnapshot is a supplier price detached from its storage: the same
// shape comes out of a live API call, a cache row or the catalog fallback.
type PriceSnapshot struct {
	CostPrice    decimal.Decimal
	ListPrice    *decimal.Decimal
	Available    bool
	StockQty     *int
	LeadTimeDays *int
	FetchedAt    time.Time
	Provenance   CacheSource
	Stale        bool
}
