package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TierStandard  = "standard"
	TierPreferred = "preferred"
	TierWholesale = "wholesale"
)

// CustomerTier is the coarsest pricing layer. Customers without explicit
// agreements or overrides get their tier's discount; customers without a
// tier behave like standard. MarginAdjustmentPct shifts the house margin
// for the tier's customers on the sale side (negative for tiers that buy
// at volume and expect tighter quotes).
type CustomerTier struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name                string          `gorm:"uniqueIndex;not null"` // standard | preferred | wholesale
	DiscountPct         decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	MarginAdjustmentPct decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
