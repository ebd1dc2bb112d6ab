package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerAgreement is a negotiated per-supplier discount for one customer.
// It beats the tier discount and loses to product-level overrides. Nil
// validity bounds mean open-ended. A non-nil CustomMarginPct pins the sale
// margin for this supplier's products regardless of tier.
type CustomerAgreement struct {
	ID              uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_agreement_customer_supplier"`
	SupplierID      uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_agreement_customer_supplier"`
	DiscountPct     decimal.Decimal  `gorm:"type:decimal(5,2);not null"`
	CustomMarginPct *decimal.Decimal `gorm:"type:decimal(5,2)"`
	ValidFrom       *time.Time
	ValidUntil      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (a *CustomerAgreement) ActiveAt(now time.Time) bool {
	if a.ValidFrom != nil && now.Before(*a.ValidFrom) {
		return false
	}
	if a.ValidUntil != nil && now.After(*a.ValidUntil) {
		return false
	}
	return true
}
