package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AcceptedPrice is a sale price a customer actually agreed to on a quote.
// The suggestion engine feeds on these rows. Records are immutable.
type AcceptedPrice struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SupplierProductID uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerID        *uuid.UUID      `gorm:"type:uuid;index"`
	Price             decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt         time.Time       `gorm:"index"`

	SupplierProduct *SupplierProduct `gorm:"foreignKey:SupplierProductID"`
}
