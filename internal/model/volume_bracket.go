package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VolumeBracket grants a quantity discount that stacks additively with the
// customer-layer discount. A nil MaxQty marks the open-ended top bracket.
type VolumeBracket struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	MinQty      int             `gorm:"not null;uniqueIndex"`
	MaxQty      *int
	DiscountPct decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (b *VolumeBracket) Matches(qty int) bool {
	if qty < b.MinQty {
		return false
	}
	return b.MaxQty == nil || qty <= *b.MaxQty
}
