package model

import (
	"time"

	"github.com/google/uuid"
)

// Supplier is a wholesaler whose catalog and live price API the CRM
// integrates with. AccountRef is our account identifier on the supplier's
// side and is embedded in every price lookup URL.
type Supplier struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code         string    `gorm:"uniqueIndex;not null"` // short slug, e.g. "rexel-sued"
	Name         string    `gorm:"index;not null"`
	AccountRef   string    `gorm:"not null;default:''"`
	ContactEmail *string
	ContactPhone *string
	Active       bool `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
