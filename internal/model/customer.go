package model

import (
	"time"

	"github.com/google/uuid"
)

// Customer is an electrical contractor buying through the CRM.
type Customer struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string     `gorm:"index;not null"`
	TierID    *uuid.UUID `gorm:"type:uuid;index"`
	Email     *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Tier *CustomerTier `gorm:"foreignKey:TierID"`
}
