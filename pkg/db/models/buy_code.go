package models

import (
	"time"

	"github.com/google/uuid"
)

// BuyCode is a dealer-issued redemption token with usage and expiry limits.
type BuyCode struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Code       string     `gorm:"column:code;not null;uniqueIndex" json:"code"`
	DealerID   uuid.UUID  `gorm:"column:dealer_id;type:uuid;not null" json:"dealer_id"`
	Active     bool       `gorm:"column:active;not null" json:"active"`
	MaxUses    *int       `gorm:"column:max_uses" json:"max_uses,omitempty"`
	UsageCount int        `gorm:"column:usage_count;not null;default:0" json:"usage_count"`
	ExpiresAt  *time.Time `gorm:"column:expires_at" json:"expires_at,omitempty"`
	Dealer     *Dealer    `gorm:"foreignKey:DealerID" json:"dealer,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
