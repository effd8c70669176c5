package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/pkg/enums"
)

// User is a login principal. Dealer users carry the dealer they act for.
type User struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email        string          `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash string          `gorm:"column:password_hash;not null" json:"-"`
	Role         enums.ActorRole `gorm:"column:role;not null" json:"role"`
	DealerID     *uuid.UUID      `gorm:"column:dealer_id;type:uuid" json:"dealer_id,omitempty"`
	Active       bool            `gorm:"column:active;not null" json:"active"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
