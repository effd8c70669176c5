package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/pkg/enums"
)

// Offer is a dealer bid against a vehicle, optionally countered by an admin.
// CounterAmountCents/CounterMessage are only meaningful while the offer is
// in the countered state.
type Offer struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VehicleID         uuid.UUID         `gorm:"column:vehicle_id;type:uuid;not null" json:"vehicle_id"`
	DealerID          uuid.UUID         `gorm:"column:dealer_id;type:uuid;not null" json:"dealer_id"`
	AmountCents       int               `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Status            enums.OfferStatus `gorm:"column:status;not null;default:pending" json:"status"`
	CounterAmountCents *int             `gorm:"column:counter_amount_cents" json:"counter_amount_cents,omitempty"`
	CounterMessage    *string           `gorm:"column:counter_message" json:"counter_message,omitempty"`
	ExpiresAt         *time.Time        `gorm:"column:expires_at" json:"expires_at,omitempty"`
	Activity          []OfferActivity   `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE" json:"activity,omitempty"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// OfferActivity is one entry of the append-only trail describing offer
// status changes. Rows are never updated or deleted.
type OfferActivity struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OfferID   uuid.UUID `gorm:"column:offer_id;type:uuid;not null;index" json:"offer_id"`
	Message   string    `gorm:"column:message;not null" json:"message"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
