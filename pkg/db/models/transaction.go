package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/pkg/enums"
)

// Transaction records a completed purchase, created exactly once per
// successful redemption or accepted offer.
type Transaction struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VehicleID     uuid.UUID               `gorm:"column:vehicle_id;type:uuid;not null" json:"vehicle_id"`
	DealerID      uuid.UUID               `gorm:"column:dealer_id;type:uuid;not null" json:"dealer_id"`
	BuyCodeID     *uuid.UUID              `gorm:"column:buy_code_id;type:uuid" json:"buy_code_id,omitempty"`
	OfferID       *uuid.UUID              `gorm:"column:offer_id;type:uuid" json:"offer_id,omitempty"`
	AmountCents   int                     `gorm:"column:amount_cents;not null" json:"amount_cents"`
	Status        enums.TransactionStatus `gorm:"column:status;not null;default:pending" json:"status"`
	IsPaid        bool                    `gorm:"column:is_paid;not null;default:false" json:"is_paid"`
	BillOfSaleKey *string                 `gorm:"column:bill_of_sale_key" json:"bill_of_sale_key,omitempty"`
	Vehicle       *Vehicle                `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
	Dealer        *Dealer                 `gorm:"foreignKey:DealerID" json:"dealer,omitempty"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
