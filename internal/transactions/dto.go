package transactions

import (
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
)

// TransactionDTO is the API projection of a purchase transaction.
type TransactionDTO struct {
	ID            uuid.UUID               `json:"id"`
	VehicleID     uuid.UUID               `json:"vehicle_id"`
	DealerID      uuid.UUID               `json:"dealer_id"`
	BuyCodeID     *uuid.UUID              `json:"buy_code_id,omitempty"`
	OfferID       *uuid.UUID              `json:"offer_id,omitempty"`
	AmountCents   int                     `json:"amount_cents"`
	Status        enums.TransactionStatus `json:"status"`
	IsPaid        bool                    `json:"is_paid"`
	BillOfSaleKey *string                 `json:"bill_of_sale_key,omitempty"`
	VehicleVIN    string                  `json:"vehicle_vin,omitempty"`
	DealerName    string                  `json:"dealer_name,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// FromModel converts a transaction model into its DTO.
func FromModel(txn *models.Transaction) *TransactionDTO {
	if txn == nil {
		return nil
	}
	dto := &TransactionDTO{
		ID:            txn.ID,
		VehicleID:     txn.VehicleID,
		DealerID:      txn.DealerID,
		BuyCodeID:     txn.BuyCodeID,
		OfferID:       txn.OfferID,
		AmountCents:   txn.AmountCents,
		Status:        txn.Status,
		IsPaid:        txn.IsPaid,
		BillOfSaleKey: txn.BillOfSaleKey,
		CreatedAt:     txn.CreatedAt,
		UpdatedAt:     txn.UpdatedAt,
	}
	if txn.Vehicle != nil {
		dto.VehicleVIN = txn.Vehicle.VIN
	}
	if txn.Dealer != nil {
		dto.DealerName = txn.Dealer.Name
	}
	return dto
}
