package offers

import (
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
)

// OfferDTO is the API projection of an offer.
type OfferDTO struct {
	ID                 uuid.UUID          `json:"id"`
	VehicleID          uuid.UUID          `json:"vehicle_id"`
	DealerID           uuid.UUID          `json:"dealer_id"`
	AmountCents        int                `json:"amount_cents"`
	Status             enums.OfferStatus  `json:"status"`
	CounterAmountCents *int               `json:"counter_amount_cents,omitempty"`
	CounterMessage     *string            `json:"counter_message,omitempty"`
	ExpiresAt          *time.Time         `json:"expires_at,omitempty"`
	Activity           []OfferActivityDTO `json:"activity,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// OfferActivityDTO is one entry of the offer's audit trail.
type OfferActivityDTO struct {
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// FromModel converts an offer model into its DTO.
func FromModel(offer *models.Offer) *OfferDTO {
	if offer == nil {
		return nil
	}
	dto := &OfferDTO{
		ID:                 offer.ID,
		VehicleID:          offer.VehicleID,
		DealerID:           offer.DealerID,
		AmountCents:        offer.AmountCents,
		Status:             offer.Status,
		CounterAmountCents: offer.CounterAmountCents,
		CounterMessage:     offer.CounterMessage,
		ExpiresAt:          offer.ExpiresAt,
		CreatedAt:          offer.CreatedAt,
		UpdatedAt:          offer.UpdatedAt,
	}
	for _, entry := range offer.Activity {
		dto.Activity = append(dto.Activity, OfferActivityDTO{
			Message:   entry.Message,
			CreatedAt: entry.CreatedAt,
		})
	}
	return dto
}
