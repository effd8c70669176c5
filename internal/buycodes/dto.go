package buycodes

import (
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
)

// BuyCodeDTO is the API projection of a buy code.
type BuyCodeDTO struct {
	ID         uuid.UUID  `json:"id"`
	Code       string     `json:"code"`
	DealerID   uuid.UUID  `json:"dealer_id"`
	DealerName string     `json:"dealer_name,omitempty"`
	Active     bool       `json:"active"`
	MaxUses    *int       `json:"max_uses,omitempty"`
	UsageCount int        `json:"usage_count"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// FromModel converts a buy code model into its DTO.
func FromModel(code *models.BuyCode) *BuyCodeDTO {
	if code == nil {
		return nil
	}
	dto := &BuyCodeDTO{
		ID:         code.ID,
		Code:       code.Code,
		DealerID:   code.DealerID,
		Active:     code.Active,
		MaxUses:    code.MaxUses,
		UsageCount: code.UsageCount,
		ExpiresAt:  code.ExpiresAt,
		CreatedAt:  code.CreatedAt,
	}
	if code.Dealer != nil {
		dto.DealerName = code.Dealer.Name
	}
	return dto
}
