package dealers

import (
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
)

// DealerDTO is the public projection of a dealer record.
type DealerDTO struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	ContactName       string    `json:"contact_name"`
	ContactEmail      string    `json:"contact_email"`
	ContactPhone      string    `json:"contact_phone"`
	BillingAddress    string    `json:"billing_address"`
	TitleContactName  string    `json:"title_contact_name"`
	TitleContactEmail string    `json:"title_contact_email"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`
}

// FromModel maps a dealer model to its DTO.
func FromModel(dealer *models.Dealer) *DealerDTO {
	if dealer == nil {
		return nil
	}
	return &DealerDTO{
		ID:                dealer.ID,
		Name:              dealer.Name,
		ContactName:       dealer.ContactName,
		ContactEmail:      dealer.ContactEmail,
		ContactPhone:      dealer.ContactPhone,
		BillingAddress:    dealer.BillingAddress,
		TitleContactName:  dealer.TitleContactName,
		TitleContactEmail: dealer.TitleContactEmail,
		Active:            dealer.Active,
		CreatedAt:         dealer.CreatedAt,
	}
}
