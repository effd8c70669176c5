package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
)

// UserDTO is the public projection of a user record.
type UserDTO struct {
	ID        uuid.UUID       `json:"id"`
	Email     string          `json:"email"`
	Role      enums.ActorRole `json:"role"`
	DealerID  *uuid.UUID      `json:"dealer_id,omitempty"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// FromModel maps a user model to its DTO.
func FromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		DealerID:  user.DealerID,
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}
