package vehicles

import (
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
)

// VehicleDTO is the API projection of a vehicle listing.
type VehicleDTO struct {
	ID                   uuid.UUID              `json:"id"`
	VIN                  string                 `json:"vin"`
	Year                 int                    `json:"year"`
	Make                 string                 `json:"make"`
	Model                string                 `json:"model"`
	Trim                 string                 `json:"trim"`
	PriceCents           int                    `json:"price_cents"`
	Mileage              int                    `json:"mileage"`
	ImageURLs            []string               `json:"image_urls"`
	VideoURL             *string                `json:"video_url,omitempty"`
	Description          *string                `json:"description,omitempty"`
	Certification        *string                `json:"certification,omitempty"`
	Status               enums.VehicleStatus    `json:"status"`
	InQueue              bool                   `json:"in_queue"`
	InspectionStatus     enums.InspectionStatus `json:"inspection_status"`
	InspectionFailReason *string                `json:"inspection_fail_reason,omitempty"`
	RepairCostCents      *int                   `json:"repair_cost_cents,omitempty"`
	InspectionMedia      []string               `json:"inspection_media,omitempty"`
	InspectionNotes      *string                `json:"inspection_notes,omitempty"`
	ReactivationNotes    *string                `json:"reactivation_notes,omitempty"`
	CreatedAt            time.Time              `json:"created_at"`
	UpdatedAt            time.Time              `json:"updated_at"`
}

// FromModel converts a vehicle model into its DTO.
func FromModel(vehicle *models.Vehicle) *VehicleDTO {
	if vehicle == nil {
		return nil
	}
	return &VehicleDTO{
		ID:                   vehicle.ID,
		VIN:                  vehicle.VIN,
		Year:                 vehicle.Year,
		Make:                 vehicle.Make,
		Model:                vehicle.Model,
		Trim:                 vehicle.Trim,
		PriceCents:           vehicle.PriceCents,
		Mileage:              vehicle.Mileage,
		ImageURLs:            vehicle.ImageURLs,
		VideoURL:             vehicle.VideoURL,
		Description:          vehicle.Description,
		Certification:        vehicle.Certification,
		Status:               vehicle.Status,
		InQueue:              vehicle.InQueue,
		InspectionStatus:     vehicle.InspectionStatus,
		InspectionFailReason: vehicle.InspectionFailReason,
		RepairCostCents:      vehicle.RepairCostCents,
		InspectionMedia:      vehicle.InspectionMedia,
		InspectionNotes:      vehicle.InspectionNotes,
		ReactivationNotes:    vehicle.ReactivationNotes,
		CreatedAt:            vehicle.CreatedAt,
		UpdatedAt:            vehicle.UpdatedAt,
	}
}
