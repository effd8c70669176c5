package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lotbridge/lotbridge-backend/pkg/enums"
)

// Vehicle represents a wholesale lot listing.
type Vehicle struct {
	ID                   uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VIN                  string                 `gorm:"column:vin;size:17;not null;uniqueIndex" json:"vin"`
	Year                 int                    `gorm:"column:year" json:"year"`
	Make                 string                 `gorm:"column:make" json:"make"`
	Model                string                 `gorm:"column:model" json:"model"`
	Trim                 string                 `gorm:"column:trim" json:"trim"`
	PriceCents           int                    `gorm:"column:price_cents;not null;default:0" json:"price_cents"`
	Mileage              int                    `gorm:"column:mileage;not null;default:0" json:"mileage"`
	ImageURLs            pq.StringArray         `gorm:"column:image_urls;type:text[]" json:"image_urls"`
	VideoURL             *string                `gorm:"column:video_url" json:"video_url,omitempty"`
	Description          *string                `gorm:"column:description" json:"description,omitempty"`
	Certification        *string                `gorm:"column:certification" json:"certification,omitempty"`
	Status               enums.VehicleStatus    `gorm:"column:status;not null;default:pending" json:"status"`
	InQueue              bool                   `gorm:"column:in_queue;not null" json:"in_queue"`
	InspectionStatus     enums.InspectionStatus `gorm:"column:inspection_status;not null;default:pending" json:"inspection_status"`
	InspectionFailReason *string                `gorm:"column:inspection_fail_reason" json:"inspection_fail_reason,omitempty"`
	RepairCostCents      *int                   `gorm:"column:repair_cost_cents" json:"repair_cost_cents,omitempty"`
	InspectionMedia      pq.StringArray         `gorm:"column:inspection_media;type:text[]" json:"inspection_media"`
	InspectionNotes      *string                `gorm:"column:inspection_notes" json:"inspection_notes,omitempty"`
	ReactivationNotes    *string                `gorm:"column:reactivation_notes" json:"reactivation_notes,omitempty"`
	CreatedAt            time.Time              `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt            time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
