package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/internal/vin"
	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/pagination"
)

// Service exposes the vehicle listing lifecycle.
type Service interface {
	Intake(ctx context.Context, input IntakeInput) (*VehicleDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*VehicleDTO, error)
	GetForDealer(ctx context.Context, id uuid.UUID) (*VehicleDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*ListResult, error)
	ListForDealers(ctx context.Context, filter ListFilter, params pagination.Params) (*ListResult, error)
	SetPricing(ctx context.Context, id uuid.UUID, priceCents int) (*VehicleDTO, error)
	Complete(ctx context.Context, id uuid.UUID, input CompleteInput) (*VehicleDTO, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID, notes string) (*VehicleDTO, error)
}

// IntakeInput carries the fields for adding a vehicle to the intake queue.
type IntakeInput struct {
	VIN       string
	ImageURLs []string
	VideoURL  *string
}

// CompleteInput fills out listing detail and inspection results after intake.
type CompleteInput struct {
	Description          *string
	Certification        *string
	Mileage              *int
	ImageURLs            []string
	VideoURL             *string
	InspectionStatus     *enums.InspectionStatus
	InspectionFailReason *string
	RepairCostCents      *int
	InspectionMedia      []string
	InspectionNotes      *string
}

// ListResult pairs a page of vehicles with the cursor for the next page.
type ListResult struct {
	Vehicles   []VehicleDTO `json:"vehicles"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

type service struct {
	repo    Repository
	decoder vin.Decoder
}

// NewService builds a vehicle service with the provided dependencies.
func NewService(repo Repository, decoder vin.Decoder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicle repository required")
	}
	if decoder == nil {
		return nil, fmt.Errorf("vin decoder required")
	}
	return &service{repo: repo, decoder: decoder}, nil
}

// Intake decodes the VIN and stores the vehicle at the back of the intake
// queue. The listing stays pending until pricing publishes it.
func (s *service) Intake(ctx context.Context, input IntakeInput) (*VehicleDTO, error) {
	decoded, err := s.decoder.Decode(ctx, input.VIN)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByVIN(ctx, decoded.VIN); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "vehicle with this vin already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check vin")
	}

	vehicle := &models.Vehicle{
		ID:               uuid.New(),
		VIN:              decoded.VIN,
		Year:             decoded.Year,
		Make:             decoded.Make,
		Model:            decoded.Model,
		Trim:             decoded.Trim,
		ImageURLs:        input.ImageURLs,
		VideoURL:         input.VideoURL,
		Status:           enums.VehicleStatusPending,
		InQueue:          true,
		InspectionStatus: enums.InspectionStatusPending,
	}
	if _, err := s.repo.Create(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return FromModel(vehicle), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(vehicle), nil
}

// GetForDealer hides anything a dealer should not see. Non-active listings
// look identical to missing ones.
func (s *service) GetForDealer(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != enums.VehicleStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeVehicleNotFound, "vehicle not found")
	}
	return FromModel(vehicle), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*ListResult, error) {
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}
	return buildPage(rows, params), nil
}

// ListForDealers pins the filter to published inventory regardless of what
// the caller asked for.
func (s *service) ListForDealers(ctx context.Context, filter ListFilter, params pagination.Params) (*ListResult, error) {
	filter.Statuses = []enums.VehicleStatus{enums.VehicleStatusActive}
	filter.InQueue = nil
	return s.List(ctx, filter, params)
}

// SetPricing publishes a vehicle: the price is set, the listing leaves the
// intake queue, and dealers can see it.
func (s *service) SetPricing(ctx context.Context, id uuid.UUID, priceCents int) (*VehicleDTO, error) {
	if priceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	vehicle, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != enums.VehicleStatusPending && vehicle.Status != enums.VehicleStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("cannot price a %s vehicle", vehicle.Status))
	}

	vehicle.PriceCents = priceCents
	vehicle.Status = enums.VehicleStatusActive
	vehicle.InQueue = false
	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	return FromModel(vehicle), nil
}

// Complete fills in listing details and inspection results.
func (s *service) Complete(ctx context.Context, id uuid.UUID, input CompleteInput) (*VehicleDTO, error) {
	vehicle, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		vehicle.Description = input.Description
	}
	if input.Certification != nil {
		vehicle.Certification = input.Certification
	}
	if input.Mileage != nil {
		if *input.Mileage < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "mileage cannot be negative")
		}
		vehicle.Mileage = *input.Mileage
	}
	if input.ImageURLs != nil {
		vehicle.ImageURLs = input.ImageURLs
	}
	if input.VideoURL != nil {
		vehicle.VideoURL = input.VideoURL
	}
	if input.InspectionStatus != nil {
		if !input.InspectionStatus.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid inspection status")
		}
		vehicle.InspectionStatus = *input.InspectionStatus
		if *input.InspectionStatus == enums.InspectionStatusFailed {
			if input.InspectionFailReason == nil || strings.TrimSpace(*input.InspectionFailReason) == "" {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "failed inspections require a reason")
			}
		}
	}
	if input.InspectionFailReason != nil {
		vehicle.InspectionFailReason = input.InspectionFailReason
	}
	if input.RepairCostCents != nil {
		if *input.RepairCostCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "repair cost cannot be negative")
		}
		vehicle.RepairCostCents = input.RepairCostCents
	}
	if input.InspectionMedia != nil {
		vehicle.InspectionMedia = input.InspectionMedia
	}
	if input.InspectionNotes != nil {
		vehicle.InspectionNotes = input.InspectionNotes
	}

	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	return FromModel(vehicle), nil
}

// Remove takes the listing off the lot entirely.
func (s *service) Remove(ctx context.Context, id uuid.UUID) error {
	vehicle, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if vehicle.Status == enums.VehicleStatusRemoved {
		return nil
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]any{
		"status":   enums.VehicleStatusRemoved,
		"in_queue": false,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove vehicle")
	}
	return nil
}

// Reactivate returns a sold vehicle to the lot after a fallen-through deal.
// Notes are mandatory so the audit trail explains why it resurfaced.
func (s *service) Reactivate(ctx context.Context, id uuid.UUID, notes string) (*VehicleDTO, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reactivation notes are required")
	}
	vehicle, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if vehicle.Status != enums.VehicleStatusSold {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "only sold vehicles can be reactivated")
	}

	vehicle.Status = enums.VehicleStatusActive
	vehicle.InQueue = false
	vehicle.ReactivationNotes = &notes
	if err := s.repo.Update(ctx, vehicle); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
	}
	return FromModel(vehicle), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeVehicleNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return vehicle, nil
}

func buildPage(rows []models.Vehicle, params pagination.Params) *ListResult {
	limit := pagination.NormalizeLimit(params.Limit)
	result := &ListResult{Vehicles: make([]VehicleDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		result.Vehicles = append(result.Vehicles, *FromModel(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result
}
