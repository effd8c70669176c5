package controllers

import (
	"net/http"
	"strings"

	"github.com/lotbridge/lotbridge-backend/api/responses"
	"github.com/lotbridge/lotbridge-backend/api/validators"
	sheetsvc "github.com/lotbridge/lotbridge-backend/internal/sheets"
	vehiclesvc "github.com/lotbridge/lotbridge-backend/internal/vehicles"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
)

type intakeVehicleRequest struct {
	VIN       string   `json:"vin" validate:"required,len=17"`
	ImageURLs []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	VideoURL  *string  `json:"video_url,omitempty" validate:"omitempty,url"`
}

type setPricingRequest struct {
	PriceCents int `json:"price_cents" validate:"required,min=1"`
}

type completeVehicleRequest struct {
	Description          *string  `json:"description,omitempty"`
	Certification        *string  `json:"certification,omitempty"`
	Mileage              *int     `json:"mileage,omitempty" validate:"omitempty,min=0"`
	ImageURLs            []string `json:"image_urls,omitempty" validate:"omitempty,dive,url"`
	VideoURL             *string  `json:"video_url,omitempty" validate:"omitempty,url"`
	InspectionStatus     *string  `json:"inspection_status,omitempty"`
	InspectionFailReason *string  `json:"inspection_fail_reason,omitempty"`
	RepairCostCents      *int     `json:"repair_cost_cents,omitempty" validate:"omitempty,min=0"`
	InspectionMedia      []string `json:"inspection_media,omitempty" validate:"omitempty,dive,url"`
	InspectionNotes      *string  `json:"inspection_notes,omitempty"`
}

type reactivateVehicleRequest struct {
	Notes string `json:"notes" validate:"required"`
}

// AdminIntakeVehicle decodes a VIN and adds the vehicle to the intake queue.
func AdminIntakeVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		var body intakeVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Intake(r.Context(), vehiclesvc.IntakeInput{
			VIN:       body.VIN,
			ImageURLs: body.ImageURLs,
			VideoURL:  body.VideoURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

// AdminListVehicles lists vehicles across all statuses with optional filters.
func AdminListVehicles(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter, err := vehicleFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			for _, piece := range strings.Split(raw, ",") {
				status, err := enums.ParseVehicleStatus(strings.TrimSpace(piece))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
					return
				}
				filter.Statuses = append(filter.Statuses, status)
			}
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("in_queue")); raw != "" {
			inQueue := raw == "true"
			filter.InQueue = &inQueue
		}

		result, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminGetVehicle returns any vehicle regardless of status.
func AdminGetVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// AdminSetVehiclePricing publishes a vehicle at the given price.
func AdminSetVehiclePricing(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setPricingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.SetPricing(r.Context(), id, body.PriceCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// AdminCompleteVehicle fills in listing detail and inspection results.
func AdminCompleteVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body completeVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := vehiclesvc.CompleteInput{
			Description:          body.Description,
			Certification:        body.Certification,
			Mileage:              body.Mileage,
			ImageURLs:            body.ImageURLs,
			VideoURL:             body.VideoURL,
			InspectionFailReason: body.InspectionFailReason,
			RepairCostCents:      body.RepairCostCents,
			InspectionMedia:      body.InspectionMedia,
			InspectionNotes:      body.InspectionNotes,
		}
		if body.InspectionStatus != nil {
			status, err := enums.ParseInspectionStatus(strings.TrimSpace(*body.InspectionStatus))
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid inspection status"))
				return
			}
			input.InspectionStatus = &status
		}

		vehicle, err := svc.Complete(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// AdminRemoveVehicle takes a listing off the lot.
func AdminRemoveVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Remove(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "removed"})
	}
}

// AdminReactivateVehicle returns a sold vehicle to the active lot.
func AdminReactivateVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicle service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body reactivateVehicleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.Reactivate(r.Context(), id, body.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

// AdminImportVehicles runs the spreadsheet batch import.
func AdminImportVehicles(svc sheetsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "import service unavailable"))
			return
		}

		result, err := svc.Import(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
