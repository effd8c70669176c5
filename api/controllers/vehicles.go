package controllers

import (
	"net/http"
	"strings"

	"github.com/lotbridge/lotbridge-backend/api/responses"
	"github.com/lotbridge/lotbridge-backend/api/validators"
	vehiclesvc "github.com/lotbridge/lotbridge-backend/internal/vehicles"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
)

// DealerListVehicles returns the active lot, newest first.
func DealerListVehicles(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		result, err := svc.ListForDealers(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// DealerGetVehicle returns a single active listing.
func DealerGetVehicle(svc vehiclesvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		vehicle, err := svc.GetForDealer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

func vehicleFilterFromQuery(r *http.Request) (vehiclesvc.ListFilter, error) {
	year, err := validators.ParseQueryInt(r, "year", 0, 0, 2100)
	if err != nil {
		return vehiclesvc.ListFilter{}, err
	}
	return vehiclesvc.ListFilter{
		Make:  strings.TrimSpace(r.URL.Query().Get("make")),
		Model: strings.TrimSpace(r.URL.Query().Get("model")),
		Year:  year,
	}, nil
}
