package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/api/responses"
	"github.com/lotbridge/lotbridge-backend/api/validators"
	offersvc "github.com/lotbridge/lotbridge-backend/internal/offers"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
)

type adminDecisionRequest struct {
	Decision       string  `json:"decision" validate:"required,oneof=accept decline counter"`
	CounterAmount  *int    `json:"counter_amount,omitempty" validate:"omitempty,min=1"`
	CounterMessage *string `json:"counter_message,omitempty"`
}

// AdminListOffers lists offers with optional vehicle, dealer, and status filters.
func AdminListOffers(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var filter offersvc.ListFilter
		if raw := strings.TrimSpace(r.URL.Query().Get("vehicle_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle_id"))
				return
			}
			filter.VehicleID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("dealer_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealer_id"))
				return
			}
			filter.DealerID = &id
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			for _, piece := range strings.Split(raw, ",") {
				status, err := enums.ParseOfferStatus(strings.TrimSpace(piece))
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
					return
				}
				filter.Statuses = append(filter.Statuses, status)
			}
		}

		result, err := svc.List(r.Context(), filter, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminOfferDecision accepts, declines, or counters a pending offer.
func AdminOfferDecision(svc offersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "offer service unavailable"))
			return
		}

		offerID, err := pathUUID(r, "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body adminDecisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.Decide(r.Context(), offerID, offersvc.DecisionInput{
			Decision:       offersvc.AdminDecision(strings.ToLower(strings.TrimSpace(body.Decision))),
			CounterAmount:  body.CounterAmount,
			CounterMessage: body.CounterMessage,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, offer)
	}
}
