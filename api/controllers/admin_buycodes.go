package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/api/responses"
	"github.com/lotbridge/lotbridge-backend/api/validators"
	buycodesvc "github.com/lotbridge/lotbridge-backend/internal/buycodes"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
)

type createBuyCodeRequest struct {
	DealerID  string     `json:"dealer_id" validate:"required,uuid"`
	Code      string     `json:"code,omitempty"`
	MaxUses   *int       `json:"max_uses,omitempty" validate:"omitempty,min=1"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// AdminCreateBuyCode issues a dealer-specific buy code.
func AdminCreateBuyCode(svc buycodesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buy code service unavailable"))
			return
		}

		var body createBuyCodeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealerID, err := uuid.Parse(body.DealerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealer_id"))
			return
		}

		code, err := svc.Create(r.Context(), buycodesvc.CreateInput{
			DealerID:  dealerID,
			Code:      body.Code,
			MaxUses:   body.MaxUses,
			ExpiresAt: body.ExpiresAt,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, code)
	}
}

// AdminListBuyCodes lists issued codes, optionally scoped to a dealer.
func AdminListBuyCodes(svc buycodesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buy code service unavailable"))
			return
		}

		var dealerID *uuid.UUID
		if raw := strings.TrimSpace(r.URL.Query().Get("dealer_id")); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealer_id"))
				return
			}
			dealerID = &id
		}
		includeInactive := r.URL.Query().Get("include_inactive") == "true"

		codes, err := svc.List(r.Context(), dealerID, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, codes)
	}
}

// AdminDeactivateBuyCode disables a code ahead of its expiry.
func AdminDeactivateBuyCode(svc buycodesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "buy code service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Deactivate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
