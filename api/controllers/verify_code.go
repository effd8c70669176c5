package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/api/responses"
	"github.com/lotbridge/lotbridge-backend/api/validators"
	"github.com/lotbridge/lotbridge-backend/internal/redemption"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
)

type verifyCodeRequest struct {
	Code      string `json:"code" validate:"required"`
	VehicleID string `json:"vehicle_id" validate:"required,uuid"`
}

// DealerVerifyCode redeems a buy code against a vehicle for the
// authenticated dealer.
func DealerVerifyCode(svc redemption.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "redemption service unavailable"))
			return
		}

		dealerID, err := dealerFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body verifyCodeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicleID, err := uuid.Parse(body.VehicleID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle_id"))
			return
		}

		result, err := svc.Redeem(r.Context(), redemption.RedeemInput{
			Code:      body.Code,
			VehicleID: vehicleID,
			DealerID:  &dealerID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
