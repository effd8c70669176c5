package controllers

import (
	"net/http"

	"github.com/lotbridge/lotbridge-backend/api/responses"
	"github.com/lotbridge/lotbridge-backend/api/validators"
	dealersvc "github.com/lotbridge/lotbridge-backend/internal/dealers"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
)

type createDealerRequest struct {
	Name              string `json:"name" validate:"required"`
	ContactName       string `json:"contact_name,omitempty"`
	ContactEmail      string `json:"contact_email" validate:"required,email"`
	ContactPhone      string `json:"contact_phone,omitempty"`
	BillingAddress    string `json:"billing_address,omitempty"`
	TitleContactName  string `json:"title_contact_name,omitempty"`
	TitleContactEmail string `json:"title_contact_email,omitempty" validate:"omitempty,email"`
}

type updateDealerRequest struct {
	Name              *string `json:"name,omitempty"`
	ContactName       *string `json:"contact_name,omitempty"`
	ContactEmail      *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone      *string `json:"contact_phone,omitempty"`
	BillingAddress    *string `json:"billing_address,omitempty"`
	TitleContactName  *string `json:"title_contact_name,omitempty"`
	TitleContactEmail *string `json:"title_contact_email,omitempty" validate:"omitempty,email"`
	Active            *bool   `json:"active,omitempty"`
}

type createDealerResponse struct {
	Dealer            *dealersvc.DealerDTO `json:"dealer"`
	TemporaryPassword string               `json:"temporary_password"`
}

// AdminCreateDealer onboards a dealership and its login user. The response
// carries the generated password exactly once.
func AdminCreateDealer(svc dealersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealer service unavailable"))
			return
		}

		var body createDealerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer, tempPassword, err := svc.Create(r.Context(), dealersvc.CreateDealerInput{
			Name:              body.Name,
			ContactName:       body.ContactName,
			ContactEmail:      body.ContactEmail,
			ContactPhone:      body.ContactPhone,
			BillingAddress:    body.BillingAddress,
			TitleContactName:  body.TitleContactName,
			TitleContactEmail: body.TitleContactEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createDealerResponse{
			Dealer:            dealer,
			TemporaryPassword: tempPassword,
		})
	}
}

// AdminListDealers lists dealerships.
func AdminListDealers(svc dealersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealer service unavailable"))
			return
		}

		includeInactive := r.URL.Query().Get("include_inactive") == "true"
		dealers, err := svc.List(r.Context(), includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dealers)
	}
}

// AdminUpdateDealer updates dealer contact detail and active state.
func AdminUpdateDealer(svc dealersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealer service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateDealerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer, err := svc.Update(r.Context(), id, dealersvc.UpdateDealerInput{
			Name:              body.Name,
			ContactName:       body.ContactName,
			ContactEmail:      body.ContactEmail,
			ContactPhone:      body.ContactPhone,
			BillingAddress:    body.BillingAddress,
			TitleContactName:  body.TitleContactName,
			TitleContactEmail: body.TitleContactEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if body.Active != nil {
			if *body.Active {
				err = svc.Reactivate(r.Context(), id)
			} else {
				err = svc.Deactivate(r.Context(), id)
			}
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			dealer.Active = *body.Active
		}

		responses.WriteSuccess(w, dealer)
	}
}
