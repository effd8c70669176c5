package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/api/responses"
	"github.com/lotbridge/lotbridge-backend/api/validators"
	txnsvc "github.com/lotbridge/lotbridge-backend/internal/transactions"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
)

type billOfSaleRequest struct {
	ContentType string `json:"content_type,omitempty"`
}

// AdminListTransactions lists settlements, optionally scoped to a dealer.
func AdminListTransactions(svc txnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
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

		result, err := svc.List(r.Context(), dealerID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// AdminMarkTransactionPaid records that funds arrived for a sale.
func AdminMarkTransactionPaid(svc txnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.MarkPaid(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, txn)
	}
}

// AdminCompleteTransaction closes out a paid settlement.
func AdminCompleteTransaction(svc txnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		txn, err := svc.Complete(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, txn)
	}
}

// AdminAttachBillOfSale presigns a bill-of-sale upload and attaches the key.
func AdminAttachBillOfSale(svc txnsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "transaction service unavailable"))
			return
		}

		id, err := pathUUID(r, "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body billOfSaleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		upload, err := svc.BillOfSaleUpload(r.Context(), id, body.ContentType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, upload)
	}
}
