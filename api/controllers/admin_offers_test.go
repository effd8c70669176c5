package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/internal/offers"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	"github.com/lotbridge/lotbridge-backend/pkg/pagination"
)

type testOfferService struct {
	offers.Service

	listFn   func(ctx context.Context, filter offers.ListFilter, params pagination.Params) (*offers.ListResult, error)
	decideFn func(ctx context.Context, offerID uuid.UUID, input offers.DecisionInput) (*offers.OfferDTO, error)
}

func (s *testOfferService) List(ctx context.Context, filter offers.ListFilter, params pagination.Params) (*offers.ListResult, error) {
	if s.listFn != nil {
		return s.listFn(ctx, filter, params)
	}
	return &offers.ListResult{}, nil
}

func (s *testOfferService) Decide(ctx context.Context, offerID uuid.UUID, input offers.DecisionInput) (*offers.OfferDTO, error) {
	if s.decideFn != nil {
		return s.decideFn(ctx, offerID, input)
	}
	return &offers.OfferDTO{}, nil
}

func TestAdminListOffersParsesStatusFilter(t *testing.T) {
	svc := &testOfferService{
		listFn: func(ctx context.Context, filter offers.ListFilter, params pagination.Params) (*offers.ListResult, error) {
			if len(filter.Statuses) != 2 {
				t.Fatalf("expected two statuses got %d", len(filter.Statuses))
			}
			if filter.Statuses[0] != enums.OfferStatusPending || filter.Statuses[1] != enums.OfferStatusCountered {
				t.Fatalf("unexpected statuses %v", filter.Statuses)
			}
			return &offers.ListResult{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/offers?status=pending,countered", nil)
	resp := httptest.NewRecorder()
	AdminListOffers(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminListOffersRejectsUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/offers?status=haggling", nil)
	resp := httptest.NewRecorder()
	AdminListOffers(&testOfferService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminOfferDecisionCounter(t *testing.T) {
	offerID := uuid.New()
	called := false
	svc := &testOfferService{
		decideFn: func(ctx context.Context, id uuid.UUID, input offers.DecisionInput) (*offers.OfferDTO, error) {
			called = true
			if id != offerID {
				t.Fatalf("unexpected offer %s", id)
			}
			if input.Decision != offers.AdminDecisionCounter {
				t.Fatalf("unexpected decision %q", input.Decision)
			}
			if input.CounterAmount == nil || *input.CounterAmount != 2_100_000 {
				t.Fatalf("unexpected counter amount %v", input.CounterAmount)
			}
			return &offers.OfferDTO{ID: id}, nil
		},
	}

	body := `{"decision":"counter","counter_amount":2100000,"counter_message":"best we can do"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/offers/"+offerID.String()+"/decision", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "offerId", offerID.String())

	resp := httptest.NewRecorder()
	AdminOfferDecision(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestAdminOfferDecisionRejectsUnknownVerb(t *testing.T) {
	offerID := uuid.NewString()
	body := `{"decision":"haggle"}`
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/offers/"+offerID+"/decision", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req = addRouteParam(req, "offerId", offerID)

	resp := httptest.NewRecorder()
	AdminOfferDecision(&testOfferService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
