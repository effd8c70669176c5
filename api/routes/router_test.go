package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lotbridge/lotbridge-backend/internal/auth"
	"github.com/lotbridge/lotbridge-backend/internal/buycodes"
	"github.com/lotbridge/lotbridge-backend/internal/dealers"
	"github.com/lotbridge/lotbridge-backend/internal/media"
	"github.com/lotbridge/lotbridge-backend/internal/offers"
	"github.com/lotbridge/lotbridge-backend/internal/redemption"
	"github.com/lotbridge/lotbridge-backend/internal/sheets"
	"github.com/lotbridge/lotbridge-backend/internal/transactions"
	"github.com/lotbridge/lotbridge-backend/internal/vehicles"
	pkgAuth "github.com/lotbridge/lotbridge-backend/pkg/auth"
	"github.com/lotbridge/lotbridge-backend/pkg/auth/session"
	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
	"github.com/lotbridge/lotbridge-backend/pkg/pagination"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) AdminLogin(ctx context.Context, req auth.LoginRequest) (*auth.AdminLoginResponse, error) {
	panic("unimplemented")
}

type stubVehicleService struct{}

func (stubVehicleService) Intake(ctx context.Context, input vehicles.IntakeInput) (*vehicles.VehicleDTO, error) {
	panic("unimplemented")
}

func (stubVehicleService) Get(ctx context.Context, id uuid.UUID) (*vehicles.VehicleDTO, error) {
	panic("unimplemented")
}

func (stubVehicleService) GetForDealer(ctx context.Context, id uuid.UUID) (*vehicles.VehicleDTO, error) {
	panic("unimplemented")
}

func (stubVehicleService) List(ctx context.Context, filter vehicles.ListFilter, params pagination.Params) (*vehicles.ListResult, error) {
	return &vehicles.ListResult{}, nil
}

func (stubVehicleService) ListForDealers(ctx context.Context, filter vehicles.ListFilter, params pagination.Params) (*vehicles.ListResult, error) {
	return &vehicles.ListResult{}, nil
}

func (stubVehicleService) SetPricing(ctx context.Context, id uuid.UUID, priceCents int) (*vehicles.VehicleDTO, error) {
	panic("unimplemented")
}

func (stubVehicleService) Complete(ctx context.Context, id uuid.UUID, input vehicles.CompleteInput) (*vehicles.VehicleDTO, error) {
	panic("unimplemented")
}

func (stubVehicleService) Remove(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubVehicleService) Reactivate(ctx context.Context, id uuid.UUID, notes string) (*vehicles.VehicleDTO, error) {
	panic("unimplemented")
}

type stubOfferService struct{}

func (stubOfferService) Submit(ctx context.Context, dealerID, vehicleID uuid.UUID, amountCents int) (*offers.OfferDTO, error) {
	panic("unimplemented")
}

func (stubOfferService) Get(ctx context.Context, id uuid.UUID) (*offers.OfferDTO, error) {
	panic("unimplemented")
}

func (stubOfferService) List(ctx context.Context, filter offers.ListFilter, params pagination.Params) (*offers.ListResult, error) {
	return &offers.ListResult{}, nil
}

func (stubOfferService) Decide(ctx context.Context, offerID uuid.UUID, input offers.DecisionInput) (*offers.OfferDTO, error) {
	panic("unimplemented")
}

func (stubOfferService) Respond(ctx context.Context, offerID, dealerID uuid.UUID, decision offers.DealerDecision) (*offers.OfferDTO, error) {
	panic("unimplemented")
}

type stubBuyCodeService struct{}

func (stubBuyCodeService) Create(ctx context.Context, input buycodes.CreateInput) (*buycodes.BuyCodeDTO, error) {
	panic("unimplemented")
}

func (stubBuyCodeService) List(ctx context.Context, dealerID *uuid.UUID, includeInactive bool) ([]buycodes.BuyCodeDTO, error) {
	return nil, nil
}

func (stubBuyCodeService) Deactivate(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubDealerService struct{}

func (stubDealerService) Create(ctx context.Context, input dealers.CreateDealerInput) (*dealers.DealerDTO, string, error) {
	panic("unimplemented")
}

func (stubDealerService) Get(ctx context.Context, id uuid.UUID) (*dealers.DealerDTO, error) {
	panic("unimplemented")
}

func (stubDealerService) List(ctx context.Context, includeInactive bool) ([]dealers.DealerDTO, error) {
	return nil, nil
}

func (stubDealerService) Update(ctx context.Context, id uuid.UUID, input dealers.UpdateDealerInput) (*dealers.DealerDTO, error) {
	panic("unimplemented")
}

func (stubDealerService) Deactivate(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

func (stubDealerService) Reactivate(ctx context.Context, id uuid.UUID) error {
	panic("unimplemented")
}

type stubTransactionService struct{}

func (stubTransactionService) Get(ctx context.Context, id uuid.UUID) (*transactions.TransactionDTO, error) {
	panic("unimplemented")
}

func (stubTransactionService) List(ctx context.Context, dealerID *uuid.UUID, params pagination.Params) (*transactions.ListResult, error) {
	return &transactions.ListResult{}, nil
}

func (stubTransactionService) MarkPaid(ctx context.Context, id uuid.UUID) (*transactions.TransactionDTO, error) {
	panic("unimplemented")
}

func (stubTransactionService) Complete(ctx context.Context, id uuid.UUID) (*transactions.TransactionDTO, error) {
	panic("unimplemented")
}

func (stubTransactionService) BillOfSaleUpload(ctx context.Context, id uuid.UUID, contentType string) (*transactions.BillOfSaleUpload, error) {
	panic("unimplemented")
}

func (stubTransactionService) BillOfSaleDownload(ctx context.Context, id uuid.UUID) (string, error) {
	panic("unimplemented")
}

type stubRedemptionService struct{}

func (stubRedemptionService) Redeem(ctx context.Context, input redemption.RedeemInput) (*redemption.Result, error) {
	panic("unimplemented")
}

type stubMediaService struct{}

func (stubMediaService) PresignUpload(ctx context.Context, input media.PresignInput) (*media.PresignOutput, error) {
	panic("unimplemented")
}

type stubSheetsService struct{}

func (stubSheetsService) Import(ctx context.Context) (*sheets.ImportResult, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(RouterParams{
		Config:             cfg,
		Logger:             logg,
		DB:                 stubPinger{},
		Redis:              nil,
		GCS:                stubPinger{},
		SessionManager:     stubSessionManager{},
		AuthService:        stubAuthService{},
		VehicleService:     stubVehicleService{},
		OfferService:       stubOfferService{},
		BuyCodeService:     stubBuyCodeService{},
		DealerService:      stubDealerService{},
		TransactionService: stubTransactionService{},
		RedemptionService:  stubRedemptionService{},
		MediaService:       stubMediaService{},
		SheetsService:      stubSheetsService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.ActorRole) string {
	t.Helper()
	payload := pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	}
	if role == enums.ActorRoleDealer {
		dealerID := uuid.New()
		payload.DealerID = &dealerID
	}
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), payload)
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveNeedsNoAuth(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if env := resp.Header().Get("X-LotBridge-Env"); env != "test" {
		t.Fatalf("expected env header got %q", env)
	}
}

func TestHealthReadyPingsDependencies(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestDealerGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestDealerGroupRejectsAdminToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for admin token got %d", resp.Code)
	}
}

func TestDealerGroupSucceedsWithDealerToken(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleDealer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for dealer token got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	dealer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/vehicles", nil)
	dealer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleDealer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, dealer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for dealer token got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/vehicles", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin token got %d", resp.Code)
	}
}

func TestAdminTransactionsListSucceeds(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/transactions", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestVerifyCodeRequiresIdempotencyKey(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify-code", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.ActorRoleDealer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without Idempotency-Key got %d", resp.Code)
	}
}
