package offers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/internal/transactions"
	"github.com/lotbridge/lotbridge-backend/internal/vehicles"
	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r *gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupOffersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:offers_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  vin TEXT NOT NULL UNIQUE,
  year INTEGER NOT NULL DEFAULT 0,
  make TEXT NOT NULL DEFAULT '',
  model TEXT NOT NULL DEFAULT '',
  trim TEXT NOT NULL DEFAULT '',
  price_cents INTEGER NOT NULL DEFAULT 0,
  mileage INTEGER NOT NULL DEFAULT 0,
  image_urls TEXT,
  video_url TEXT,
  description TEXT,
  certification TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  in_queue INTEGER NOT NULL DEFAULT 1,
  inspection_status TEXT NOT NULL DEFAULT 'pending',
  inspection_fail_reason TEXT,
  repair_cost_cents INTEGER,
  inspection_media TEXT,
  inspection_notes TEXT,
  reactivation_notes TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS offers (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL,
  dealer_id TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  counter_amount_cents INTEGER,
  counter_message TEXT,
  expires_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_offers_open_per_dealer_vehicle
  ON offers (vehicle_id, dealer_id)
  WHERE status IN ('pending', 'countered');`,
		`CREATE TABLE IF NOT EXISTS offer_activities (
  id TEXT PRIMARY KEY,
  offer_id TEXT NOT NULL,
  message TEXT NOT NULL,
  created_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS transactions (
  id TEXT PRIMARY KEY,
  vehicle_id TEXT NOT NULL,
  dealer_id TEXT NOT NULL,
  buy_code_id TEXT,
  offer_id TEXT,
  amount_cents INTEGER NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  is_paid INTEGER NOT NULL DEFAULT 0,
  bill_of_sale_key TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, conn.Exec(stmt).Error)
	}
	return conn
}

type offersFixture struct {
	conn    *gorm.DB
	svc     Service
	repo    Repository
	vehicle *models.Vehicle
	dealer  uuid.UUID
}

func newOffersFixture(t *testing.T) *offersFixture {
	t.Helper()
	conn := setupOffersTestDB(t)

	repo := NewRepository(conn)
	svc, err := NewService(ServiceParams{
		TxRunner:        &gormTxRunner{db: conn},
		OfferRepo:       repo,
		VehicleRepo:     vehicles.NewRepository(conn),
		TransactionRepo: transactions.NewRepository(conn),
		Config:          config.OffersConfig{DefaultTTL: 72 * time.Hour},
	})
	require.NoError(t, err)

	vehicle := &models.Vehicle{
		ID:         uuid.New(),
		VIN:        "5YJ3E1EA" + uuid.NewString()[:9],
		Year:       2023,
		Make:       "TESLA",
		Model:      "Model 3",
		PriceCents: 3_100_000,
		Status:     enums.VehicleStatusActive,
		InQueue:    false,
	}
	require.NoError(t, conn.Create(vehicle).Error)

	return &offersFixture{conn: conn, svc: svc, repo: repo, vehicle: vehicle, dealer: uuid.New()}
}

func expectCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	require.Error(t, err)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, want, appErr.Code())
}

func TestSubmitCreatesPendingOfferWithActivity(t *testing.T) {
	f := newOffersFixture(t)

	dto, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 2_900_000)
	require.NoError(t, err)

	assert.Equal(t, enums.OfferStatusPending, dto.Status)
	assert.Equal(t, 2_900_000, dto.AmountCents)
	require.NotNil(t, dto.ExpiresAt)

	var activity []models.OfferActivity
	require.NoError(t, f.conn.Where("offer_id = ?", dto.ID).Find(&activity).Error)
	require.Len(t, activity, 1)
	assert.Contains(t, activity[0].Message, "offer submitted")
}

func TestSubmitRejectsNonPositiveAmount(t *testing.T) {
	f := newOffersFixture(t)

	_, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 0)
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestSubmitRejectsInactiveVehicle(t *testing.T) {
	f := newOffersFixture(t)
	require.NoError(t, f.conn.Model(&models.Vehicle{}).Where("id = ?", f.vehicle.ID).Update("status", enums.VehicleStatusSold).Error)

	_, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 1_000_000)
	expectCode(t, err, pkgerrors.CodeVehicleUnavailable)
}

func TestSubmitOneOpenOfferPerVehicle(t *testing.T) {
	f := newOffersFixture(t)

	_, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 2_000_000)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 2_100_000)
	expectCode(t, err, pkgerrors.CodeConflict)

	// A different dealer can still bid.
	_, err = f.svc.Submit(context.Background(), uuid.New(), f.vehicle.ID, 2_200_000)
	require.NoError(t, err)
}

func TestSubmitConcurrentKeepsOneOpenOffer(t *testing.T) {
	f := newOffersFixture(t)

	const attempts = 8
	var wg sync.WaitGroup
	results := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 2_000_000)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	successes := 0
	for err := range results {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)

	var count int64
	require.NoError(t, f.conn.Model(&models.Offer{}).
		Where("vehicle_id = ? AND dealer_id = ? AND status IN ?",
			f.vehicle.ID, f.dealer, []enums.OfferStatus{enums.OfferStatusPending, enums.OfferStatusCountered}).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAdminAcceptSellsVehicleAndCreatesTransaction(t *testing.T) {
	f := newOffersFixture(t)

	dto, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 2_950_000)
	require.NoError(t, err)

	accepted, err := f.svc.Decide(context.Background(), dto.ID, DecisionInput{Decision: AdminDecisionAccept})
	require.NoError(t, err)
	assert.Equal(t, enums.OfferStatusAccepted, accepted.Status)

	var vehicle models.Vehicle
	require.NoError(t, f.conn.Where("id = ?", f.vehicle.ID).First(&vehicle).Error)
	assert.Equal(t, enums.VehicleStatusSold, vehicle.Status)

	var txn models.Transaction
	require.NoError(t, f.conn.Where("offer_id = ?", dto.ID).First(&txn).Error)
	assert.Equal(t, 2_950_000, txn.AmountCents)
	assert.Equal(t, enums.TransactionStatusPending, txn.Status)
	assert.Equal(t, f.dealer, txn.DealerID)
}

func TestCounterThenDeclineFlow(t *testing.T) {
	f := newOffersFixture(t)

	dto, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 2_500_000)
	require.NoError(t, err)

	counterAmount := 2_800_000
	message := "can meet you halfway"
	countered, err := f.svc.Decide(context.Background(), dto.ID, DecisionInput{
		Decision:       AdminDecisionCounter,
		CounterAmount:  &counterAmount,
		CounterMessage: &message,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OfferStatusCountered, countered.Status)
	require.NotNil(t, countered.CounterAmountCents)
	assert.Equal(t, counterAmount, *countered.CounterAmountCents)

	declined, err := f.svc.Respond(context.Background(), dto.ID, f.dealer, DealerDecisionDecline)
	require.NoError(t, err)
	assert.Equal(t, enums.OfferStatusDeclined, declined.Status)

	// Terminal: no further mutation allowed.
	_, err = f.svc.Respond(context.Background(), dto.ID, f.dealer, DealerDecisionAccept)
	expectCode(t, err, pkgerrors.CodeStateConflict)
	_, err = f.svc.Decide(context.Background(), dto.ID, DecisionInput{Decision: AdminDecisionAccept})
	expectCode(t, err, pkgerrors.CodeStateConflict)

	// No sale happened.
	var vehicle models.Vehicle
	require.NoError(t, f.conn.Where("id = ?", f.vehicle.ID).First(&vehicle).Error)
	assert.Equal(t, enums.VehicleStatusActive, vehicle.Status)

	var activity []models.OfferActivity
	require.NoError(t, f.conn.Where("offer_id = ?", dto.ID).Order("created_at ASC").Find(&activity).Error)
	require.Len(t, activity, 3)
}

func TestDealerAcceptsCounterAtCounterAmount(t *testing.T) {
	f := newOffersFixture(t)

	dto, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 2_500_000)
	require.NoError(t, err)

	counterAmount := 2_750_000
	_, err = f.svc.Decide(context.Background(), dto.ID, DecisionInput{
		Decision:      AdminDecisionCounter,
		CounterAmount: &counterAmount,
	})
	require.NoError(t, err)

	accepted, err := f.svc.Respond(context.Background(), dto.ID, f.dealer, DealerDecisionAccept)
	require.NoError(t, err)
	assert.Equal(t, enums.OfferStatusAccepted, accepted.Status)

	var txn models.Transaction
	require.NoError(t, f.conn.Where("offer_id = ?", dto.ID).First(&txn).Error)
	assert.Equal(t, counterAmount, txn.AmountCents)
}

func TestRespondRejectsOtherDealers(t *testing.T) {
	f := newOffersFixture(t)

	dto, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 2_500_000)
	require.NoError(t, err)

	counterAmount := 2_600_000
	_, err = f.svc.Decide(context.Background(), dto.ID, DecisionInput{
		Decision:      AdminDecisionCounter,
		CounterAmount: &counterAmount,
	})
	require.NoError(t, err)

	_, err = f.svc.Respond(context.Background(), dto.ID, uuid.New(), DealerDecisionAccept)
	expectCode(t, err, pkgerrors.CodeForbidden)
}

func TestLazyExpiryAtMutation(t *testing.T) {
	f := newOffersFixture(t)

	dto, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 2_500_000)
	require.NoError(t, err)

	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, f.conn.Model(&models.Offer{}).Where("id = ?", dto.ID).Update("expires_at", past).Error)

	_, err = f.svc.Decide(context.Background(), dto.ID, DecisionInput{Decision: AdminDecisionAccept})
	expectCode(t, err, pkgerrors.CodeStateConflict)

	var offer models.Offer
	require.NoError(t, f.conn.Where("id = ?", dto.ID).First(&offer).Error)
	assert.Equal(t, enums.OfferStatusExpired, offer.Status)
}

func TestExpireLapsedSweep(t *testing.T) {
	f := newOffersFixture(t)

	dto, err := f.svc.Submit(context.Background(), f.dealer, f.vehicle.ID, 2_500_000)
	require.NoError(t, err)
	past := time.Now().UTC().Add(-time.Minute)
	require.NoError(t, f.conn.Model(&models.Offer{}).Where("id = ?", dto.ID).Update("expires_at", past).Error)

	fresh, err := f.svc.Submit(context.Background(), uuid.New(), f.vehicle.ID, 2_600_000)
	require.NoError(t, err)

	lapsed, err := f.repo.ExpireLapsed(context.Background(), time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, lapsed, 1)
	assert.Equal(t, dto.ID, lapsed[0].ID)

	var offer models.Offer
	require.NoError(t, f.conn.Where("id = ?", fresh.ID).First(&offer).Error)
	assert.Equal(t, enums.OfferStatusPending, offer.Status)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	f := newOffersFixture(t)

	first, err := f.svc.Submit(context.Background(), uuid.New(), f.vehicle.ID, 2_000_000)
	require.NoError(t, err)
	require.NoError(t, f.conn.Model(&models.Offer{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().UTC().Add(-time.Hour)).Error)
	second, err := f.svc.Submit(context.Background(), uuid.New(), f.vehicle.ID, 2_100_000)
	require.NoError(t, err)

	page, err := f.svc.List(context.Background(), ListFilter{}, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Offers, 1)
	assert.Equal(t, second.ID, page.Offers[0].ID)
	require.NotEmpty(t, page.NextCursor)

	next, err := f.svc.List(context.Background(), ListFilter{}, pagination.Params{Limit: 1, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, next.Offers, 1)
	assert.Equal(t, first.ID, next.Offers[0].ID)
	assert.Empty(t, next.NextCursor)
}
