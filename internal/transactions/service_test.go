package transactions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/pagination"
)

type fakeSigner struct {
	failPut bool
}

func (f *fakeSigner) SignedURL(bucket, object, contentType string, ttl time.Duration) (string, error) {
	if f.failPut {
		return "", fmt.Errorf("signing unavailable")
	}
	return "https://storage.example.com/put/" + bucket + "/" + object, nil
}

func (f *fakeSigner) SignedReadURL(bucket, object string, ttl time.Duration) (string, error) {
	return "https://storage.example.com/get/" + bucket + "/" + object, nil
}

func setupTransactionsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:transactions_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

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
		`CREATE TABLE IF NOT EXISTS dealers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  contact_name TEXT NOT NULL DEFAULT '',
  contact_email TEXT NOT NULL,
  contact_phone TEXT NOT NULL DEFAULT '',
  billing_address TEXT NOT NULL DEFAULT '',
  title_contact_name TEXT NOT NULL DEFAULT '',
  title_contact_email TEXT NOT NULL DEFAULT '',
  active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
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

func newTransactionsService(t *testing.T, conn *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(conn), &fakeSigner{}, config.GCSConfig{
		BucketName:        "lot-docs",
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 24 * time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func seedTransaction(t *testing.T, conn *gorm.DB, created time.Time) *models.Transaction {
	t.Helper()

	vehicle := &models.Vehicle{
		ID:         uuid.New(),
		VIN:        "WBA3A5C5" + uuid.NewString()[:9],
		PriceCents: 1_500_000,
		Status:     enums.VehicleStatusSold,
	}
	require.NoError(t, conn.Create(vehicle).Error)

	dealer := &models.Dealer{
		ID:           uuid.New(),
		Name:         "Settlement Motors",
		ContactEmail: uuid.NewString() + "@example.com",
		Active:       true,
	}
	require.NoError(t, conn.Create(dealer).Error)

	txn := &models.Transaction{
		ID:          uuid.New(),
		VehicleID:   vehicle.ID,
		DealerID:    dealer.ID,
		AmountCents: vehicle.PriceCents,
		Status:      enums.TransactionStatusPending,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
	require.NoError(t, conn.Create(txn).Error)
	return txn
}

func TestCompleteRequiresPayment(t *testing.T) {
	conn := setupTransactionsTestDB(t)
	svc := newTransactionsService(t, conn)
	txn := seedTransaction(t, conn, time.Now().UTC())

	_, err := svc.Complete(context.Background(), txn.ID)
	require.Error(t, err)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeStateConflict, appErr.Code())
}

func TestMarkPaidThenComplete(t *testing.T) {
	conn := setupTransactionsTestDB(t)
	svc := newTransactionsService(t, conn)
	txn := seedTransaction(t, conn, time.Now().UTC())

	paid, err := svc.MarkPaid(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	completed, err := svc.Complete(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.TransactionStatusCompleted, completed.Status)

	var reloaded models.Transaction
	require.NoError(t, conn.Where("id = ?", txn.ID).First(&reloaded).Error)
	assert.True(t, reloaded.IsPaid)
	assert.Equal(t, enums.TransactionStatusCompleted, reloaded.Status)
}

func TestMarkPaidIsIdempotent(t *testing.T) {
	conn := setupTransactionsTestDB(t)
	svc := newTransactionsService(t, conn)
	txn := seedTransaction(t, conn, time.Now().UTC())

	_, err := svc.MarkPaid(context.Background(), txn.ID)
	require.NoError(t, err)
	again, err := svc.MarkPaid(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.True(t, again.IsPaid)
}

func TestBillOfSaleUploadAttachesKey(t *testing.T) {
	conn := setupTransactionsTestDB(t)
	svc := newTransactionsService(t, conn)
	txn := seedTransaction(t, conn, time.Now().UTC())

	upload, err := svc.BillOfSaleUpload(context.Background(), txn.ID, "application/pdf")
	require.NoError(t, err)
	assert.Contains(t, upload.UploadURL, "lot-docs")
	assert.Contains(t, upload.ObjectKey, txn.ID.String())

	var reloaded models.Transaction
	require.NoError(t, conn.Where("id = ?", txn.ID).First(&reloaded).Error)
	require.NotNil(t, reloaded.BillOfSaleKey)
	assert.Equal(t, upload.ObjectKey, *reloaded.BillOfSaleKey)

	downloadURL, err := svc.BillOfSaleDownload(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Contains(t, downloadURL, upload.ObjectKey)
}

func TestBillOfSaleDownloadWithoutAttachment(t *testing.T) {
	conn := setupTransactionsTestDB(t)
	svc := newTransactionsService(t, conn)
	txn := seedTransaction(t, conn, time.Now().UTC())

	_, err := svc.BillOfSaleDownload(context.Background(), txn.ID)
	require.Error(t, err)
	var appErr *pkgerrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestListScopesToDealer(t *testing.T) {
	conn := setupTransactionsTestDB(t)
	svc := newTransactionsService(t, conn)

	now := time.Now().UTC()
	mine := seedTransaction(t, conn, now.Add(-time.Minute))
	seedTransaction(t, conn, now)

	all, err := svc.List(context.Background(), nil, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, all.Transactions, 2)

	scoped, err := svc.List(context.Background(), &mine.DealerID, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, scoped.Transactions, 1)
	assert.Equal(t, mine.ID, scoped.Transactions[0].ID)
	assert.Equal(t, "Settlement Motors", scoped.Transactions[0].DealerName)
}
