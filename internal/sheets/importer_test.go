package sheets

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/internal/vehicles"
	"github.com/lotbridge/lotbridge-backend/internal/vin"
	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
)

type fakeReader struct {
	values [][]any
	err    error
}

func (f *fakeReader) Read(ctx context.Context, spreadsheetID, readRange string) ([][]any, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.values, nil
}

type fakeDecoder struct{}

func (fakeDecoder) Decode(ctx context.Context, v string) (*vin.DecodedVehicle, error) {
	return &vin.DecodedVehicle{VIN: v, Year: 2021, Make: "Ford", Model: "F-150", Trim: "XLT"}, nil
}

func setupSheetsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file:sheets_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, conn.Exec(`
CREATE TABLE IF NOT EXISTS vehicles (
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
);`).Error)
	return conn
}

func newImportService(t *testing.T, conn *gorm.DB, reader ValuesReader) Service {
	t.Helper()
	vehicleSvc, err := vehicles.NewService(vehicles.NewRepository(conn), fakeDecoder{})
	require.NoError(t, err)
	svc, err := NewService(reader, vehicleSvc, config.SheetsConfig{
		SpreadsheetID: "sheet-1",
		ReadRange:     "Inventory!A2:E",
	})
	require.NoError(t, err)
	return svc
}

func TestImportCreatesPricedVehicles(t *testing.T) {
	conn := setupSheetsTestDB(t)
	svc := newImportService(t, conn, &fakeReader{values: [][]any{
		{"1FTFW1ET5MFA00001", "$24,500", "38,200", "https://img.example.com/a.jpg, https://img.example.com/b.jpg", "https://vid.example.com/a.mp4"},
	}})

	result, err := svc.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Rows, 1)
	require.NotNil(t, result.Rows[0].VehicleID)

	var vehicle models.Vehicle
	require.NoError(t, conn.Where("id = ?", result.Rows[0].VehicleID).First(&vehicle).Error)
	assert.Equal(t, "1FTFW1ET5MFA00001", vehicle.VIN)
	assert.Equal(t, 2_450_000, vehicle.PriceCents)
	assert.Equal(t, 38_200, vehicle.Mileage)
	assert.Equal(t, enums.VehicleStatusActive, vehicle.Status)
	assert.False(t, vehicle.InQueue)
	assert.Len(t, []string(vehicle.ImageURLs), 2)
}

func TestImportWithoutPriceStaysQueued(t *testing.T) {
	conn := setupSheetsTestDB(t)
	svc := newImportService(t, conn, &fakeReader{values: [][]any{
		{"1FTFW1ET5MFA00002"},
	}})

	result, err := svc.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)

	var vehicle models.Vehicle
	require.NoError(t, conn.Where("vin = ?", "1FTFW1ET5MFA00002").First(&vehicle).Error)
	assert.Equal(t, enums.VehicleStatusPending, vehicle.Status)
	assert.True(t, vehicle.InQueue)
}

func TestImportSkipsKnownVINs(t *testing.T) {
	conn := setupSheetsTestDB(t)
	svc := newImportService(t, conn, &fakeReader{values: [][]any{
		{"1FTFW1ET5MFA00003", "18000"},
		{"1FTFW1ET5MFA00003", "18000"},
	}})

	result, err := svc.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, RowOutcomeSkipped, result.Rows[1].Outcome)
}

func TestImportReportsBadRowsWithoutAborting(t *testing.T) {
	conn := setupSheetsTestDB(t)
	svc := newImportService(t, conn, &fakeReader{values: [][]any{
		{"TOO-SHORT", "9000"},
		{"1FTFW1ET5MFA00004", "not-a-price"},
		{"1FTFW1ET5MFA00005", "9000", "-5"},
		{}, // blank rows are ignored entirely
		{"1FTFW1ET5MFA00006", "9000"},
	}})

	result, err := svc.Import(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 3, result.Failed)
	assert.Equal(t, 1, result.Imported)

	var count int64
	require.NoError(t, conn.Model(&models.Vehicle{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestImportSurfacesReaderFailure(t *testing.T) {
	conn := setupSheetsTestDB(t)
	svc := newImportService(t, conn, &fakeReader{err: fmt.Errorf("quota exceeded")})

	_, err := svc.Import(context.Background())
	require.Error(t, err)
}

func TestParsePriceCents(t *testing.T) {
	cases := []struct {
		raw     string
		cents   int
		wantErr bool
	}{
		{"$24,500", 2_450_000, false},
		{"9800.50", 980_050, false},
		{"0", 0, false},
		{"12.345", 0, true},
		{"-100", 0, true},
		{"twelve", 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			cents, err := parsePriceCents(tc.raw)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.cents, cents)
		})
	}
}
