package sheets

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lotbridge/lotbridge-backend/internal/vehicles"
	"github.com/lotbridge/lotbridge-backend/pkg/config"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
)

// Row outcome values reported back to the caller.
const (
	RowOutcomeImported = "imported"
	RowOutcomeSkipped  = "skipped"
	RowOutcomeFailed   = "failed"
)

// RowResult describes what happened to a single spreadsheet row.
type RowResult struct {
	Row       int        `json:"row"`
	VIN       string     `json:"vin,omitempty"`
	Outcome   string     `json:"outcome"`
	VehicleID *uuid.UUID `json:"vehicle_id,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// ImportResult summarizes a batch import run.
type ImportResult struct {
	Total    int         `json:"total"`
	Imported int         `json:"imported"`
	Skipped  int         `json:"skipped"`
	Failed   int         `json:"failed"`
	Rows     []RowResult `json:"rows"`
}

// Service pulls intake rows from the configured spreadsheet and feeds them
// through the vehicle intake workflow.
type Service interface {
	Import(ctx context.Context) (*ImportResult, error)
}

type service struct {
	reader   ValuesReader
	vehicles vehicles.Service
	cfg      config.SheetsConfig
}

// NewService constructs a sheets import service.
func NewService(reader ValuesReader, vehicleSvc vehicles.Service, cfg config.SheetsConfig) (Service, error) {
	if reader == nil {
		return nil, fmt.Errorf("values reader required")
	}
	if vehicleSvc == nil {
		return nil, fmt.Errorf("vehicle service required")
	}
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id required")
	}
	if cfg.ReadRange == "" {
		return nil, fmt.Errorf("read range required")
	}
	return &service{reader: reader, vehicles: vehicleSvc, cfg: cfg}, nil
}

// intakeRow is one parsed spreadsheet line. Columns are
// vin | price | mileage | image urls | video url.
type intakeRow struct {
	VIN        string
	PriceCents int
	Mileage    *int
	ImageURLs  []string
	VideoURL   *string
}

func (s *service) Import(ctx context.Context) (*ImportResult, error) {
	values, err := s.reader.Read(ctx, s.cfg.SpreadsheetID, s.cfg.ReadRange)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read intake spreadsheet")
	}

	result := &ImportResult{Rows: make([]RowResult, 0, len(values))}
	for i, cells := range values {
		// Row numbers are reported 1-based relative to the read range.
		rowNum := i + 1
		if isBlankRow(cells) {
			continue
		}
		result.Total++

		row, err := parseRow(cells)
		if err != nil {
			result.Failed++
			result.Rows = append(result.Rows, RowResult{Row: rowNum, VIN: row.VIN, Outcome: RowOutcomeFailed, Error: err.Error()})
			continue
		}

		result.Rows = append(result.Rows, s.importRow(ctx, rowNum, row))
		switch result.Rows[len(result.Rows)-1].Outcome {
		case RowOutcomeImported:
			result.Imported++
		case RowOutcomeSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}
	return result, nil
}

func (s *service) importRow(ctx context.Context, rowNum int, row intakeRow) RowResult {
	dto, err := s.vehicles.Intake(ctx, vehicles.IntakeInput{
		VIN:       row.VIN,
		ImageURLs: row.ImageURLs,
		VideoURL:  row.VideoURL,
	})
	if err != nil {
		var appErr *pkgerrors.Error
		if errors.As(err, &appErr) && appErr.Code() == pkgerrors.CodeConflict {
			return RowResult{Row: rowNum, VIN: row.VIN, Outcome: RowOutcomeSkipped, Error: "vin already on lot"}
		}
		return RowResult{Row: rowNum, VIN: row.VIN, Outcome: RowOutcomeFailed, Error: err.Error()}
	}

	if row.Mileage != nil {
		if _, err := s.vehicles.Complete(ctx, dto.ID, vehicles.CompleteInput{Mileage: row.Mileage}); err != nil {
			return RowResult{Row: rowNum, VIN: row.VIN, Outcome: RowOutcomeFailed, VehicleID: &dto.ID, Error: err.Error()}
		}
	}

	if row.PriceCents > 0 {
		if _, err := s.vehicles.SetPricing(ctx, dto.ID, row.PriceCents); err != nil {
			return RowResult{Row: rowNum, VIN: row.VIN, Outcome: RowOutcomeFailed, VehicleID: &dto.ID, Error: err.Error()}
		}
	}

	return RowResult{Row: rowNum, VIN: row.VIN, Outcome: RowOutcomeImported, VehicleID: &dto.ID}
}

func parseRow(cells []any) (intakeRow, error) {
	row := intakeRow{VIN: strings.ToUpper(cellString(cells, 0))}
	if len(row.VIN) != 17 {
		return row, fmt.Errorf("vin must be 17 characters")
	}

	if raw := cellString(cells, 1); raw != "" {
		cents, err := parsePriceCents(raw)
		if err != nil {
			return row, err
		}
		row.PriceCents = cents
	}

	if raw := cellString(cells, 2); raw != "" {
		mileage, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
		if err != nil || mileage < 0 {
			return row, fmt.Errorf("mileage %q is not a non-negative integer", raw)
		}
		row.Mileage = &mileage
	}

	if raw := cellString(cells, 3); raw != "" {
		for _, piece := range strings.Split(raw, ",") {
			if u := strings.TrimSpace(piece); u != "" {
				row.ImageURLs = append(row.ImageURLs, u)
			}
		}
	}

	if raw := cellString(cells, 4); raw != "" {
		row.VideoURL = &raw
	}

	return row, nil
}

// parsePriceCents accepts dealer-entered prices like "$12,500" or "9800.50"
// and converts them to integer cents. Sub-cent precision is rejected rather
// than rounded.
func parsePriceCents(raw string) (int, error) {
	clean := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(raw), "$"), ",", "")
	price, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("price %q is not a number", raw)
	}
	if price.IsNegative() {
		return 0, fmt.Errorf("price %q is negative", raw)
	}
	cents := price.Shift(2)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("price %q has sub-cent precision", raw)
	}
	return int(cents.IntPart()), nil
}

func cellString(cells []any, idx int) string {
	if idx >= len(cells) || cells[idx] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", cells[idx]))
}

func isBlankRow(cells []any) bool {
	for i := range cells {
		if cellString(cells, i) != "" {
			return false
		}
	}
	return true
}
