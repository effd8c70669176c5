package redemption

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/internal/buycodes"
	"github.com/lotbridge/lotbridge-backend/internal/transactions"
	"github.com/lotbridge/lotbridge-backend/internal/vehicles"
	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
)

// Service redeems buy codes against active vehicles.
type Service interface {
	Redeem(ctx context.Context, input RedeemInput) (*Result, error)
}

// RedeemInput identifies the code, the vehicle, and the redeeming dealer.
type RedeemInput struct {
	Code      string
	VehicleID uuid.UUID
	DealerID  *uuid.UUID
}

// Result is returned on a successful redemption.
type Result struct {
	Valid       bool                         `json:"valid"`
	Transaction *transactions.TransactionDTO `json:"transaction"`
}

type dealerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	runner   txRunner
	codes    buycodes.Repository
	vehicles vehicles.Repository
	dealers  dealerReader
	txns     transactions.Repository
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a redemption service.
type ServiceParams struct {
	TxRunner        txRunner
	BuyCodeRepo     buycodes.Repository
	VehicleRepo     vehicles.Repository
	DealerRepo      dealerReader
	TransactionRepo transactions.Repository
}

// NewService constructs a redemption service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.BuyCodeRepo == nil {
		return nil, fmt.Errorf("buy code repository is required")
	}
	if params.VehicleRepo == nil {
		return nil, fmt.Errorf("vehicle repository is required")
	}
	if params.DealerRepo == nil {
		return nil, fmt.Errorf("dealer repository is required")
	}
	if params.TransactionRepo == nil {
		return nil, fmt.Errorf("transaction repository is required")
	}
	return &service{
		runner:   params.TxRunner,
		codes:    params.BuyCodeRepo,
		vehicles: params.VehicleRepo,
		dealers:  params.DealerRepo,
		txns:     params.TransactionRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Redeem validates the code and vehicle, then commits the sale atomically.
// The validation pass never writes; the commit re-checks every predicate at
// write time so concurrent redemptions cannot oversell a code or a vehicle.
func (s *service) Redeem(ctx context.Context, input RedeemInput) (*Result, error) {
	code, vehicle, err := s.validate(ctx, input)
	if err != nil {
		return nil, err
	}

	var txn *models.Transaction
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		now := s.now()

		consumed, consumeErr := s.codes.WithTx(tx).Consume(ctx, code.ID, now)
		if consumeErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, consumeErr, "consume buy code")
		}
		if !consumed {
			return s.classifyConsumeFailure(ctx, tx, code.ID, now)
		}

		sold, soldErr := s.vehicles.WithTx(tx).MarkSold(ctx, vehicle.ID)
		if soldErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, soldErr, "mark vehicle sold")
		}
		if !sold {
			return pkgerrors.New(pkgerrors.CodeVehicleUnavailable, "vehicle is no longer available")
		}

		txn = &models.Transaction{
			ID:          uuid.New(),
			VehicleID:   vehicle.ID,
			DealerID:    code.DealerID,
			BuyCodeID:   &code.ID,
			AmountCents: vehicle.PriceCents,
		}
		if _, createErr := s.txns.WithTx(tx).Create(ctx, txn); createErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &Result{Valid: true, Transaction: transactions.FromModel(txn)}, nil
}

func (s *service) validate(ctx context.Context, input RedeemInput) (*models.BuyCode, *models.Vehicle, error) {
	raw := strings.ToUpper(strings.TrimSpace(input.Code))
	if raw == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}

	code, err := s.codes.FindByCode(ctx, raw)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeBuyCodeNotFound, "buy code not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buy code")
	}
	if !code.Active {
		return nil, nil, pkgerrors.New(pkgerrors.CodeBuyCodeInactive, "buy code is inactive")
	}
	if code.MaxUses != nil && code.UsageCount >= *code.MaxUses {
		return nil, nil, pkgerrors.New(pkgerrors.CodeBuyCodeExhausted, "buy code has no remaining uses")
	}
	if code.ExpiresAt != nil && !code.ExpiresAt.After(s.now()) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeBuyCodeExpired, "buy code has expired")
	}

	// Codes are dealer-specific: an authenticated dealer may only redeem
	// codes issued to them. Admin-initiated redemptions carry no dealer.
	if input.DealerID != nil && *input.DealerID != code.DealerID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealer is not permitted to redeem")
	}

	dealer, err := s.dealers.FindByID(ctx, code.DealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealer is not permitted to redeem")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}
	if !dealer.Active {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "dealer is not permitted to redeem")
	}

	vehicle, err := s.vehicles.FindByID(ctx, input.VehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeVehicleNotFound, "vehicle not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	if vehicle.Status != enums.VehicleStatusActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeVehicleUnavailable, "vehicle is no longer available")
	}

	return code, vehicle, nil
}

// classifyConsumeFailure re-reads the row to report why the conditional
// increment missed. Between validation and commit another redemption may
// have exhausted the code, or an admin may have deactivated it.
func (s *service) classifyConsumeFailure(ctx context.Context, tx *gorm.DB, id uuid.UUID, now time.Time) error {
	code, err := s.codes.WithTx(tx).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeBuyCodeNotFound, "buy code not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload buy code")
	}
	switch {
	case !code.Active:
		return pkgerrors.New(pkgerrors.CodeBuyCodeInactive, "buy code is inactive")
	case code.MaxUses != nil && code.UsageCount >= *code.MaxUses:
		return pkgerrors.New(pkgerrors.CodeBuyCodeExhausted, "buy code has no remaining uses")
	case code.ExpiresAt != nil && !code.ExpiresAt.After(now):
		return pkgerrors.New(pkgerrors.CodeBuyCodeExpired, "buy code has expired")
	default:
		return pkgerrors.New(pkgerrors.CodeConflict, "buy code could not be redeemed")
	}
}
