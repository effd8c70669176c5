package offers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/internal/transactions"
	"github.com/lotbridge/lotbridge-backend/internal/vehicles"
	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/db"
	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/pagination"
)

// AdminDecision is what an admin can do with a pending offer.
type AdminDecision string

const (
	AdminDecisionAccept  AdminDecision = "accept"
	AdminDecisionDecline AdminDecision = "decline"
	AdminDecisionCounter AdminDecision = "counter"
)

// DealerDecision is how a dealer can answer a counter offer.
type DealerDecision string

const (
	DealerDecisionAccept  DealerDecision = "accept"
	DealerDecisionDecline DealerDecision = "decline"
)

// Service exposes the offer negotiation lifecycle.
type Service interface {
	Submit(ctx context.Context, dealerID, vehicleID uuid.UUID, amountCents int) (*OfferDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*OfferDTO, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*ListResult, error)
	Decide(ctx context.Context, offerID uuid.UUID, input DecisionInput) (*OfferDTO, error)
	Respond(ctx context.Context, offerID, dealerID uuid.UUID, decision DealerDecision) (*OfferDTO, error)
}

// DecisionInput carries an admin's decision on a pending offer.
type DecisionInput struct {
	Decision       AdminDecision
	CounterAmount  *int
	CounterMessage *string
}

// ListResult pairs a page of offers with the cursor for the next page.
type ListResult struct {
	Offers     []OfferDTO `json:"offers"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	runner   txRunner
	repo     Repository
	vehicles vehicles.Repository
	txns     transactions.Repository
	cfg      config.OffersConfig
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build an offers service.
type ServiceParams struct {
	TxRunner        txRunner
	OfferRepo       Repository
	VehicleRepo     vehicles.Repository
	TransactionRepo transactions.Repository
	Config          config.OffersConfig
}

// NewService constructs an offers service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("tx runner is required")
	}
	if params.OfferRepo == nil {
		return nil, fmt.Errorf("offer repository is required")
	}
	if params.VehicleRepo == nil {
		return nil, fmt.Errorf("vehicle repository is required")
	}
	if params.TransactionRepo == nil {
		return nil, fmt.Errorf("transaction repository is required")
	}
	return &service{
		runner:   params.TxRunner,
		repo:     params.OfferRepo,
		vehicles: params.VehicleRepo,
		txns:     params.TransactionRepo,
		cfg:      params.Config,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Submit places a dealer bid on an active vehicle. A dealer holds at most
// one open offer per vehicle.
func (s *service) Submit(ctx context.Context, dealerID, vehicleID uuid.UUID, amountCents int) (*OfferDTO, error) {
	if amountCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offer amount must be greater than zero")
	}

	vehicle, err := s.vehicles.FindByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeVehicleNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	if vehicle.Status != enums.VehicleStatusActive {
		return nil, pkgerrors.New(pkgerrors.CodeVehicleUnavailable, "vehicle is no longer available")
	}

	var offer *models.Offer
	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Re-checked inside the transaction so concurrent submissions
		// cannot both pass. The partial unique index on open offers is
		// the backstop.
		open, checkErr := repo.HasOpenOffer(ctx, vehicleID, dealerID)
		if checkErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, checkErr, "check open offers")
		}
		if open {
			return pkgerrors.New(pkgerrors.CodeConflict, "an open offer for this vehicle already exists")
		}

		offer = &models.Offer{
			ID:          uuid.New(),
			VehicleID:   vehicleID,
			DealerID:    dealerID,
			AmountCents: amountCents,
			Status:      enums.OfferStatusPending,
		}
		if ttl := s.cfg.DefaultTTL; ttl > 0 {
			expires := s.now().Add(ttl)
			offer.ExpiresAt = &expires
		}
		if _, createErr := repo.Create(ctx, offer); createErr != nil {
			if db.IsUniqueViolation(createErr, "idx_offers_open_per_dealer_vehicle") {
				return pkgerrors.New(pkgerrors.CodeConflict, "an open offer for this vehicle already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create offer")
		}
		return s.appendActivity(ctx, repo, offer.ID, fmt.Sprintf("offer submitted for %s", formatCents(amountCents)))
	})
	if err != nil {
		return nil, err
	}
	return FromModel(offer), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OfferDTO, error) {
	offer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(offer), nil
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*ListResult, error) {
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list offers")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &ListResult{Offers: make([]OfferDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		result.Offers = append(result.Offers, *FromModel(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

// Decide applies an admin decision to a pending offer.
func (s *service) Decide(ctx context.Context, offerID uuid.UUID, input DecisionInput) (*OfferDTO, error) {
	offer, err := s.loadMutable(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.Status != enums.OfferStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("offer is %s", offer.Status))
	}

	switch input.Decision {
	case AdminDecisionAccept:
		return s.accept(ctx, offer, offer.AmountCents, "offer accepted")
	case AdminDecisionDecline:
		return s.transition(ctx, offer, enums.OfferStatusDeclined, "offer declined")
	case AdminDecisionCounter:
		if input.CounterAmount == nil || *input.CounterAmount <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "counter amount must be greater than zero")
		}
		offer.CounterAmountCents = input.CounterAmount
		offer.CounterMessage = input.CounterMessage
		message := fmt.Sprintf("countered at %s", formatCents(*input.CounterAmount))
		if input.CounterMessage != nil && strings.TrimSpace(*input.CounterMessage) != "" {
			message += ": " + strings.TrimSpace(*input.CounterMessage)
		}
		return s.transition(ctx, offer, enums.OfferStatusCountered, message)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept, decline, or counter")
	}
}

// Respond applies a dealer's answer to a counter offer.
func (s *service) Respond(ctx context.Context, offerID, dealerID uuid.UUID, decision DealerDecision) (*OfferDTO, error) {
	offer, err := s.loadMutable(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if offer.DealerID != dealerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another dealer")
	}
	if offer.Status != enums.OfferStatusCountered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("offer is %s", offer.Status))
	}

	switch decision {
	case DealerDecisionAccept:
		agreed := offer.AmountCents
		if offer.CounterAmountCents != nil {
			agreed = *offer.CounterAmountCents
		}
		return s.accept(ctx, offer, agreed, "counter offer accepted")
	case DealerDecisionDecline:
		return s.transition(ctx, offer, enums.OfferStatusDeclined, "counter offer declined")
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be accept or decline")
	}
}

// accept closes the negotiation: the offer flips to accepted, the vehicle is
// sold under the same conditional guard redemption uses, and a pending
// transaction records the agreed amount. All three commit or none do.
func (s *service) accept(ctx context.Context, offer *models.Offer, agreedCents int, message string) (*OfferDTO, error) {
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		sold, soldErr := s.vehicles.WithTx(tx).MarkSold(ctx, offer.VehicleID)
		if soldErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, soldErr, "mark vehicle sold")
		}
		if !sold {
			return pkgerrors.New(pkgerrors.CodeVehicleUnavailable, "vehicle is no longer available")
		}

		offer.Status = enums.OfferStatusAccepted
		if updateErr := repo.Update(ctx, offer); updateErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, updateErr, "update offer")
		}
		if activityErr := s.appendActivity(ctx, repo, offer.ID, message); activityErr != nil {
			return activityErr
		}

		txn := &models.Transaction{
			ID:          uuid.New(),
			VehicleID:   offer.VehicleID,
			DealerID:    offer.DealerID,
			OfferID:     &offer.ID,
			AmountCents: agreedCents,
		}
		if _, createErr := s.txns.WithTx(tx).Create(ctx, txn); createErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create transaction")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(offer), nil
}

func (s *service) transition(ctx context.Context, offer *models.Offer, to enums.OfferStatus, message string) (*OfferDTO, error) {
	offer.Status = to
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if updateErr := repo.Update(ctx, offer); updateErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, updateErr, "update offer")
		}
		return s.appendActivity(ctx, repo, offer.ID, message)
	})
	if err != nil {
		return nil, err
	}
	return FromModel(offer), nil
}

// loadMutable loads an offer and lazily expires it when its deadline passed.
// Callers always see the post-expiry status.
func (s *service) loadMutable(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	offer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !offer.Status.IsTerminal() && offer.ExpiresAt != nil && !offer.ExpiresAt.After(s.now()) {
		if _, err := s.transition(ctx, offer, enums.OfferStatusExpired, "offer expired"); err != nil {
			return nil, err
		}
	}
	return offer, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load offer")
	}
	return offer, nil
}

func (s *service) appendActivity(ctx context.Context, repo Repository, offerID uuid.UUID, message string) error {
	if err := repo.AppendActivity(ctx, offerID, message); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append offer activity")
	}
	return nil
}

func formatCents(cents int) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}
