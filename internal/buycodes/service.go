package buycodes

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/db"
	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
)

// codeAlphabet skips characters dealers misread over the phone (0/O, 1/I).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const maxCodeGenerationAttempts = 5

// Service exposes admin buy code management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*BuyCodeDTO, error)
	List(ctx context.Context, dealerID *uuid.UUID, includeInactive bool) ([]BuyCodeDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// CreateInput carries the fields for issuing a buy code.
type CreateInput struct {
	DealerID  uuid.UUID
	Code      string
	MaxUses   *int
	ExpiresAt *time.Time
}

type dealerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
}

type service struct {
	repo    Repository
	dealers dealerReader
	cfg     config.BuyCodesConfig
	now     func() time.Time
}

// NewService builds a buy code service with the provided dependencies.
func NewService(repo Repository, dealers dealerReader, cfg config.BuyCodesConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("buy code repository required")
	}
	if dealers == nil {
		return nil, fmt.Errorf("dealer repository required")
	}
	return &service{repo: repo, dealers: dealers, cfg: cfg, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Create issues a buy code for an active dealer. An explicit code wins over
// generation so support can re-issue a code a dealer already has on paper.
func (s *service) Create(ctx context.Context, input CreateInput) (*BuyCodeDTO, error) {
	dealer, err := s.dealers.FindByID(ctx, input.DealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}
	if !dealer.Active {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "cannot issue codes for an inactive dealer")
	}

	if input.MaxUses != nil && *input.MaxUses < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "max uses must be at least 1")
	}
	if input.ExpiresAt != nil && !input.ExpiresAt.After(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "expiry must be in the future")
	}

	explicit := strings.ToUpper(strings.TrimSpace(input.Code))
	if explicit != "" {
		if _, err := s.repo.FindByCode(ctx, explicit); err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "code already exists")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check code")
		}
		return s.insert(ctx, dealer.ID, explicit, input)
	}

	for attempt := 0; attempt < maxCodeGenerationAttempts; attempt++ {
		generated, genErr := generateCode(s.cfg.CodeLength)
		if genErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, genErr, "generate code")
		}
		dto, insertErr := s.insert(ctx, dealer.ID, generated, input)
		if insertErr != nil {
			var appErr *pkgerrors.Error
			if errors.As(insertErr, &appErr) && appErr.Code() == pkgerrors.CodeConflict {
				continue
			}
			return nil, insertErr
		}
		return dto, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not generate a unique code")
}

func (s *service) insert(ctx context.Context, dealerID uuid.UUID, code string, input CreateInput) (*BuyCodeDTO, error) {
	record := &models.BuyCode{
		ID:        uuid.New(),
		Code:      code,
		DealerID:  dealerID,
		Active:    true,
		MaxUses:   input.MaxUses,
		ExpiresAt: input.ExpiresAt,
	}
	if _, err := s.repo.Create(ctx, record); err != nil {
		if db.IsUniqueViolation(err, "idx_buy_codes_code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create buy code")
	}
	return FromModel(record), nil
}

func (s *service) List(ctx context.Context, dealerID *uuid.UUID, includeInactive bool) ([]BuyCodeDTO, error) {
	rows, err := s.repo.List(ctx, dealerID, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buy codes")
	}
	out := make([]BuyCodeDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

// Deactivate retires a code immediately. Usage history stays on the row.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeBuyCodeNotFound, "buy code not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load buy code")
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate buy code")
	}
	return nil
}

func generateCode(length int) (string, error) {
	if length <= 0 {
		length = 8
	}
	var sb strings.Builder
	sb.Grow(length)
	for i := 0; i < length; i++ {
		idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeAlphabet[idx.Int64()])
	}
	return sb.String(), nil
}
