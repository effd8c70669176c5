package dealers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/internal/users"
	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/db"
	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/security"
)

type usersRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// Service exposes dealer management operations for admins.
type Service interface {
	Create(ctx context.Context, input CreateDealerInput) (*DealerDTO, string, error)
	Get(ctx context.Context, id uuid.UUID) (*DealerDTO, error)
	List(ctx context.Context, includeInactive bool) ([]DealerDTO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateDealerInput) (*DealerDTO, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reactivate(ctx context.Context, id uuid.UUID) error
}

// CreateDealerInput carries the fields for onboarding a dealer.
type CreateDealerInput struct {
	Name              string
	ContactName       string
	ContactEmail      string
	ContactPhone      string
	BillingAddress    string
	TitleContactName  string
	TitleContactEmail string
}

// UpdateDealerInput captures the mutable dealer fields.
type UpdateDealerInput struct {
	Name              *string
	ContactName       *string
	ContactEmail      *string
	ContactPhone      *string
	BillingAddress    *string
	TitleContactName  *string
	TitleContactEmail *string
}

type service struct {
	repo        Repository
	users       usersRepository
	passwordCfg config.PasswordConfig
}

// NewService builds a dealer service with the provided repositories.
func NewService(repo Repository, usersRepo usersRepository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("dealer repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{repo: repo, users: usersRepo, passwordCfg: passwordCfg}, nil
}

// Create onboards a dealer and provisions a login with a temporary password.
func (s *service) Create(ctx context.Context, input CreateDealerInput) (*DealerDTO, string, error) {
	email := strings.ToLower(strings.TrimSpace(input.ContactEmail))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "valid contact email is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "dealer name is required")
	}

	dealer := &models.Dealer{
		ID:                uuid.New(),
		Name:              strings.TrimSpace(input.Name),
		ContactName:       strings.TrimSpace(input.ContactName),
		ContactEmail:      email,
		ContactPhone:      strings.TrimSpace(input.ContactPhone),
		BillingAddress:    strings.TrimSpace(input.BillingAddress),
		TitleContactName:  strings.TrimSpace(input.TitleContactName),
		TitleContactEmail: strings.ToLower(strings.TrimSpace(input.TitleContactEmail)),
		Active:            true,
	}
	if _, err := s.repo.Create(ctx, dealer); err != nil {
		if db.IsUniqueViolation(err, "idx_dealers_contact_email") {
			return nil, "", pkgerrors.New(pkgerrors.CodeConflict, "dealer email already registered")
		}
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dealer")
	}

	tempPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	if _, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		Role:         enums.ActorRoleDealer,
		DealerID:     &dealer.ID,
	}); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dealer login")
	}

	return FromModel(dealer), tempPassword, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*DealerDTO, error) {
	dealer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}
	return FromModel(dealer), nil
}

func (s *service) List(ctx context.Context, includeInactive bool) ([]DealerDTO, error) {
	rows, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dealers")
	}
	out := make([]DealerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateDealerInput) (*DealerDTO, error) {
	dealer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}

	if input.Name != nil {
		dealer.Name = strings.TrimSpace(*input.Name)
	}
	if input.ContactName != nil {
		dealer.ContactName = strings.TrimSpace(*input.ContactName)
	}
	if input.ContactEmail != nil {
		dealer.ContactEmail = strings.ToLower(strings.TrimSpace(*input.ContactEmail))
	}
	if input.ContactPhone != nil {
		dealer.ContactPhone = strings.TrimSpace(*input.ContactPhone)
	}
	if input.BillingAddress != nil {
		dealer.BillingAddress = strings.TrimSpace(*input.BillingAddress)
	}
	if input.TitleContactName != nil {
		dealer.TitleContactName = strings.TrimSpace(*input.TitleContactName)
	}
	if input.TitleContactEmail != nil {
		dealer.TitleContactEmail = strings.ToLower(strings.TrimSpace(*input.TitleContactEmail))
	}

	if err := s.repo.Update(ctx, dealer); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dealer")
	}
	return FromModel(dealer), nil
}

// Deactivate blocks the dealer from future redemptions and offers. Codes and
// transactions already on the books are untouched.
func (s *service) Deactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, false)
}

func (s *service) Reactivate(ctx context.Context, id uuid.UUID) error {
	return s.setActive(ctx, id, true)
}

func (s *service) setActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dealer status")
	}
	return nil
}
