package dealers

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
)

// Repository exposes dealer persistence operations.
type Repository interface {
	Create(ctx context.Context, dealer *models.Dealer) (*models.Dealer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
	List(ctx context.Context, includeInactive bool) ([]models.Dealer, error)
	Update(ctx context.Context, dealer *models.Dealer) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dealers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, dealer *models.Dealer) (*models.Dealer, error) {
	if err := r.db.WithContext(ctx).Create(dealer).Error; err != nil {
		return nil, err
	}
	return dealer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	var dealer models.Dealer
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dealer).Error; err != nil {
		return nil, err
	}
	return &dealer, nil
}

func (r *repository) List(ctx context.Context, includeInactive bool) ([]models.Dealer, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	var out []models.Dealer
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Update(ctx context.Context, dealer *models.Dealer) error {
	return r.db.WithContext(ctx).Save(dealer).Error
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Dealer{}).
		Where("id = ?", id).
		Update("active", active).Error
}
