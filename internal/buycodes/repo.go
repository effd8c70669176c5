package buycodes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
)

// Repository exposes buy code persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, code *models.BuyCode) (*models.BuyCode, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.BuyCode, error)
	FindByCode(ctx context.Context, code string) (*models.BuyCode, error)
	List(ctx context.Context, dealerID *uuid.UUID, includeInactive bool) ([]models.BuyCode, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Consume(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a buy codes repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, code *models.BuyCode) (*models.BuyCode, error) {
	if err := r.db.WithContext(ctx).Create(code).Error; err != nil {
		return nil, err
	}
	return code, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BuyCode, error) {
	var code models.BuyCode
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) FindByCode(ctx context.Context, value string) (*models.BuyCode, error) {
	var code models.BuyCode
	if err := r.db.WithContext(ctx).Where("code = ?", value).First(&code).Error; err != nil {
		return nil, err
	}
	return &code, nil
}

func (r *repository) List(ctx context.Context, dealerID *uuid.UUID, includeInactive bool) ([]models.BuyCode, error) {
	query := r.db.WithContext(ctx).Preload("Dealer").Order("created_at DESC")
	if dealerID != nil {
		query = query.Where("dealer_id = ?", *dealerID)
	}
	if !includeInactive {
		query = query.Where("active = ?", true)
	}
	var out []models.BuyCode
	if err := query.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.db.WithContext(ctx).
		Model(&models.BuyCode{}).
		Where("id = ?", id).
		Update("active", active).Error
}

// Consume increments usage under the same predicates the validation read
// checked. A zero row count means another redemption won the race or the
// code lapsed between read and write.
func (r *repository) Consume(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BuyCode{}).
		Where("id = ? AND active = ?", id, true).
		Where("max_uses IS NULL OR usage_count < max_uses").
		Where("expires_at IS NULL OR expires_at > ?", now).
		Updates(map[string]any{
			"usage_count": gorm.Expr("usage_count + 1"),
			"updated_at":  now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeactivateExpired flips lapsed codes inactive and reports how many changed.
func (r *repository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.BuyCode{}).
		Where("active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, now).
		Updates(map[string]any{
			"active":     false,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
