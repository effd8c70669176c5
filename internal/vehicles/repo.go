package vehicles

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	"github.com/lotbridge/lotbridge-backend/pkg/pagination"
)

// ListFilter narrows vehicle listing queries.
type ListFilter struct {
	Statuses []enums.VehicleStatus
	InQueue  *bool
	Make     string
	Model    string
	Year     int
}

// Repository exposes vehicle persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	FindByVIN(ctx context.Context, vin string) (*models.Vehicle, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error
	MarkSold(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a vehicles repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error) {
	if err := r.db.WithContext(ctx).Create(vehicle).Error; err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) FindByVIN(ctx context.Context, vin string) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("vin = ?", vin).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Vehicle, error) {
	query := r.db.WithContext(ctx).Model(&models.Vehicle{})

	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.InQueue != nil {
		query = query.Where("in_queue = ?", *filter.InQueue)
	}
	if filter.Make != "" {
		query = query.Where("LOWER(make) = LOWER(?)", filter.Make)
	}
	if filter.Model != "" {
		query = query.Where("LOWER(model) = LOWER(?)", filter.Model)
	}
	if filter.Year > 0 {
		query = query.Where("year = ?", filter.Year)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var out []models.Vehicle
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *repository) Update(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Save(vehicle).Error
}

func (r *repository) UpdateFields(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	return r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// MarkSold flips an active vehicle to sold and pulls it from the queue. The
// status predicate makes concurrent sales of the same vehicle commit once.
func (r *repository) MarkSold(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Vehicle{}).
		Where("id = ? AND status = ?", id, enums.VehicleStatusActive).
		Updates(map[string]any{
			"status":     enums.VehicleStatusSold,
			"in_queue":   false,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
