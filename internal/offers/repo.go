package offers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	"github.com/lotbridge/lotbridge-backend/pkg/pagination"
)

// ListFilter narrows offer listing queries.
type ListFilter struct {
	VehicleID *uuid.UUID
	DealerID  *uuid.UUID
	Statuses  []enums.OfferStatus
}

// Repository exposes offer persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, offer *models.Offer) (*models.Offer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Offer, error)
	Update(ctx context.Context, offer *models.Offer) error
	HasOpenOffer(ctx context.Context, vehicleID, dealerID uuid.UUID) (bool, error)
	AppendActivity(ctx context.Context, offerID uuid.UUID, message string) error
	ExpireLapsed(ctx context.Context, now time.Time) ([]models.Offer, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an offers repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, offer *models.Offer) (*models.Offer, error) {
	if err := r.db.WithContext(ctx).Create(offer).Error; err != nil {
		return nil, err
	}
	return offer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).
		Preload("Activity", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", id).
		First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Offer, error) {
	query := r.db.WithContext(ctx).Model(&models.Offer{})

	if filter.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filter.VehicleID)
	}
	if filter.DealerID != nil {
		query = query.Where("dealer_id = ?", *filter.DealerID)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
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

	var out []models.Offer
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

// Update persists the offer row itself; the activity trail is append-only
// and written separately.
func (r *repository) Update(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(offer).Error
}

// HasOpenOffer reports whether the dealer already has a live bid on the
// vehicle. Pending and countered offers both count.
func (r *repository) HasOpenOffer(ctx context.Context, vehicleID, dealerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("vehicle_id = ? AND dealer_id = ?", vehicleID, dealerID).
		Where("status IN ?", []enums.OfferStatus{enums.OfferStatusPending, enums.OfferStatusCountered}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) AppendActivity(ctx context.Context, offerID uuid.UUID, message string) error {
	entry := &models.OfferActivity{
		ID:      uuid.New(),
		OfferID: offerID,
		Message: message,
	}
	return r.db.WithContext(ctx).Create(entry).Error
}

// ExpireLapsed returns the offers it flipped so the caller can append
// activity entries for each one.
func (r *repository) ExpireLapsed(ctx context.Context, now time.Time) ([]models.Offer, error) {
	var lapsed []models.Offer
	err := r.db.WithContext(ctx).
		Where("status IN ?", []enums.OfferStatus{enums.OfferStatusPending, enums.OfferStatusCountered}).
		Where("expires_at IS NOT NULL AND expires_at <= ?", now).
		Find(&lapsed).Error
	if err != nil {
		return nil, err
	}
	if len(lapsed) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, 0, len(lapsed))
	for _, offer := range lapsed {
		ids = append(ids, offer.ID)
	}
	err = r.db.WithContext(ctx).
		Model(&models.Offer{}).
		Where("id IN ?", ids).
		Where("status IN ?", []enums.OfferStatus{enums.OfferStatusPending, enums.OfferStatusCountered}).
		Updates(map[string]any{
			"status":     enums.OfferStatusExpired,
			"updated_at": now,
		}).Error
	if err != nil {
		return nil, err
	}
	return lapsed, nil
}
