package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/internal/offers"
	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type offerSweeper interface {
	ExpireLapsed(ctx context.Context, now time.Time) ([]models.Offer, error)
	AppendActivity(ctx context.Context, offerID uuid.UUID, message string) error
}

type offerSweeperFactory func(tx *gorm.DB) offerSweeper

func defaultOfferSweeper(tx *gorm.DB) offerSweeper {
	return offers.NewRepository(tx)
}

// OfferExpiryJobParams configure the offer expiry sweep.
type OfferExpiryJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	RepoFactory offerSweeperFactory
}

// NewOfferExpiryJob builds the job that expires pending and countered
// offers whose deadline lapsed between mutations.
func NewOfferExpiryJob(params OfferExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	repoFactory := params.RepoFactory
	if repoFactory == nil {
		repoFactory = defaultOfferSweeper
	}
	return &offerExpiryJob{
		logg:        params.Logger,
		db:          params.DB,
		repoFactory: repoFactory,
		now:         time.Now,
	}, nil
}

type offerExpiryJob struct {
	logg        *logger.Logger
	db          txRunner
	repoFactory offerSweeperFactory
	now         func() time.Time
}

func (j *offerExpiryJob) Name() string { return "offer-expiry" }

func (j *offerExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var expired int
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		lapsed, err := repo.ExpireLapsed(ctx, now)
		if err != nil {
			return err
		}
		for _, offer := range lapsed {
			if err := repo.AppendActivity(ctx, offer.ID, "offer expired"); err != nil {
				return err
			}
		}
		expired = len(lapsed)
		return nil
	})
	if err != nil {
		return fmt.Errorf("offer expiry sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"expired": expired})
	j.logg.Info(logCtx, "offer expiry sweep complete")
	return nil
}
