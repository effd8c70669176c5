package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/lotbridge/lotbridge-backend/pkg/logger"
)

type buyCodeSweeper interface {
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// BuyCodeExpiryJobParams configure the buy code expiry sweep.
type BuyCodeExpiryJobParams struct {
	Logger     *logger.Logger
	Repository buyCodeSweeper
}

// NewBuyCodeExpiryJob builds the job that deactivates lapsed buy codes.
// Redemption already rejects expired codes at the write; the sweep keeps
// the admin list view honest.
func NewBuyCodeExpiryJob(params BuyCodeExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("buy code repository required")
	}
	return &buyCodeExpiryJob{
		logg: params.Logger,
		repo: params.Repository,
		now:  time.Now,
	}, nil
}

type buyCodeExpiryJob struct {
	logg *logger.Logger
	repo buyCodeSweeper
	now  func() time.Time
}

func (j *buyCodeExpiryJob) Name() string { return "buy-code-expiry" }

func (j *buyCodeExpiryJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	deactivated, err := j.repo.DeactivateExpired(ctx, now)
	if err != nil {
		return fmt.Errorf("buy code expiry sweep: %w", err)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"deactivated": deactivated})
	j.logg.Info(logCtx, "buy code expiry sweep complete")
	return nil
}
