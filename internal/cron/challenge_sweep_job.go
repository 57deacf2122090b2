package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tablemate-app/tablemate-backend/internal/otp"
	"github.com/tablemate-app/tablemate-backend/pkg/logger"
	"github.com/tablemate-app/tablemate-backend/pkg/metrics"
)

const defaultChallengeMaxAge = 24 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ChallengeSweepJobParams configure the expired-challenge sweep.
type ChallengeSweepJobParams struct {
	Logger     *logger.Logger
	DB         txRunner
	Challenges otp.Repository
	Metrics    *metrics.CronJobMetrics
	MaxAge     time.Duration
}

// NewChallengeSweepJob builds the job that purges expired signup codes and
// password reset challenges.
func NewChallengeSweepJob(params ChallengeSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Challenges == nil {
		return nil, fmt.Errorf("challenges repository required")
	}
	maxAge := params.MaxAge
	if maxAge <= 0 {
		maxAge = defaultChallengeMaxAge
	}
	return &challengeSweepJob{
		logg:       params.Logger,
		db:         params.DB,
		challenges: params.Challenges,
		metrics:    params.Metrics,
		maxAge:     maxAge,
		now:        time.Now,
	}, nil
}

type challengeSweepJob struct {
	logg       *logger.Logger
	db         txRunner
	challenges otp.Repository
	metrics    *metrics.CronJobMetrics
	maxAge     time.Duration
	now        func() time.Time
}

func (j *challengeSweepJob) Name() string { return "challenge-sweep" }

// Run deletes pending verifications and reset challenges whose codes expired
// more than maxAge ago. Rows inside the grace window survive so a user who
// just missed the TTL still gets a clean resend path.
func (j *challengeSweepJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.maxAge)
	var pendingPurged, resetsPurged int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		store := j.challenges.WithTx(tx)
		rows, err := store.DeleteExpiredPending(ctx, cutoff)
		if err != nil {
			return err
		}
		pendingPurged = rows
		rows, err = store.DeleteExpiredResetChallenges(ctx, cutoff)
		if err != nil {
			return err
		}
		resetsPurged = rows
		return nil
	})
	if err != nil {
		return fmt.Errorf("challenge sweep: %w", err)
	}
	if j.metrics != nil {
		j.metrics.AddPurged(j.Name(), pendingPurged+resetsPurged)
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"cutoff":          cutoff,
		"pending_deleted": pendingPurged,
		"resets_deleted":  resetsPurged,
	})
	j.logg.Info(logCtx, "challenge sweep complete")
	return nil
}
