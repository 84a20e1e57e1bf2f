// Package jobs runs the periodic background work of the reservation
// service.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-room-reservation/internal/config"
)

// sweepBatch caps the reservations cancelled per run.
const sweepBatch = 200

// Expirer cancels unpaid reservations older than a cutoff.
type Expirer interface {
	ExpireUnpaid(ctx context.Context, olderThan time.Duration, limit int) (int, error)
}

// ExpiryJob cancels PREPAID reservations that stayed PENDING longer than
// the configured TTL.
type ExpiryJob struct {
	expirer Expirer
	cfg     config.ExpiryConfig
	logger  *zap.Logger

	scheduler gocron.Scheduler
}

func NewExpiryJob(expirer Expirer, cfg config.ExpiryConfig, logger *zap.Logger) *ExpiryJob {
	return &ExpiryJob{expirer: expirer, cfg: cfg, logger: logger}
}

// Start schedules the sweep every cfg.SweepEvery, first run immediately.
// Runs never overlap. ctx bounds every run.
func (j *ExpiryJob) Start(ctx context.Context) error {
	s, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(j.cfg.SweepEvery),
		gocron.NewTask(j.Sweep, ctx),
		gocron.WithName("expire-unpaid-reservations"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = s.Shutdown()
		return fmt.Errorf("schedule expiry job: %w", err)
	}
	j.scheduler = s
	s.Start()
	j.logger.Info("unpaid reservation expiry started",
		zap.Duration("pending_ttl", j.cfg.PendingTTL),
		zap.Duration("every", j.cfg.SweepEvery),
	)
	return nil
}

// Sweep runs one expiry pass.
func (j *ExpiryJob) Sweep(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	n, err := j.expirer.ExpireUnpaid(ctx, j.cfg.PendingTTL, sweepBatch)
	if err != nil {
		j.logger.Error("expire unpaid reservations", zap.Int("cancelled", n), zap.Error(err))
		return
	}
	if n > 0 {
		j.logger.Info("unpaid reservations expired", zap.Int("cancelled", n))
	}
}

// Stop waits for a running sweep and stops the scheduler.
func (j *ExpiryJob) Stop() error {
	if j.scheduler == nil {
		return nil
	}
	return j.scheduler.Shutdown()
}
