package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/linesmerrill/legal-aid-api/cache"
	"github.com/linesmerrill/legal-aid-api/lifecycle"
)

const (
	ratingSweepLock    = "rating_sweep"
	ratingSweepTimeout = 10 * time.Minute
)

// Scheduler runs the periodic rating reconciliation
type Scheduler struct {
	cron       *cron.Cron
	Schedule   string
	Ratings    *lifecycle.Aggregator
	Locker     cache.Locker
	instanceID string
}

// NewScheduler creates a new scheduler instance. A nil locker lets every
// instance run the sweep.
func NewScheduler(schedule string, ratings *lifecycle.Aggregator, locker cache.Locker) *Scheduler {
	if locker == nil {
		locker = cache.Noop{}
	}
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Schedule:   schedule,
		Ratings:    ratings,
		Locker:     locker,
		instanceID: instanceID(),
	}
}

// Start registers the sweep and starts the cron loop
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.Schedule, s.SweepRatings); err != nil {
		return fmt.Errorf("failed to register rating sweep %q: %w", s.Schedule, err)
	}
	s.cron.Start()
	zap.S().Infow("rating scheduler started", "schedule", s.Schedule, "instance", s.instanceID)
	return nil
}

// Stop waits for a running sweep to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("rating scheduler stopped")
}

// SweepRatings recomputes every lawyer's rating, repairing aggregates left
// stale by a failed recompute after a review
func (s *Scheduler) SweepRatings() {
	ctx, cancel := context.WithTimeout(context.Background(), ratingSweepTimeout)
	defer cancel()

	acquired, err := s.Locker.TryLock(ctx, ratingSweepLock, s.instanceID, ratingSweepTimeout)
	if err != nil {
		zap.S().Errorw("failed to acquire lock for rating sweep", "error", err)
		return
	}
	if !acquired {
		zap.S().Debug("rating sweep already running on another instance, skipping")
		return
	}
	defer func() {
		if err := s.Locker.Unlock(context.WithoutCancel(ctx), ratingSweepLock, s.instanceID); err != nil {
			zap.S().Warnw("failed to release rating sweep lock", "error", err)
		}
	}()

	start := time.Now()
	updated, err := s.Ratings.RecomputeAll(ctx)
	if err != nil {
		zap.S().Errorw("rating sweep finished with errors",
			"updated", updated,
			"duration", time.Since(start),
			"error", err)
		return
	}
	zap.S().Infow("rating sweep complete", "updated", updated, "duration", time.Since(start))
}

func instanceID() string {
	// Heroku sets DYNO to "web.1", "web.2", etc.
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fmt.Sprintf("instance-%d", time.Now().UnixNano())
}
