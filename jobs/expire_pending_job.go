package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/joy095/venue/logger"
	"github.com/robfig/cron/v3"
)

// PendingExpirer cancels pending bookings whose window has already begun.
type PendingExpirer interface {
	ExpireStalePending(ctx context.Context, now time.Time) (int, error)
}

// Scheduler runs the periodic maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	expirer PendingExpirer
	timeout time.Duration
	now     func() time.Time
}

// NewScheduler registers the pending-expiry job on spec, e.g. "@every 15m" or "*/5 * * * *".
func NewScheduler(spec string, expirer PendingExpirer) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger))),
		expirer: expirer,
		timeout: time.Minute,
		now:     time.Now,
	}
	if _, err := s.cron.AddFunc(spec, s.expirePending); err != nil {
		return nil, fmt.Errorf("invalid pending expiry schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) expirePending() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	n, err := s.expirer.ExpireStalePending(ctx, s.now())
	if err != nil {
		logger.ErrorLogger.Errorf("Pending booking expiry failed: %v", err)
		return
	}
	if n > 0 {
		logger.InfoLogger.Infof("Pending booking expiry cancelled %d bookings", n)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.InfoLogger.Info("Job scheduler started")
}

// Stop stops scheduling and waits for a running job to finish or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		logger.WarnLogger.Warn("Job scheduler stop timed out")
	}
}
