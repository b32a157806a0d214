package reminder

import (
	"context"
	"time"

	"jobtracker/internal/models"

	"go.uber.org/zap"
)

const checkInterval = time.Minute

type Runner interface {
	Run(ctx context.Context) (*RunReport, error)
}

// Scheduler runs the digest once per local day, at the first check after
// the configured time of day.
type Scheduler struct {
	runner  Runner
	hour    int
	minute  int
	loc     *time.Location
	now     func() time.Time
	logger  *zap.Logger
	lastRun models.Date
}

func NewScheduler(runner Runner, hour, minute int, loc *time.Location, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		runner: runner,
		hour:   hour,
		minute: minute,
		loc:    loc,
		now:    time.Now,
		logger: logger,
	}
}

// Start blocks until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	s.logger.Info("reminder scheduler started",
		zap.Int("hour", s.hour),
		zap.Int("minute", s.minute),
		zap.String("time_zone", s.loc.String()),
	)

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("reminder scheduler stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick runs the digest when today's run is due and has not happened yet.
func (s *Scheduler) tick(ctx context.Context) bool {
	now := s.now().In(s.loc)
	today := models.DateOf(now)

	if today == s.lastRun || now.Before(today.In(s.loc, s.hour, s.minute)) {
		return false
	}

	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	if _, err := s.runner.Run(runCtx); err != nil {
		s.logger.Error("reminder digest failed", zap.Error(err))
		return false
	}

	s.lastRun = today
	return true
}
