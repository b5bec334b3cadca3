package processor

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSchedule runs the idle-session sweep every five minutes.
const DefaultSweepSchedule = "@every 5m"

// Sweeper periodically discards sessions nobody has touched within ttl.
type Sweeper struct {
	cron   *cron.Cron
	proc   *Processor
	ttl    time.Duration
	logger *slog.Logger
}

func NewSweeper(proc *Processor, ttl time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		cron:   cron.New(),
		proc:   proc,
		ttl:    ttl,
		logger: logger,
	}
}

// Start schedules the sweep and returns immediately.
func (s *Sweeper) Start(schedule string) error {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	if _, err := s.cron.AddFunc(schedule, s.sweep); err != nil {
		return fmt.Errorf("schedule session sweep %q: %w", schedule, err)
	}
	s.cron.Start()
	s.logger.Info("session sweeper started", "schedule", schedule, "ttl", s.ttl)
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("session sweeper stopped")
}

func (s *Sweeper) sweep() {
	if n := s.proc.Sweep(s.ttl); n > 0 {
		s.logger.Info("expired idle sessions", "count", n, "open", s.proc.Len())
	}
}
