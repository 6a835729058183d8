// Package schedule runs commute-time jobs on a cron spec.
package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

type Job func(ctx context.Context) error

type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger
}

// New builds a scheduler in the named timezone; an empty or unknown zone
// falls back to local time.
func New(timezone string, logger *slog.Logger) *Scheduler {
	loc := time.Local
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		} else {
			logger.Warn("unknown timezone, using local", "timezone", timezone, "error", err)
		}
	}
	return &Scheduler{cron: cron.New(cron.WithLocation(loc)), logger: logger}
}

// Add registers job under spec. Job errors are logged, never fatal.
func (s *Scheduler) Add(ctx context.Context, name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		started := time.Now()
		if err := job(ctx); err != nil {
			s.logger.Error("scheduled job failed", "job", name, "error", err)
			return
		}
		s.logger.Info("scheduled job finished", "job", name, "took", time.Since(started))
	})
	if err != nil {
		return fmt.Errorf("schedule %s %q: %w", name, spec, err)
	}
	return nil
}

// Next reports when the earliest job fires next.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	now := time.Now().In(s.cron.Location())
	for _, e := range s.cron.Entries() {
		at := e.Next
		if at.IsZero() {
			at = e.Schedule.Next(now)
		}
		if next.IsZero() || at.Before(next) {
			next = at
		}
	}
	return next
}

// Run starts the scheduler and blocks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.cron.Start()
	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
}
