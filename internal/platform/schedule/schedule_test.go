package schedule_test

import (
	"context"
	"testing"
	"time"

	"commutecast/internal/platform/logging"
	"commutecast/internal/platform/schedule"
)

func TestAddRejectsInvalidSpec(t *testing.T) {
	t.Parallel()
	s := schedule.New("", logging.Discard())
	if err := s.Add(context.Background(), "refresh", "not a spec", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected invalid cron spec to fail")
	}
}

func TestNextPredictsFirstRunBeforeStart(t *testing.T) {
	t.Parallel()
	s := schedule.New("Europe/Berlin", logging.Discard())
	if !s.Next().IsZero() {
		t.Fatalf("expected zero next without jobs")
	}
	if err := s.Add(context.Background(), "refresh", "30 7 * * 1-5", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("add: %v", err)
	}
	next := s.Next()
	if !next.After(time.Now()) || next.Hour() != 7 || next.Minute() != 30 {
		t.Fatalf("unexpected next run %v", next)
	}
	if wd := next.Weekday(); wd == time.Saturday || wd == time.Sunday {
		t.Fatalf("weekday-only job scheduled on %s", wd)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Run(ctx)
}
