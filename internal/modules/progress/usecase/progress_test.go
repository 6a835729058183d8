package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	progressout "commutecast/internal/modules/progress/adapter/out"
	"commutecast/internal/modules/progress/domain"
	"commutecast/internal/modules/progress/dto"
	"commutecast/internal/modules/progress/service"
	"commutecast/internal/modules/progress/usecase"
	"commutecast/internal/platform/calendar"
	apperrors "commutecast/internal/platform/errors"
	"commutecast/internal/platform/logging"
	"commutecast/internal/platform/sqldb"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

type failingStore struct{}

func (failingStore) GetCalendarRange(context.Context, string, calendar.Day, calendar.Day) ([]domain.DayEntry, error) {
	return nil, errors.New("offline")
}

var today = time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC)

func seededDB(t *testing.T) *sqldb.DB {
	t.Helper()
	ctx := context.Background()
	db, err := sqldb.Open(ctx, sqldb.DialectSQLite, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	rows := []struct {
		user, date       string
		minutes, lessons int
	}{
		{"u1", "2026-06-01", 30, 1},
		{"u1", "2026-10-10", 25, 1},
		{"u1", "2026-10-11", 5, 0},
		{"u1", "2026-10-12", 15, 1},
		{"u1", "2026-10-13", 10, 1},
		{"u2", "2026-10-13", 45, 2},
	}
	for n, r := range rows {
		_, err := db.ExecRebind(ctx,
			`INSERT INTO day_entries (id, user_id, date, minutes_learned, lessons_completed, streak_active) VALUES (?, ?, ?, ?, ?, ?)`,
			fmt.Sprintf("d%d", n), r.user, r.date, r.minutes, r.lessons, r.minutes > 0)
		if err != nil {
			t.Fatalf("seed %s: %v", r.date, err)
		}
	}
	return db
}

func newInteractor(store interface {
	GetCalendarRange(context.Context, string, calendar.Day, calendar.Day) ([]domain.DayEntry, error)
}) *usecase.Interactor {
	agg := service.NewAggregator(service.Options{CommuteMinutes: 60})
	return usecase.NewInteractor(agg, store, fakeClock{now: today}, logging.Discard()).(*usecase.Interactor)
}

func TestDashboardAgainstSQLite(t *testing.T) {
	t.Parallel()
	uc := newInteractor(progressout.NewSQLHistoryStore(seededDB(t)))

	out, err := uc.Dashboard(context.Background(), dto.DashboardInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if out.Week.From != "2026-10-11" || out.Week.To != "2026-10-17" {
		t.Fatalf("unexpected week window %s..%s", out.Week.From, out.Week.To)
	}
	if out.Week.Minutes != 30 || out.Week.Lessons != 3 || out.Week.Percentage != 50 || out.Week.CommuteMinutes != 60 {
		t.Fatalf("unexpected week: %+v", out.Week)
	}
	if len(out.Heatmap.Weeks) != 16 {
		t.Fatalf("expected 16 heatmap weeks, got %d", len(out.Heatmap.Weeks))
	}
	current := out.Heatmap.Weeks[15]
	if current[0].Bucket != "low" || current[1].Bucket != "medium" || current[2].Bucket != "low" || current[6].Date != "2026-10-17" {
		t.Fatalf("unexpected current week cells: %+v", current)
	}
	if prev := out.Heatmap.Weeks[14][6]; prev.Date != "2026-10-10" || prev.Bucket != "full" || !prev.GoalMet {
		t.Fatalf("unexpected saturday cell: %+v", prev)
	}
	if out.Streak.Current != 4 || out.Streak.Longest != 4 || out.Streak.LastActive != "2026-10-13" {
		t.Fatalf("unexpected streak: %+v", out.Streak)
	}
	if out.KPIs.TotalMinutes != 85 || out.KPIs.TotalLessons != 4 || out.KPIs.DaysActive != 5 {
		t.Fatalf("unexpected kpis: %+v", out.KPIs)
	}
}

func TestWeekAndHeatmapOptions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := newInteractor(progressout.NewSQLHistoryStore(seededDB(t)))

	week, err := uc.Week(ctx, dto.WeekInput{UserID: "u1", Date: "2026-10-05", TotalCommuteMinutes: 100})
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if week.Minutes != 25 || week.Percentage != 25 || week.CommuteMinutes != 100 {
		t.Fatalf("unexpected past week: %+v", week)
	}

	grid, err := uc.Heatmap(ctx, dto.HeatmapInput{UserID: "u2", Weeks: 2})
	if err != nil {
		t.Fatalf("heatmap: %v", err)
	}
	if len(grid.Weeks) != 2 || grid.Weeks[1][2].Minutes != 45 || grid.Weeks[1][2].LessonsCompleted != 2 {
		t.Fatalf("unexpected heatmap for u2: %+v", grid)
	}

	streak, err := uc.Streak(ctx, dto.StreakInput{UserID: "u3"})
	if err != nil || streak.Current != 0 || streak.LastActive != "" {
		t.Fatalf("expected empty streak, got %+v err=%v", streak, err)
	}
}

func TestProgressErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	uc := newInteractor(failingStore{})

	if _, err := uc.Dashboard(ctx, dto.DashboardInput{UserID: "u1"}); !errors.Is(err, apperrors.ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if _, err := uc.Week(ctx, dto.WeekInput{}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input without user, got %v", err)
	}
	if _, err := uc.Week(ctx, dto.WeekInput{UserID: "u1", Date: "14/10/2026"}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for bad date, got %v", err)
	}
	if _, err := uc.Heatmap(ctx, dto.HeatmapInput{UserID: "u1", Weeks: 500}); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected invalid input for oversized grid, got %v", err)
	}
}

func TestDefaultCommuteTargetAndFutureEntries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := seededDB(t)
	// A lesson scheduled for Friday, finished early on Wednesday.
	if _, err := db.ExecRebind(ctx,
		`INSERT INTO day_entries (id, user_id, date, minutes_learned, lessons_completed, streak_active) VALUES (?, ?, ?, ?, ?, ?)`,
		"ahead", "u1", "2026-10-16", 0, 1, true); err != nil {
		t.Fatalf("seed future entry: %v", err)
	}
	uc := newInteractor(progressout.NewSQLHistoryStore(db))

	week, err := uc.Week(ctx, dto.WeekInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("week: %v", err)
	}
	if week.CommuteMinutes != 60 || week.Percentage != 50 {
		t.Fatalf("unset target must use the configured commute minutes: %+v", week)
	}

	out, err := uc.Dashboard(ctx, dto.DashboardInput{UserID: "u1"})
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if out.Streak.Current != 4 || out.Streak.LastActive != "2026-10-13" {
		t.Fatalf("future entry leaked into the streak: %+v", out.Streak)
	}
	if out.KPIs.CurrentStreak != out.Streak.Current || out.KPIs.DaysActive != 5 {
		t.Fatalf("kpis disagree with the streak: %+v vs %+v", out.KPIs, out.Streak)
	}
}
