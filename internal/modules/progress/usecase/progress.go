package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"commutecast/internal/modules/progress/domain"
	"commutecast/internal/modules/progress/dto"
	progressin "commutecast/internal/modules/progress/port/in"
	progressout "commutecast/internal/modules/progress/port/out"
	"commutecast/internal/modules/progress/service"
	"commutecast/internal/platform/calendar"
	"commutecast/internal/platform/clock"
	apperrors "commutecast/internal/platform/errors"
	"commutecast/internal/platform/validate"
)

// StreakLookbackDays bounds how far back streaks and totals are computed.
const StreakLookbackDays = 365

type Interactor struct {
	agg    *service.Aggregator
	store  progressout.HistoryStore
	clock  clock.Clock
	logger *slog.Logger
}

func NewInteractor(agg *service.Aggregator, store progressout.HistoryStore, clock clock.Clock, logger *slog.Logger) progressin.Usecase {
	return &Interactor{agg: agg, store: store, clock: clock, logger: logger}
}

func (i *Interactor) Week(ctx context.Context, input dto.WeekInput) (dto.WeekOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.WeekOutput{}, err
	}
	day := i.today()
	if input.Date != "" {
		parsed, err := calendar.Parse(input.Date)
		if err != nil {
			return dto.WeekOutput{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		day = parsed
	}
	window := domain.WeekOf(day)
	entries, err := i.fetch(ctx, input.UserID, window)
	if err != nil {
		return dto.WeekOutput{}, err
	}
	total := i.commuteTotal(input.TotalCommuteMinutes)
	return toWeekOutput(i.agg.WeeklySummary(entries, window, total), total), nil
}

func (i *Interactor) Heatmap(ctx context.Context, input dto.HeatmapInput) (dto.HeatmapOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.HeatmapOutput{}, err
	}
	today := i.today()
	window := i.agg.BuildHeatmap(nil, today, input.Weeks, nil).Window()
	entries, err := i.fetch(ctx, input.UserID, window)
	if err != nil {
		return dto.HeatmapOutput{}, err
	}
	return toHeatmapOutput(today, i.agg.BuildHeatmap(entries, today, input.Weeks, nil)), nil
}

func (i *Interactor) Streak(ctx context.Context, input dto.StreakInput) (dto.StreakOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.StreakOutput{}, err
	}
	today := i.today()
	entries, err := i.fetch(ctx, input.UserID, domain.Window{From: today.AddDays(-StreakLookbackDays), To: today})
	if err != nil {
		return dto.StreakOutput{}, err
	}
	return toStreakOutput(i.agg.ComputeStreak(entries, today)), nil
}

// Dashboard reads the history once and derives every view from it.
func (i *Interactor) Dashboard(ctx context.Context, input dto.DashboardInput) (dto.DashboardOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.DashboardOutput{}, err
	}
	today := i.today()
	gridWindow := i.agg.BuildHeatmap(nil, today, 0, nil).Window()
	from := today.AddDays(-StreakLookbackDays)
	if gridWindow.From.Before(from) {
		from = gridWindow.From
	}
	entries, err := i.fetch(ctx, input.UserID, domain.Window{From: from, To: gridWindow.To})
	if err != nil {
		return dto.DashboardOutput{}, err
	}

	total := i.commuteTotal(0)
	week := i.agg.WeeklySummary(entries, domain.WeekOf(today), total)
	kpis := i.agg.ComputeKPIs(pastOnly(entries, today), today)
	i.logger.Debug("dashboard built", "user", input.UserID, "entries", len(entries), "week_minutes", week.Minutes)
	return dto.DashboardOutput{
		Week:    toWeekOutput(week, total),
		Heatmap: toHeatmapOutput(today, i.agg.BuildHeatmap(entries, today, 0, nil)),
		Streak:  toStreakOutput(i.agg.ComputeStreak(entries, today)),
		KPIs: dto.KPIOutput{
			TotalMinutes:  kpis.TotalMinutes,
			TotalLessons:  kpis.TotalLessons,
			DaysActive:    kpis.DaysActive,
			CurrentStreak: kpis.CurrentStreak,
			LongestStreak: kpis.LongestStreak,
		},
	}, nil
}

func (i *Interactor) fetch(ctx context.Context, userID string, window domain.Window) ([]domain.DayEntry, error) {
	if i.store == nil {
		return nil, fmt.Errorf("history store is not configured")
	}
	entries, err := i.store.GetCalendarRange(ctx, userID, window.From, window.To)
	if err != nil {
		return nil, fmt.Errorf("load history %s..%s: %w: %w", window.From, window.To, apperrors.ErrPersistence, err)
	}
	return entries, nil
}

func (i *Interactor) today() calendar.Day {
	return calendar.FromTime(i.clock.Now())
}

func pastOnly(entries []domain.DayEntry, today calendar.Day) []domain.DayEntry {
	out := make([]domain.DayEntry, 0, len(entries))
	for _, e := range entries {
		if !e.Date.After(today) {
			out = append(out, e)
		}
	}
	return out
}

// commuteTotal resolves an unset weekly commute target to the configured one.
func (i *Interactor) commuteTotal(requested int) int {
	if requested == 0 {
		return i.agg.CommuteMinutes()
	}
	return requested
}

func toWeekOutput(w domain.WeeklyProgress, total int) dto.WeekOutput {
	return dto.WeekOutput{
		From:             w.Window.From.String(),
		To:               w.Window.To.String(),
		Lessons:          w.Lessons,
		Minutes:          w.Minutes,
		LessonsCompleted: w.LessonsCompleted,
		Percentage:       w.Percentage,
		CommuteMinutes:   total,
	}
}

func toHeatmapOutput(today calendar.Day, grid domain.Grid) dto.HeatmapOutput {
	out := dto.HeatmapOutput{Today: today.String(), Weeks: make([][]dto.DayOutput, 0, len(grid.Weeks))}
	for _, week := range grid.Weeks {
		days := make([]dto.DayOutput, 0, 7)
		for _, cell := range week {
			day := dto.DayOutput{
				Date:     cell.Date.String(),
				Minutes:  cell.Minutes,
				GoalMet:  cell.GoalMet,
				Bucket:   string(cell.Bucket),
				HasEntry: cell.Entry != nil,
			}
			if cell.Entry != nil {
				day.LessonsCompleted = cell.Entry.LessonsCompleted
			}
			days = append(days, day)
		}
		out.Weeks = append(out.Weeks, days)
	}
	return out
}

func toStreakOutput(s domain.Streak) dto.StreakOutput {
	out := dto.StreakOutput{Current: s.Current, Longest: s.Longest}
	if !s.LastActive.IsZero() {
		out.LastActive = s.LastActive.String()
	}
	return out
}
