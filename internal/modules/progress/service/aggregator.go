package service

import (
	"slices"

	"commutecast/internal/modules/progress/domain"
	"commutecast/internal/platform/calendar"
)

// Aggregator derives weekly, heatmap and streak views from day entries. It
// holds only defaults and is safe for concurrent use.
type Aggregator struct {
	weeks          int
	goal           domain.GoalFunc
	commuteMinutes int
}

type Options struct {
	WeeksToShow    int
	GoalMinutes    int
	CommuteMinutes int
}

func NewAggregator(opts Options) *Aggregator {
	a := &Aggregator{
		weeks:          domain.DefaultWeeksToShow,
		goal:           domain.DefaultGoal,
		commuteMinutes: domain.DefaultCommuteMinutes,
	}
	if opts.WeeksToShow > 0 {
		a.weeks = opts.WeeksToShow
	}
	if opts.GoalMinutes > 0 {
		a.goal = domain.GoalAbove(opts.GoalMinutes)
	}
	if opts.CommuteMinutes > 0 {
		a.commuteMinutes = opts.CommuteMinutes
	}
	return a
}

func (a *Aggregator) Weeks() int { return a.weeks }

func (a *Aggregator) CommuteMinutes() int { return a.commuteMinutes }

// WeeklySummary totals the entries inside window. The percentage is 0 when
// totalCommuteMinutes is not positive.
func (a *Aggregator) WeeklySummary(entries []domain.DayEntry, window domain.Window, totalCommuteMinutes int) domain.WeeklyProgress {
	out := domain.WeeklyProgress{Window: window}
	for _, e := range entries {
		if !window.Contains(e.Date) {
			continue
		}
		out.Minutes += e.MinutesLearned
		out.LessonsCompleted += e.LessonsCompleted
		if e.MinutesLearned != 0 {
			out.Lessons++
		}
	}
	out.Percentage = domain.Percentage(out.Minutes, totalCommuteMinutes)
	return out
}

// BuildHeatmap lays out weeks×7 cells ending on the Saturday on or after
// today. Entries are matched by exact day; duplicates keep the first.
// weeks <= 0 and a nil goal fall back to the aggregator defaults.
func (a *Aggregator) BuildHeatmap(entries []domain.DayEntry, today calendar.Day, weeks int, goal domain.GoalFunc) domain.Grid {
	if weeks <= 0 {
		weeks = a.weeks
	}
	if goal == nil {
		goal = a.goal
	}
	byDay := make(map[calendar.Day]domain.DayEntry, len(entries))
	for _, e := range entries {
		if _, ok := byDay[e.Date]; !ok {
			byDay[e.Date] = e
		}
	}

	end := today.EndOfWeek()
	start := end.AddDays(-(weeks*7 - 1))
	grid := domain.Grid{Weeks: make([][7]domain.HeatmapCell, weeks)}
	for w := range weeks {
		for d := range 7 {
			day := start.AddDays(w*7 + d)
			cell := domain.HeatmapCell{Date: day}
			if e, ok := byDay[day]; ok {
				entry := e
				cell.Entry = &entry
				cell.Minutes = e.MinutesLearned
				cell.GoalMet = domain.GoalMetBy(e, goal)
			}
			cell.Bucket = domain.BucketFor(cell.Minutes, cell.GoalMet)
			grid.Weeks[w][d] = cell
		}
	}
	return grid
}

// ComputeStreak counts consecutive active days up to today. Entries dated
// after today are ignored. The current streak is the run ending today, or
// yesterday when today has no activity yet.
func (a *Aggregator) ComputeStreak(entries []domain.DayEntry, today calendar.Day) domain.Streak {
	days := activeDays(entries)
	if cut := slices.IndexFunc(days, func(d calendar.Day) bool { return d.After(today) }); cut >= 0 {
		days = days[:cut]
	}
	if len(days) == 0 {
		return domain.Streak{}
	}
	out := domain.Streak{LastActive: days[len(days)-1]}
	run := 0
	for i, day := range days {
		if i > 0 && days[i-1].AddDays(1) == day {
			run++
		} else {
			run = 1
		}
		out.Longest = max(out.Longest, run)
	}
	if gap := out.LastActive.DaysUntil(today); gap == 0 || gap == 1 {
		out.Current = run
	}
	return out
}

func (a *Aggregator) ComputeKPIs(entries []domain.DayEntry, today calendar.Day) domain.KPIs {
	out := domain.KPIs{}
	for _, e := range entries {
		out.TotalMinutes += e.MinutesLearned
		out.TotalLessons += e.LessonsCompleted
	}
	out.DaysActive = len(activeDays(entries))
	streak := a.ComputeStreak(entries, today)
	out.CurrentStreak, out.LongestStreak = streak.Current, streak.Longest
	return out
}

// activeDays returns the distinct active days in ascending order.
func activeDays(entries []domain.DayEntry) []calendar.Day {
	seen := map[calendar.Day]bool{}
	days := []calendar.Day{}
	for _, e := range entries {
		if !e.Active() || seen[e.Date] {
			continue
		}
		seen[e.Date] = true
		days = append(days, e.Date)
	}
	slices.SortFunc(days, calendar.Day.Compare)
	return days
}
