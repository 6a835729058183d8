package domain

import (
	"math"

	"commutecast/internal/platform/calendar"
)

const (
	DefaultWeeksToShow    = 16
	DefaultGoalMinutes    = 20
	DefaultCommuteMinutes = 60

	lowMinutes    = 10
	mediumMinutes = 20
)

// DayEntry is the aggregated listening for one calendar day.
type DayEntry struct {
	Date             calendar.Day
	MinutesLearned   int
	LessonsCompleted int
	StreakActive     bool
	// GoalMet overrides the caller's goal policy when the store knows it.
	GoalMet *bool
}

// Active reports whether the day counts towards a streak.
func (e DayEntry) Active() bool {
	return e.StreakActive || e.MinutesLearned > 0 || e.LessonsCompleted > 0
}

// Window is an inclusive range of days.
type Window struct {
	From calendar.Day
	To   calendar.Day
}

// WeekOf is the Sunday to Saturday week containing day.
func WeekOf(day calendar.Day) Window {
	return Window{From: day.StartOfWeek(), To: day.EndOfWeek()}
}

func (w Window) Contains(day calendar.Day) bool {
	return day.Within(w.From, w.To)
}

type WeeklyProgress struct {
	Window Window
	// Lessons counts days in the window with listening time.
	Lessons          int
	Minutes          int
	LessonsCompleted int
	Percentage       int
}

// Percentage is the share of the commute converted into learning, rounded
// half up and clamped to [0, 100]. A non-positive total yields 0.
func Percentage(converted, total int) int {
	if total <= 0 || converted <= 0 {
		return 0
	}
	p := math.Floor(float64(converted)/float64(total)*100 + 0.5)
	return int(min(100, p))
}

type Bucket string

const (
	BucketEmpty  Bucket = "empty"
	BucketLow    Bucket = "low"
	BucketMedium Bucket = "medium"
	BucketFull   Bucket = "full"
)

// BucketFor applies the colouring chain. A met goal wins over the minute
// thresholds.
func BucketFor(minutes int, goalMet bool) Bucket {
	switch {
	case minutes <= 0:
		return BucketEmpty
	case goalMet:
		return BucketFull
	case minutes <= lowMinutes:
		return BucketLow
	case minutes <= mediumMinutes:
		return BucketMedium
	default:
		return BucketFull
	}
}

// GoalFunc decides whether a day met the user's goal.
type GoalFunc func(DayEntry) bool

// GoalAbove is met once a day has strictly more than minutes of listening.
func GoalAbove(minutes int) GoalFunc {
	return func(e DayEntry) bool { return e.MinutesLearned > minutes }
}

// DefaultGoal is met above DefaultGoalMinutes.
var DefaultGoal = GoalAbove(DefaultGoalMinutes)

// GoalMetBy resolves the goal for e, preferring the stored flag.
func GoalMetBy(e DayEntry, goal GoalFunc) bool {
	if e.GoalMet != nil {
		return *e.GoalMet
	}
	if goal == nil {
		goal = DefaultGoal
	}
	return goal(e)
}

type HeatmapCell struct {
	Date    calendar.Day
	Entry   *DayEntry
	Minutes int
	GoalMet bool
	Bucket  Bucket
}

// Grid holds weeks oldest first; each week runs Sunday to Saturday.
type Grid struct {
	Weeks [][7]HeatmapCell
}

func (g Grid) Cells() []HeatmapCell {
	out := make([]HeatmapCell, 0, len(g.Weeks)*7)
	for _, week := range g.Weeks {
		out = append(out, week[:]...)
	}
	return out
}

// Window is the span from the first to the last cell.
func (g Grid) Window() Window {
	if len(g.Weeks) == 0 {
		return Window{}
	}
	return Window{From: g.Weeks[0][0].Date, To: g.Weeks[len(g.Weeks)-1][6].Date}
}

type Streak struct {
	Current    int
	Longest    int
	LastActive calendar.Day
}

type KPIs struct {
	TotalMinutes  int
	TotalLessons  int
	DaysActive    int
	CurrentStreak int
	LongestStreak int
}
