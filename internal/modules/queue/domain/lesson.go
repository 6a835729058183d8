package domain

import (
	"time"

	"commutecast/internal/platform/calendar"
)

// Lesson is an assignable unit of content in the listening queue.
type Lesson struct {
	ID              string
	PlanID          string
	Title           string
	Description     string
	ContentRef      string
	DurationMinutes int
	Category        string
	Difficulty      string
	Date            calendar.Day
	OrderIndex      int
	Completed       bool
	CompletedAt     *time.Time
	CreatedAt       time.Time
}

// MarkCompleted returns a completed copy. An already completed lesson keeps
// its original completion time.
func (l Lesson) MarkCompleted(at time.Time) Lesson {
	if l.Completed {
		return l
	}
	l.Completed = true
	l.CompletedAt = &at
	return l
}

// Arrange splits a stored lesson list into the daily slot, the next-up queue
// and the completed list. The daily lesson is the first incomplete lesson
// scheduled for today, falling back to the first incomplete lesson.
func Arrange(lessons []Lesson, today calendar.Day) (*Lesson, []Lesson, []Lesson) {
	unique := make([]Lesson, 0, len(lessons))
	seen := map[string]bool{}
	for _, l := range lessons {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		unique = append(unique, l)
	}

	dailyIdx := -1
	for i, l := range unique {
		if l.Completed {
			continue
		}
		if l.Date == today {
			dailyIdx = i
			break
		}
		if dailyIdx < 0 {
			dailyIdx = i
		}
	}

	var daily *Lesson
	nextUp := []Lesson{}
	completed := []Lesson{}
	for i, l := range unique {
		switch {
		case l.Completed:
			completed = append(completed, l)
		case i == dailyIdx:
			picked := l
			daily = &picked
		default:
			nextUp = append(nextUp, l)
		}
	}
	return daily, nextUp, completed
}
