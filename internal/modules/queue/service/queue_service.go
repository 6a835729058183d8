package service

import (
	"slices"
	"sync"

	"commutecast/internal/modules/queue/domain"
	"commutecast/internal/platform/clock"
	"commutecast/internal/platform/observe"
)

// Snapshot is a copy of the queue state handed to readers and observers.
type Snapshot struct {
	Daily     *domain.Lesson
	Current   *domain.Lesson
	NextUp    []domain.Lesson
	Completed []domain.Lesson
}

// QueueManager owns the daily lesson slot, the next-up queue and the
// append-only completed list. None of its operations fail.
type QueueManager struct {
	clock clock.Clock

	mu        sync.Mutex
	daily     *domain.Lesson
	current   *domain.Lesson
	nextUp    []domain.Lesson
	completed []domain.Lesson

	observers observe.Registry[Snapshot]
}

func NewQueueManager(clock clock.Clock) *QueueManager {
	return &QueueManager{clock: clock, nextUp: []domain.Lesson{}, completed: []domain.Lesson{}}
}

func (q *QueueManager) SetDailyLesson(lesson *domain.Lesson) {
	q.mutate(func() bool {
		q.daily = cloneLesson(lesson)
		return true
	})
}

func (q *QueueManager) SetCurrentLesson(lesson *domain.Lesson) {
	q.mutate(func() bool {
		q.current = cloneLesson(lesson)
		return true
	})
}

// AddToQueue appends lesson unless its identifier is already queued.
func (q *QueueManager) AddToQueue(lesson domain.Lesson) bool {
	added := false
	q.mutate(func() bool {
		if q.indexOf(lesson.ID) >= 0 {
			return false
		}
		q.nextUp = append(q.nextUp, lesson)
		added = true
		return true
	})
	return added
}

func (q *QueueManager) RemoveFromQueue(lessonID string) bool {
	removed := false
	q.mutate(func() bool {
		idx := q.indexOf(lessonID)
		if idx < 0 {
			return false
		}
		q.nextUp = slices.Delete(q.nextUp, idx, idx+1)
		removed = true
		return true
	})
	return removed
}

func (q *QueueManager) ClearQueue() {
	q.mutate(func() bool {
		q.nextUp = []domain.Lesson{}
		return true
	})
}

// MarkComplete clears lessonID from the daily slot, the current slot and the
// queue, and appends a single completed copy. Unknown ids are a no-op.
func (q *QueueManager) MarkComplete(lessonID string) (domain.Lesson, bool) {
	var (
		done  domain.Lesson
		found bool
	)
	q.mutate(func() bool {
		var lesson *domain.Lesson
		if q.daily != nil && q.daily.ID == lessonID {
			lesson = q.daily
			q.daily = nil
		}
		if idx := q.indexOf(lessonID); idx >= 0 {
			if lesson == nil {
				queued := q.nextUp[idx]
				lesson = &queued
			}
			q.nextUp = slices.Delete(q.nextUp, idx, idx+1)
		}
		if q.current != nil && q.current.ID == lessonID {
			if lesson == nil {
				lesson = q.current
			}
			q.current = nil
		}
		if lesson == nil {
			return false
		}
		done = lesson.MarkCompleted(q.clock.Now())
		found = true
		if !slices.ContainsFunc(q.completed, func(l domain.Lesson) bool { return l.ID == lessonID }) {
			q.completed = append(q.completed, done)
		}
		return true
	})
	return done, found
}

// Replace swaps in a freshly loaded queue.
func (q *QueueManager) Replace(daily *domain.Lesson, nextUp, completed []domain.Lesson) {
	q.mutate(func() bool {
		q.daily = cloneLesson(daily)
		q.current = nil
		q.nextUp = slices.Clone(nextUp)
		q.completed = slices.Clone(completed)
		if q.nextUp == nil {
			q.nextUp = []domain.Lesson{}
		}
		if q.completed == nil {
			q.completed = []domain.Lesson{}
		}
		return true
	})
}

func (q *QueueManager) Snapshot() Snapshot {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.snapshotLocked()
}

func (q *QueueManager) CompletedCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.completed)
}

// Find looks a lesson up across the daily slot and the queue.
func (q *QueueManager) Find(lessonID string) (domain.Lesson, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.daily != nil && q.daily.ID == lessonID {
		return *q.daily, true
	}
	if idx := q.indexOf(lessonID); idx >= 0 {
		return q.nextUp[idx], true
	}
	return domain.Lesson{}, false
}

func (q *QueueManager) Subscribe(fn func(Snapshot)) func() {
	return q.observers.Subscribe(fn)
}

// mutate applies fn under the lock and notifies observers when fn reports a change.
func (q *QueueManager) mutate(fn func() bool) {
	q.mu.Lock()
	changed := fn()
	snap := q.snapshotLocked()
	q.mu.Unlock()
	if changed {
		q.observers.Notify(snap)
	}
}

func (q *QueueManager) snapshotLocked() Snapshot {
	return Snapshot{
		Daily:     cloneLesson(q.daily),
		Current:   cloneLesson(q.current),
		NextUp:    slices.Clone(q.nextUp),
		Completed: slices.Clone(q.completed),
	}
}

func (q *QueueManager) indexOf(lessonID string) int {
	return slices.IndexFunc(q.nextUp, func(l domain.Lesson) bool { return l.ID == lessonID })
}

func cloneLesson(l *domain.Lesson) *domain.Lesson {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}
