package service_test

import (
	"testing"
	"time"

	"commutecast/internal/modules/queue/domain"
	"commutecast/internal/modules/queue/service"
)

type fixedClock struct{ now time.Time }

func (f fixedClock) Now() time.Time { return f.now }

func newManager() *service.QueueManager {
	return service.NewQueueManager(fixedClock{now: time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)})
}

func TestAddToQueueKeepsFirstInsertionOrderPerIdentifier(t *testing.T) {
	t.Parallel()
	q := newManager()
	ids := []string{"a", "b", "a", "c", "b", "a"}
	for _, id := range ids {
		q.AddToQueue(domain.Lesson{ID: id, Title: "title-" + id})
	}
	if q.AddToQueue(domain.Lesson{ID: "c", Title: "replacement"}) {
		t.Fatalf("duplicate insert must report no change")
	}
	snap := q.Snapshot()
	if len(snap.NextUp) != 3 {
		t.Fatalf("expected 3 queued lessons, got %d", len(snap.NextUp))
	}
	for i, want := range []string{"a", "b", "c"} {
		if snap.NextUp[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, snap.NextUp[i].ID)
		}
	}
	if snap.NextUp[2].Title != "title-c" {
		t.Fatalf("duplicate insert must not overwrite, got %q", snap.NextUp[2].Title)
	}
}

func TestMarkCompleteClearsDailyAndQueueWithSingleCompletedEntry(t *testing.T) {
	t.Parallel()
	q := newManager()
	lesson := domain.Lesson{ID: "x", Title: "Spanish 1"}
	q.SetDailyLesson(&lesson)
	q.AddToQueue(lesson)
	q.AddToQueue(domain.Lesson{ID: "y"})

	done, ok := q.MarkComplete("x")
	if !ok || !done.Completed || done.CompletedAt == nil {
		t.Fatalf("expected completed lesson, got %+v ok=%v", done, ok)
	}
	snap := q.Snapshot()
	if snap.Daily != nil {
		t.Fatalf("daily slot must be cleared")
	}
	if len(snap.NextUp) != 1 || snap.NextUp[0].ID != "y" {
		t.Fatalf("x must leave the queue, got %+v", snap.NextUp)
	}
	if len(snap.Completed) != 1 || snap.Completed[0].ID != "x" {
		t.Fatalf("expected exactly one completed entry for x, got %+v", snap.Completed)
	}

	if _, ok := q.MarkComplete("x"); ok {
		t.Fatalf("second completion of a cleared lesson must be a no-op")
	}
	if q.CompletedCount() != 1 {
		t.Fatalf("completed list must not grow on repeat, got %d", q.CompletedCount())
	}
}

func TestMarkCompleteQueueOnlyAndUnknownIdentifier(t *testing.T) {
	t.Parallel()
	q := newManager()
	daily := domain.Lesson{ID: "d"}
	q.SetDailyLesson(&daily)
	q.AddToQueue(domain.Lesson{ID: "a"})

	before := q.Snapshot()
	if _, ok := q.MarkComplete("missing"); ok {
		t.Fatalf("unknown id must be a no-op")
	}
	after := q.Snapshot()
	if after.Daily == nil || len(after.NextUp) != len(before.NextUp) || len(after.Completed) != 0 {
		t.Fatalf("state changed on unknown id: %+v", after)
	}

	if _, ok := q.MarkComplete("a"); !ok {
		t.Fatalf("queued lesson must complete")
	}
	snap := q.Snapshot()
	if snap.Daily == nil || snap.Daily.ID != "d" {
		t.Fatalf("daily slot must be untouched, got %+v", snap.Daily)
	}
	if len(snap.NextUp) != 0 || len(snap.Completed) != 1 {
		t.Fatalf("unexpected state %+v", snap)
	}
}

func TestMarkCompleteClearsCurrentLesson(t *testing.T) {
	t.Parallel()
	q := newManager()
	current := domain.Lesson{ID: "c"}
	q.SetCurrentLesson(&current)
	if _, ok := q.MarkComplete("c"); !ok {
		t.Fatalf("current lesson must complete")
	}
	snap := q.Snapshot()
	if snap.Current != nil || len(snap.Completed) != 1 {
		t.Fatalf("unexpected state %+v", snap)
	}
}

func TestRemoveClearReplaceAndObservers(t *testing.T) {
	t.Parallel()
	q := newManager()
	notified := 0
	unsubscribe := q.Subscribe(func(service.Snapshot) { notified++ })

	q.AddToQueue(domain.Lesson{ID: "a"})
	q.AddToQueue(domain.Lesson{ID: "a"})
	if notified != 1 {
		t.Fatalf("duplicate insert must not notify, got %d notifications", notified)
	}
	if !q.RemoveFromQueue("a") || q.RemoveFromQueue("a") {
		t.Fatalf("remove must succeed once")
	}
	q.AddToQueue(domain.Lesson{ID: "b"})
	q.ClearQueue()
	if len(q.Snapshot().NextUp) != 0 {
		t.Fatalf("queue must be empty after clear")
	}

	daily := domain.Lesson{ID: "d"}
	q.Replace(&daily, []domain.Lesson{{ID: "n1"}}, nil)
	if _, ok := q.Find("n1"); !ok {
		t.Fatalf("replaced queue must contain n1")
	}
	if l, ok := q.Find("d"); !ok || l.ID != "d" {
		t.Fatalf("find must see the daily lesson")
	}
	unsubscribe()
	q.ClearQueue()
	if notified != 5 {
		t.Fatalf("expected 5 notifications before unsubscribe, got %d", notified)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	t.Parallel()
	q := newManager()
	daily := domain.Lesson{ID: "d", Title: "orig"}
	q.SetDailyLesson(&daily)
	daily.Title = "mutated"
	snap := q.Snapshot()
	snap.Daily.Title = "changed"
	if q.Snapshot().Daily.Title != "orig" {
		t.Fatalf("manager state leaked through pointers")
	}
}
