package out_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	queueout "commutecast/internal/modules/queue/adapter/out"
	"commutecast/internal/modules/queue/domain"
	"commutecast/internal/platform/calendar"
	"commutecast/internal/platform/restapi"
	"commutecast/internal/platform/sqldb"
)

type seqID struct{ n int }

func (s *seqID) New() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func openDB(t *testing.T) *sqldb.DB {
	t.Helper()
	db, err := sqldb.Open(context.Background(), sqldb.DialectSQLite, filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLLessonStoreKeepsInsertionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := queueout.NewSQLLessonStore(openDB(t), &seqID{})

	first, err := store.SaveLesson(ctx, "u1", domain.Lesson{Title: "Numbers", DurationMinutes: 10, Date: calendar.MustParse("2026-10-17")})
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	if first.ID != "id-1" || first.OrderIndex != 0 {
		t.Fatalf("unexpected first lesson: %+v", first)
	}
	if _, err := store.SaveLesson(ctx, "u1", domain.Lesson{ID: "custom", Title: "Colours"}); err != nil {
		t.Fatalf("save second: %v", err)
	}
	if _, err := store.SaveLesson(ctx, "u2", domain.Lesson{Title: "Other user"}); err != nil {
		t.Fatalf("save other user: %v", err)
	}

	lessons, err := store.GetLessonQueue(ctx, "u1")
	if err != nil {
		t.Fatalf("get queue: %v", err)
	}
	if len(lessons) != 2 || lessons[0].Title != "Numbers" || lessons[1].ID != "custom" || lessons[1].OrderIndex != 1 {
		t.Fatalf("unexpected queue: %+v", lessons)
	}
	if lessons[0].Date.String() != "2026-10-17" || !lessons[1].Date.IsZero() {
		t.Fatalf("dates not round-tripped: %s / %s", lessons[0].Date, lessons[1].Date)
	}
}

func TestSQLLessonStoreCompletionCountsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openDB(t)
	store := queueout.NewSQLLessonStore(db, &seqID{})
	if _, err := store.SaveLesson(ctx, "u1", domain.Lesson{ID: "l1", Title: "Numbers"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	at := time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	for range 2 {
		if err := store.MarkLessonComplete(ctx, "u1", "l1", at); err != nil {
			t.Fatalf("complete: %v", err)
		}
	}

	lessons, err := store.GetLessonQueue(ctx, "u1")
	if err != nil {
		t.Fatalf("get queue: %v", err)
	}
	if !lessons[0].Completed || lessons[0].CompletedAt == nil || !lessons[0].CompletedAt.Equal(at) {
		t.Fatalf("expected completed lesson, got %+v", lessons[0])
	}

	var count int
	if err := db.QueryRowRebind(ctx, `SELECT lessons_completed FROM day_entries WHERE user_id = ? AND date = ?`, "u1", "2026-10-17").Scan(&count); err != nil {
		t.Fatalf("read day entry: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected lesson counted once, got %d", count)
	}
}

func TestRESTLessonStore(t *testing.T) {
	t.Parallel()
	var inserted map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Method {
		case http.MethodGet:
			if r.URL.Query().Get("user_id") != "eq.u1" || r.URL.Query().Get("order") != "order_index.asc" {
				t.Errorf("unexpected query %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`[{"id":"l1","title":"Numbers","duration_minutes":10,"date":"2026-10-17","order_index":0,"completed":false,"created_at":"2026-10-01T00:00:00Z"}]`))
		case http.MethodPost:
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &inserted); err != nil {
				t.Errorf("decode insert: %v", err)
			}
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`[{"id":"server-id","title":"Colours","order_index":1,"created_at":"2026-10-02T00:00:00Z"}]`))
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	}))
	defer srv.Close()

	store := queueout.NewRESTLessonStore(restapi.New(restapi.Options{BaseURL: srv.URL, Timeout: 5 * time.Second}))
	ctx := context.Background()

	lessons, err := store.GetLessonQueue(ctx, "u1")
	if err != nil {
		t.Fatalf("get queue: %v", err)
	}
	if len(lessons) != 1 || lessons[0].Date.String() != "2026-10-17" || lessons[0].DurationMinutes != 10 {
		t.Fatalf("unexpected lessons: %+v", lessons)
	}

	saved, err := store.SaveLesson(ctx, "u1", domain.Lesson{Title: "Colours"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID != "server-id" || saved.OrderIndex != 1 {
		t.Fatalf("expected server row to win, got %+v", saved)
	}
	if inserted["user_id"] != "u1" || inserted["title"] != "Colours" {
		t.Fatalf("unexpected insert body: %v", inserted)
	}
}
