package out_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sessionout "commutecast/internal/modules/session/adapter/out"
	"commutecast/internal/modules/session/domain"
	apperrors "commutecast/internal/platform/errors"
	"commutecast/internal/platform/sqldb"
)

type seqID struct{ n int }

func (s *seqID) New() string {
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func openDB(t *testing.T) *sqldb.DB {
	t.Helper()
	db, err := sqldb.Open(context.Background(), sqldb.DialectSQLite, filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSQLSessionStoreLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := openDB(t)
	store := sessionout.NewSQLSessionStore(db, &seqID{})

	_, err := db.ExecRebind(ctx,
		`INSERT INTO plan_lessons (id, user_id, title, date, created_at) VALUES (?, ?, ?, ?, ?)`,
		"l1", "u1", "Greetings", "2026-10-15", sqldb.FormatTime(time.Now()))
	if err != nil {
		t.Fatalf("seed lesson: %v", err)
	}

	started := time.Date(2026, 10, 17, 7, 30, 0, 0, time.UTC)
	created, err := store.CreateSession(ctx, domain.NewSession{
		EpisodeID: "ep1", LessonID: "l1", UserID: "u1", StartedAt: started, Source: "test", Device: "phone",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.Completed || created.ProgressSeconds != 0 {
		t.Fatalf("unexpected created session: %+v", created)
	}

	progress := 60
	updated, err := store.UpdateSession(ctx, created.ID, domain.SessionUpdate{ProgressSeconds: &progress})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ProgressSeconds != 60 || updated.EndedAt != nil || updated.Device != "phone" {
		t.Fatalf("partial update changed unexpected fields: %+v", updated)
	}

	ended := started.Add(3 * time.Minute)
	result, err := store.CompleteSession(ctx, created.ID, domain.Completion{ProgressSeconds: 185, EndedAt: ended})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if !result.Session.Completed || result.Session.ProgressSeconds != 185 || result.Session.EndedAt == nil {
		t.Fatalf("unexpected completed session: %+v", result.Session)
	}
	if result.Day == nil || result.Day.Date != "2026-10-15" || result.Day.MinutesLearned != 3 {
		t.Fatalf("expected 3 minutes on the lesson date, got %+v", result.Day)
	}

	second, err := store.CreateSession(ctx, domain.NewSession{EpisodeID: "ep2", UserID: "u1", StartedAt: started})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	result, err = store.CompleteSession(ctx, second.ID, domain.Completion{ProgressSeconds: 59, EndedAt: ended})
	if err != nil {
		t.Fatalf("complete second: %v", err)
	}
	if result.Day == nil || result.Day.Date != "2026-10-17" || result.Day.MinutesLearned != 0 {
		t.Fatalf("expected the end day with no whole minutes, got %+v", result.Day)
	}
}

func TestSQLSessionStoreUnknownSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := sessionout.NewSQLSessionStore(openDB(t), &seqID{})

	progress := 10
	if _, err := store.UpdateSession(ctx, "missing", domain.SessionUpdate{ProgressSeconds: &progress}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
	if _, err := store.CompleteSession(ctx, "missing", domain.Completion{EndedAt: time.Now()}); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected not found on complete, got %v", err)
	}
}
