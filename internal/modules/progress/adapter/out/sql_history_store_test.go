package out_test

import (
	"context"
	"path/filepath"
	"testing"

	progressout "commutecast/internal/modules/progress/adapter/out"
	"commutecast/internal/platform/calendar"
	"commutecast/internal/platform/sqldb"
)

func TestSQLHistoryStoreRange(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := sqldb.Open(ctx, sqldb.DialectSQLite, filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	seed := []struct {
		id, user, date string
		minutes        int
	}{
		{"d1", "u1", "2026-10-10", 30},
		{"d2", "u1", "2026-10-12", 15},
		{"d3", "u1", "2026-10-17", 5},
		{"d4", "u2", "2026-10-12", 60},
	}
	for _, s := range seed {
		if _, err := db.ExecRebind(ctx,
			`INSERT INTO day_entries (id, user_id, date, lessons_completed, minutes_learned, streak_active) VALUES (?, ?, ?, ?, ?, ?)`,
			s.id, s.user, s.date, 1, s.minutes, true); err != nil {
			t.Fatalf("seed %s: %v", s.id, err)
		}
	}

	store := progressout.NewSQLHistoryStore(db)
	entries, err := store.GetCalendarRange(ctx, "u1", calendar.MustParse("2026-10-11"), calendar.MustParse("2026-10-17"))
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries in range, got %+v", entries)
	}
	if entries[0].Date.String() != "2026-10-12" || entries[0].MinutesLearned != 15 || entries[1].Date.String() != "2026-10-17" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}
