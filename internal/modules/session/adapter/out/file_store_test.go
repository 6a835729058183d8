package out_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sessionout "commutecast/internal/modules/session/adapter/out"
	"commutecast/internal/modules/session/domain"
	apperrors "commutecast/internal/platform/errors"
	"commutecast/internal/platform/markdown"
)

func TestFileActiveSessionStoreRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := sessionout.NewFileActiveSessionStore(t.TempDir())

	if _, err := store.LoadActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session, got %v", err)
	}

	state := domain.State{
		Status:          domain.StatusPaused,
		CurrentEpisode:  &domain.Episode{ID: "ep1", LessonID: "l1", Title: "Greetings"},
		CurrentSession:  &domain.Session{ID: "s1", EpisodeID: "ep1", UserID: "u1", StartedAt: time.Date(2026, 10, 17, 7, 30, 0, 0, time.UTC)},
		ProgressSeconds: 42,
	}
	if err := store.SaveActive(ctx, state); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.LoadActive(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Status != domain.StatusPaused || loaded.ProgressSeconds != 42 || loaded.CurrentSession.ID != "s1" {
		t.Fatalf("unexpected loaded state: %+v", loaded)
	}

	if err := store.ClearActive(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := store.ClearActive(ctx); err != nil {
		t.Fatalf("clear twice: %v", err)
	}
	if _, err := store.LoadActive(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected no active session after clear, got %v", err)
	}
}

func TestMarkdownJournalRecord(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	journal := sessionout.NewMarkdownJournal(dir)
	ended := time.Date(2026, 10, 17, 7, 45, 0, 0, time.UTC)
	session := domain.Session{
		ID: "s1", EpisodeID: "ep1", UserID: "u1", StartedAt: time.Date(2026, 10, 17, 7, 30, 5, 0, time.UTC),
		EndedAt: &ended, ProgressSeconds: 605, Completed: true,
	}

	path, err := journal.Record(context.Background(), session, domain.Episode{ID: "ep1", LessonID: "l1", Title: "Ordering Coffee!"})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.HasSuffix(filepath.ToSlash(path), "2026/10/17/073005-ordering-coffee.md") {
		t.Fatalf("unexpected path %s", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	var meta struct {
		ID       string `yaml:"id"`
		LessonID string `yaml:"lesson_id"`
		Minutes  int    `yaml:"minutes"`
		EndedAt  string `yaml:"ended_at"`
	}
	body, err := markdown.Decode(string(raw), &meta)
	if err != nil {
		t.Fatalf("decode frontmatter: %v", err)
	}
	if meta.ID != "s1" || meta.LessonID != "l1" || meta.Minutes != 10 || meta.EndedAt != "2026-10-17T07:45:00Z" {
		t.Fatalf("unexpected frontmatter: %+v", meta)
	}
	if !strings.Contains(body, "Listened: 10 min 5 s") {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestMarkdownJournalDayIndex(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	journal := sessionout.NewMarkdownJournal(dir)
	ctx := context.Background()
	day := time.Date(2026, 10, 17, 7, 0, 0, 0, time.UTC)

	if _, err := journal.Record(ctx, domain.Session{ID: "s1", StartedAt: day, ProgressSeconds: 600}, domain.Episode{ID: "ep1", Title: "Numbers"}); err != nil {
		t.Fatalf("record first: %v", err)
	}
	indexPath := filepath.Join(dir, "2026", "10", "17", "index.md")
	raw, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	edited := strings.Replace(string(raw), "\n", "\nGreat ride today.\n", 1)
	if err := os.WriteFile(indexPath, []byte(edited), 0o644); err != nil {
		t.Fatalf("edit index: %v", err)
	}

	if _, err := journal.Record(ctx, domain.Session{ID: "s2", StartedAt: day.Add(9 * time.Hour), ProgressSeconds: 300}, domain.Episode{ID: "ep2", Title: "Colours"}); err != nil {
		t.Fatalf("record second: %v", err)
	}
	raw, err = os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	index := string(raw)
	for _, want := range []string{
		"# Saturday, 17 October 2026",
		"Great ride today.",
		"- [Numbers](070000-numbers.md) 10 min",
		"- [Colours](160000-colours.md) 5 min",
		"Total: 15 min across 2 sessions",
	} {
		if !strings.Contains(index, want) {
			t.Fatalf("index missing %q:\n%s", want, index)
		}
	}
}
