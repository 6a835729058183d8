package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"commutecast/internal/modules/session/domain"
	sessionout "commutecast/internal/modules/session/port/out"
	"commutecast/internal/platform/markdown"
	"commutecast/internal/platform/slug"
)

const dayIndexName = "index.md"

var sessionsBlock = markdown.Block{Name: "commutecast:sessions"}

type journalMeta struct {
	SchemaVersion   int    `yaml:"schema_version"`
	ID              string `yaml:"id"`
	EpisodeID       string `yaml:"episode_id"`
	LessonID        string `yaml:"lesson_id,omitempty"`
	Title           string `yaml:"title"`
	StartedAt       string `yaml:"started_at"`
	EndedAt         string `yaml:"ended_at,omitempty"`
	ProgressSeconds int    `yaml:"progress_seconds"`
	Minutes         int    `yaml:"minutes"`
	Device          string `yaml:"device,omitempty"`
	Source          string `yaml:"source,omitempty"`
}

// MarkdownJournal writes one note per completed session under
// <dir>/YYYY/MM/DD and keeps a generated session list in that day's index.md.
type MarkdownJournal struct {
	dir string
}

func NewMarkdownJournal(dir string) sessionout.Journal {
	return &MarkdownJournal{dir: dir}
}

func (j *MarkdownJournal) Record(_ context.Context, session domain.Session, episode domain.Episode) (string, error) {
	started := session.StartedAt
	dayDir := filepath.Join(j.dir, started.Format("2006"), started.Format("01"), started.Format("02"))
	if err := os.MkdirAll(dayDir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	title := episode.Title
	if title == "" {
		title = episode.ID
	}

	meta := journalMeta{
		SchemaVersion:   domain.SchemaVersion,
		ID:              session.ID,
		EpisodeID:       session.EpisodeID,
		LessonID:        episode.LessonID,
		Title:           title,
		StartedAt:       started.Format(time.RFC3339),
		ProgressSeconds: session.ProgressSeconds,
		Minutes:         session.ProgressSeconds / 60,
		Device:          session.Device,
		Source:          session.Source,
	}
	if session.EndedAt != nil {
		meta.EndedAt = session.EndedAt.Format(time.RFC3339)
	}
	body := fmt.Sprintf("# %s\n\n- Session: %s\n- Listened: %d min %d s\n", title, session.ID, meta.Minutes, session.ProgressSeconds%60)
	if episode.DurationSeconds > 0 {
		body += fmt.Sprintf("- Episode length: %d min\n", episode.DurationSeconds/60)
	}
	note, err := markdown.Encode(meta, body)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dayDir, fmt.Sprintf("%s-%s.md", started.Format("150405"), slug.Make(title)))
	if err := os.WriteFile(path, []byte(note), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	if err := j.refreshDayIndex(dayDir, started); err != nil {
		return path, err
	}
	return path, nil
}

// refreshDayIndex rebuilds the generated block of the day index from the
// session notes on disk. Hand-written text in the index is kept.
func (j *MarkdownJournal) refreshDayIndex(dayDir string, day time.Time) error {
	entries, err := os.ReadDir(dayDir)
	if err != nil {
		return fmt.Errorf("read journal day: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || e.Name() == dayIndexName || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var lines []string
	total := 0
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(dayDir, name))
		if err != nil {
			return fmt.Errorf("read journal note: %w", err)
		}
		var meta journalMeta
		if _, err := markdown.Decode(string(raw), &meta); err != nil {
			return fmt.Errorf("journal note %s: %w", name, err)
		}
		total += meta.Minutes
		lines = append(lines, fmt.Sprintf("- [%s](%s) %d min", meta.Title, name, meta.Minutes))
	}
	lines = append(lines, "", fmt.Sprintf("Total: %d min across %d sessions", total, len(names)))

	indexPath := filepath.Join(dayDir, dayIndexName)
	current, err := os.ReadFile(indexPath)
	switch {
	case err == nil:
	case os.IsNotExist(err):
		current = []byte("# " + day.Format("Monday, 2 January 2006") + "\n")
	default:
		return fmt.Errorf("read day index: %w", err)
	}
	updated := sessionsBlock.Replace(string(current), strings.Join(lines, "\n"))
	if err := os.WriteFile(indexPath, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("write day index: %w", err)
	}
	return nil
}
