package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"commutecast/internal/modules/session/domain"
	sessionout "commutecast/internal/modules/session/port/out"
	"commutecast/internal/platform/calendar"
	apperrors "commutecast/internal/platform/errors"
	"commutecast/internal/platform/id"
	"commutecast/internal/platform/sqldb"
)

const selectSession = `
SELECT id, episode_id, lesson_id, user_id, started_at, ended_at, progress_seconds, completed, source, device
FROM sessions
WHERE id = ?`

type rowScanner interface {
	Scan(dest ...any) error
}

type SQLSessionStore struct {
	db  *sqldb.DB
	ids id.Generator
}

func NewSQLSessionStore(db *sqldb.DB, ids id.Generator) sessionout.SessionStore {
	return &SQLSessionStore{db: db, ids: ids}
}

func (s *SQLSessionStore) CreateSession(ctx context.Context, in domain.NewSession) (domain.Session, error) {
	session := domain.Session{
		ID:              s.ids.New(),
		EpisodeID:       in.EpisodeID,
		LessonID:        in.LessonID,
		UserID:          in.UserID,
		StartedAt:       in.StartedAt,
		ProgressSeconds: in.ProgressSeconds,
		Completed:       in.Completed,
		Source:          in.Source,
		Device:          in.Device,
	}
	const stmt = `
INSERT INTO sessions (id, episode_id, lesson_id, user_id, started_at, progress_seconds, completed, source, device, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecRebind(ctx, stmt,
		session.ID, session.EpisodeID, nullString(session.LessonID), session.UserID,
		sqldb.FormatTime(session.StartedAt), session.ProgressSeconds, session.Completed,
		session.Source, session.Device, sqldb.FormatTime(in.StartedAt))
	if err != nil {
		return domain.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

func (s *SQLSessionStore) UpdateSession(ctx context.Context, sessionID string, update domain.SessionUpdate) (domain.Session, error) {
	sets := []string{"updated_at = ?"}
	args := []any{sqldb.FormatTime(time.Now())}
	if update.ProgressSeconds != nil {
		sets = append(sets, "progress_seconds = ?")
		args = append(args, *update.ProgressSeconds)
	}
	if update.EndedAt != nil {
		sets = append(sets, "ended_at = ?")
		args = append(args, sqldb.FormatTime(*update.EndedAt))
	}
	args = append(args, sessionID)

	res, err := s.db.ExecRebind(ctx, "UPDATE sessions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return domain.Session{}, fmt.Errorf("update session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.Session{}, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	return scanSession(s.db.QueryRowRebind(ctx, selectSession, sessionID))
}

// CompleteSession closes the session and folds its whole minutes into the day
// entry of the lesson date, or of the end day when the lesson is unknown.
func (s *SQLSessionStore) CompleteSession(ctx context.Context, sessionID string, completion domain.Completion) (domain.CompletionResult, error) {
	result := domain.CompletionResult{}
	err := s.db.Within(ctx, func(tx *sqldb.Tx) error {
		res, err := tx.ExecRebind(ctx,
			`UPDATE sessions SET completed = ?, progress_seconds = ?, ended_at = ?, updated_at = ? WHERE id = ?`,
			true, completion.ProgressSeconds, sqldb.FormatTime(completion.EndedAt), sqldb.FormatTime(completion.EndedAt), sessionID)
		if err != nil {
			return fmt.Errorf("complete session: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
		}
		session, err := scanSession(tx.QueryRowRebind(ctx, selectSession, sessionID))
		if err != nil {
			return err
		}
		result.Session = session

		day := calendar.FromTime(completion.EndedAt)
		if session.LessonID != "" {
			var raw sql.NullString
			err := tx.QueryRowRebind(ctx, `SELECT date FROM plan_lessons WHERE id = ?`, session.LessonID).Scan(&raw)
			if err != nil && !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("lookup lesson date: %w", err)
			}
			if raw.Valid && raw.String != "" {
				if day, err = calendar.Parse(raw.String); err != nil {
					return err
				}
			}
		}

		const upsert = `
INSERT INTO day_entries (id, user_id, date, lessons_completed, minutes_learned, streak_active)
VALUES (?, ?, ?, 0, ?, ?)
ON CONFLICT (user_id, date) DO UPDATE SET
  minutes_learned = day_entries.minutes_learned + excluded.minutes_learned,
  streak_active = excluded.streak_active`
		minutes := completion.ProgressSeconds / 60
		if _, err := tx.ExecRebind(ctx, upsert, s.ids.New(), session.UserID, day.String(), minutes, true); err != nil {
			return fmt.Errorf("fold session into day entry: %w", err)
		}
		summary := domain.DaySummary{Date: day.String()}
		err = tx.QueryRowRebind(ctx,
			`SELECT minutes_learned, lessons_completed FROM day_entries WHERE user_id = ? AND date = ?`,
			session.UserID, day.String()).Scan(&summary.MinutesLearned, &summary.LessonsCompleted)
		if err != nil {
			return fmt.Errorf("read day entry: %w", err)
		}
		result.Day = &summary
		return nil
	})
	if err != nil {
		return domain.CompletionResult{}, err
	}
	return result, nil
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		session                  domain.Session
		lessonID, source, device sql.NullString
		startedAt                string
		endedAt                  sql.NullString
	)
	err := row.Scan(&session.ID, &session.EpisodeID, &lessonID, &session.UserID, &startedAt, &endedAt,
		&session.ProgressSeconds, &session.Completed, &source, &device)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, apperrors.ErrNotFound
		}
		return domain.Session{}, fmt.Errorf("scan session: %w", err)
	}
	session.LessonID, session.Source, session.Device = lessonID.String, source.String, device.String
	if session.StartedAt, err = sqldb.ParseTime(startedAt); err != nil {
		return domain.Session{}, err
	}
	if session.EndedAt, err = sqldb.ScanNullTime(endedAt); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
