package out

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"commutecast/internal/modules/queue/domain"
	queueout "commutecast/internal/modules/queue/port/out"
	"commutecast/internal/platform/calendar"
	"commutecast/internal/platform/id"
	"commutecast/internal/platform/sqldb"
)

type SQLLessonStore struct {
	db  *sqldb.DB
	ids id.Generator
}

func NewSQLLessonStore(db *sqldb.DB, ids id.Generator) queueout.LessonStore {
	return &SQLLessonStore{db: db, ids: ids}
}

func (s *SQLLessonStore) GetLessonQueue(ctx context.Context, userID string) ([]domain.Lesson, error) {
	const query = `
SELECT id, plan_id, title, description, content_ref, duration_minutes, category, difficulty,
       date, order_index, completed, completed_at, created_at
FROM plan_lessons
WHERE user_id = ?
ORDER BY order_index ASC, created_at ASC`
	rows, err := s.db.QueryRebind(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query lessons: %w", err)
	}
	defer rows.Close()

	lessons := []domain.Lesson{}
	for rows.Next() {
		var (
			l                                                domain.Lesson
			planID, desc, ref, category, difficulty, rawDate sql.NullString
			completedAt                                      sql.NullString
			createdAt                                        string
		)
		if err := rows.Scan(&l.ID, &planID, &l.Title, &desc, &ref, &l.DurationMinutes, &category, &difficulty,
			&rawDate, &l.OrderIndex, &l.Completed, &completedAt, &createdAt); err != nil {
			return nil, fmt.Errorf("scan lesson: %w", err)
		}
		l.PlanID, l.Description, l.ContentRef = planID.String, desc.String, ref.String
		l.Category, l.Difficulty = category.String, difficulty.String
		if rawDate.Valid && rawDate.String != "" {
			day, err := calendar.Parse(rawDate.String)
			if err != nil {
				return nil, err
			}
			l.Date = day
		}
		if l.CompletedAt, err = sqldb.ScanNullTime(completedAt); err != nil {
			return nil, err
		}
		if l.CreatedAt, err = sqldb.ParseTime(createdAt); err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lessons: %w", err)
	}
	return lessons, nil
}

// SaveLesson appends the lesson after the user's last one.
func (s *SQLLessonStore) SaveLesson(ctx context.Context, userID string, lesson domain.Lesson) (domain.Lesson, error) {
	if lesson.ID == "" {
		lesson.ID = s.ids.New()
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now()
	}
	var date sql.NullString
	if !lesson.Date.IsZero() {
		date = sql.NullString{String: lesson.Date.String(), Valid: true}
	}
	err := s.db.Within(ctx, func(tx *sqldb.Tx) error {
		var next int
		if err := tx.QueryRowRebind(ctx, `SELECT COALESCE(MAX(order_index), -1) + 1 FROM plan_lessons WHERE user_id = ?`, userID).Scan(&next); err != nil {
			return fmt.Errorf("next order index: %w", err)
		}
		lesson.OrderIndex = next
		const stmt = `
INSERT INTO plan_lessons (id, user_id, plan_id, title, description, content_ref, duration_minutes, category,
                          difficulty, date, order_index, completed, completed_at, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecRebind(ctx, stmt,
			lesson.ID, userID, lesson.PlanID, lesson.Title, lesson.Description, lesson.ContentRef,
			lesson.DurationMinutes, lesson.Category, lesson.Difficulty, date, lesson.OrderIndex,
			lesson.Completed, sqldb.NullTime(lesson.CompletedAt), sqldb.FormatTime(lesson.CreatedAt))
		if err != nil {
			return fmt.Errorf("insert lesson: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Lesson{}, err
	}
	return lesson, nil
}

// MarkLessonComplete flips the completion flag once and counts the lesson on
// the day entry for the completion day.
func (s *SQLLessonStore) MarkLessonComplete(ctx context.Context, userID, lessonID string, at time.Time) error {
	return s.db.Within(ctx, func(tx *sqldb.Tx) error {
		res, err := tx.ExecRebind(ctx,
			`UPDATE plan_lessons SET completed = ?, completed_at = ? WHERE id = ? AND user_id = ? AND completed = ?`,
			true, sqldb.FormatTime(at), lessonID, userID, false)
		if err != nil {
			return fmt.Errorf("complete lesson: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("complete lesson rows: %w", err)
		}
		if n == 0 {
			return nil
		}
		const upsert = `
INSERT INTO day_entries (id, user_id, date, lessons_completed, minutes_learned, streak_active)
VALUES (?, ?, ?, 1, 0, ?)
ON CONFLICT (user_id, date) DO UPDATE SET lessons_completed = day_entries.lessons_completed + 1`
		if _, err := tx.ExecRebind(ctx, upsert, s.ids.New(), userID, calendar.FromTime(at).String(), true); err != nil {
			return fmt.Errorf("count lesson on day entry: %w", err)
		}
		return nil
	})
}
