package out

import (
	"context"
	"fmt"

	"commutecast/internal/modules/progress/domain"
	progressout "commutecast/internal/modules/progress/port/out"
	"commutecast/internal/platform/calendar"
	"commutecast/internal/platform/sqldb"
)

type SQLHistoryStore struct {
	db *sqldb.DB
}

func NewSQLHistoryStore(db *sqldb.DB) progressout.HistoryStore {
	return &SQLHistoryStore{db: db}
}

func (s *SQLHistoryStore) GetCalendarRange(ctx context.Context, userID string, from, to calendar.Day) ([]domain.DayEntry, error) {
	const query = `
SELECT date, minutes_learned, lessons_completed, streak_active
FROM day_entries
WHERE user_id = ? AND date >= ? AND date <= ?
ORDER BY date ASC`
	rows, err := s.db.QueryRebind(ctx, query, userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("query day entries: %w", err)
	}
	defer rows.Close()

	entries := []domain.DayEntry{}
	for rows.Next() {
		var (
			raw   string
			entry domain.DayEntry
		)
		if err := rows.Scan(&raw, &entry.MinutesLearned, &entry.LessonsCompleted, &entry.StreakActive); err != nil {
			return nil, fmt.Errorf("scan day entry: %w", err)
		}
		if entry.Date, err = calendar.Parse(raw); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate day entries: %w", err)
	}
	return entries, nil
}
