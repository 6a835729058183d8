package out

import (
	"context"
	"fmt"

	"commutecast/internal/modules/progress/domain"
	progressout "commutecast/internal/modules/progress/port/out"
	"commutecast/internal/platform/calendar"
	"commutecast/internal/platform/restapi"
)

type dayEntryRow struct {
	Date             calendar.Day `json:"date"`
	MinutesLearned   int          `json:"minutes_learned"`
	LessonsCompleted int          `json:"lessons_completed"`
	StreakActive     bool         `json:"streak_active"`
}

type RESTHistoryStore struct {
	client *restapi.Client
}

func NewRESTHistoryStore(client *restapi.Client) progressout.HistoryStore {
	return &RESTHistoryStore{client: client}
}

func (s *RESTHistoryStore) GetCalendarRange(ctx context.Context, userID string, from, to calendar.Day) ([]domain.DayEntry, error) {
	query := map[string]string{
		"select":  "date,minutes_learned,lessons_completed,streak_active",
		"user_id": restapi.Eq(userID),
		"and":     restapi.Between("date", from.String(), to.String()),
		"order":   "date.asc",
	}
	rows := []dayEntryRow{}
	if err := s.client.Get(ctx, "/day_entries", query, &rows); err != nil {
		return nil, fmt.Errorf("fetch day entries: %w", err)
	}
	entries := make([]domain.DayEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, domain.DayEntry{
			Date:             r.Date,
			MinutesLearned:   r.MinutesLearned,
			LessonsCompleted: r.LessonsCompleted,
			StreakActive:     r.StreakActive,
		})
	}
	return entries, nil
}
