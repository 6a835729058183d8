package out

import (
	"context"

	"commutecast/internal/modules/progress/domain"
	"commutecast/internal/platform/calendar"
)

// HistoryStore reads day entries for an inclusive date range, oldest first.
type HistoryStore interface {
	GetCalendarRange(ctx context.Context, userID string, from, to calendar.Day) ([]domain.DayEntry, error)
}
