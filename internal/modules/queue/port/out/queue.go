package out

import (
	"context"
	"time"

	"commutecast/internal/modules/queue/domain"
)

// LessonStore is the remote lesson catalog.
type LessonStore interface {
	GetLessonQueue(ctx context.Context, userID string) ([]domain.Lesson, error)
	SaveLesson(ctx context.Context, userID string, lesson domain.Lesson) (domain.Lesson, error)
	MarkLessonComplete(ctx context.Context, userID, lessonID string, at time.Time) error
}
