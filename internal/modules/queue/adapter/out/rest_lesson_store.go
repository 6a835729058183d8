package out

import (
	"context"
	"fmt"
	"time"

	"commutecast/internal/modules/queue/domain"
	queueout "commutecast/internal/modules/queue/port/out"
	"commutecast/internal/platform/calendar"
	"commutecast/internal/platform/restapi"
)

type lessonRow struct {
	ID              string       `json:"id,omitempty"`
	UserID          string       `json:"user_id"`
	PlanID          string       `json:"plan_id,omitempty"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	ContentRef      string       `json:"content_ref,omitempty"`
	DurationMinutes int          `json:"duration_minutes"`
	Category        string       `json:"category,omitempty"`
	Difficulty      string       `json:"difficulty,omitempty"`
	Date            calendar.Day `json:"date,omitempty"`
	OrderIndex      int          `json:"order_index"`
	Completed       bool         `json:"completed"`
	CompletedAt     *time.Time   `json:"completed_at,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
}

type RESTLessonStore struct {
	client *restapi.Client
}

func NewRESTLessonStore(client *restapi.Client) queueout.LessonStore {
	return &RESTLessonStore{client: client}
}

func (s *RESTLessonStore) GetLessonQueue(ctx context.Context, userID string) ([]domain.Lesson, error) {
	rows := []lessonRow{}
	query := map[string]string{"user_id": restapi.Eq(userID), "order": "order_index.asc"}
	if err := s.client.Get(ctx, "/plan_lessons", query, &rows); err != nil {
		return nil, fmt.Errorf("fetch lessons: %w", err)
	}
	lessons := make([]domain.Lesson, 0, len(rows))
	for _, r := range rows {
		lessons = append(lessons, r.toDomain())
	}
	return lessons, nil
}

func (s *RESTLessonStore) SaveLesson(ctx context.Context, userID string, lesson domain.Lesson) (domain.Lesson, error) {
	created := []lessonRow{}
	if err := s.client.Insert(ctx, "/plan_lessons", fromDomain(userID, lesson), &created); err != nil {
		return domain.Lesson{}, fmt.Errorf("insert lesson: %w", err)
	}
	if len(created) == 0 {
		return lesson, nil
	}
	return created[0].toDomain(), nil
}

func (s *RESTLessonStore) MarkLessonComplete(ctx context.Context, userID, lessonID string, at time.Time) error {
	body := map[string]any{"completed": true, "completed_at": at}
	query := map[string]string{"id": restapi.Eq(lessonID), "user_id": restapi.Eq(userID)}
	if err := s.client.Patch(ctx, "/plan_lessons", query, body, &[]lessonRow{}); err != nil {
		return fmt.Errorf("complete lesson: %w", err)
	}
	return nil
}

func fromDomain(userID string, l domain.Lesson) lessonRow {
	return lessonRow{
		ID:              l.ID,
		UserID:          userID,
		PlanID:          l.PlanID,
		Title:           l.Title,
		Description:     l.Description,
		ContentRef:      l.ContentRef,
		DurationMinutes: l.DurationMinutes,
		Category:        l.Category,
		Difficulty:      l.Difficulty,
		Date:            l.Date,
		OrderIndex:      l.OrderIndex,
		Completed:       l.Completed,
		CompletedAt:     l.CompletedAt,
		CreatedAt:       l.CreatedAt,
	}
}

func (r lessonRow) toDomain() domain.Lesson {
	return domain.Lesson{
		ID:              r.ID,
		PlanID:          r.PlanID,
		Title:           r.Title,
		Description:     r.Description,
		ContentRef:      r.ContentRef,
		DurationMinutes: r.DurationMinutes,
		Category:        r.Category,
		Difficulty:      r.Difficulty,
		Date:            r.Date,
		OrderIndex:      r.OrderIndex,
		Completed:       r.Completed,
		CompletedAt:     r.CompletedAt,
		CreatedAt:       r.CreatedAt,
	}
}
