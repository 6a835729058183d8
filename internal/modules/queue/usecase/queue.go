package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"commutecast/internal/modules/queue/domain"
	"commutecast/internal/modules/queue/dto"
	queuein "commutecast/internal/modules/queue/port/in"
	queueout "commutecast/internal/modules/queue/port/out"
	"commutecast/internal/modules/queue/service"
	"commutecast/internal/platform/calendar"
	"commutecast/internal/platform/clock"
	apperrors "commutecast/internal/platform/errors"
	"commutecast/internal/platform/id"
	"commutecast/internal/platform/validate"
)

type Interactor struct {
	svc    *service.QueueManager
	store  queueout.LessonStore
	clock  clock.Clock
	ids    id.Generator
	logger *slog.Logger
}

func NewInteractor(svc *service.QueueManager, store queueout.LessonStore, clock clock.Clock, ids id.Generator, logger *slog.Logger) queuein.Usecase {
	return &Interactor{svc: svc, store: store, clock: clock, ids: ids, logger: logger}
}

func (i *Interactor) Load(ctx context.Context, input dto.LoadInput) (dto.QueueOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.QueueOutput{}, err
	}
	if i.store == nil {
		return dto.QueueOutput{}, fmt.Errorf("lesson store is not configured")
	}
	lessons, err := i.store.GetLessonQueue(ctx, input.UserID)
	if err != nil {
		return dto.QueueOutput{}, fmt.Errorf("load lesson queue: %w: %w", apperrors.ErrPersistence, err)
	}
	daily, nextUp, completed := domain.Arrange(lessons, calendar.FromTime(i.clock.Now()))
	i.svc.Replace(daily, nextUp, completed)
	i.logger.Debug("queue loaded", "user", input.UserID, "queued", len(nextUp), "completed", len(completed))
	return toQueueOutput(i.svc.Snapshot()), nil
}

func (i *Interactor) Snapshot(context.Context) (dto.QueueOutput, error) {
	return toQueueOutput(i.svc.Snapshot()), nil
}

func (i *Interactor) Add(ctx context.Context, input dto.AddInput) (dto.QueueOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.QueueOutput{}, err
	}
	lesson, err := i.fromInput(input.Lesson)
	if err != nil {
		return dto.QueueOutput{}, err
	}
	if _, queued := i.svc.Find(lesson.ID); queued {
		return toQueueOutput(i.svc.Snapshot()), nil
	}
	if i.store != nil {
		saved, err := i.store.SaveLesson(ctx, input.UserID, lesson)
		if err != nil {
			return dto.QueueOutput{}, fmt.Errorf("save lesson: %w: %w", apperrors.ErrPersistence, err)
		}
		lesson = saved
	}
	i.svc.AddToQueue(lesson)
	return toQueueOutput(i.svc.Snapshot()), nil
}

func (i *Interactor) SetDaily(_ context.Context, input dto.LessonInput) (dto.QueueOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.QueueOutput{}, err
	}
	lesson, err := i.fromInput(input)
	if err != nil {
		return dto.QueueOutput{}, err
	}
	i.svc.SetDailyLesson(&lesson)
	return toQueueOutput(i.svc.Snapshot()), nil
}

func (i *Interactor) SetCurrent(_ context.Context, lessonID string) (dto.QueueOutput, error) {
	if strings.TrimSpace(lessonID) == "" {
		i.svc.SetCurrentLesson(nil)
		return toQueueOutput(i.svc.Snapshot()), nil
	}
	lesson, ok := i.svc.Find(lessonID)
	if !ok {
		return dto.QueueOutput{}, fmt.Errorf("lesson %s: %w", lessonID, apperrors.ErrNotFound)
	}
	i.svc.SetCurrentLesson(&lesson)
	return toQueueOutput(i.svc.Snapshot()), nil
}

// MarkComplete is a no-op for unknown lessons. Known lessons are persisted as
// completed when a store and user are available.
func (i *Interactor) MarkComplete(ctx context.Context, input dto.MarkCompleteInput) (dto.QueueOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.QueueOutput{}, err
	}
	done, found := i.svc.MarkComplete(input.LessonID)
	if found && i.store != nil && input.UserID != "" {
		if err := i.store.MarkLessonComplete(ctx, input.UserID, done.ID, *done.CompletedAt); err != nil {
			return toQueueOutput(i.svc.Snapshot()), fmt.Errorf("persist lesson completion: %w: %w", apperrors.ErrPersistence, err)
		}
	}
	return toQueueOutput(i.svc.Snapshot()), nil
}

func (i *Interactor) Remove(_ context.Context, lessonID string) (dto.QueueOutput, error) {
	i.svc.RemoveFromQueue(lessonID)
	return toQueueOutput(i.svc.Snapshot()), nil
}

func (i *Interactor) Clear(context.Context) (dto.QueueOutput, error) {
	i.svc.ClearQueue()
	return toQueueOutput(i.svc.Snapshot()), nil
}

func (i *Interactor) Subscribe(fn func(dto.QueueOutput)) func() {
	return i.svc.Subscribe(func(s service.Snapshot) { fn(toQueueOutput(s)) })
}

func (i *Interactor) fromInput(input dto.LessonInput) (domain.Lesson, error) {
	lesson := domain.Lesson{
		ID:              strings.TrimSpace(input.ID),
		PlanID:          input.PlanID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		ContentRef:      input.ContentRef,
		DurationMinutes: input.DurationMinutes,
		Category:        input.Category,
		Difficulty:      input.Difficulty,
		CreatedAt:       i.clock.Now(),
	}
	if lesson.ID == "" {
		lesson.ID = i.ids.New()
	}
	if input.Date != "" {
		day, err := calendar.Parse(input.Date)
		if err != nil {
			return domain.Lesson{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
		}
		lesson.Date = day
	}
	return lesson, nil
}

func toQueueOutput(s service.Snapshot) dto.QueueOutput {
	out := dto.QueueOutput{
		Daily:     toLessonOutputPtr(s.Daily),
		Current:   toLessonOutputPtr(s.Current),
		NextUp:    make([]dto.LessonOutput, 0, len(s.NextUp)),
		Completed: make([]dto.LessonOutput, 0, len(s.Completed)),
	}
	for _, l := range s.NextUp {
		out.NextUp = append(out.NextUp, toLessonOutput(l))
	}
	for _, l := range s.Completed {
		out.Completed = append(out.Completed, toLessonOutput(l))
	}
	return out
}

func toLessonOutputPtr(l *domain.Lesson) *dto.LessonOutput {
	if l == nil {
		return nil
	}
	o := toLessonOutput(*l)
	return &o
}

func toLessonOutput(l domain.Lesson) dto.LessonOutput {
	date := ""
	if !l.Date.IsZero() {
		date = l.Date.String()
	}
	return dto.LessonOutput{
		ID:              l.ID,
		PlanID:          l.PlanID,
		Title:           l.Title,
		Description:     l.Description,
		ContentRef:      l.ContentRef,
		DurationMinutes: l.DurationMinutes,
		Category:        l.Category,
		Difficulty:      l.Difficulty,
		Date:            date,
		Completed:       l.Completed,
		CompletedAt:     l.CompletedAt,
	}
}
