package in

import (
	"context"

	queuedto "commutecast/internal/modules/queue/dto"
	queuein "commutecast/internal/modules/queue/port/in"
)

type CLIHandler struct {
	usecase queuein.Usecase
}

func NewCLIHandler(usecase queuein.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Load(ctx context.Context, userID string) (queuedto.QueueOutput, error) {
	return h.usecase.Load(ctx, queuedto.LoadInput{UserID: userID})
}

func (h CLIHandler) Snapshot(ctx context.Context) (queuedto.QueueOutput, error) {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) Add(ctx context.Context, userID string, lesson queuedto.LessonInput) (queuedto.QueueOutput, error) {
	return h.usecase.Add(ctx, queuedto.AddInput{UserID: userID, Lesson: lesson})
}

func (h CLIHandler) Complete(ctx context.Context, userID, lessonID string) (queuedto.QueueOutput, error) {
	return h.usecase.MarkComplete(ctx, queuedto.MarkCompleteInput{UserID: userID, LessonID: lessonID})
}

func (h CLIHandler) Remove(ctx context.Context, lessonID string) (queuedto.QueueOutput, error) {
	return h.usecase.Remove(ctx, lessonID)
}

func (h CLIHandler) Subscribe(fn func(queuedto.QueueOutput)) func() {
	return h.usecase.Subscribe(fn)
}
