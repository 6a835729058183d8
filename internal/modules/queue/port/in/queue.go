package in

import (
	"context"

	"commutecast/internal/modules/queue/dto"
)

type Usecase interface {
	Load(ctx context.Context, input dto.LoadInput) (dto.QueueOutput, error)
	Snapshot(ctx context.Context) (dto.QueueOutput, error)
	Add(ctx context.Context, input dto.AddInput) (dto.QueueOutput, error)
	SetDaily(ctx context.Context, input dto.LessonInput) (dto.QueueOutput, error)
	SetCurrent(ctx context.Context, lessonID string) (dto.QueueOutput, error)
	MarkComplete(ctx context.Context, input dto.MarkCompleteInput) (dto.QueueOutput, error)
	Remove(ctx context.Context, lessonID string) (dto.QueueOutput, error)
	Clear(ctx context.Context) (dto.QueueOutput, error)
	Subscribe(fn func(dto.QueueOutput)) func()
}
