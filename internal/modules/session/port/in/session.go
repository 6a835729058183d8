package in

import (
	"context"

	"commutecast/internal/modules/session/dto"
)

type Usecase interface {
	SetEpisode(ctx context.Context, input *dto.EpisodeInput) (dto.StateOutput, error)
	Start(ctx context.Context, input dto.StartInput) (dto.StateOutput, error)
	Progress(ctx context.Context, input dto.ProgressInput) (dto.StateOutput, error)
	Pause(ctx context.Context) (dto.StateOutput, error)
	Resume(ctx context.Context) (dto.StateOutput, error)
	Complete(ctx context.Context, input dto.CompleteInput) (dto.CompleteOutput, error)
	Reset(ctx context.Context) (dto.StateOutput, error)
	GetState(ctx context.Context) (dto.StateOutput, error)
	Subscribe(fn func(dto.StateOutput)) func()
}
