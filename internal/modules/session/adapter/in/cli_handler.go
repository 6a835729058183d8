package in

import (
	"context"

	sessiondto "commutecast/internal/modules/session/dto"
	sessionin "commutecast/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, userID, device string, episode sessiondto.EpisodeInput) (sessiondto.StateOutput, error) {
	return h.usecase.Start(ctx, sessiondto.StartInput{Episode: episode, UserID: userID, Device: device})
}

func (h CLIHandler) Progress(ctx context.Context, seconds int) (sessiondto.StateOutput, error) {
	return h.usecase.Progress(ctx, sessiondto.ProgressInput{Seconds: seconds})
}

func (h CLIHandler) Pause(ctx context.Context) (sessiondto.StateOutput, error) {
	return h.usecase.Pause(ctx)
}

func (h CLIHandler) Resume(ctx context.Context) (sessiondto.StateOutput, error) {
	return h.usecase.Resume(ctx)
}

func (h CLIHandler) Complete(ctx context.Context, userID string) (sessiondto.CompleteOutput, error) {
	return h.usecase.Complete(ctx, sessiondto.CompleteInput{UserID: userID})
}

func (h CLIHandler) Reset(ctx context.Context) (sessiondto.StateOutput, error) {
	return h.usecase.Reset(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (sessiondto.StateOutput, error) {
	return h.usecase.GetState(ctx)
}

func (h CLIHandler) Subscribe(fn func(sessiondto.StateOutput)) func() {
	return h.usecase.Subscribe(fn)
}
