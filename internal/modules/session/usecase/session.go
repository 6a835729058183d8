package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	queuedto "commutecast/internal/modules/queue/dto"
	queuein "commutecast/internal/modules/queue/port/in"
	"commutecast/internal/modules/session/domain"
	sessiondto "commutecast/internal/modules/session/dto"
	sessionin "commutecast/internal/modules/session/port/in"
	sessionout "commutecast/internal/modules/session/port/out"
	"commutecast/internal/modules/session/service"
	apperrors "commutecast/internal/platform/errors"
	"commutecast/internal/platform/validate"
)

type Interactor struct {
	svc         *service.SessionManager
	queue       queuein.Usecase
	activeStore sessionout.ActiveSessionStore
	journal     sessionout.Journal
	logger      *slog.Logger

	hydrateMu sync.Mutex
	hydrated  bool
}

func NewInteractor(svc *service.SessionManager, queue queuein.Usecase, activeStore sessionout.ActiveSessionStore, journal sessionout.Journal, logger *slog.Logger) sessionin.Usecase {
	return &Interactor{svc: svc, queue: queue, activeStore: activeStore, journal: journal, logger: logger}
}

func (i *Interactor) SetEpisode(ctx context.Context, input *sessiondto.EpisodeInput) (sessiondto.StateOutput, error) {
	if err := i.hydrate(ctx); err != nil {
		return sessiondto.StateOutput{}, err
	}
	var episode *domain.Episode
	if input != nil {
		if err := validate.Struct(input); err != nil {
			return sessiondto.StateOutput{}, err
		}
		ep := toEpisode(*input)
		episode = &ep
	}
	if err := i.svc.SetCurrentEpisode(episode); err != nil {
		return toStateOutput(i.svc.State()), err
	}
	return i.persisted(ctx, i.svc.State()), nil
}

func (i *Interactor) Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.StateOutput, error) {
	if err := validate.Struct(input); err != nil {
		return sessiondto.StateOutput{}, err
	}
	if err := i.hydrate(ctx); err != nil {
		return sessiondto.StateOutput{}, err
	}
	state, err := i.svc.StartSession(ctx, toEpisode(input.Episode), input.UserID, input.Device)
	if err != nil {
		return toStateOutput(state), err
	}
	if i.queue != nil && input.Episode.LessonID != "" {
		if _, err := i.queue.SetCurrent(ctx, input.Episode.LessonID); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
			i.logger.Warn("mark current lesson failed", "lesson", input.Episode.LessonID, "error", err)
		}
	}
	return i.persisted(ctx, state), nil
}

func (i *Interactor) Progress(ctx context.Context, input sessiondto.ProgressInput) (sessiondto.StateOutput, error) {
	if err := validate.Struct(input); err != nil {
		return sessiondto.StateOutput{}, err
	}
	if err := i.hydrate(ctx); err != nil {
		return sessiondto.StateOutput{}, err
	}
	return i.persisted(ctx, i.svc.UpdateProgress(ctx, input.Seconds)), nil
}

func (i *Interactor) Pause(ctx context.Context) (sessiondto.StateOutput, error) {
	if err := i.hydrate(ctx); err != nil {
		return sessiondto.StateOutput{}, err
	}
	return i.persisted(ctx, i.svc.Pause(ctx)), nil
}

func (i *Interactor) Resume(ctx context.Context) (sessiondto.StateOutput, error) {
	if err := i.hydrate(ctx); err != nil {
		return sessiondto.StateOutput{}, err
	}
	return i.persisted(ctx, i.svc.Resume()), nil
}

// Complete closes the session and then retires its lesson from the queue.
// Queue and journal failures are logged; the remote completion already stands.
func (i *Interactor) Complete(ctx context.Context, input sessiondto.CompleteInput) (sessiondto.CompleteOutput, error) {
	if err := validate.Struct(input); err != nil {
		return sessiondto.CompleteOutput{}, err
	}
	if err := i.hydrate(ctx); err != nil {
		return sessiondto.CompleteOutput{}, err
	}
	result, err := i.svc.CompleteSession(ctx, input.UserID)
	if err != nil {
		return sessiondto.CompleteOutput{State: toStateOutput(i.svc.State())}, err
	}
	state := i.svc.State()
	out := sessiondto.CompleteOutput{State: toStateOutput(state)}
	if result == nil {
		return out, nil
	}
	out.Completed = true
	if result.Day != nil {
		out.Day = result.Day.Date
		out.DayMinutes = result.Day.MinutesLearned
	}

	var episode domain.Episode
	if state.CurrentEpisode != nil {
		episode = *state.CurrentEpisode
	}
	if i.queue != nil && episode.LessonID != "" {
		if _, err := i.queue.MarkComplete(ctx, queuedto.MarkCompleteInput{UserID: input.UserID, LessonID: episode.LessonID}); err != nil {
			i.logger.Warn("retire completed lesson failed", "lesson", episode.LessonID, "error", err)
		}
	}
	if i.journal != nil {
		ref, err := i.journal.Record(ctx, result.Session, episode)
		if err != nil {
			i.logger.Warn("journal entry failed", "session", result.Session.ID, "error", err)
		}
		out.JournalRef = ref
	}
	out.State = i.persisted(ctx, state)
	return out, nil
}

func (i *Interactor) Reset(ctx context.Context) (sessiondto.StateOutput, error) {
	if err := i.hydrate(ctx); err != nil {
		return sessiondto.StateOutput{}, err
	}
	return i.persisted(ctx, i.svc.Reset()), nil
}

func (i *Interactor) GetState(ctx context.Context) (sessiondto.StateOutput, error) {
	if err := i.hydrate(ctx); err != nil {
		return sessiondto.StateOutput{}, err
	}
	return toStateOutput(i.svc.State()), nil
}

func (i *Interactor) Subscribe(fn func(sessiondto.StateOutput)) func() {
	return i.svc.Subscribe(func(s domain.State) { fn(toStateOutput(s)) })
}

// hydrate restores the snapshot left by a previous process, once.
func (i *Interactor) hydrate(ctx context.Context) error {
	i.hydrateMu.Lock()
	defer i.hydrateMu.Unlock()
	if i.hydrated || i.activeStore == nil {
		i.hydrated = true
		return nil
	}
	state, err := i.activeStore.LoadActive(ctx)
	switch {
	case err == nil:
		i.svc.Restore(state)
	case errors.Is(err, apperrors.ErrNoActiveSession):
	default:
		return err
	}
	i.hydrated = true
	return nil
}

// persisted saves the snapshot for the next process and converts it. The
// snapshot is a local cache, so failures are only logged.
func (i *Interactor) persisted(ctx context.Context, state domain.State) sessiondto.StateOutput {
	if i.activeStore != nil {
		var err error
		if state.Status == domain.StatusIdle && state.CurrentEpisode == nil {
			err = i.activeStore.ClearActive(ctx)
		} else {
			err = i.activeStore.SaveActive(ctx, state)
		}
		if err != nil {
			i.logger.Warn("save playback snapshot failed", "error", err)
		}
	}
	return toStateOutput(state)
}

func toEpisode(in sessiondto.EpisodeInput) domain.Episode {
	return domain.Episode{ID: in.ID, LessonID: in.LessonID, Title: in.Title, DurationSeconds: in.DurationSeconds}
}

func toStateOutput(s domain.State) sessiondto.StateOutput {
	out := sessiondto.StateOutput{
		Status:          string(s.Status),
		IsPlaying:       s.IsPlaying,
		ProgressSeconds: s.ProgressSeconds,
		DurationSeconds: s.DurationSeconds,
	}
	if s.CurrentEpisode != nil {
		out.EpisodeID = s.CurrentEpisode.ID
		out.LessonID = s.CurrentEpisode.LessonID
		out.EpisodeTitle = s.CurrentEpisode.Title
	}
	if s.CurrentSession != nil {
		out.Session = &sessiondto.SessionOutput{
			ID:              s.CurrentSession.ID,
			EpisodeID:       s.CurrentSession.EpisodeID,
			LessonID:        s.CurrentSession.LessonID,
			UserID:          s.CurrentSession.UserID,
			StartedAt:       s.CurrentSession.StartedAt,
			EndedAt:         s.CurrentSession.EndedAt,
			ProgressSeconds: s.CurrentSession.ProgressSeconds,
			Completed:       s.CurrentSession.Completed,
			Source:          s.CurrentSession.Source,
			Device:          s.CurrentSession.Device,
		}
	}
	return out
}
