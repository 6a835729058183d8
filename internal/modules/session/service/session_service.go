package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"commutecast/internal/modules/session/domain"
	sessionout "commutecast/internal/modules/session/port/out"
	"commutecast/internal/platform/async"
	"commutecast/internal/platform/clock"
	apperrors "commutecast/internal/platform/errors"
	"commutecast/internal/platform/observe"
)

const defaultDevice = "unknown"

// SessionManager owns the single listening session and its progress counter.
//
// Start and complete are confirmed against the store and leave the state
// untouched on failure. Progress samples and pauses are applied locally first
// and written in the background; their failures are logged and dropped.
type SessionManager struct {
	clock      clock.Clock
	store      sessionout.SessionStore
	dispatcher *async.Dispatcher
	logger     *slog.Logger
	source     string

	// checkpoint serialises start and complete so two confirmed writes never
	// race on the same state.
	checkpoint sync.Mutex

	mu        sync.Mutex
	state     domain.State
	observers observe.Registry[domain.State]
}

func NewSessionManager(clock clock.Clock, store sessionout.SessionStore, dispatcher *async.Dispatcher, logger *slog.Logger, source string) *SessionManager {
	return &SessionManager{
		clock:      clock,
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		source:     source,
		state:      domain.IdleState(),
	}
}

func (m *SessionManager) State() domain.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// Subscribe registers fn to receive a snapshot after every transition.
func (m *SessionManager) Subscribe(fn func(domain.State)) func() {
	return m.observers.Subscribe(fn)
}

// Restore replaces the in-memory state, e.g. with a snapshot saved by an
// earlier process. No remote write is issued.
func (m *SessionManager) Restore(state domain.State) {
	if state.Status == "" {
		state.Status = domain.StatusIdle
	}
	m.transition(func(s *domain.State) bool {
		*s = state.Clone()
		return true
	})
}

// SetCurrentEpisode selects an episode without starting a session.
func (m *SessionManager) SetCurrentEpisode(episode *domain.Episode) error {
	var err error
	m.transition(func(s *domain.State) bool {
		if s.Open() {
			err = apperrors.ErrActiveSessionExists
			return false
		}
		next := domain.IdleState()
		if episode != nil {
			ep := *episode
			next.CurrentEpisode = &ep
			next.DurationSeconds = ep.DurationSeconds
		}
		*s = next
		return true
	})
	return err
}

func (m *SessionManager) StartSession(ctx context.Context, episode domain.Episode, userID, device string) (domain.State, error) {
	if strings.TrimSpace(episode.ID) == "" || strings.TrimSpace(userID) == "" {
		return m.State(), fmt.Errorf("%w: episode id and user id are required", apperrors.ErrInvalidInput)
	}
	if device == "" {
		device = defaultDevice
	}

	m.checkpoint.Lock()
	defer m.checkpoint.Unlock()

	if m.State().Open() {
		return m.State(), apperrors.ErrActiveSessionExists
	}

	session, err := m.store.CreateSession(ctx, domain.NewSession{
		EpisodeID:       episode.ID,
		LessonID:        episode.LessonID,
		UserID:          userID,
		StartedAt:       m.clock.Now(),
		ProgressSeconds: 0,
		Completed:       false,
		Source:          m.source,
		Device:          device,
	})
	if err != nil {
		return m.State(), fmt.Errorf("start session: %w: %w", apperrors.ErrPersistence, err)
	}
	m.logger.Info("session started", "session", session.ID, "episode", episode.ID, "user", userID)

	ep := episode
	next := domain.State{
		Status:          domain.StatusPlaying,
		CurrentEpisode:  &ep,
		CurrentSession:  &session,
		IsPlaying:       true,
		ProgressSeconds: 0,
		DurationSeconds: episode.DurationSeconds,
	}
	return m.transition(func(s *domain.State) bool {
		*s = next
		return true
	}), nil
}

// UpdateProgress records the reported position. The remote copy is written
// only when the position lands on a sampling boundary; a report that skips
// over a boundary is not persisted.
func (m *SessionManager) UpdateProgress(ctx context.Context, seconds int) domain.State {
	if seconds < 0 {
		seconds = 0
	}
	var sessionID string
	state := m.transition(func(s *domain.State) bool {
		if s.Status == domain.StatusCompleted {
			return false
		}
		s.ProgressSeconds = seconds
		if s.CurrentSession != nil && domain.ShouldSync(seconds) {
			sessionID = s.CurrentSession.ID
		}
		return true
	})
	if sessionID != "" {
		progress := seconds
		m.dispatcher.Go(ctx, "update_progress", sessionID, func(ctx context.Context) error {
			_, err := m.store.UpdateSession(ctx, sessionID, domain.SessionUpdate{ProgressSeconds: &progress})
			return err
		})
	}
	return state
}

// Pause stops playback locally before the remote write is issued.
func (m *SessionManager) Pause(ctx context.Context) domain.State {
	var (
		sessionID string
		progress  int
	)
	state := m.transition(func(s *domain.State) bool {
		if !s.IsPlaying || s.Status == domain.StatusCompleted {
			return false
		}
		s.IsPlaying = false
		if s.CurrentSession != nil {
			s.Status = domain.StatusPaused
			sessionID = s.CurrentSession.ID
			progress = s.ProgressSeconds
		}
		return true
	})
	if sessionID != "" {
		endedAt := m.clock.Now()
		m.dispatcher.Go(ctx, "pause", sessionID, func(ctx context.Context) error {
			_, err := m.store.UpdateSession(ctx, sessionID, domain.SessionUpdate{ProgressSeconds: &progress, EndedAt: &endedAt})
			return err
		})
	}
	return state
}

// Resume is local only; the next sample, pause or completion persists it.
func (m *SessionManager) Resume() domain.State {
	return m.transition(func(s *domain.State) bool {
		if !s.Open() || s.IsPlaying {
			return false
		}
		s.IsPlaying = true
		s.Status = domain.StatusPlaying
		return true
	})
}

// CompleteSession closes the open session. Without a session or episode it
// is a no-op and returns a nil result.
func (m *SessionManager) CompleteSession(ctx context.Context, userID string) (*domain.CompletionResult, error) {
	m.checkpoint.Lock()
	defer m.checkpoint.Unlock()

	current := m.State()
	if current.CurrentSession == nil || current.CurrentEpisode == nil || !current.Open() {
		return nil, nil
	}

	sessionID := current.CurrentSession.ID
	result, err := m.store.CompleteSession(ctx, sessionID, domain.Completion{
		ProgressSeconds: current.ProgressSeconds,
		EndedAt:         m.clock.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("complete session: %w: %w", apperrors.ErrPersistence, err)
	}
	m.logger.Info("session completed", "session", sessionID, "user", userID, "progress_seconds", current.ProgressSeconds)

	confirmed := result.Session
	m.transition(func(s *domain.State) bool {
		s.IsPlaying = false
		s.Status = domain.StatusCompleted
		s.CurrentSession = &confirmed
		return true
	})
	return &result, nil
}

// Reset clears every field unconditionally.
func (m *SessionManager) Reset() domain.State {
	return m.transition(func(s *domain.State) bool {
		*s = domain.IdleState()
		return true
	})
}

// transition applies fn under the lock and notifies observers when fn
// reports a change. It returns the resulting state.
func (m *SessionManager) transition(fn func(*domain.State) bool) domain.State {
	m.mu.Lock()
	changed := fn(&m.state)
	snap := m.state.Clone()
	m.mu.Unlock()
	if changed {
		m.observers.Notify(snap)
	}
	return snap
}
