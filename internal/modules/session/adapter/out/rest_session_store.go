package out

import (
	"context"
	"fmt"
	"time"

	"commutecast/internal/modules/session/domain"
	sessionout "commutecast/internal/modules/session/port/out"
	apperrors "commutecast/internal/platform/errors"
	"commutecast/internal/platform/restapi"
)

type sessionRow struct {
	ID              string     `json:"id,omitempty"`
	EpisodeID       string     `json:"episode_id"`
	LessonID        string     `json:"lesson_id,omitempty"`
	UserID          string     `json:"user_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	ProgressSeconds int        `json:"progress_seconds"`
	Completed       bool       `json:"completed"`
	Source          string     `json:"source,omitempty"`
	Device          string     `json:"device,omitempty"`
}

type sessionPatch struct {
	ProgressSeconds *int       `json:"progress_seconds,omitempty"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
}

type completeRequest struct {
	SessionID       string    `json:"p_session_id"`
	ProgressSeconds int       `json:"p_progress_seconds"`
	EndedAt         time.Time `json:"p_ended_at"`
}

type completeResponse struct {
	Session  sessionRow         `json:"session"`
	DayEntry *domain.DaySummary `json:"day_entry,omitempty"`
}

// RESTSessionStore talks to the hosted backend; completion runs server side
// so the day entry is updated atomically with the session.
type RESTSessionStore struct {
	client *restapi.Client
}

func NewRESTSessionStore(client *restapi.Client) sessionout.SessionStore {
	return &RESTSessionStore{client: client}
}

func (s *RESTSessionStore) CreateSession(ctx context.Context, in domain.NewSession) (domain.Session, error) {
	body := sessionRow{
		EpisodeID:       in.EpisodeID,
		LessonID:        in.LessonID,
		UserID:          in.UserID,
		StartedAt:       in.StartedAt,
		ProgressSeconds: in.ProgressSeconds,
		Completed:       in.Completed,
		Source:          in.Source,
		Device:          in.Device,
	}
	created := []sessionRow{}
	if err := s.client.Insert(ctx, "/sessions", body, &created); err != nil {
		return domain.Session{}, fmt.Errorf("insert session: %w", err)
	}
	if len(created) == 0 {
		return domain.Session{}, fmt.Errorf("insert session: empty response")
	}
	return domain.Session(created[0]), nil
}

func (s *RESTSessionStore) UpdateSession(ctx context.Context, sessionID string, update domain.SessionUpdate) (domain.Session, error) {
	patch := sessionPatch{ProgressSeconds: update.ProgressSeconds, EndedAt: update.EndedAt}
	updated := []sessionRow{}
	if err := s.client.Patch(ctx, "/sessions", map[string]string{"id": restapi.Eq(sessionID)}, patch, &updated); err != nil {
		return domain.Session{}, fmt.Errorf("update session: %w", err)
	}
	if len(updated) == 0 {
		return domain.Session{}, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	return domain.Session(updated[0]), nil
}

func (s *RESTSessionStore) CompleteSession(ctx context.Context, sessionID string, completion domain.Completion) (domain.CompletionResult, error) {
	req := completeRequest{
		SessionID:       sessionID,
		ProgressSeconds: completion.ProgressSeconds,
		EndedAt:         completion.EndedAt,
	}
	resp := completeResponse{}
	if err := s.client.RPC(ctx, "complete_session", req, &resp); err != nil {
		return domain.CompletionResult{}, fmt.Errorf("complete session: %w", err)
	}
	if resp.Session.ID == "" {
		return domain.CompletionResult{}, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	return domain.CompletionResult{Session: domain.Session(resp.Session), Day: resp.DayEntry}, nil
}
