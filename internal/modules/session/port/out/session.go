package out

import (
	"context"

	"commutecast/internal/modules/session/domain"
)

// SessionStore is the remote persistence contract for listening sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session domain.NewSession) (domain.Session, error)
	UpdateSession(ctx context.Context, sessionID string, update domain.SessionUpdate) (domain.Session, error)
	CompleteSession(ctx context.Context, sessionID string, completion domain.Completion) (domain.CompletionResult, error)
}

// ActiveSessionStore keeps the engine state between CLI invocations.
type ActiveSessionStore interface {
	SaveActive(ctx context.Context, state domain.State) error
	LoadActive(ctx context.Context) (domain.State, error)
	ClearActive(ctx context.Context) error
}

// Journal records completed sessions outside the remote store.
type Journal interface {
	Record(ctx context.Context, session domain.Session, episode domain.Episode) (string, error)
}
