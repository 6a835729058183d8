package domain

import "time"

const (
	SchemaVersion = 1

	// ProgressSyncInterval is the sampling step for remote progress writes: a
	// report is persisted only when its value is a multiple of this many seconds.
	ProgressSyncInterval = 10
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusPlaying   Status = "playing"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// Episode is the playable view of a lesson.
type Episode struct {
	ID              string `json:"id"`
	LessonID        string `json:"lesson_id,omitempty"`
	Title           string `json:"title,omitempty"`
	DurationSeconds int    `json:"duration_seconds,omitempty"`
}

// Session is one playback attempt of an episode.
type Session struct {
	ID              string     `json:"id"`
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

// NewSession is the row inserted when playback starts.
type NewSession struct {
	EpisodeID       string
	LessonID        string
	UserID          string
	StartedAt       time.Time
	ProgressSeconds int
	Completed       bool
	Source          string
	Device          string
}

// SessionUpdate is a partial update; nil fields stay unchanged.
type SessionUpdate struct {
	ProgressSeconds *int
	EndedAt         *time.Time
}

type Completion struct {
	ProgressSeconds int
	EndedAt         time.Time
}

// DaySummary is the day aggregate the store folded the session into.
type DaySummary struct {
	Date             string `json:"date"`
	MinutesLearned   int    `json:"minutes_learned"`
	LessonsCompleted int    `json:"lessons_completed"`
}

type CompletionResult struct {
	Session Session
	Day     *DaySummary
}

// State is the engine's full observable state.
type State struct {
	Status          Status   `json:"status"`
	CurrentEpisode  *Episode `json:"current_episode,omitempty"`
	CurrentSession  *Session `json:"current_session,omitempty"`
	IsPlaying       bool     `json:"is_playing"`
	ProgressSeconds int      `json:"progress_seconds"`
	DurationSeconds int      `json:"duration_seconds,omitempty"`
}

func IdleState() State {
	return State{Status: StatusIdle}
}

// Open reports whether a started session has not completed yet.
func (s State) Open() bool {
	return s.CurrentSession != nil && !s.CurrentSession.Completed && s.Status != StatusCompleted
}

// Clone deep-copies the pointer fields.
func (s State) Clone() State {
	out := s
	if s.CurrentEpisode != nil {
		ep := *s.CurrentEpisode
		out.CurrentEpisode = &ep
	}
	if s.CurrentSession != nil {
		sess := *s.CurrentSession
		if s.CurrentSession.EndedAt != nil {
			ended := *s.CurrentSession.EndedAt
			sess.EndedAt = &ended
		}
		out.CurrentSession = &sess
	}
	return out
}

// ShouldSync applies the sampling policy to a reported position.
func ShouldSync(progressSeconds int) bool {
	return progressSeconds%ProgressSyncInterval == 0
}
