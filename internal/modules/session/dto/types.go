package dto

import "time"

type EpisodeInput struct {
	ID              string `validate:"required"`
	LessonID        string
	Title           string
	DurationSeconds int `validate:"gte=0"`
}

// EpisodeForLesson is the playable view of a queued lesson. The content
// reference identifies the episode when present.
func EpisodeForLesson(lessonID, contentRef, title string, durationMinutes int) EpisodeInput {
	episodeID := contentRef
	if episodeID == "" {
		episodeID = lessonID
	}
	return EpisodeInput{ID: episodeID, LessonID: lessonID, Title: title, DurationSeconds: durationMinutes * 60}
}

type StartInput struct {
	Episode EpisodeInput
	UserID  string `validate:"required"`
	Device  string
}

type ProgressInput struct {
	Seconds int `validate:"gte=0"`
}

type CompleteInput struct {
	UserID string `validate:"required"`
}

type SessionOutput struct {
	ID              string
	EpisodeID       string
	LessonID        string
	UserID          string
	StartedAt       time.Time
	EndedAt         *time.Time
	ProgressSeconds int
	Completed       bool
	Source          string
	Device          string
}

type StateOutput struct {
	Status          string
	EpisodeID       string
	LessonID        string
	EpisodeTitle    string
	Session         *SessionOutput
	IsPlaying       bool
	ProgressSeconds int
	DurationSeconds int
}

type CompleteOutput struct {
	State      StateOutput
	Completed  bool
	Day        string
	DayMinutes int
	JournalRef string
}
