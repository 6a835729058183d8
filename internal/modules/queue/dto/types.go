package dto

import "time"

type LessonInput struct {
	ID              string
	PlanID          string
	Title           string `validate:"required"`
	Description     string
	ContentRef      string
	DurationMinutes int `validate:"gte=0"`
	Category        string
	Difficulty      string
	Date            string `validate:"omitempty,datetime=2006-01-02"`
}

type AddInput struct {
	UserID string `validate:"required"`
	Lesson LessonInput
}

type LoadInput struct {
	UserID string `validate:"required"`
}

type MarkCompleteInput struct {
	UserID   string
	LessonID string `validate:"required"`
}

type LessonOutput struct {
	ID              string
	PlanID          string
	Title           string
	Description     string
	ContentRef      string
	DurationMinutes int
	Category        string
	Difficulty      string
	Date            string
	Completed       bool
	CompletedAt     *time.Time
}

type QueueOutput struct {
	Daily     *LessonOutput
	Current   *LessonOutput
	NextUp    []LessonOutput
	Completed []LessonOutput
}
