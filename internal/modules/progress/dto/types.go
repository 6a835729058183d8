package dto

type WeekInput struct {
	UserID string `validate:"required"`
	// Date picks the week; empty means today.
	Date                string `validate:"omitempty,datetime=2006-01-02"`
	TotalCommuteMinutes int    `validate:"gte=0"`
}

type HeatmapInput struct {
	UserID string `validate:"required"`
	Weeks  int    `validate:"gte=0,lte=104"`
}

type StreakInput struct {
	UserID string `validate:"required"`
}

type DashboardInput struct {
	UserID string `validate:"required"`
}

type DayOutput struct {
	Date             string
	Minutes          int
	LessonsCompleted int
	GoalMet          bool
	Bucket           string
	HasEntry         bool
}

type WeekOutput struct {
	From             string
	To               string
	Lessons          int
	Minutes          int
	LessonsCompleted int
	Percentage       int
	CommuteMinutes   int
}

type HeatmapOutput struct {
	Today string
	Weeks [][]DayOutput
}

type StreakOutput struct {
	Current    int
	Longest    int
	LastActive string
}

type KPIOutput struct {
	TotalMinutes  int
	TotalLessons  int
	DaysActive    int
	CurrentStreak int
	LongestStreak int
}

type DashboardOutput struct {
	Week    WeekOutput
	Heatmap HeatmapOutput
	Streak  StreakOutput
	KPIs    KPIOutput
}
