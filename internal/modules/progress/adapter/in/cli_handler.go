package in

import (
	"context"

	progressdto "commutecast/internal/modules/progress/dto"
	progressin "commutecast/internal/modules/progress/port/in"
)

type CLIHandler struct {
	usecase progressin.Usecase
}

func NewCLIHandler(usecase progressin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Week(ctx context.Context, userID, date string, commuteMinutes int) (progressdto.WeekOutput, error) {
	return h.usecase.Week(ctx, progressdto.WeekInput{UserID: userID, Date: date, TotalCommuteMinutes: commuteMinutes})
}

func (h CLIHandler) Heatmap(ctx context.Context, userID string, weeks int) (progressdto.HeatmapOutput, error) {
	return h.usecase.Heatmap(ctx, progressdto.HeatmapInput{UserID: userID, Weeks: weeks})
}

func (h CLIHandler) Streak(ctx context.Context, userID string) (progressdto.StreakOutput, error) {
	return h.usecase.Streak(ctx, progressdto.StreakInput{UserID: userID})
}

func (h CLIHandler) Dashboard(ctx context.Context, userID string) (progressdto.DashboardOutput, error) {
	return h.usecase.Dashboard(ctx, progressdto.DashboardInput{UserID: userID})
}
