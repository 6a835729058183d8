package in

import (
	"context"

	"commutecast/internal/modules/progress/dto"
)

type Usecase interface {
	Week(ctx context.Context, input dto.WeekInput) (dto.WeekOutput, error)
	Heatmap(ctx context.Context, input dto.HeatmapInput) (dto.HeatmapOutput, error)
	Streak(ctx context.Context, input dto.StreakInput) (dto.StreakOutput, error)
	Dashboard(ctx context.Context, input dto.DashboardInput) (dto.DashboardOutput, error)
}
