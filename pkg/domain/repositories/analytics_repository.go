package repositories

import (
	"context"

	"github.com/vsinha/procurement/pkg/domain/entities"
)

// AnalyticsRepository provides dashboards, history and forecasts
type AnalyticsRepository interface {
	GetDashboard(ctx context.Context) (*entities.DashboardSnapshot, error)
	GetHistory(ctx context.Context) ([]entities.HistoryPoint, error)
	GetForecast(ctx context.Context) ([]entities.ForecastEntry, error)
	GetScenario(ctx context.Context, params entities.ScenarioParameters) (*entities.ScenarioProjection, error)
}
