// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// ForecastRepository stores forecast results with the one-Active-per-item
// lifecycle. Saving a run's forecasts supersedes the prior Active rows and
// inserts the new ones inside a single transaction, so readers never observe
// zero or two Active forecasts for an item.
type ForecastRepository interface {
	SaveActiveForecasts(ctx context.Context, forecasts []domain.ForecastResult) error
	GetActiveForecast(ctx context.Context, itemID string) (*domain.ForecastResult, error)
	ListActiveForecasts(ctx context.Context) ([]domain.ForecastResult, error)
}

// PlanRepository stores the per-run reorder plans and order recommendations.
// Rows are superseded wholesale by the next run, never mutated in place.
type PlanRepository interface {
	SaveRunOutput(ctx context.Context, run *domain.PlanningRun, plans []domain.ReorderPlan, recs []domain.OrderRecommendation) error
	GetReorderPlan(ctx context.Context, itemID string) (*domain.ReorderPlan, error)
	ListRecommendations(ctx context.Context, urgency string) ([]domain.OrderRecommendation, error)
	GetLatestRun(ctx context.Context) (*domain.PlanningRun, error)
}

// AccuracyRepository persists forecast-accuracy records for model-quality
// monitoring. Write-only from the batch; read by the reporting API.
type AccuracyRepository interface {
	InsertRecords(ctx context.Context, records []domain.AccuracyRecord) error
	ListRecords(ctx context.Context, itemID string, since time.Time) ([]domain.AccuracyRecord, error)
}
