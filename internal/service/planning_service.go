package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/replenish-go/internal/cache"
	"github.com/andresuchdata/replenish-go/internal/config"
	"github.com/andresuchdata/replenish-go/internal/domain"
	"github.com/andresuchdata/replenish-go/internal/ingest"
	"github.com/andresuchdata/replenish-go/internal/pipeline"
	"github.com/andresuchdata/replenish-go/internal/repository"
)

// PlanningService ties the planning batch to persistence and caching. The
// batch itself is pure computation; everything stateful goes through here.
type PlanningService struct {
	planner      *pipeline.Planner
	forecastRepo repository.ForecastRepository
	planRepo     repository.PlanRepository
	accuracyRepo repository.AccuracyRepository
	cache        cache.ForecastCache
	reportDir    string
}

func NewPlanningService(
	cfg *config.Config,
	forecastRepo repository.ForecastRepository,
	planRepo repository.PlanRepository,
	accuracyRepo repository.AccuracyRepository,
	cacheImpl cache.ForecastCache,
) (*PlanningService, error) {
	planner, err := pipeline.NewPlanner(cfg.Planner)
	if err != nil {
		return nil, err
	}
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &PlanningService{
		planner:      planner,
		forecastRepo: forecastRepo,
		planRepo:     planRepo,
		accuracyRepo: accuracyRepo,
		cache:        cacheImpl,
		reportDir:    cfg.App.ReportDir,
	}, nil
}

// RunPlanning executes one full planning batch against the extract directory
// and persists its output: forecasts (superseding the prior Active set),
// plans, recommendations and accuracy records, then the CSV report.
func (s *PlanningService) RunPlanning(ctx context.Context, dataDir string) (*pipeline.RunResult, error) {
	ds, err := ingest.LoadDataset(dataDir)
	if err != nil {
		return nil, err
	}

	prior, err := s.priorForecasts(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("planning: could not load prior forecasts, skipping accuracy tracking")
		prior = nil
	}

	result, err := s.planner.Run(ctx, ds, prior)
	if err != nil {
		return nil, err
	}

	if err := s.persist(ctx, result); err != nil {
		return nil, err
	}

	if path, err := pipeline.WriteReportCSV(s.reportDir, result); err != nil {
		log.Error().Err(err).Msg("planning: report write failed")
	} else {
		log.Info().Str("report", path).Msg("planning: report written")
	}

	return result, nil
}

func (s *PlanningService) persist(ctx context.Context, result *pipeline.RunResult) error {
	forecasts := make([]domain.ForecastResult, 0, len(result.Items))
	plans := make([]domain.ReorderPlan, 0, len(result.Items))
	recs := make([]domain.OrderRecommendation, 0, len(result.Items))
	for _, item := range result.Items {
		forecasts = append(forecasts, item.Forecast)
		plans = append(plans, item.Plan)
		recs = append(recs, item.Recommendation)
	}

	if err := s.forecastRepo.SaveActiveForecasts(ctx, forecasts); err != nil {
		return err
	}
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("planning: forecast cache invalidation failed")
	}

	if err := s.planRepo.SaveRunOutput(ctx, &result.Run, plans, recs); err != nil {
		return err
	}

	// Accuracy records are monitoring-only: a failure here logs and moves on,
	// it never fails the run.
	if err := s.accuracyRepo.InsertRecords(ctx, result.Accuracy); err != nil {
		log.Warn().Err(err).Int("records", len(result.Accuracy)).Msg("planning: accuracy insert failed")
	}

	return nil
}

func (s *PlanningService) priorForecasts(ctx context.Context) (map[string]domain.ForecastResult, error) {
	active, err := s.forecastRepo.ListActiveForecasts(ctx)
	if err != nil {
		return nil, err
	}
	prior := make(map[string]domain.ForecastResult, len(active))
	for _, f := range active {
		prior[f.ItemID] = f
	}
	return prior, nil
}

// GetForecast serves the Active forecast for one item, cache-aside.
func (s *PlanningService) GetForecast(ctx context.Context, itemID string) (*domain.ForecastResult, error) {
	if forecast, ok, err := s.cache.GetForecast(ctx, itemID); err == nil && ok {
		return forecast, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("planning: cache get forecast failed")
	}

	forecast, err := s.forecastRepo.GetActiveForecast(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if forecast == nil {
		return nil, nil
	}

	if err := s.cache.SetForecast(ctx, forecast); err != nil {
		log.Warn().Err(err).Msg("planning: cache set forecast failed")
	}
	return forecast, nil
}

func (s *PlanningService) ListForecasts(ctx context.Context) ([]domain.ForecastResult, error) {
	return s.forecastRepo.ListActiveForecasts(ctx)
}

func (s *PlanningService) GetReorderPlan(ctx context.Context, itemID string) (*domain.ReorderPlan, error) {
	return s.planRepo.GetReorderPlan(ctx, itemID)
}

func (s *PlanningService) ListRecommendations(ctx context.Context, urgency string) ([]domain.OrderRecommendation, error) {
	return s.planRepo.ListRecommendations(ctx, urgency)
}

func (s *PlanningService) GetLatestRun(ctx context.Context) (*domain.PlanningRun, error) {
	return s.planRepo.GetLatestRun(ctx)
}

func (s *PlanningService) ListAccuracy(ctx context.Context, itemID string, since time.Time) ([]domain.AccuracyRecord, error) {
	return s.accuracyRepo.ListRecords(ctx, itemID, since)
}
