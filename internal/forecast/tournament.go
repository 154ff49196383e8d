// internal/forecast/tournament.go
package forecast

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// fallbackConfidence is assigned whenever an item skips or loses the whole
// tournament and receives a naive constant forecast.
const fallbackConfidence = 0.05

// Config holds the tournament tunables.
type Config struct {
	HoldoutMonths       int // test-set length for the backtest
	MinTestMonths       int // holdout never shrinks below this
	Horizon             int // forward months the winner forecasts
	MovingAverageWindow int
	SeasonalPeriod      int
	FitTimeout          time.Duration // per-model budget; over budget = fit failure
	Now                 func() time.Time
}

// Tournament backtests the fixed candidate panel per item and selects a
// winner. It is stateless across items and safe for concurrent use.
type Tournament struct {
	cfg   Config
	panel []candidate
}

func NewTournament(cfg Config) *Tournament {
	if cfg.MinTestMonths < 2 {
		cfg.MinTestMonths = 2
	}
	if cfg.HoldoutMonths < cfg.MinTestMonths {
		cfg.HoldoutMonths = cfg.MinTestMonths
	}
	if cfg.Horizon < 1 {
		cfg.Horizon = 12
	}
	if cfg.FitTimeout <= 0 {
		cfg.FitTimeout = 5 * time.Second
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Tournament{cfg: cfg, panel: panelFor(cfg)}
}

// Run backtests every candidate for one item and returns the winning
// forecast refit on the item's full history. Items flagged with insufficient
// history skip the backtest entirely and receive a naive constant forecast.
func (t *Tournament) Run(ctx context.Context, series *domain.MonthlyDemandSeries) domain.ForecastResult {
	values := series.Quantities()

	if series.InsufficientHistory || len(values) < t.cfg.MinTestMonths+2 {
		return t.naiveFallback(series.ItemID, values, nil)
	}

	// Shrink the holdout gracefully on short series: the training side keeps
	// at least minTestMonths+2 observations.
	testLen := t.cfg.HoldoutMonths
	for testLen > t.cfg.MinTestMonths && len(values)-testLen < t.cfg.MinTestMonths+2 {
		testLen--
	}
	train := values[:len(values)-testLen]
	test := values[len(values)-testLen:]

	candidates := make([]domain.CandidateModelResult, 0, len(t.panel))
	bestIdx := -1
	naiveRMSE := 0.0

	for _, c := range t.panel {
		model := c.new()
		if err := t.fitWithTimeout(ctx, model, train); err != nil {
			candidates = append(candidates, domain.CandidateModelResult{
				Model:   c.tag,
				FitOK:   false,
				FitNote: err.Error(),
			})
			continue
		}

		predicted := model.Forecast(len(test))
		result := domain.CandidateModelResult{
			Model: c.tag,
			RMSE:  RMSE(test, predicted),
			MAPE:  MAPE(test, predicted),
			Bias:  Bias(test, predicted),
			FitOK: true,
		}
		candidates = append(candidates, result)

		if c.tag == domain.ModelNaiveMean {
			naiveRMSE = result.RMSE
		}

		// Winner: lowest RMSE, then lowest MAPE, then earliest panel position
		// (simpler model). Strict less-than on both metrics keeps the
		// ordering deterministic across reruns.
		if bestIdx == -1 {
			bestIdx = len(candidates) - 1
			continue
		}
		best := candidates[bestIdx]
		if result.RMSE < best.RMSE || (result.RMSE == best.RMSE && result.MAPE < best.MAPE) {
			bestIdx = len(candidates) - 1
		}
	}

	if bestIdx == -1 {
		log.Warn().Str("item", series.ItemID).Msg("all candidate models failed, using naive fallback")
		return t.naiveFallback(series.ItemID, values, candidates)
	}

	winner := candidates[bestIdx]

	// Refit the winner on the full history so the forward forecast does not
	// discard the holdout months.
	final := t.modelFor(winner.Model).new()
	if err := t.fitWithTimeout(ctx, final, values); err != nil {
		// A model that fit on the training slice can still miss its budget on
		// the refit; treat the item like a tournament washout.
		log.Warn().Str("item", series.ItemID).Str("model", string(winner.Model)).
			Err(err).Msg("winner refit failed, using naive fallback")
		return t.naiveFallback(series.ItemID, values, candidates)
	}

	return domain.ForecastResult{
		ItemID:      series.ItemID,
		Model:       winner.Model,
		Confidence:  confidence(winner.RMSE, naiveRMSE),
		Values:      clampNonNegative(final.Forecast(t.cfg.Horizon)),
		Candidates:  candidates,
		GeneratedAt: t.cfg.Now(),
		Status:      domain.ForecastActive,
	}
}

// fitWithTimeout enforces the per-model fit budget. An over-budget fit is a
// fit failure; the goroutine is abandoned, not interrupted, which is
// acceptable because every panel model is CPU-bounded and terminates.
func (t *Tournament) fitWithTimeout(ctx context.Context, model Forecaster, train []float64) error {
	done := make(chan error, 1)
	go func() {
		done <- model.Fit(train)
	}()

	timer := time.NewTimer(t.cfg.FitTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("%s: fit exceeded %s budget", model.Tag(), t.cfg.FitTimeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Tournament) modelFor(tag domain.ModelTag) candidate {
	for _, c := range t.panel {
		if c.tag == tag {
			return c
		}
	}
	// Unreachable: tags come from the panel itself.
	return t.panel[0]
}

// Fallback builds the naive substitute forecast directly. The batch runner
// uses it when an item's processing fails outright, so the run still
// terminates with a complete result set.
func (t *Tournament) Fallback(itemID string, values []float64) domain.ForecastResult {
	return t.naiveFallback(itemID, values, nil)
}

// naiveFallback emits a constant mean forecast with floor confidence. Used
// for short-history items and for items where the whole panel failed.
func (t *Tournament) naiveFallback(itemID string, values []float64, candidates []domain.CandidateModelResult) domain.ForecastResult {
	level := 0.0
	if len(values) > 0 {
		level = meanOf(values)
	}
	if level < 0 {
		level = 0
	}
	forecast := make([]float64, t.cfg.Horizon)
	for i := range forecast {
		forecast[i] = level
	}
	return domain.ForecastResult{
		ItemID:      itemID,
		Model:       domain.ModelNaiveMean,
		Confidence:  fallbackConfidence,
		Values:      forecast,
		Candidates:  candidates,
		Fallback:    true,
		GeneratedAt: t.cfg.Now(),
		Status:      domain.ForecastActive,
	}
}

// confidence normalizes the winner's holdout RMSE against the naive-mean
// baseline, bounded to [0,1]. Beating the baseline by more earns more.
func confidence(winnerRMSE, naiveRMSE float64) float64 {
	if naiveRMSE == 0 {
		if winnerRMSE == 0 {
			return 1
		}
		return 0
	}
	c := 1 - winnerRMSE/naiveRMSE
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func clampNonNegative(values []float64) []float64 {
	for i, v := range values {
		if v < 0 {
			values[i] = 0
		}
	}
	return values
}
