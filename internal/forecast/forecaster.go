// internal/forecast/forecaster.go
package forecast

import (
	"errors"
	"fmt"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// Forecaster is the uniform capability every candidate model implements.
// Fit returns an error on any fit/convergence failure; a failed model is
// simply absent from that item's tournament, never treated as infinite error.
type Forecaster interface {
	Tag() domain.ModelTag
	Fit(train []float64) error
	Forecast(horizon int) []float64
}

// ErrInsufficientData is returned by Fit when the series is too short for
// the model's structure (e.g. fewer than two seasons for Holt-Winters).
var ErrInsufficientData = errors.New("insufficient data for model")

func insufficientErr(tag domain.ModelTag, need, got int) error {
	return fmt.Errorf("%s: need %d observations, got %d: %w", tag, need, got, ErrInsufficientData)
}

// candidate pairs a model tag with a factory. The tournament needs fresh
// instances twice per item: once for the backtest fit and once for the
// full-history refit of the winner.
type candidate struct {
	tag domain.ModelTag
	new func() Forecaster
}

// panelFor returns the fixed candidate panel in priority order: simpler
// models first, which doubles as the final tie-break so reruns on identical
// inputs select identical winners.
func panelFor(cfg Config) []candidate {
	return []candidate{
		{domain.ModelNaiveMean, func() Forecaster { return &NaiveMean{} }},
		{domain.ModelMovingAverage, func() Forecaster { return NewMovingAverage(cfg.MovingAverageWindow) }},
		{domain.ModelSES, func() Forecaster { return &ExponentialSmoothing{} }},
		{domain.ModelHoltWinters, func() Forecaster { return NewHoltWinters(cfg.SeasonalPeriod) }},
		{domain.ModelDecomposition, func() Forecaster { return NewDecomposition(cfg.SeasonalPeriod) }},
		{domain.ModelARIMA, func() Forecaster { return NewARIMA() }},
		{domain.ModelSeasonalARIMA, func() Forecaster { return NewSeasonalARIMA(cfg.SeasonalPeriod) }},
	}
}
