// internal/forecast/moving_average.go
package forecast

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

const defaultMovingAverageWindow = 3

// MovingAverage forecasts the most recent simple moving average of demand.
type MovingAverage struct {
	window int
	level  float64
}

func NewMovingAverage(window int) *MovingAverage {
	if window < 2 {
		window = defaultMovingAverageWindow
	}
	return &MovingAverage{window: window}
}

func (m *MovingAverage) Tag() domain.ModelTag { return domain.ModelMovingAverage }

func (m *MovingAverage) Fit(train []float64) error {
	if len(train) < m.window {
		return insufficientErr(m.Tag(), m.window, len(train))
	}

	sma := trend.NewSmaWithPeriod[float64](m.window)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(train)))
	if len(values) == 0 {
		return insufficientErr(m.Tag(), m.window, len(train))
	}

	m.level = values[len(values)-1]
	return nil
}

func (m *MovingAverage) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		out[i] = m.level
	}
	return out
}
