// internal/forecast/smoothing.go
package forecast

import (
	"math"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// ExponentialSmoothing is single (simple) exponential smoothing. The
// smoothing constant is chosen by a fixed grid search over one-step-ahead
// squared error, which keeps the fit fully deterministic.
type ExponentialSmoothing struct {
	alpha float64
	level float64
}

func (m *ExponentialSmoothing) Tag() domain.ModelTag { return domain.ModelSES }

func (m *ExponentialSmoothing) Fit(train []float64) error {
	if len(train) < 3 {
		return insufficientErr(m.Tag(), 3, len(train))
	}

	bestSSE := math.Inf(1)
	for a := 0.1; a <= 0.91; a += 0.1 {
		level := train[0]
		sse := 0.0
		for _, v := range train[1:] {
			err := v - level
			sse += err * err
			level += a * err
		}
		if sse < bestSSE {
			bestSSE = sse
			m.alpha = a
			m.level = level
		}
	}
	return nil
}

func (m *ExponentialSmoothing) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		out[i] = m.level
	}
	return out
}

// HoltWinters is additive triple exponential smoothing: level, linear trend
// and a repeating seasonal component. Needs two full seasons to initialize
// the seasonal indices; shorter series are a fit failure and fall out of the
// tournament for that item.
type HoltWinters struct {
	period    int
	level     float64
	trend     float64
	seasonals []float64
	steps     int // observations consumed, anchors the seasonal phase
}

// Fixed smoothing constants. Grid-searching three constants explodes the fit
// cost for marginal backtest gain on monthly retail series.
const (
	hwAlpha = 0.3
	hwBeta  = 0.05
	hwGamma = 0.15
)

func NewHoltWinters(period int) *HoltWinters {
	if period < 2 {
		period = 12
	}
	return &HoltWinters{period: period}
}

func (m *HoltWinters) Tag() domain.ModelTag { return domain.ModelHoltWinters }

func (m *HoltWinters) Fit(train []float64) error {
	p := m.period
	if len(train) < 2*p {
		return insufficientErr(m.Tag(), 2*p, len(train))
	}

	// Initial level and trend from the first two seasons.
	firstMean := meanOf(train[:p])
	secondMean := meanOf(train[p : 2*p])
	m.level = firstMean
	m.trend = (secondMean - firstMean) / float64(p)

	// Initial seasonal indices: average deviation from the season mean across
	// all complete seasons.
	seasons := len(train) / p
	m.seasonals = make([]float64, p)
	for i := 0; i < p; i++ {
		sum := 0.0
		for s := 0; s < seasons; s++ {
			seasonMean := meanOf(train[s*p : (s+1)*p])
			sum += train[s*p+i] - seasonMean
		}
		m.seasonals[i] = sum / float64(seasons)
	}

	for i, v := range train {
		idx := i % p
		prevLevel := m.level
		m.level = hwAlpha*(v-m.seasonals[idx]) + (1-hwAlpha)*(m.level+m.trend)
		m.trend = hwBeta*(m.level-prevLevel) + (1-hwBeta)*m.trend
		m.seasonals[idx] = hwGamma*(v-m.level) + (1-hwGamma)*m.seasonals[idx]
	}
	m.steps = len(train)
	return nil
}

func (m *HoltWinters) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for h := 1; h <= horizon; h++ {
		idx := (m.steps + h - 1) % m.period
		out[h-1] = m.level + float64(h)*m.trend + m.seasonals[idx]
	}
	return out
}

func meanOf(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
