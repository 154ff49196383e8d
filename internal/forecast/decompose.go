// internal/forecast/decompose.go
package forecast

import (
	"github.com/andresuchdata/replenish-go/internal/domain"
)

// Decomposition fits an additive trend + seasonality model: an ordinary
// least-squares line through the series plus per-position average residuals.
// Positions with no complete seasonal observation carry a zero index, so the
// model degrades to a plain trend line on sub-seasonal series.
type Decomposition struct {
	period    int
	intercept float64
	slope     float64
	seasonals []float64
	steps     int
}

func NewDecomposition(period int) *Decomposition {
	if period < 2 {
		period = 12
	}
	return &Decomposition{period: period}
}

func (m *Decomposition) Tag() domain.ModelTag { return domain.ModelDecomposition }

func (m *Decomposition) Fit(train []float64) error {
	n := len(train)
	if n < 4 {
		return insufficientErr(m.Tag(), 4, n)
	}

	// OLS line y = intercept + slope*t over t = 0..n-1.
	var sumT, sumY, sumTY, sumTT float64
	for t, y := range train {
		ft := float64(t)
		sumT += ft
		sumY += y
		sumTY += ft * y
		sumTT += ft * ft
	}
	fn := float64(n)
	denom := fn*sumTT - sumT*sumT
	if denom == 0 {
		return insufficientErr(m.Tag(), 4, n)
	}
	m.slope = (fn*sumTY - sumT*sumY) / denom
	m.intercept = (sumY - m.slope*sumT) / fn

	// Seasonal indices: mean detrended residual per seasonal position.
	sums := make([]float64, m.period)
	counts := make([]int, m.period)
	for t, y := range train {
		idx := t % m.period
		sums[idx] += y - (m.intercept + m.slope*float64(t))
		counts[idx]++
	}
	m.seasonals = make([]float64, m.period)
	for i := range m.seasonals {
		if counts[i] > 0 {
			m.seasonals[i] = sums[i] / float64(counts[i])
		}
	}

	m.steps = n
	return nil
}

func (m *Decomposition) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for h := 0; h < horizon; h++ {
		t := m.steps + h
		out[h] = m.intercept + m.slope*float64(t) + m.seasonals[t%m.period]
	}
	return out
}
