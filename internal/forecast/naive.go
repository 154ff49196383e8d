// internal/forecast/naive.go
package forecast

import "github.com/andresuchdata/replenish-go/internal/domain"

// NaiveMean forecasts the flat mean of the training window. It is the
// simplest panel member and also the RMSE baseline the confidence score is
// normalized against.
type NaiveMean struct {
	level float64
}

func (m *NaiveMean) Tag() domain.ModelTag { return domain.ModelNaiveMean }

func (m *NaiveMean) Fit(train []float64) error {
	if len(train) < 1 {
		return insufficientErr(m.Tag(), 1, len(train))
	}
	sum := 0.0
	for _, v := range train {
		sum += v
	}
	m.level = sum / float64(len(train))
	return nil
}

func (m *NaiveMean) Forecast(horizon int) []float64 {
	out := make([]float64, horizon)
	for i := range out {
		out[i] = m.level
	}
	return out
}
