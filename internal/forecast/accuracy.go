// internal/forecast/accuracy.go
package forecast

import (
	"time"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// EvaluateForecast scores a prior forecast against the demand that has since
// realized. The first forecast value covers the month after the forecast was
// generated; only fully elapsed months (strictly before asOf's month) are
// evaluated. Returns false when no forecast month has elapsed yet.
//
// This is a one-way, after-the-fact measurement: it never feeds back into or
// blocks the current run's forecast generation.
func EvaluateForecast(prior domain.ForecastResult, actuals map[domain.Month]float64, asOf time.Time) (domain.AccuracyRecord, bool) {
	cutoff := domain.MonthOf(asOf)

	var actual, predicted []float64
	month := domain.MonthOf(prior.GeneratedAt).Next()
	for _, value := range prior.Values {
		if !month.Before(cutoff) {
			break
		}
		if realized, ok := actuals[month]; ok {
			actual = append(actual, realized)
			predicted = append(predicted, value)
		}
		month = month.Next()
	}

	if len(actual) == 0 {
		return domain.AccuracyRecord{}, false
	}

	return domain.AccuracyRecord{
		ItemID:          prior.ItemID,
		Model:           prior.Model,
		MonthsEvaluated: len(actual),
		RMSE:            RMSE(actual, predicted),
		MAPE:            MAPE(actual, predicted),
		Bias:            Bias(actual, predicted),
		ForecastedAt:    prior.GeneratedAt,
		EvaluatedAt:     asOf,
	}, true
}

// ActualsByMonth indexes a demand series for accuracy evaluation.
func ActualsByMonth(series *domain.MonthlyDemandSeries) map[domain.Month]float64 {
	out := make(map[domain.Month]float64, len(series.Points))
	for _, p := range series.Points {
		out[p.Month] = p.Quantity
	}
	return out
}
