package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

func TestEvaluateForecastScoresElapsedMonthsOnly(t *testing.T) {
	prior := domain.ForecastResult{
		ItemID:      "ITEM-A",
		Model:       domain.ModelSES,
		Values:      []float64{10, 20, 30, 40},
		GeneratedAt: time.Date(2025, time.May, 15, 0, 0, 0, 0, time.UTC),
	}
	actuals := map[domain.Month]float64{
		{Year: 2025, Month: time.June}:   12,
		{Year: 2025, Month: time.July}:   18,
		{Year: 2025, Month: time.August}: 99, // asOf month, must not count
	}

	record, ok := EvaluateForecast(prior, actuals, time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)

	assert.Equal(t, "ITEM-A", record.ItemID)
	assert.Equal(t, domain.ModelSES, record.Model)
	assert.Equal(t, 2, record.MonthsEvaluated)
	// predicted (10, 20) vs actual (12, 18): errors -2, +2
	assert.InDelta(t, 2, record.RMSE, 1e-9)
	assert.InDelta(t, 0, record.Bias, 1e-9)
}

func TestEvaluateForecastNoElapsedMonths(t *testing.T) {
	prior := domain.ForecastResult{
		ItemID:      "ITEM-A",
		Values:      []float64{10, 20},
		GeneratedAt: time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC),
	}

	_, ok := EvaluateForecast(prior, map[domain.Month]float64{}, time.Date(2025, time.August, 29, 0, 0, 0, 0, time.UTC))
	assert.False(t, ok)
}

func TestEvaluateForecastSkipsMonthsWithoutActuals(t *testing.T) {
	prior := domain.ForecastResult{
		ItemID:      "ITEM-A",
		Values:      []float64{10, 20, 30},
		GeneratedAt: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC),
	}
	// only June realized; May missing from the series entirely
	actuals := map[domain.Month]float64{
		{Year: 2025, Month: time.June}: 21,
	}

	record, ok := EvaluateForecast(prior, actuals, time.Date(2025, time.August, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 1, record.MonthsEvaluated)
	assert.InDelta(t, 1, record.RMSE, 1e-9)
}

func TestActualsByMonth(t *testing.T) {
	s := seriesOf("ITEM-A", []float64{5, 7})
	actuals := ActualsByMonth(s)
	assert.Len(t, actuals, 2)
	assert.Equal(t, 5.0, actuals[domain.Month{Year: 2023, Month: time.September}])
}
