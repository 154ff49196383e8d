package forecast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

func seriesOf(itemID string, values []float64) *domain.MonthlyDemandSeries {
	s := &domain.MonthlyDemandSeries{ItemID: itemID}
	m := domain.Month{Year: 2023, Month: time.September}
	for _, v := range values {
		s.Points = append(s.Points, domain.DemandPoint{Month: m, Quantity: v})
		m = m.Next()
	}
	return s
}

func fixedClock() func() time.Time {
	at := time.Date(2025, time.August, 29, 12, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func testConfig() Config {
	return Config{
		HoldoutMonths:       3,
		MinTestMonths:       2,
		Horizon:             12,
		MovingAverageWindow: 3,
		SeasonalPeriod:      12,
		Now:                 fixedClock(),
	}
}

func TestTournamentInsufficientHistoryFallsBack(t *testing.T) {
	tr := NewTournament(testConfig())
	s := seriesOf("ITEM-A", []float64{40, 60})
	s.InsufficientHistory = true

	result := tr.Run(context.Background(), s)

	assert.True(t, result.Fallback)
	assert.Equal(t, domain.ModelNaiveMean, result.Model)
	assert.Equal(t, fallbackConfidence, result.Confidence)
	require.Len(t, result.Values, 12)
	for _, v := range result.Values {
		assert.InDelta(t, 50, v, 1e-9)
	}
}

func TestTournamentEmptySeriesForecastsZero(t *testing.T) {
	tr := NewTournament(testConfig())
	s := seriesOf("ITEM-A", nil)
	s.InsufficientHistory = true

	result := tr.Run(context.Background(), s)

	assert.True(t, result.Fallback)
	for _, v := range result.Values {
		assert.Zero(t, v)
	}
}

func TestTournamentWinnerHasLowestHoldoutRMSE(t *testing.T) {
	values := []float64{
		100, 110, 95, 120, 105, 98, 115, 108, 102, 117, 99, 111,
		104, 113, 97, 121, 106, 100, 116, 109, 103, 118, 101, 112,
	}
	tr := NewTournament(testConfig())

	result := tr.Run(context.Background(), seriesOf("ITEM-A", values))

	require.False(t, result.Fallback)
	require.NotEmpty(t, result.Candidates)

	var winner *domain.CandidateModelResult
	for i := range result.Candidates {
		if result.Candidates[i].Model == result.Model {
			winner = &result.Candidates[i]
		}
	}
	require.NotNil(t, winner)
	require.True(t, winner.FitOK)
	for _, c := range result.Candidates {
		if c.FitOK {
			assert.LessOrEqual(t, winner.RMSE, c.RMSE, "model %s beat the declared winner", c.Model)
		}
	}
}

func TestTournamentTieBreakPrefersSimplerModel(t *testing.T) {
	// A constant series ties every candidate at zero holdout error; the
	// earliest panel entry must hold the win.
	values := make([]float64, 24)
	for i := range values {
		values[i] = 100
	}
	tr := NewTournament(testConfig())

	result := tr.Run(context.Background(), seriesOf("ITEM-A", values))

	require.False(t, result.Fallback)
	assert.Equal(t, domain.ModelNaiveMean, result.Model)
	assert.Equal(t, 1.0, result.Confidence)
	for _, v := range result.Values {
		assert.InDelta(t, 100, v, 1e-9)
	}
}

func TestTournamentIsDeterministic(t *testing.T) {
	values := []float64{
		30, 45, 80, 120, 90, 50, 35, 40, 85, 125, 95, 55,
		32, 47, 82, 123, 92, 52, 36, 42, 88, 128, 97, 58,
	}
	tr := NewTournament(testConfig())

	first := tr.Run(context.Background(), seriesOf("ITEM-A", values))
	second := tr.Run(context.Background(), seriesOf("ITEM-A", values))

	assert.Equal(t, first.Model, second.Model)
	assert.Equal(t, first.Confidence, second.Confidence)
	assert.Equal(t, first.Values, second.Values)
	assert.Equal(t, first.Candidates, second.Candidates)
}

func TestTournamentForecastsAreNonNegative(t *testing.T) {
	// Steeply declining series: an unclamped trend model would go negative.
	values := []float64{120, 110, 100, 90, 80, 70, 60, 50, 40, 30, 20, 10}
	tr := NewTournament(testConfig())

	result := tr.Run(context.Background(), seriesOf("ITEM-A", values))

	require.Len(t, result.Values, 12)
	for _, v := range result.Values {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestTournamentRecordsFitFailures(t *testing.T) {
	// 10 observations: Holt-Winters (needs 24) and seasonal ARIMA (needs 16)
	// must appear as fit failures, not vanish from the candidate list.
	values := []float64{10, 12, 11, 13, 12, 14, 13, 15, 14, 16}
	tr := NewTournament(testConfig())

	result := tr.Run(context.Background(), seriesOf("ITEM-A", values))
	require.False(t, result.Fallback)

	byModel := make(map[domain.ModelTag]domain.CandidateModelResult)
	for _, c := range result.Candidates {
		byModel[c.Model] = c
	}
	require.Contains(t, byModel, domain.ModelHoltWinters)
	assert.False(t, byModel[domain.ModelHoltWinters].FitOK)
	assert.NotEmpty(t, byModel[domain.ModelHoltWinters].FitNote)
	require.Contains(t, byModel, domain.ModelNaiveMean)
	assert.True(t, byModel[domain.ModelNaiveMean].FitOK)
}

func TestTournamentHorizonAndTimestamp(t *testing.T) {
	cfg := testConfig()
	cfg.Horizon = 6
	tr := NewTournament(cfg)

	values := []float64{10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20, 21}
	result := tr.Run(context.Background(), seriesOf("ITEM-A", values))

	assert.Len(t, result.Values, 6)
	assert.Equal(t, fixedClock()(), result.GeneratedAt)
	assert.Equal(t, domain.ForecastActive, result.Status)
}

func TestConfidenceBounds(t *testing.T) {
	assert.InDelta(t, 0.5, confidence(5, 10), 1e-9)
	assert.InDelta(t, 0, confidence(15, 10), 1e-9) // worse than baseline clamps to 0
	assert.InDelta(t, 1, confidence(0, 0), 1e-9)
	assert.InDelta(t, 0, confidence(1, 0), 1e-9)
}

func TestFallbackHelper(t *testing.T) {
	tr := NewTournament(testConfig())
	result := tr.Fallback("ITEM-X", []float64{10, 20, 30})

	assert.True(t, result.Fallback)
	assert.Equal(t, "ITEM-X", result.ItemID)
	require.Len(t, result.Values, 12)
	assert.InDelta(t, 20, result.Values[0], 1e-9)
}
