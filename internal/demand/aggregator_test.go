package demand

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAggregateBucketsAndZeroFills(t *testing.T) {
	lines := []SalesLine{
		{Date: day(2025, time.January, 5), ItemID: "ITEM-A", Quantity: 10},
		{Date: day(2025, time.January, 20), ItemID: "ITEM-A", Quantity: 15},
		{Date: day(2025, time.March, 2), ItemID: "ITEM-A", Quantity: 30},
		// current partial month must be excluded
		{Date: day(2025, time.May, 1), ItemID: "ITEM-A", Quantity: 999},
	}

	agg := NewAggregator(24, 2)
	series := agg.Aggregate(lines, day(2025, time.May, 15))

	s, ok := series["ITEM-A"]
	require.True(t, ok)

	// Jan through Apr: Feb and Apr zero-filled, May excluded.
	require.Len(t, s.Points, 4)
	assert.Equal(t, domain.Month{Year: 2025, Month: time.January}, s.Points[0].Month)
	assert.Equal(t, []float64{25, 0, 30, 0}, s.Quantities())
	assert.False(t, s.InsufficientHistory)
}

func TestAggregateExcludesPassThrough(t *testing.T) {
	lines := []SalesLine{
		{Date: day(2025, time.February, 1), ItemID: "ITEM-A", Quantity: 10},
		{Date: day(2025, time.February, 2), ItemID: "ITEM-A", Quantity: 500, PassThrough: true},
		{Date: day(2025, time.March, 1), ItemID: "ITEM-A", Quantity: 20},
		// an item that only ever sold pass-through still appears
		{Date: day(2025, time.March, 3), ItemID: "ITEM-B", Quantity: 40, PassThrough: true},
	}

	agg := NewAggregator(24, 2)
	series := agg.Aggregate(lines, day(2025, time.April, 10))

	a := series["ITEM-A"]
	require.NotNil(t, a)
	assert.Equal(t, []float64{10, 20}, a.Quantities())
	assert.Equal(t, 1, a.ExcludedPassThrough)

	b := series["ITEM-B"]
	require.NotNil(t, b)
	assert.Empty(t, b.Points)
	assert.Equal(t, 1, b.ExcludedPassThrough)
	assert.True(t, b.InsufficientHistory)
}

func TestAggregateFlagsInsufficientHistory(t *testing.T) {
	lines := []SalesLine{
		{Date: day(2025, time.June, 1), ItemID: "ITEM-A", Quantity: 5},
		{Date: day(2025, time.July, 1), ItemID: "ITEM-A", Quantity: 5},
	}

	agg := NewAggregator(24, 6)
	series := agg.Aggregate(lines, day(2025, time.August, 29))

	s := series["ITEM-A"]
	require.NotNil(t, s)
	assert.Len(t, s.Points, 2)
	assert.True(t, s.InsufficientHistory)
}

func TestAggregateIgnoresLinesOutsideWindow(t *testing.T) {
	lines := []SalesLine{
		{Date: day(2018, time.January, 1), ItemID: "ITEM-A", Quantity: 100},
		{Date: day(2025, time.June, 1), ItemID: "ITEM-A", Quantity: 7},
	}

	agg := NewAggregator(12, 2)
	series := agg.Aggregate(lines, day(2025, time.August, 1))

	s := series["ITEM-A"]
	require.NotNil(t, s)
	// window is Aug 2024..Jul 2025; the 2018 line never appears
	assert.Equal(t, domain.Month{Year: 2025, Month: time.June}, s.Points[0].Month)
	assert.Equal(t, []float64{7, 0}, s.Quantities())
}

func TestSortedItemIDs(t *testing.T) {
	series := map[string]*domain.MonthlyDemandSeries{
		"B": {}, "A": {}, "C": {},
	}
	assert.Equal(t, []string{"A", "B", "C"}, SortedItemIDs(series))
}
