// internal/demand/aggregator.go
package demand

import (
	"sort"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// SalesLine is one normalized sales transaction from the ingestion boundary.
// Pass-through lines represent back-to-back fulfillment against a matched
// purchase order and are not organic demand.
type SalesLine struct {
	Date        time.Time
	ItemID      string
	Quantity    float64
	PassThrough bool
}

// Aggregator turns raw sales lines into one contiguous monthly demand series
// per item. Output series are rebuilt in full on every run.
type Aggregator struct {
	windowMonths     int
	minHistoryMonths int
}

// NewAggregator creates an aggregator with the configured trailing window.
// Window shorter than the minimum history makes every item insufficient, so
// the window is floored at the minimum.
func NewAggregator(windowMonths, minHistoryMonths int) *Aggregator {
	if windowMonths < minHistoryMonths {
		windowMonths = minHistoryMonths
	}
	return &Aggregator{
		windowMonths:     windowMonths,
		minHistoryMonths: minHistoryMonths,
	}
}

// Aggregate buckets sales lines into monthly series covering the trailing
// window that ends at the month before asOf. Months with no sales are
// zero-filled so downstream time-series models see a contiguous index.
func (a *Aggregator) Aggregate(lines []SalesLine, asOf time.Time) map[string]*domain.MonthlyDemandSeries {
	end := domain.MonthOf(asOf) // exclusive: the current partial month is never included
	start := domain.MonthOf(end.Time().AddDate(0, -a.windowMonths, 0))

	type bucketKey struct {
		item  string
		month domain.Month
	}

	totals := make(map[bucketKey]float64)
	excluded := make(map[string]int)
	firstSeen := make(map[string]domain.Month)

	for _, line := range lines {
		m := domain.MonthOf(line.Date)
		if m.Before(start) || !m.Before(end) {
			continue
		}
		if line.PassThrough {
			excluded[line.ItemID]++
			continue
		}
		totals[bucketKey{line.ItemID, m}] += line.Quantity
		if f, ok := firstSeen[line.ItemID]; !ok || m.Before(f) {
			firstSeen[line.ItemID] = m
		}
	}

	// Items that only ever sold pass-through still get an (empty) series so
	// the run produces one row per input item.
	for item := range excluded {
		if _, ok := firstSeen[item]; !ok {
			firstSeen[item] = end
		}
	}

	series := make(map[string]*domain.MonthlyDemandSeries, len(firstSeen))
	for item, first := range firstSeen {
		s := &domain.MonthlyDemandSeries{
			ItemID:              item,
			ExcludedPassThrough: excluded[item],
		}
		for m := first; m.Before(end); m = m.Next() {
			s.Points = append(s.Points, domain.DemandPoint{
				Month:    m,
				Quantity: totals[bucketKey{item, m}],
			})
		}
		s.InsufficientHistory = len(s.Points) < a.minHistoryMonths
		series[item] = s
	}

	sufficient := 0
	for _, s := range series {
		if !s.InsufficientHistory {
			sufficient++
		}
	}
	log.Info().
		Int("items", len(series)).
		Int("sufficient_history", sufficient).
		Str("window_start", start.String()).
		Str("window_end", end.String()).
		Msg("demand aggregation complete")

	return series
}

// SortedItemIDs returns series keys in lexical order, the fixed iteration
// order used everywhere determinism matters.
func SortedItemIDs(series map[string]*domain.MonthlyDemandSeries) []string {
	ids := make([]string, 0, len(series))
	for id := range series {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
