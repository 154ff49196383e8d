// internal/pipeline/planner.go
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/replenish-go/internal/config"
	"github.com/andresuchdata/replenish-go/internal/demand"
	"github.com/andresuchdata/replenish-go/internal/domain"
	"github.com/andresuchdata/replenish-go/internal/forecast"
	"github.com/andresuchdata/replenish-go/internal/ingest"
	"github.com/andresuchdata/replenish-go/internal/leadtime"
	"github.com/andresuchdata/replenish-go/internal/replenish"
)

// Planner orchestrates one planning batch: demand aggregation, the forecast
// tournament, reorder/EOQ math and the capacity allocation pass. Per-item
// forecasting is embarrassingly parallel; only the allocation pass touches
// shared state, and it runs sequentially in a fixed order.
type Planner struct {
	cfg        config.PlannerConfig
	tournament *forecast.Tournament
	reorder    *replenish.ReorderCalculator
	eoq        *replenish.EOQCalculator
	now        func() time.Time
}

// NewPlanner validates the configuration up front; configuration-level
// errors are the only class that fails a batch before per-item processing.
func NewPlanner(cfg config.PlannerConfig) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	p := &Planner{
		cfg:     cfg,
		reorder: replenish.NewReorderCalculator(cfg.ServiceLevel, cfg.DefaultLeadTimeDays, cfg.DemandRateMonths),
		eoq:     replenish.NewEOQCalculator(cfg.HoldingCostRate, decimal.NewFromFloat(cfg.OrderCost)),
		now:     time.Now,
	}
	p.tournament = forecast.NewTournament(forecast.Config{
		HoldoutMonths:       cfg.HoldoutMonths,
		MinTestMonths:       cfg.MinTestMonths,
		Horizon:             cfg.ForecastHorizon,
		MovingAverageWindow: cfg.MovingAverageWindow,
		SeasonalPeriod:      cfg.SeasonalPeriod,
		FitTimeout:          time.Duration(cfg.FitTimeoutSeconds) * time.Second,
		Now:                 func() time.Time { return p.now() }, // tracks SetNow overrides
	})
	return p, nil
}

// SetNow overrides the clock, for deterministic tests.
func (p *Planner) SetNow(now func() time.Time) { p.now = now }

// Run executes the full batch. priorForecasts holds the previous run's
// Active forecasts keyed by item and feeds the accuracy tracker; pass nil on
// a first run. The returned RunResult always has one ItemResult per input
// item, with flags marking every degraded computation.
func (p *Planner) Run(ctx context.Context, ds *ingest.Dataset, priorForecasts map[string]domain.ForecastResult) (*RunResult, error) {
	asOf := p.now()
	startedAt := asOf

	// 1. Clean numeric inputs.
	aggregator := demand.NewAggregator(p.cfg.DemandWindowMonths, p.cfg.MinHistoryMonths)
	series := aggregator.Aggregate(ds.SalesLines, asOf)

	// Inventory-only items (no sales in the window) still get a row: an
	// empty series flagged insufficient, which flows to the naive fallback.
	for itemID := range ds.Inventory {
		if _, ok := series[itemID]; !ok {
			series[itemID] = &domain.MonthlyDemandSeries{
				ItemID:              itemID,
				InsufficientHistory: true,
			}
		}
	}

	provider := leadtime.NewProvider(ds.Receipts)
	itemIDs := demand.SortedItemIDs(series)

	// 2. Per-item forecast + reorder + EOQ, concurrently. Results land in a
	// pre-sized slice so workers share nothing.
	items := make([]ItemResult, len(itemIDs))

	workers := p.cfg.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, itemID := range itemIDs {
		i, itemID := i, itemID
		g.Go(func() error {
			items[i] = p.processItem(gctx, itemID, series[itemID], ds, provider)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("planning batch aborted: %w", err)
	}

	// 3. Accuracy tracking against the prior Active forecasts. One-way
	// side write; failures here never touch the current run's output.
	var accuracy []domain.AccuracyRecord
	for _, itemID := range itemIDs {
		prior, ok := priorForecasts[itemID]
		if !ok {
			continue
		}
		if record, ok := forecast.EvaluateForecast(prior, forecast.ActualsByMonth(series[itemID]), asOf); ok {
			accuracy = append(accuracy, record)
		}
	}

	// 4. Capacity allocation in deterministic order: highest urgency first,
	// ties by item code. Capacity is the one shared resource of the run;
	// every claim is visible to the items that follow.
	order := make([]int, len(items))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		ia, ib := items[order[a]], items[order[b]]
		ra, rb := ia.Recommendation.Urgency.Rank(), ib.Recommendation.Urgency.Rank()
		if ra != rb {
			return ra < rb
		}
		return ia.ItemID < ib.ItemID
	})

	allocator := replenish.NewAllocator(ds.Warehouses, nil)
	for _, idx := range order {
		item := &items[idx]
		snapshot := ds.Inventory[item.ItemID]
		alloc := allocator.Allocate(snapshot.PreferredWarehouseID, item.Recommendation.RawEOQ, snapshot.UnitFootprint)

		item.Recommendation.ConstrainedQty = alloc.Quantity
		item.Recommendation.Splits = alloc.Splits
		item.Recommendation.CapacityConstrained = alloc.CapacityConstrained
		item.Recommendation.ShortfallQty = alloc.ShortfallQty
		item.Recommendation.EstimatedLineCost = snapshot.UnitCost.Mul(decimal.NewFromInt(alloc.Quantity))
	}

	// 5. Run bookkeeping.
	fallbacks := 0
	for _, item := range items {
		if item.Forecast.Fallback {
			fallbacks++
		}
	}
	completedAt := p.now()
	run := domain.PlanningRun{
		Status:         domain.RunCompleted,
		TotalItems:     len(items),
		ProcessedItems: len(items),
		FallbackItems:  fallbacks,
		StartedAt:      startedAt,
		CompletedAt:    &completedAt,
	}

	log.Info().
		Int("items", len(items)).
		Int("fallbacks", fallbacks).
		Int("accuracy_records", len(accuracy)).
		Dur("elapsed", completedAt.Sub(startedAt)).
		Msg("planning batch complete")

	return &RunResult{
		Run:       run,
		Items:     items,
		LeadTimes: provider.All(),
		Accuracy:  accuracy,
		AsOf:      asOf,
	}, nil
}

// processItem runs the per-item stages. Any panic or unexpected failure is
// contained here: the item gets a naive fallback forecast and a failure
// note, and the batch carries on.
func (p *Planner) processItem(ctx context.Context, itemID string, s *domain.MonthlyDemandSeries, ds *ingest.Dataset, provider *leadtime.Provider) (result ItemResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Str("item", itemID).Interface("panic", r).Msg("item processing panicked, substituting naive fallback")
			result = p.fallbackResult(itemID, s, ds)
			result.FailureNote = fmt.Sprintf("panic: %v", r)
		}
	}()

	result = ItemResult{ItemID: itemID, Series: s}
	snapshot := ds.Inventory[itemID]

	// Forecast tournament.
	result.Forecast = p.tournament.Run(ctx, s)

	// Reorder point and safety stock.
	var stat *domain.LeadTimeStat
	if found, ok := provider.Lookup(snapshot.PrimaryVendorID, itemID); ok {
		stat = &found
	}
	result.Plan = p.reorder.Calculate(result.Forecast, s, stat)

	// Economic order quantity against vendor constraints.
	vendor := ds.Vendors[snapshot.PrimaryVendorID]
	eoq := p.eoq.Calculate(result.Forecast, vendor, snapshot.UnitCost)

	result.Recommendation = domain.OrderRecommendation{
		ItemID:         itemID,
		VendorID:       snapshot.PrimaryVendorID,
		RawEOQ:         eoq.Quantity,
		CostDegenerate: eoq.Degenerate,
		Urgency:        replenish.ClassifyUrgency(snapshot, result.Forecast),
		OrderCost:      decimal.NewFromFloat(p.cfg.OrderCost),
	}
	return result
}

func (p *Planner) fallbackResult(itemID string, s *domain.MonthlyDemandSeries, ds *ingest.Dataset) ItemResult {
	snapshot := ds.Inventory[itemID]
	fb := p.tournament.Fallback(itemID, s.Quantities())
	return ItemResult{
		ItemID:   itemID,
		Series:   s,
		Forecast: fb,
		Plan:     p.reorder.Calculate(fb, s, nil),
		Recommendation: domain.OrderRecommendation{
			ItemID:   itemID,
			VendorID: snapshot.PrimaryVendorID,
			Urgency:  replenish.ClassifyUrgency(snapshot, fb),
		},
	}
}
