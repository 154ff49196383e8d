// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Month is a calendar month bucket (always the first day, UTC midnight).
type Month struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Time returns the first instant of the month in UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	t := m.Time().AddDate(0, 1, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

// Before reports whether m is strictly earlier than other.
func (m Month) Before(other Month) bool {
	return m.Year < other.Year || (m.Year == other.Year && m.Month < other.Month)
}

func (m Month) String() string {
	return m.Time().Format("2006-01")
}

// MonthOf buckets a timestamp into its calendar month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// DemandPoint is one month of organic demand for an item.
type DemandPoint struct {
	Month    Month   `json:"month"`
	Quantity float64 `json:"quantity"`
}

// MonthlyDemandSeries is the contiguous monthly demand history for a single
// item. Months with no sales carry an explicit zero. The series is rebuilt
// from scratch every run and is immutable once handed downstream.
type MonthlyDemandSeries struct {
	ItemID              string        `json:"item_id"`
	Points              []DemandPoint `json:"points"`
	ExcludedPassThrough int           `json:"excluded_pass_through"` // lines dropped as back-to-back fulfillment
	InsufficientHistory bool          `json:"insufficient_history"`
}

// Quantities returns the demand values in month order.
func (s *MonthlyDemandSeries) Quantities() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Quantity
	}
	return out
}

// ModelTag identifies a candidate forecasting model.
type ModelTag string

const (
	ModelNaiveMean     ModelTag = "naive_mean"
	ModelMovingAverage ModelTag = "moving_average"
	ModelSES           ModelTag = "exponential_smoothing"
	ModelHoltWinters   ModelTag = "seasonal_exponential_smoothing"
	ModelDecomposition ModelTag = "decomposition"
	ModelARIMA         ModelTag = "arima"
	ModelSeasonalARIMA ModelTag = "seasonal_arima"
)

// CandidateModelResult captures one model's backtest outcome for an item.
type CandidateModelResult struct {
	Model   ModelTag `json:"model"`
	RMSE    float64  `json:"rmse"`
	MAPE    float64  `json:"mape"`
	Bias    float64  `json:"bias"`
	FitOK   bool     `json:"fit_ok"`
	FitNote string   `json:"fit_note,omitempty"` // failure reason when FitOK is false
}

// ForecastStatus is the lifecycle state of a stored forecast.
type ForecastStatus string

const (
	ForecastActive     ForecastStatus = "active"
	ForecastSuperseded ForecastStatus = "superseded"
)

// ForecastResult is the winning 12-month forecast for an item. Exactly one
// Active forecast exists per item; a new run supersedes the prior one only
// after the replacement is fully computed.
type ForecastResult struct {
	ItemID      string                 `json:"item_id" db:"item_id"`
	Model       ModelTag               `json:"model" db:"model"`
	Confidence  float64                `json:"confidence" db:"confidence"`
	Values      []float64              `json:"values"`
	Candidates  []CandidateModelResult `json:"candidates,omitempty"`
	Fallback    bool                   `json:"fallback" db:"fallback"` // naive substitution (short history or all models failed)
	GeneratedAt time.Time              `json:"generated_at" db:"generated_at"`
	Status      ForecastStatus         `json:"status" db:"status"`
}

// LeadTimeStat summarizes observed lead times for a (vendor, item) pair.
type LeadTimeStat struct {
	VendorID    string  `json:"vendor_id" db:"vendor_id"`
	ItemID      string  `json:"item_id" db:"item_id"`
	MeanDays    float64 `json:"mean_days" db:"mean_days"`
	MedianDays  float64 `json:"median_days" db:"median_days"`
	StdDevDays  float64 `json:"stddev_days" db:"stddev_days"`
	SampleCount int     `json:"sample_count" db:"sample_count"`
}

// ReorderPlan carries the reorder point and safety stock for an item together
// with the assumptions that produced them, so the numbers are auditable.
type ReorderPlan struct {
	ItemID            string  `json:"item_id" db:"item_id"`
	ReorderPoint      float64 `json:"reorder_point" db:"reorder_point"`
	SafetyStock       float64 `json:"safety_stock" db:"safety_stock"`
	ServiceLevel      float64 `json:"service_level" db:"service_level"`
	DailyDemandMean   float64 `json:"daily_demand_mean" db:"daily_demand_mean"`
	DailyDemandStdDev float64 `json:"daily_demand_stddev" db:"daily_demand_stddev"`
	LeadTimeMeanDays  float64 `json:"lead_time_mean_days" db:"lead_time_mean_days"`
	LeadTimeStdDev    float64 `json:"lead_time_stddev_days" db:"lead_time_stddev_days"`
	LeadTimeEstimated bool    `json:"lead_time_estimated" db:"lead_time_estimated"`
}

// Urgency labels how soon an item runs out against its forecast.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// Rank orders urgencies with Critical first; used for deterministic
// allocation ordering.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	default:
		return 3
	}
}

// WarehouseSplit is one warehouse's share of a constrained order.
type WarehouseSplit struct {
	WarehouseID string `json:"warehouse_id" db:"warehouse_id"`
	Quantity    int64  `json:"quantity" db:"quantity"`
}

// OrderRecommendation is the final purchasing recommendation for an item.
// Raw and constrained quantities are retained side by side so planners can
// see what capacity cost them. Recreated wholesale each run.
type OrderRecommendation struct {
	ItemID              string           `json:"item_id" db:"item_id"`
	VendorID            string           `json:"vendor_id" db:"vendor_id"`
	RawEOQ              int64            `json:"raw_eoq" db:"raw_eoq"`
	ConstrainedQty      int64            `json:"constrained_qty" db:"constrained_qty"`
	Splits              []WarehouseSplit `json:"splits"`
	Urgency             Urgency          `json:"urgency" db:"urgency"`
	CostDegenerate      bool             `json:"cost_degenerate" db:"cost_degenerate"` // EOQ fell back to MOQ on missing cost config
	CapacityConstrained bool             `json:"capacity_constrained" db:"capacity_constrained"`
	ShortfallQty        int64            `json:"shortfall_qty" db:"shortfall_qty"`
	OrderCost           decimal.Decimal  `json:"order_cost" db:"order_cost"`
	EstimatedLineCost   decimal.Decimal  `json:"estimated_line_cost" db:"estimated_line_cost"`
}

// WarehouseCapacity is the remaining physical storage for one warehouse,
// supplied by the warehouse master extract. CommittedUnits grows as the
// allocator claims space during a run.
type WarehouseCapacity struct {
	WarehouseID    string  `json:"warehouse_id" db:"warehouse_id"`
	Name           string  `json:"name" db:"name"`
	TotalUnits     float64 `json:"total_units" db:"total_units"`
	CommittedUnits float64 `json:"committed_units" db:"committed_units"`
}

// FreeUnits returns the uncommitted storage units.
func (w *WarehouseCapacity) FreeUnits() float64 {
	free := w.TotalUnits - w.CommittedUnits
	if free < 0 {
		return 0
	}
	return free
}

// InventorySnapshot is the current position of an item, straight from the
// normalized inventory extract.
type InventorySnapshot struct {
	ItemID               string          `json:"item_id" db:"item_id"`
	OnHand               float64         `json:"on_hand" db:"on_hand"`
	OnOrder              float64         `json:"on_order" db:"on_order"`
	Committed            float64         `json:"committed" db:"committed"`
	PrimaryVendorID      string          `json:"primary_vendor_id" db:"primary_vendor_id"`
	PreferredWarehouseID string          `json:"preferred_warehouse_id" db:"preferred_warehouse_id"`
	UnitCost             decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	UnitFootprint        float64         `json:"unit_footprint" db:"unit_footprint"` // storage units consumed per unit stocked
}

// Available is on-hand plus inbound minus already-committed stock.
func (s *InventorySnapshot) Available() float64 {
	return s.OnHand + s.OnOrder - s.Committed
}

// Vendor holds the ordering constraints from the vendor master.
type Vendor struct {
	VendorID      string `json:"vendor_id" db:"vendor_id"`
	Name          string `json:"name" db:"name"`
	MinOrderQty   int64  `json:"min_order_qty" db:"min_order_qty"`
	OrderMultiple int64  `json:"order_multiple" db:"order_multiple"`
}

// AccuracyRecord compares a prior forecast against realized demand for the
// months that have since elapsed. Written once, after the fact, purely for
// model-quality monitoring.
type AccuracyRecord struct {
	ItemID          string    `json:"item_id" db:"item_id"`
	Model           ModelTag  `json:"model" db:"model"`
	MonthsEvaluated int       `json:"months_evaluated" db:"months_evaluated"`
	RMSE            float64   `json:"rmse" db:"rmse"`
	MAPE            float64   `json:"mape" db:"mape"`
	Bias            float64   `json:"bias" db:"bias"`
	ForecastedAt    time.Time `json:"forecasted_at" db:"forecasted_at"`
	EvaluatedAt     time.Time `json:"evaluated_at" db:"evaluated_at"`
}

// RunStatus tracks the lifecycle of a planning batch.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// PlanningRun records a single execution of the planning batch.
type PlanningRun struct {
	ID             int64      `json:"id" db:"id"`
	Status         RunStatus  `json:"status" db:"status"`
	TotalItems     int        `json:"total_items" db:"total_items"`
	ProcessedItems int        `json:"processed_items" db:"processed_items"`
	FallbackItems  int        `json:"fallback_items" db:"fallback_items"`
	StartedAt      time.Time  `json:"started_at" db:"started_at"`
	CompletedAt    *time.Time `json:"completed_at" db:"completed_at"`
	ErrorMessage   string     `json:"error_message" db:"error_message"`
}
