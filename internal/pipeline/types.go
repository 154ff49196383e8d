// internal/pipeline/types.go
package pipeline

import (
	"time"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// ItemResult bundles everything the run produced for a single item. Degraded
// or fallback computations surface as flags on the nested values, never as
// missing rows.
type ItemResult struct {
	ItemID         string                      `json:"item_id"`
	Series         *domain.MonthlyDemandSeries `json:"series,omitempty"`
	Forecast       domain.ForecastResult       `json:"forecast"`
	Plan           domain.ReorderPlan          `json:"plan"`
	Recommendation domain.OrderRecommendation  `json:"recommendation"`
	FailureNote    string                      `json:"failure_note,omitempty"` // unexpected per-item failure, naive fallback substituted
}

// RunResult is the complete output of one planning batch: one ItemResult per
// input item, the lead-time stats used, and accuracy records for the prior
// run's forecasts.
type RunResult struct {
	Run       domain.PlanningRun      `json:"run"`
	Items     []ItemResult            `json:"items"`
	LeadTimes []domain.LeadTimeStat   `json:"lead_times"`
	Accuracy  []domain.AccuracyRecord `json:"accuracy"`
	AsOf      time.Time               `json:"as_of"`
}

// ItemByID finds an item row, for tests and handlers.
func (r *RunResult) ItemByID(itemID string) (ItemResult, bool) {
	for _, item := range r.Items {
		if item.ItemID == itemID {
			return item, true
		}
	}
	return ItemResult{}, false
}
