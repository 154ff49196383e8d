// internal/replenish/urgency.go
package replenish

import "github.com/andresuchdata/replenish-go/internal/domain"

// ClassifyUrgency labels an item by how far current availability stretches
// against the leading forecast months:
//
//	Critical: available < month 1
//	High:     available < months 1+2
//	Medium:   available < months 1+2+3
//	Low:      otherwise
//
// Pure function of the inventory snapshot and the active forecast; it is
// recomputed on demand and only ever persisted as a report artifact.
func ClassifyUrgency(snapshot domain.InventorySnapshot, forecast domain.ForecastResult) domain.Urgency {
	available := snapshot.Available()

	cumulative := 0.0
	thresholds := []domain.Urgency{domain.UrgencyCritical, domain.UrgencyHigh, domain.UrgencyMedium}
	for i, label := range thresholds {
		if i >= len(forecast.Values) {
			break
		}
		cumulative += forecast.Values[i]
		if available < cumulative {
			return label
		}
	}
	return domain.UrgencyLow
}
