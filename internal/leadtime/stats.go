// internal/leadtime/stats.go
package leadtime

import (
	"math"
	"sort"
	"time"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// ReceiptLine is one normalized purchase-order receipt from the ingestion
// boundary. Lead time is the elapsed days between order and receipt.
type ReceiptLine struct {
	VendorID   string
	ItemID     string
	OrderedAt  time.Time
	ReceivedAt time.Time
}

// LeadTimeDays returns the observed lead time in (fractional) days.
func (r ReceiptLine) LeadTimeDays() float64 {
	return r.ReceivedAt.Sub(r.OrderedAt).Hours() / 24
}

type vendorItemKey struct {
	vendor string
	item   string
}

// Provider computes per (vendor, item) lead-time distributions from receipt
// history and answers lookups during a planning run.
type Provider struct {
	stats map[vendorItemKey]domain.LeadTimeStat
}

// NewProvider builds lead-time statistics from receipt lines. Receipts with
// a non-positive lead time are discarded as data-entry noise.
func NewProvider(receipts []ReceiptLine) *Provider {
	samples := make(map[vendorItemKey][]float64)
	for _, r := range receipts {
		days := r.LeadTimeDays()
		if days <= 0 {
			continue
		}
		key := vendorItemKey{r.VendorID, r.ItemID}
		samples[key] = append(samples[key], days)
	}

	stats := make(map[vendorItemKey]domain.LeadTimeStat, len(samples))
	for key, obs := range samples {
		stats[key] = domain.LeadTimeStat{
			VendorID:    key.vendor,
			ItemID:      key.item,
			MeanDays:    mean(obs),
			MedianDays:  median(obs),
			StdDevDays:  stddev(obs),
			SampleCount: len(obs),
		}
	}

	return &Provider{stats: stats}
}

// Lookup returns the stat for a vendor/item pair. The second return is false
// when no receipts were ever observed; callers substitute the configured
// default lead time and flag the output as estimated.
func (p *Provider) Lookup(vendorID, itemID string) (domain.LeadTimeStat, bool) {
	stat, ok := p.stats[vendorItemKey{vendorID, itemID}]
	return stat, ok
}

// All returns every computed stat, sorted for stable output.
func (p *Provider) All() []domain.LeadTimeStat {
	out := make([]domain.LeadTimeStat, 0, len(p.stats))
	for _, s := range p.stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].VendorID != out[j].VendorID {
			return out[i].VendorID < out[j].VendorID
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stddev is the population standard deviation; replenishment math treats the
// observed receipts as the full distribution, not a sample.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
