// internal/replenish/eoq.go
package replenish

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// EOQResult is the economic order quantity before capacity allocation.
type EOQResult struct {
	Quantity   int64 // snapped to vendor MOQ and order multiple
	RawEOQ     float64
	Degenerate bool // cost config missing/zero, fell back to the minimum buyable quantity
}

// EOQCalculator computes the cost-minimizing order quantity and snaps it to
// vendor ordering constraints.
type EOQCalculator struct {
	holdingCostRate float64         // annual holding cost as a fraction of unit cost
	orderCost       decimal.Decimal // fixed cost per purchase order
}

func NewEOQCalculator(holdingCostRate float64, orderCost decimal.Decimal) *EOQCalculator {
	return &EOQCalculator{holdingCostRate: holdingCostRate, orderCost: orderCost}
}

// Calculate applies the classic EOQ formula:
//
//	EOQ = sqrt( 2 * annualDemand * orderCost / holdingCostPerUnitPerYear )
//
// Annual demand is the sum of the 12-month forecast. Missing or zero cost
// inputs take the explicit degenerate branch and return the minimum buyable
// quantity; nothing here divides by zero.
func (c *EOQCalculator) Calculate(forecast domain.ForecastResult, vendor domain.Vendor, unitCost decimal.Decimal) EOQResult {
	// 1. Annual demand from the forecast horizon.
	annualDemand := 0.0
	for _, v := range forecast.Values {
		annualDemand += v
	}

	// 2. Holding cost per unit per year.
	holdingPerUnit := unitCost.InexactFloat64() * c.holdingCostRate
	orderCost := c.orderCost.InexactFloat64()

	// 3. Degenerate branch: without valid costs the formula is undefined, so
	// the safe recommendation is the smallest quantity the vendor accepts.
	if annualDemand <= 0 || orderCost <= 0 || holdingPerUnit <= 0 {
		return EOQResult{
			Quantity:   minBuyableQty(vendor),
			RawEOQ:     0,
			Degenerate: true,
		}
	}

	// 4. Classic square-root EOQ.
	raw := math.Sqrt(2 * annualDemand * orderCost / holdingPerUnit)

	// 5. Snap to vendor constraints.
	return EOQResult{
		Quantity: snapToVendor(raw, vendor),
		RawEOQ:   raw,
	}
}

// snapToVendor rounds the raw quantity up to the vendor's order multiple and
// floors it at the MOQ. A MOQ that is not itself a multiple is rounded up to
// the next valid multiple at or above it.
func snapToVendor(raw float64, vendor domain.Vendor) int64 {
	multiple := vendor.OrderMultiple
	if multiple <= 0 {
		multiple = 1
	}

	qty := int64(math.Ceil(raw/float64(multiple))) * multiple
	if qty < vendor.MinOrderQty {
		qty = roundUpToMultiple(vendor.MinOrderQty, multiple)
	}
	if qty < multiple {
		qty = multiple
	}
	return qty
}

// minBuyableQty is the smallest order the vendor accepts: the MOQ rounded up
// to a valid multiple, or one order-multiple unit when no MOQ is set.
func minBuyableQty(vendor domain.Vendor) int64 {
	multiple := vendor.OrderMultiple
	if multiple <= 0 {
		multiple = 1
	}
	if vendor.MinOrderQty > 0 {
		return roundUpToMultiple(vendor.MinOrderQty, multiple)
	}
	return multiple
}

func roundUpToMultiple(v, multiple int64) int64 {
	if multiple <= 1 {
		return v
	}
	if rem := v % multiple; rem != 0 {
		return v + multiple - rem
	}
	return v
}
