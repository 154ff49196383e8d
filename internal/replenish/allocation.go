// internal/replenish/allocation.go
package replenish

import (
	"math"
	"sort"
	"sync"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

// Allocation is the capacity-feasible portion of an order quantity.
type Allocation struct {
	Quantity            int64
	Splits              []domain.WarehouseSplit
	CapacityConstrained bool
	ShortfallQty        int64
}

// AllocationPolicy orders the candidate overflow warehouses for an item.
// The default fills the preferred warehouse first, then the rest by
// descending remaining free capacity; replace it to implement a different
// stakeholder weighting.
type AllocationPolicy func(preferred string, warehouses []*domain.WarehouseCapacity) []*domain.WarehouseCapacity

// Allocator tracks warehouse capacity as a single shared resource across a
// planning run. Capacity claims are atomic: each item's allocation is
// visible to every later item in the same run. Callers are responsible for
// invoking Allocate in a fixed, deterministic item order.
type Allocator struct {
	mu         sync.Mutex
	warehouses map[string]*domain.WarehouseCapacity
	policy     AllocationPolicy
}

// NewAllocator snapshots the supplied capacities; the caller's slice is not
// mutated.
func NewAllocator(capacities []domain.WarehouseCapacity, policy AllocationPolicy) *Allocator {
	if policy == nil {
		policy = PreferredThenLargestFree
	}
	whs := make(map[string]*domain.WarehouseCapacity, len(capacities))
	for _, c := range capacities {
		copied := c
		whs[c.WarehouseID] = &copied
	}
	return &Allocator{warehouses: whs, policy: policy}
}

// Allocate claims space for qty units of an item with the given per-unit
// footprint. When total free capacity cannot hold the full quantity the
// allocation is truncated and the shortfall recorded, never silently
// dropped. A zero-capacity network yields quantity 0.
func (a *Allocator) Allocate(preferredWarehouse string, qty int64, unitFootprint float64) Allocation {
	if qty <= 0 {
		return Allocation{}
	}
	if unitFootprint <= 0 {
		// Items with no footprint assumption occupy a nominal one storage
		// unit per unit stocked.
		unitFootprint = 1
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	candidates := make([]*domain.WarehouseCapacity, 0, len(a.warehouses))
	for _, w := range a.warehouses {
		candidates = append(candidates, w)
	}
	ordered := a.policy(preferredWarehouse, candidates)

	alloc := Allocation{}
	remaining := qty
	for _, w := range ordered {
		if remaining == 0 {
			break
		}
		fits := int64(math.Floor(w.FreeUnits() / unitFootprint))
		if fits <= 0 {
			continue
		}
		take := remaining
		if take > fits {
			take = fits
		}
		w.CommittedUnits += float64(take) * unitFootprint
		alloc.Splits = append(alloc.Splits, domain.WarehouseSplit{
			WarehouseID: w.WarehouseID,
			Quantity:    take,
		})
		alloc.Quantity += take
		remaining -= take
	}

	if remaining > 0 {
		alloc.CapacityConstrained = true
		alloc.ShortfallQty = remaining
	}
	return alloc
}

// Remaining reports the free units left in a warehouse, for reporting.
func (a *Allocator) Remaining(warehouseID string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	if w, ok := a.warehouses[warehouseID]; ok {
		return w.FreeUnits()
	}
	return 0
}

// PreferredThenLargestFree is the default policy: the item's preferred
// warehouse first, then the others by descending free capacity, ties broken
// by warehouse ID so allocation order is reproducible.
func PreferredThenLargestFree(preferred string, warehouses []*domain.WarehouseCapacity) []*domain.WarehouseCapacity {
	sort.Slice(warehouses, func(i, j int) bool {
		wi, wj := warehouses[i], warehouses[j]
		if wi.WarehouseID == preferred {
			return true
		}
		if wj.WarehouseID == preferred {
			return false
		}
		if wi.FreeUnits() != wj.FreeUnits() {
			return wi.FreeUnits() > wj.FreeUnits()
		}
		return wi.WarehouseID < wj.WarehouseID
	})
	return warehouses
}
