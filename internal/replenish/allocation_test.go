package replenish

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/replenish-go/internal/domain"
)

func warehouses(caps ...domain.WarehouseCapacity) []domain.WarehouseCapacity {
	return caps
}

func TestAllocateFitsInPreferredWarehouse(t *testing.T) {
	a := NewAllocator(warehouses(
		domain.WarehouseCapacity{WarehouseID: "WH1", TotalUnits: 1000},
		domain.WarehouseCapacity{WarehouseID: "WH2", TotalUnits: 5000},
	), nil)

	alloc := a.Allocate("WH1", 200, 1)

	assert.Equal(t, int64(200), alloc.Quantity)
	assert.False(t, alloc.CapacityConstrained)
	require.Len(t, alloc.Splits, 1)
	assert.Equal(t, "WH1", alloc.Splits[0].WarehouseID)
	assert.InDelta(t, 800, a.Remaining("WH1"), 1e-9)
}

func TestAllocateOverflowsToLargestFree(t *testing.T) {
	a := NewAllocator(warehouses(
		domain.WarehouseCapacity{WarehouseID: "WH1", TotalUnits: 100},
		domain.WarehouseCapacity{WarehouseID: "WH2", TotalUnits: 300},
		domain.WarehouseCapacity{WarehouseID: "WH3", TotalUnits: 50},
	), nil)

	alloc := a.Allocate("WH1", 250, 1)

	assert.Equal(t, int64(250), alloc.Quantity)
	require.Len(t, alloc.Splits, 2)
	assert.Equal(t, domain.WarehouseSplit{WarehouseID: "WH1", Quantity: 100}, alloc.Splits[0])
	assert.Equal(t, domain.WarehouseSplit{WarehouseID: "WH2", Quantity: 150}, alloc.Splits[1])
}

func TestAllocateTruncatesAndRecordsShortfall(t *testing.T) {
	// 500 requested against 350 total capacity: constrained to 350 with a
	// 150-unit shortfall, never silently dropped.
	a := NewAllocator(warehouses(
		domain.WarehouseCapacity{WarehouseID: "WH1", TotalUnits: 350},
	), nil)

	alloc := a.Allocate("WH1", 500, 1)

	assert.Equal(t, int64(350), alloc.Quantity)
	assert.True(t, alloc.CapacityConstrained)
	assert.Equal(t, int64(150), alloc.ShortfallQty)
}

func TestAllocateHonorsUnitFootprint(t *testing.T) {
	a := NewAllocator(warehouses(
		domain.WarehouseCapacity{WarehouseID: "WH1", TotalUnits: 100},
	), nil)

	// 2.5 storage units per item: only 40 items fit
	alloc := a.Allocate("WH1", 60, 2.5)

	assert.Equal(t, int64(40), alloc.Quantity)
	assert.True(t, alloc.CapacityConstrained)
	assert.Equal(t, int64(20), alloc.ShortfallQty)
}

func TestAllocateClaimsAreVisibleToLaterItems(t *testing.T) {
	a := NewAllocator(warehouses(
		domain.WarehouseCapacity{WarehouseID: "WH1", TotalUnits: 300},
	), nil)

	first := a.Allocate("WH1", 200, 1)
	second := a.Allocate("WH1", 200, 1)

	assert.Equal(t, int64(200), first.Quantity)
	assert.Equal(t, int64(100), second.Quantity)
	assert.True(t, second.CapacityConstrained)
	assert.Equal(t, int64(100), second.ShortfallQty)
}

func TestAllocateZeroCapacityNetwork(t *testing.T) {
	a := NewAllocator(warehouses(
		domain.WarehouseCapacity{WarehouseID: "WH1", TotalUnits: 100, CommittedUnits: 100},
	), nil)

	alloc := a.Allocate("WH1", 10, 1)

	assert.Zero(t, alloc.Quantity)
	assert.True(t, alloc.CapacityConstrained)
	assert.Equal(t, int64(10), alloc.ShortfallQty)
	assert.Empty(t, alloc.Splits)
}

func TestAllocateDoesNotMutateCallerSlice(t *testing.T) {
	caps := warehouses(domain.WarehouseCapacity{WarehouseID: "WH1", TotalUnits: 100})
	a := NewAllocator(caps, nil)
	a.Allocate("WH1", 50, 1)

	assert.Zero(t, caps[0].CommittedUnits)
}

func TestPreferredThenLargestFreeOrdering(t *testing.T) {
	whs := []*domain.WarehouseCapacity{
		{WarehouseID: "WH2", TotalUnits: 500},
		{WarehouseID: "WH3", TotalUnits: 500},
		{WarehouseID: "WH1", TotalUnits: 10},
		{WarehouseID: "WH4", TotalUnits: 900},
	}

	ordered := PreferredThenLargestFree("WH1", whs)

	ids := make([]string, len(ordered))
	for i, w := range ordered {
		ids[i] = w.WarehouseID
	}
	// preferred first despite tiny capacity, then by free capacity, ties by ID
	assert.Equal(t, []string{"WH1", "WH4", "WH2", "WH3"}, ids)
}

func TestCustomAllocationPolicy(t *testing.T) {
	// a policy that ignores the preferred warehouse and fills by ID order
	byID := func(_ string, whs []*domain.WarehouseCapacity) []*domain.WarehouseCapacity {
		for i := 1; i < len(whs); i++ {
			for j := i; j > 0 && whs[j-1].WarehouseID > whs[j].WarehouseID; j-- {
				whs[j-1], whs[j] = whs[j], whs[j-1]
			}
		}
		return whs
	}

	a := NewAllocator(warehouses(
		domain.WarehouseCapacity{WarehouseID: "WH1", TotalUnits: 100},
		domain.WarehouseCapacity{WarehouseID: "WH2", TotalUnits: 100},
	), byID)

	alloc := a.Allocate("WH2", 50, 1)
	require.Len(t, alloc.Splits, 1)
	assert.Equal(t, "WH1", alloc.Splits[0].WarehouseID)
}
