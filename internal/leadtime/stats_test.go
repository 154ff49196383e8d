package leadtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receipt(vendor, item string, orderedDay, receivedDay int) ReceiptLine {
	base := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	return ReceiptLine{
		VendorID:   vendor,
		ItemID:     item,
		OrderedAt:  base.AddDate(0, 0, orderedDay),
		ReceivedAt: base.AddDate(0, 0, receivedDay),
	}
}

func TestProviderComputesStats(t *testing.T) {
	receipts := []ReceiptLine{
		receipt("V1", "ITEM-A", 0, 10),
		receipt("V1", "ITEM-A", 5, 19),
		receipt("V1", "ITEM-A", 10, 26),
	}

	p := NewProvider(receipts)
	stat, ok := p.Lookup("V1", "ITEM-A")
	require.True(t, ok)

	// lead times: 10, 14, 16
	assert.Equal(t, 3, stat.SampleCount)
	assert.InDelta(t, 13.333, stat.MeanDays, 0.001)
	assert.InDelta(t, 14, stat.MedianDays, 0.001)
	assert.InDelta(t, 2.494, stat.StdDevDays, 0.001)
}

func TestProviderDiscardsNonPositiveLeadTimes(t *testing.T) {
	receipts := []ReceiptLine{
		receipt("V1", "ITEM-A", 10, 10), // zero days
		receipt("V1", "ITEM-A", 10, 5),  // negative
	}

	p := NewProvider(receipts)
	_, ok := p.Lookup("V1", "ITEM-A")
	assert.False(t, ok)
}

func TestProviderLookupMiss(t *testing.T) {
	p := NewProvider(nil)
	_, ok := p.Lookup("V9", "ITEM-Z")
	assert.False(t, ok)
}

func TestProviderAllSorted(t *testing.T) {
	receipts := []ReceiptLine{
		receipt("V2", "ITEM-A", 0, 5),
		receipt("V1", "ITEM-B", 0, 5),
		receipt("V1", "ITEM-A", 0, 5),
	}

	all := NewProvider(receipts).All()
	require.Len(t, all, 3)
	assert.Equal(t, "V1", all[0].VendorID)
	assert.Equal(t, "ITEM-A", all[0].ItemID)
	assert.Equal(t, "V1", all[1].VendorID)
	assert.Equal(t, "ITEM-B", all[1].ItemID)
	assert.Equal(t, "V2", all[2].VendorID)
}

func TestMedianEvenCount(t *testing.T) {
	assert.InDelta(t, 12.5, median([]float64{10, 15, 11, 14}), 0.001)
}
