package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeExtract(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func writeValidDataset(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeExtract(t, dir, SalesFile,
		"date,item_id,quantity,pass_through\n"+
			"2025-06-01,ITEM-A,10,\n"+
			"2025-06-15,ITEM-A,5,true\n"+
			"2025-07-02,ITEM-B,3,false\n")
	writeExtract(t, dir, ReceiptsFile,
		"item_id,vendor_id,ordered_at,received_at\n"+
			"ITEM-A,V1,2025-05-01,2025-05-15\n")
	writeExtract(t, dir, InventoryFile,
		"item_id,on_hand,on_order,committed,primary_vendor_id,preferred_warehouse_id,unit_cost,unit_footprint\n"+
			"ITEM-A,120,30,10,V1,WH1,9.95,1.5\n"+
			"ITEM-B,0,,,V1,WH1,4.00,\n")
	writeExtract(t, dir, VendorFile,
		"vendor_id,name,min_order_qty,order_multiple\n"+
			"V1,Acme Supply,50,25\n")
	writeExtract(t, dir, WarehouseFile,
		"warehouse_id,name,total_units,committed_units\n"+
			"WH1,Main,1000,250\n")
	return dir
}

func TestLoadDataset(t *testing.T) {
	ds, err := LoadDataset(writeValidDataset(t))
	require.NoError(t, err)

	require.Len(t, ds.SalesLines, 3)
	assert.Equal(t, "ITEM-A", ds.SalesLines[0].ItemID)
	assert.False(t, ds.SalesLines[0].PassThrough) // blank defaults to false
	assert.True(t, ds.SalesLines[1].PassThrough)

	require.Len(t, ds.Receipts, 1)
	assert.InDelta(t, 14, ds.Receipts[0].LeadTimeDays(), 1e-9)

	snap, ok := ds.Inventory["ITEM-A"]
	require.True(t, ok)
	assert.InDelta(t, 120, snap.OnHand, 1e-9)
	assert.True(t, snap.UnitCost.Equal(decimal.RequireFromString("9.95")))
	assert.InDelta(t, 1.5, snap.UnitFootprint, 1e-9)
	// blank numeric fields default to zero
	assert.Zero(t, ds.Inventory["ITEM-B"].OnOrder)

	vendor, ok := ds.Vendors["V1"]
	require.True(t, ok)
	assert.Equal(t, int64(50), vendor.MinOrderQty)
	assert.Equal(t, int64(25), vendor.OrderMultiple)

	require.Len(t, ds.Warehouses, 1)
	assert.InDelta(t, 750, ds.Warehouses[0].FreeUnits(), 1e-9)
}

func TestLoadDatasetMissingFile(t *testing.T) {
	dir := writeValidDataset(t)
	require.NoError(t, os.Remove(filepath.Join(dir, VendorFile)))

	_, err := LoadDataset(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), VendorFile)
}

func TestReadSalesLinesMissingColumn(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, SalesFile, "date,item_id,quantity\n2025-06-01,ITEM-A,10\n")

	_, err := ReadSalesLines(filepath.Join(dir, SalesFile))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pass_through")
}

func TestReadSalesLinesBadRowReportsPosition(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, SalesFile,
		"date,item_id,quantity,pass_through\n"+
			"2025-06-01,ITEM-A,10,false\n"+
			"not-a-date,ITEM-A,10,false\n")

	_, err := ReadSalesLines(filepath.Join(dir, SalesFile))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), "date")
}

func TestReadSalesLinesHeaderCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	writeExtract(t, dir, SalesFile,
		"Date,Item_ID,Quantity,Pass_Through\n"+
			"2025-06-01,ITEM-A,10,false\n")

	lines, err := ReadSalesLines(filepath.Join(dir, SalesFile))
	require.NoError(t, err)
	require.Len(t, lines, 1)
}

func TestParseOptionalBool(t *testing.T) {
	for raw, want := range map[string]bool{
		"": false, "0": false, "false": false, "No": false,
		"1": true, "TRUE": true, "yes": true, "Y": true,
	} {
		got, err := parseOptionalBool(raw)
		require.NoError(t, err, "raw=%q", raw)
		assert.Equal(t, want, got, "raw=%q", raw)
	}

	_, err := parseOptionalBool("maybe")
	assert.Error(t, err)
}

func TestParseDateFormats(t *testing.T) {
	for _, raw := range []string{"2025-06-01", "2025-06-01T10:30:00Z", "2025-06-01 10:30:00"} {
		_, err := parseDate(raw)
		assert.NoError(t, err, "raw=%q", raw)
	}
	_, err := parseDate("06/01/2025")
	assert.Error(t, err)
}

func TestExtractFiles(t *testing.T) {
	assert.Equal(t, []string{SalesFile, ReceiptsFile, InventoryFile, VendorFile, WarehouseFile}, ExtractFiles())
}
