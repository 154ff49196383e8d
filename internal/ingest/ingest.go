// internal/ingest/ingest.go
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/replenish-go/internal/demand"
	"github.com/andresuchdata/replenish-go/internal/domain"
	"github.com/andresuchdata/replenish-go/internal/leadtime"
)

// Dataset is the full set of normalized extracts one planning run consumes.
// Everything is schema-validated and defaulted to the correct shape here,
// before any value enters the forecasting or optimization code.
type Dataset struct {
	SalesLines []demand.SalesLine
	Receipts   []leadtime.ReceiptLine
	Inventory  map[string]domain.InventorySnapshot
	Vendors    map[string]domain.Vendor
	Warehouses []domain.WarehouseCapacity
}

// Extract file names expected under the data directory. Column naming is
// agreed at the ingestion boundary; source-system-specific names are
// translated upstream, never here.
const (
	SalesFile     = "sales_lines.csv"
	ReceiptsFile  = "po_receipts.csv"
	InventoryFile = "inventory_snapshot.csv"
	VendorFile    = "vendor_master.csv"
	WarehouseFile = "warehouse_master.csv"
)

// ExtractFiles returns the extract file names in load order.
func ExtractFiles() []string {
	return []string{SalesFile, ReceiptsFile, InventoryFile, VendorFile, WarehouseFile}
}

// LoadDataset reads all five extracts from dir. Any missing file or missing
// required column is an up-front error: a planning batch never starts on a
// partially valid dataset.
func LoadDataset(dir string) (*Dataset, error) {
	ds := &Dataset{}
	var err error

	if ds.SalesLines, err = ReadSalesLines(filepath.Join(dir, SalesFile)); err != nil {
		return nil, err
	}
	if ds.Receipts, err = ReadReceipts(filepath.Join(dir, ReceiptsFile)); err != nil {
		return nil, err
	}
	if ds.Inventory, err = ReadInventory(filepath.Join(dir, InventoryFile)); err != nil {
		return nil, err
	}
	if ds.Vendors, err = ReadVendors(filepath.Join(dir, VendorFile)); err != nil {
		return nil, err
	}
	if ds.Warehouses, err = ReadWarehouses(filepath.Join(dir, WarehouseFile)); err != nil {
		return nil, err
	}
	return ds, nil
}

// ReadSalesLines parses the sales extract: date, item_id, quantity,
// pass_through. A blank pass_through column defaults to false — defaulting
// happens here with the correct type, never ad hoc inside computation code.
func ReadSalesLines(path string) ([]demand.SalesLine, error) {
	rows, cols, err := readCSV(path, []string{"date", "item_id", "quantity", "pass_through"})
	if err != nil {
		return nil, err
	}

	lines := make([]demand.SalesLine, 0, len(rows))
	for i, rec := range rows {
		date, err := parseDate(rec[cols["date"]])
		if err != nil {
			return nil, rowErr(path, i, "date", err)
		}
		qty, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["quantity"]]), 64)
		if err != nil {
			return nil, rowErr(path, i, "quantity", err)
		}
		passThrough, err := parseOptionalBool(rec[cols["pass_through"]])
		if err != nil {
			return nil, rowErr(path, i, "pass_through", err)
		}
		item := strings.TrimSpace(rec[cols["item_id"]])
		if item == "" {
			return nil, rowErr(path, i, "item_id", fmt.Errorf("empty"))
		}
		lines = append(lines, demand.SalesLine{
			Date:        date,
			ItemID:      item,
			Quantity:    qty,
			PassThrough: passThrough,
		})
	}
	return lines, nil
}

// ReadReceipts parses PO receipt history: item_id, vendor_id, ordered_at,
// received_at.
func ReadReceipts(path string) ([]leadtime.ReceiptLine, error) {
	rows, cols, err := readCSV(path, []string{"item_id", "vendor_id", "ordered_at", "received_at"})
	if err != nil {
		return nil, err
	}

	receipts := make([]leadtime.ReceiptLine, 0, len(rows))
	for i, rec := range rows {
		ordered, err := parseDate(rec[cols["ordered_at"]])
		if err != nil {
			return nil, rowErr(path, i, "ordered_at", err)
		}
		received, err := parseDate(rec[cols["received_at"]])
		if err != nil {
			return nil, rowErr(path, i, "received_at", err)
		}
		receipts = append(receipts, leadtime.ReceiptLine{
			ItemID:     strings.TrimSpace(rec[cols["item_id"]]),
			VendorID:   strings.TrimSpace(rec[cols["vendor_id"]]),
			OrderedAt:  ordered,
			ReceivedAt: received,
		})
	}
	return receipts, nil
}

// ReadInventory parses the current inventory snapshot keyed by item.
func ReadInventory(path string) (map[string]domain.InventorySnapshot, error) {
	required := []string{"item_id", "on_hand", "on_order", "committed",
		"primary_vendor_id", "preferred_warehouse_id", "unit_cost", "unit_footprint"}
	rows, cols, err := readCSV(path, required)
	if err != nil {
		return nil, err
	}

	snapshots := make(map[string]domain.InventorySnapshot, len(rows))
	for i, rec := range rows {
		item := strings.TrimSpace(rec[cols["item_id"]])
		if item == "" {
			return nil, rowErr(path, i, "item_id", fmt.Errorf("empty"))
		}
		onHand, err := parseFloatField(rec[cols["on_hand"]])
		if err != nil {
			return nil, rowErr(path, i, "on_hand", err)
		}
		onOrder, err := parseFloatField(rec[cols["on_order"]])
		if err != nil {
			return nil, rowErr(path, i, "on_order", err)
		}
		committed, err := parseFloatField(rec[cols["committed"]])
		if err != nil {
			return nil, rowErr(path, i, "committed", err)
		}
		unitCost, err := decimal.NewFromString(strings.TrimSpace(rec[cols["unit_cost"]]))
		if err != nil {
			return nil, rowErr(path, i, "unit_cost", err)
		}
		footprint, err := parseFloatField(rec[cols["unit_footprint"]])
		if err != nil {
			return nil, rowErr(path, i, "unit_footprint", err)
		}
		snapshots[item] = domain.InventorySnapshot{
			ItemID:               item,
			OnHand:               onHand,
			OnOrder:              onOrder,
			Committed:            committed,
			PrimaryVendorID:      strings.TrimSpace(rec[cols["primary_vendor_id"]]),
			PreferredWarehouseID: strings.TrimSpace(rec[cols["preferred_warehouse_id"]]),
			UnitCost:             unitCost,
			UnitFootprint:        footprint,
		}
	}
	return snapshots, nil
}

// ReadVendors parses the vendor master with ordering constraints.
func ReadVendors(path string) (map[string]domain.Vendor, error) {
	rows, cols, err := readCSV(path, []string{"vendor_id", "name", "min_order_qty", "order_multiple"})
	if err != nil {
		return nil, err
	}

	vendors := make(map[string]domain.Vendor, len(rows))
	for i, rec := range rows {
		id := strings.TrimSpace(rec[cols["vendor_id"]])
		if id == "" {
			return nil, rowErr(path, i, "vendor_id", fmt.Errorf("empty"))
		}
		moq, err := parseIntField(rec[cols["min_order_qty"]])
		if err != nil {
			return nil, rowErr(path, i, "min_order_qty", err)
		}
		multiple, err := parseIntField(rec[cols["order_multiple"]])
		if err != nil {
			return nil, rowErr(path, i, "order_multiple", err)
		}
		vendors[id] = domain.Vendor{
			VendorID:      id,
			Name:          strings.TrimSpace(rec[cols["name"]]),
			MinOrderQty:   moq,
			OrderMultiple: multiple,
		}
	}
	return vendors, nil
}

// ReadWarehouses parses warehouse capacity definitions.
func ReadWarehouses(path string) ([]domain.WarehouseCapacity, error) {
	rows, cols, err := readCSV(path, []string{"warehouse_id", "name", "total_units", "committed_units"})
	if err != nil {
		return nil, err
	}

	warehouses := make([]domain.WarehouseCapacity, 0, len(rows))
	for i, rec := range rows {
		id := strings.TrimSpace(rec[cols["warehouse_id"]])
		if id == "" {
			return nil, rowErr(path, i, "warehouse_id", fmt.Errorf("empty"))
		}
		total, err := parseFloatField(rec[cols["total_units"]])
		if err != nil {
			return nil, rowErr(path, i, "total_units", err)
		}
		committed, err := parseFloatField(rec[cols["committed_units"]])
		if err != nil {
			return nil, rowErr(path, i, "committed_units", err)
		}
		warehouses = append(warehouses, domain.WarehouseCapacity{
			WarehouseID:    id,
			Name:           strings.TrimSpace(rec[cols["name"]]),
			TotalUnits:     total,
			CommittedUnits: committed,
		})
	}
	return warehouses, nil
}

// readCSV opens a CSV, validates that every required column exists and
// returns the data rows plus a header index map.
func readCSV(path string, requiredCols []string) ([][]string, map[string]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open extract %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read CSV header of %s: %w", path, err)
	}

	colMap := make(map[string]int, len(header))
	for i, col := range header {
		colMap[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range requiredCols {
		if _, ok := colMap[col]; !ok {
			return nil, nil, fmt.Errorf("extract %s missing required column %q", path, col)
		}
	}

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("error reading %s: %w", path, err)
		}
		if len(record) < len(header) {
			continue
		}
		rows = append(rows, record)
	}
	return rows, colMap, nil
}

func rowErr(path string, row int, col string, err error) error {
	// +2: 1-based with the header row.
	return fmt.Errorf("%s row %d column %s: %w", filepath.Base(path), row+2, col, err)
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	formats := []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}
	for _, format := range formats {
		if t, err := time.Parse(format, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func parseFloatField(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func parseIntField(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func parseOptionalBool(raw string) (bool, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	switch raw {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y":
		return true, nil
	default:
		return false, fmt.Errorf("unparseable boolean %q", raw)
	}
}
