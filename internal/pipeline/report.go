// internal/pipeline/report.go
package pipeline

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// WriteReportCSV writes the flagged per-item report the dashboard and
// order-creation workflow consume. One row per input item, with every
// fallback and constraint flag visible.
func WriteReportCSV(dir string, result *RunResult) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("replenishment_%s.csv", result.AsOf.Format("20060102")))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"item_id", "model", "confidence", "fallback",
		"forecast_m1", "forecast_m2", "forecast_m3", "forecast_12m_total",
		"reorder_point", "safety_stock", "lead_time_estimated",
		"raw_eoq", "constrained_qty", "capacity_constrained", "shortfall_qty",
		"warehouse_splits", "urgency", "cost_degenerate", "estimated_line_cost",
		"failure_note",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	for _, item := range result.Items {
		total := 0.0
		for _, v := range item.Forecast.Values {
			total += v
		}
		record := []string{
			item.ItemID,
			string(item.Forecast.Model),
			strconv.FormatFloat(item.Forecast.Confidence, 'f', 3, 64),
			strconv.FormatBool(item.Forecast.Fallback),
			forecastValue(item.Forecast.Values, 0),
			forecastValue(item.Forecast.Values, 1),
			forecastValue(item.Forecast.Values, 2),
			strconv.FormatFloat(total, 'f', 2, 64),
			strconv.FormatFloat(item.Plan.ReorderPoint, 'f', 2, 64),
			strconv.FormatFloat(item.Plan.SafetyStock, 'f', 2, 64),
			strconv.FormatBool(item.Plan.LeadTimeEstimated),
			strconv.FormatInt(item.Recommendation.RawEOQ, 10),
			strconv.FormatInt(item.Recommendation.ConstrainedQty, 10),
			strconv.FormatBool(item.Recommendation.CapacityConstrained),
			strconv.FormatInt(item.Recommendation.ShortfallQty, 10),
			formatSplits(item),
			string(item.Recommendation.Urgency),
			strconv.FormatBool(item.Recommendation.CostDegenerate),
			item.Recommendation.EstimatedLineCost.StringFixed(2),
			item.FailureNote,
		}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	log.Info().Str("path", path).Int("rows", len(result.Items)).Msg("wrote replenishment report")
	return path, nil
}

func forecastValue(values []float64, idx int) string {
	if idx >= len(values) {
		return "0.00"
	}
	return strconv.FormatFloat(values[idx], 'f', 2, 64)
}

func formatSplits(item ItemResult) string {
	parts := make([]string, 0, len(item.Recommendation.Splits))
	for _, s := range item.Recommendation.Splits {
		parts = append(parts, fmt.Sprintf("%s:%d", s.WarehouseID, s.Quantity))
	}
	return strings.Join(parts, "|")
}
