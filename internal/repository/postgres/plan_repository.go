// internal/repository/postgres/plan_repository.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/replenish-go/internal/domain"
	"github.com/andresuchdata/replenish-go/internal/repository"
)

type planRepository struct {
	db *DB
}

func NewPlanRepository(db *DB) repository.PlanRepository {
	return &planRepository{db: db}
}

// SaveRunOutput persists one planning run with its reorder plans and order
// recommendations. Rows are keyed by run, not mutated in place: reads always
// go through the latest completed run, so a crash mid-insert leaves the prior
// run's output visible and consistent.
func (r *planRepository) SaveRunOutput(ctx context.Context, run *domain.PlanningRun, plans []domain.ReorderPlan, recs []domain.OrderRecommendation) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO planning_runs (
				status, total_items, processed_items, fallback_items,
				started_at, completed_at, error_message
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`, string(run.Status), run.TotalItems, run.ProcessedItems, run.FallbackItems,
			run.StartedAt, run.CompletedAt, run.ErrorMessage).Scan(&run.ID)
		if err != nil {
			return fmt.Errorf("failed to insert planning run: %w", err)
		}

		planStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO reorder_plans (
				run_id, item_id, reorder_point, safety_stock, service_level,
				daily_demand_mean, daily_demand_stddev,
				lead_time_mean_days, lead_time_stddev_days, lead_time_estimated
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare reorder plan insert: %w", err)
		}
		defer planStmt.Close()

		for _, p := range plans {
			if _, err := planStmt.ExecContext(ctx,
				run.ID, p.ItemID, p.ReorderPoint, p.SafetyStock, p.ServiceLevel,
				p.DailyDemandMean, p.DailyDemandStdDev,
				p.LeadTimeMeanDays, p.LeadTimeStdDev, p.LeadTimeEstimated,
			); err != nil {
				return fmt.Errorf("failed to insert reorder plan for %s: %w", p.ItemID, err)
			}
		}

		recStmt, err := tx.PrepareContext(ctx, `
			INSERT INTO order_recommendations (
				run_id, item_id, vendor_id, raw_eoq, constrained_qty, splits,
				urgency, cost_degenerate, capacity_constrained, shortfall_qty,
				order_cost, estimated_line_cost
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare recommendation insert: %w", err)
		}
		defer recStmt.Close()

		for _, rec := range recs {
			splits, err := json.Marshal(rec.Splits)
			if err != nil {
				return fmt.Errorf("failed to encode splits for %s: %w", rec.ItemID, err)
			}
			if _, err := recStmt.ExecContext(ctx,
				run.ID, rec.ItemID, rec.VendorID, rec.RawEOQ, rec.ConstrainedQty, splits,
				string(rec.Urgency), rec.CostDegenerate, rec.CapacityConstrained, rec.ShortfallQty,
				rec.OrderCost, rec.EstimatedLineCost,
			); err != nil {
				return fmt.Errorf("failed to insert recommendation for %s: %w", rec.ItemID, err)
			}
		}
		return nil
	})
}

func (r *planRepository) GetReorderPlan(ctx context.Context, itemID string) (*domain.ReorderPlan, error) {
	var plan domain.ReorderPlan
	err := r.db.GetContext(ctx, &plan, `
		SELECT item_id, reorder_point, safety_stock, service_level,
		       daily_demand_mean, daily_demand_stddev,
		       lead_time_mean_days, lead_time_stddev_days, lead_time_estimated
		FROM reorder_plans
		WHERE run_id = (
			SELECT MAX(id) FROM planning_runs WHERE status = 'completed'
		) AND item_id = $1
	`, itemID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reorder plan: %w", err)
	}
	return &plan, nil
}

func (r *planRepository) ListRecommendations(ctx context.Context, urgency string) ([]domain.OrderRecommendation, error) {
	query := `
		SELECT item_id, vendor_id, raw_eoq, constrained_qty, splits,
		       urgency, cost_degenerate, capacity_constrained, shortfall_qty,
		       order_cost, estimated_line_cost
		FROM order_recommendations
		WHERE run_id = (
			SELECT MAX(id) FROM planning_runs WHERE status = 'completed'
		)
	`
	args := []interface{}{}
	if urgency != "" {
		query += ` AND urgency = $1`
		args = append(args, urgency)
	}
	query += ` ORDER BY item_id`

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	defer rows.Close()

	var recs []domain.OrderRecommendation
	for rows.Next() {
		var (
			rec    domain.OrderRecommendation
			urg    string
			splits []byte
		)
		if err := rows.Scan(&rec.ItemID, &rec.VendorID, &rec.RawEOQ, &rec.ConstrainedQty, &splits,
			&urg, &rec.CostDegenerate, &rec.CapacityConstrained, &rec.ShortfallQty,
			&rec.OrderCost, &rec.EstimatedLineCost); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		rec.Urgency = domain.Urgency(urg)
		if len(splits) > 0 {
			if err := json.Unmarshal(splits, &rec.Splits); err != nil {
				return nil, fmt.Errorf("failed to decode splits: %w", err)
			}
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func (r *planRepository) GetLatestRun(ctx context.Context) (*domain.PlanningRun, error) {
	var run domain.PlanningRun
	err := r.db.GetContext(ctx, &run, `
		SELECT id, status, total_items, processed_items, fallback_items,
		       started_at, completed_at, COALESCE(error_message, '') AS error_message
		FROM planning_runs
		ORDER BY id DESC
		LIMIT 1
	`)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return &run, nil
}
