// internal/repository/postgres/accuracy_repository.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/andresuchdata/replenish-go/internal/domain"
	"github.com/andresuchdata/replenish-go/internal/repository"
)

type accuracyRepository struct {
	db *DB
}

func NewAccuracyRepository(db *DB) repository.AccuracyRepository {
	return &accuracyRepository{db: db}
}

func (r *accuracyRepository) InsertRecords(ctx context.Context, records []domain.AccuracyRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO forecast_accuracy (
				item_id, model, months_evaluated, rmse, mape, bias,
				forecasted_at, evaluated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare accuracy insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range records {
			if _, err := stmt.ExecContext(ctx,
				rec.ItemID, string(rec.Model), rec.MonthsEvaluated,
				rec.RMSE, rec.MAPE, rec.Bias,
				rec.ForecastedAt, rec.EvaluatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert accuracy record for %s: %w", rec.ItemID, err)
			}
		}
		return nil
	})
}

func (r *accuracyRepository) ListRecords(ctx context.Context, itemID string, since time.Time) ([]domain.AccuracyRecord, error) {
	query := `
		SELECT item_id, model, months_evaluated, rmse, mape, bias,
		       forecasted_at, evaluated_at
		FROM forecast_accuracy
		WHERE evaluated_at >= $1
	`
	args := []interface{}{since}
	if itemID != "" {
		query += ` AND item_id = $2`
		args = append(args, itemID)
	}
	query += ` ORDER BY evaluated_at DESC, item_id`

	var records []domain.AccuracyRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list accuracy records: %w", err)
	}
	return records, nil
}
