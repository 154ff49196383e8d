// internal/repository/postgres/forecast_repository.go
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/andresuchdata/replenish-go/internal/domain"
	"github.com/andresuchdata/replenish-go/internal/repository"
)

type forecastRepository struct {
	db *DB
}

func NewForecastRepository(db *DB) repository.ForecastRepository {
	return &forecastRepository{db: db}
}

// SaveActiveForecasts supersedes the prior Active forecasts and inserts the
// new ones in one transaction. The new rows are only committed as Active
// together with the supersede, so there is never a window with zero or two
// Active forecasts for an item.
func (r *forecastRepository) SaveActiveForecasts(ctx context.Context, forecasts []domain.ForecastResult) error {
	if len(forecasts) == 0 {
		return nil
	}

	itemIDs := make([]string, len(forecasts))
	for i, f := range forecasts {
		itemIDs[i] = f.ItemID
	}

	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE forecasts SET status = 'superseded'
			WHERE status = 'active' AND item_id = ANY($1)
		`, pq.Array(itemIDs))
		if err != nil {
			return fmt.Errorf("failed to supersede forecasts: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO forecasts (
				item_id, model, confidence, forecast_values, candidates,
				fallback, generated_at, status
			) VALUES ($1, $2, $3, $4, $5, $6, $7, 'active')
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare forecast insert: %w", err)
		}
		defer stmt.Close()

		for _, f := range forecasts {
			candidates, err := json.Marshal(f.Candidates)
			if err != nil {
				return fmt.Errorf("failed to encode candidates for %s: %w", f.ItemID, err)
			}
			if _, err := stmt.ExecContext(ctx,
				f.ItemID,
				string(f.Model),
				f.Confidence,
				pq.Array(f.Values),
				candidates,
				f.Fallback,
				f.GeneratedAt,
			); err != nil {
				return fmt.Errorf("failed to insert forecast for %s: %w", f.ItemID, err)
			}
		}
		return nil
	})
}

func (r *forecastRepository) GetActiveForecast(ctx context.Context, itemID string) (*domain.ForecastResult, error) {
	row := r.db.QueryRowxContext(ctx, `
		SELECT item_id, model, confidence, forecast_values, candidates, fallback, generated_at, status
		FROM forecasts
		WHERE item_id = $1 AND status = 'active'
	`, itemID)

	forecast, err := scanForecast(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active forecast: %w", err)
	}
	return forecast, nil
}

func (r *forecastRepository) ListActiveForecasts(ctx context.Context) ([]domain.ForecastResult, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT item_id, model, confidence, forecast_values, candidates, fallback, generated_at, status
		FROM forecasts
		WHERE status = 'active'
		ORDER BY item_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list active forecasts: %w", err)
	}
	defer rows.Close()

	var forecasts []domain.ForecastResult
	for rows.Next() {
		forecast, err := scanForecast(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forecast: %w", err)
		}
		forecasts = append(forecasts, *forecast)
	}
	return forecasts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanForecast(row rowScanner) (*domain.ForecastResult, error) {
	var (
		f          domain.ForecastResult
		model      string
		status     string
		values     pq.Float64Array
		candidates []byte
	)
	if err := row.Scan(&f.ItemID, &model, &f.Confidence, &values, &candidates,
		&f.Fallback, &f.GeneratedAt, &status); err != nil {
		return nil, err
	}
	f.Model = domain.ModelTag(model)
	f.Status = domain.ForecastStatus(status)
	f.Values = []float64(values)
	if len(candidates) > 0 {
		if err := json.Unmarshal(candidates, &f.Candidates); err != nil {
			return nil, fmt.Errorf("failed to decode candidates: %w", err)
		}
	}
	return &f, nil
}
