package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/match-oracle/internal/database"
	"github.com/yourusername/match-oracle/internal/models"
)

// PostgresPredictionRepository implements PredictionRepository for PostgreSQL
type PostgresPredictionRepository struct {
	db *database.DB
}

// NewPostgresPredictionRepository creates a new prediction repository
func NewPostgresPredictionRepository(db *database.DB) PredictionRepository {
	return &PostgresPredictionRepository{db: db}
}

// UpsertBatch writes a day's predictions in one transaction. The key is
// (match_id, created_at) so regenerating the same day replaces rows instead
// of duplicating them.
func (r *PostgresPredictionRepository) UpsertBatch(ctx context.Context, predictions []*models.Prediction) error {
	if len(predictions) == 0 {
		return nil
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO predictions (match_id, created_at, payload)
			VALUES ($1, $2, $3)
			ON CONFLICT (match_id, created_at) DO UPDATE SET payload = EXCLUDED.payload
		`

		for _, p := range predictions {
			payload, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("failed to marshal prediction: %w", err)
			}
			if _, err := tx.Exec(ctx, query, p.MatchID, p.CreatedAt, payload); err != nil {
				return fmt.Errorf("failed to upsert prediction for match %d: %w", p.MatchID, err)
			}
		}

		return nil
	})
}

// GetByDate retrieves all predictions created on the given ISO date
func (r *PostgresPredictionRepository) GetByDate(ctx context.Context, date string) ([]*models.Prediction, error) {
	query := "SELECT payload FROM predictions WHERE created_at = $1 ORDER BY match_id ASC"

	rows, err := r.db.GetPool().Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions: %w", err)
	}
	defer rows.Close()

	var predictions []*models.Prediction
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan prediction: %w", err)
		}
		p := &models.Prediction{}
		if err := json.Unmarshal(payload, p); err != nil {
			return nil, fmt.Errorf("failed to unmarshal prediction: %w", err)
		}
		predictions = append(predictions, p)
	}

	return predictions, rows.Err()
}

// Name returns the collection name
func (r *PostgresPredictionRepository) Name() string { return "predictions" }

// Protected reports that predictions may be swept
func (r *PostgresPredictionRepository) Protected() bool { return false }

// DateField returns the retention date column
func (r *PostgresPredictionRepository) DateField() string { return "created_at" }

// Count returns the number of stored predictions
func (r *PostgresPredictionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM predictions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count predictions: %w", err)
	}
	return count, nil
}

// DateRange returns the oldest and newest creation dates
func (r *PostgresPredictionRepository) DateRange(ctx context.Context) (string, string, error) {
	var oldest, newest *string
	err := r.db.GetPool().QueryRow(ctx,
		"SELECT MIN(created_at)::text, MAX(created_at)::text FROM predictions",
	).Scan(&oldest, &newest)
	if err != nil {
		return "", "", fmt.Errorf("failed to get prediction date range: %w", err)
	}
	return deref(oldest), deref(newest), nil
}

// DeleteBefore removes predictions created strictly before the cutoff date
func (r *PostgresPredictionRepository) DeleteBefore(ctx context.Context, cutoffDate string) (int64, error) {
	tag, err := r.db.GetPool().Exec(ctx,
		"DELETE FROM predictions WHERE created_at < $1", cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old predictions: %w", err)
	}
	return tag.RowsAffected(), nil
}
