package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/match-oracle/internal/database"
)

// PostgresFixtureRepository implements FixtureRepository for PostgreSQL.
// The fixtures collection is a legacy holdover from the pre-matches cache;
// retention and stats still account for it.
type PostgresFixtureRepository struct {
	db *database.DB
}

// NewPostgresFixtureRepository creates a new fixture repository
func NewPostgresFixtureRepository(db *database.DB) FixtureRepository {
	return &PostgresFixtureRepository{db: db}
}

// Name returns the collection name
func (r *PostgresFixtureRepository) Name() string { return "fixtures" }

// Protected reports that fixtures may be swept
func (r *PostgresFixtureRepository) Protected() bool { return false }

// DateField returns the retention date column
func (r *PostgresFixtureRepository) DateField() string { return "fixture_date" }

// Count returns the number of stored fixtures
func (r *PostgresFixtureRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM fixtures").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count fixtures: %w", err)
	}
	return count, nil
}

// DateRange returns the oldest and newest fixture dates
func (r *PostgresFixtureRepository) DateRange(ctx context.Context) (string, string, error) {
	var oldest, newest *string
	err := r.db.GetPool().QueryRow(ctx,
		"SELECT MIN(fixture_date)::date::text, MAX(fixture_date)::date::text FROM fixtures",
	).Scan(&oldest, &newest)
	if err != nil {
		return "", "", fmt.Errorf("failed to get fixture date range: %w", err)
	}
	return deref(oldest), deref(newest), nil
}

// DeleteBefore removes fixtures dated strictly before the cutoff date
func (r *PostgresFixtureRepository) DeleteBefore(ctx context.Context, cutoffDate string) (int64, error) {
	tag, err := r.db.GetPool().Exec(ctx,
		"DELETE FROM fixtures WHERE fixture_date < $1::date", cutoffDate)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old fixtures: %w", err)
	}
	return tag.RowsAffected(), nil
}
