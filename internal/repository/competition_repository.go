package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/match-oracle/internal/database"
	"github.com/yourusername/match-oracle/internal/models"
)

const errScanCompetition = "failed to scan competition: %w"

// PostgresCompetitionRepository implements CompetitionRepository for PostgreSQL
type PostgresCompetitionRepository struct {
	db *database.DB
}

// NewPostgresCompetitionRepository creates a new competition repository
func NewPostgresCompetitionRepository(db *database.DB) CompetitionRepository {
	return &PostgresCompetitionRepository{db: db}
}

// Upsert inserts or updates a competition keyed by code. last_ingested_date
// tracks the competition's match ingest, not the list refresh, so a conflict
// update leaves it alone; TouchIngestedDate owns that column.
func (r *PostgresCompetitionRepository) Upsert(ctx context.Context, c *models.Competition) error {
	query := `
		INSERT INTO competitions (code, id, name, type, emblem, area, current_season, available_seasons, ingested_at, last_ingested_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (code) DO UPDATE SET
			id = EXCLUDED.id, name = EXCLUDED.name, type = EXCLUDED.type,
			emblem = EXCLUDED.emblem, area = EXCLUDED.area,
			current_season = EXCLUDED.current_season,
			available_seasons = EXCLUDED.available_seasons,
			ingested_at = EXCLUDED.ingested_at
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		c.Code, c.ID, c.Name, c.Type, c.Emblem, c.Area, c.CurrentSeason,
		c.AvailableSeasons, c.IngestedAt, nullIfEmpty(c.LastIngestedDate),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert competition: %w", err)
	}

	return nil
}

// GetByCode retrieves a competition by its unique code
func (r *PostgresCompetitionRepository) GetByCode(ctx context.Context, code string) (*models.Competition, error) {
	query := `
		SELECT code, id, name, type, emblem, area, current_season, available_seasons,
		       ingested_at::text, COALESCE(last_ingested_date::text, '')
		FROM competitions WHERE code = $1
	`

	c := &models.Competition{}
	err := r.db.GetPool().QueryRow(ctx, query, code).Scan(
		&c.Code, &c.ID, &c.Name, &c.Type, &c.Emblem, &c.Area, &c.CurrentSeason,
		&c.AvailableSeasons, &c.IngestedAt, &c.LastIngestedDate,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get competition: %w", err)
	}

	return c, nil
}

// GetAll retrieves all cached competitions ordered by code
func (r *PostgresCompetitionRepository) GetAll(ctx context.Context) ([]*models.Competition, error) {
	query := `
		SELECT code, id, name, type, emblem, area, current_season, available_seasons,
		       ingested_at::text, COALESCE(last_ingested_date::text, '')
		FROM competitions ORDER BY code ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitions: %w", err)
	}
	defer rows.Close()

	var competitions []*models.Competition
	for rows.Next() {
		c := &models.Competition{}
		err := rows.Scan(
			&c.Code, &c.ID, &c.Name, &c.Type, &c.Emblem, &c.Area, &c.CurrentSeason,
			&c.AvailableSeasons, &c.IngestedAt, &c.LastIngestedDate,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanCompetition, err)
		}
		competitions = append(competitions, c)
	}

	return competitions, rows.Err()
}

// TouchIngestedDate stamps the date of the competition's last match ingest
func (r *PostgresCompetitionRepository) TouchIngestedDate(ctx context.Context, code, date string) error {
	tag, err := r.db.GetPool().Exec(ctx,
		"UPDATE competitions SET last_ingested_date = $1 WHERE code = $2", date, code)
	if err != nil {
		return fmt.Errorf("failed to touch competition ingest date: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// LatestIngestedDate returns the most recent competition-list refresh date,
// empty when no competitions are cached
func (r *PostgresCompetitionRepository) LatestIngestedDate(ctx context.Context) (string, error) {
	var date *string
	err := r.db.GetPool().QueryRow(ctx, "SELECT MAX(ingested_at)::text FROM competitions").Scan(&date)
	if err != nil {
		return "", fmt.Errorf("failed to get latest competition ingest date: %w", err)
	}
	if date == nil {
		return "", nil
	}
	return *date, nil
}

// Name returns the collection name
func (r *PostgresCompetitionRepository) Name() string { return "competitions" }

// Protected reports that competitions are immune to retention
func (r *PostgresCompetitionRepository) Protected() bool { return true }

// DateField returns the retention date column
func (r *PostgresCompetitionRepository) DateField() string { return "ingested_at" }

// Count returns the number of cached competitions
func (r *PostgresCompetitionRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM competitions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count competitions: %w", err)
	}
	return count, nil
}

// DateRange returns the oldest and newest ingest dates
func (r *PostgresCompetitionRepository) DateRange(ctx context.Context) (string, string, error) {
	var oldest, newest *string
	err := r.db.GetPool().QueryRow(ctx,
		"SELECT MIN(ingested_at)::text, MAX(ingested_at)::text FROM competitions",
	).Scan(&oldest, &newest)
	if err != nil {
		return "", "", fmt.Errorf("failed to get competition date range: %w", err)
	}
	return deref(oldest), deref(newest), nil
}

// DeleteBefore never deletes: competitions are protected
func (r *PostgresCompetitionRepository) DeleteBefore(ctx context.Context, cutoffDate string) (int64, error) {
	return 0, fmt.Errorf("competitions are protected from retention")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// nullIfEmpty maps an unset date string to SQL NULL.
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
