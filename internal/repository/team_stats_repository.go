package repository

import (
	"context"
	"fmt"

	"github.com/yourusername/match-oracle/internal/database"
	"github.com/yourusername/match-oracle/internal/models"
)

// PostgresTeamStatsRepository implements TeamStatsRepository for PostgreSQL
type PostgresTeamStatsRepository struct {
	db *database.DB
}

// NewPostgresTeamStatsRepository creates a new team stats repository
func NewPostgresTeamStatsRepository(db *database.DB) TeamStatsRepository {
	return &PostgresTeamStatsRepository{db: db}
}

// Upsert replaces a team's stats row wholesale
func (r *PostgresTeamStatsRepository) Upsert(ctx context.Context, s *models.TeamStats) error {
	query := `
		INSERT INTO team_stats (team_id, form, goals_for, goals_against, games_played, is_fallback, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (team_id) DO UPDATE SET
			form = EXCLUDED.form, goals_for = EXCLUDED.goals_for,
			goals_against = EXCLUDED.goals_against,
			games_played = EXCLUDED.games_played,
			is_fallback = EXCLUDED.is_fallback,
			computed_at = EXCLUDED.computed_at
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		s.TeamID, s.Form, s.GoalsForRate, s.GoalsAgainst, s.GamesPlayed, s.IsFallback, s.ComputedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team stats: %w", err)
	}

	return nil
}

// GetByTeamIDs retrieves stats for the given teams keyed by team ID.
// Teams without a stored row are simply absent from the map.
func (r *PostgresTeamStatsRepository) GetByTeamIDs(ctx context.Context, teamIDs []int) (map[int]*models.TeamStats, error) {
	stats := make(map[int]*models.TeamStats, len(teamIDs))
	if len(teamIDs) == 0 {
		return stats, nil
	}

	query := `
		SELECT team_id, form, goals_for, goals_against, games_played, is_fallback, computed_at
		FROM team_stats WHERE team_id = ANY($1)
	`

	rows, err := r.db.GetPool().Query(ctx, query, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query team stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s := &models.TeamStats{}
		err := rows.Scan(&s.TeamID, &s.Form, &s.GoalsForRate, &s.GoalsAgainst,
			&s.GamesPlayed, &s.IsFallback, &s.ComputedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan team stats: %w", err)
		}
		stats[s.TeamID] = s
	}

	return stats, rows.Err()
}

// Name returns the collection name
func (r *PostgresTeamStatsRepository) Name() string { return "team_stats" }

// Protected reports that team stats may be swept
func (r *PostgresTeamStatsRepository) Protected() bool { return false }

// DateField is empty: team stats carry no retention date and the sweeper
// skips the collection
func (r *PostgresTeamStatsRepository) DateField() string { return "" }

// Count returns the number of stored team stats rows
func (r *PostgresTeamStatsRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM team_stats").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count team stats: %w", err)
	}
	return count, nil
}

// DateRange is empty for a collection without a date field
func (r *PostgresTeamStatsRepository) DateRange(ctx context.Context) (string, string, error) {
	return "", "", nil
}

// DeleteBefore is a no-op for a collection without a date field
func (r *PostgresTeamStatsRepository) DeleteBefore(ctx context.Context, cutoffDate string) (int64, error) {
	return 0, nil
}
