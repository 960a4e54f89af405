package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yourusername/match-oracle/internal/database"
	"github.com/yourusername/match-oracle/internal/models"
)

const matchColumns = `
	id, utc_date, status, matchday, stage, competition_code, competition_name,
	home_team, away_team, score, h2h, raw, ingested_at::text
`

// PostgresMatchRepository implements MatchRepository for PostgreSQL
type PostgresMatchRepository struct {
	db *database.DB
}

// NewPostgresMatchRepository creates a new match repository
func NewPostgresMatchRepository(db *database.DB) MatchRepository {
	return &PostgresMatchRepository{db: db}
}

// Upsert inserts or updates a match keyed by provider ID. An existing H2H
// snapshot survives the update so refresh runs never clobber cached H2H.
func (r *PostgresMatchRepository) Upsert(ctx context.Context, m *models.Match) error {
	homeTeam, err := json.Marshal(m.HomeTeam)
	if err != nil {
		return fmt.Errorf("failed to marshal home team: %w", err)
	}
	awayTeam, err := json.Marshal(m.AwayTeam)
	if err != nil {
		return fmt.Errorf("failed to marshal away team: %w", err)
	}
	score, err := marshalNullable(m.Score)
	if err != nil {
		return fmt.Errorf("failed to marshal score: %w", err)
	}
	h2h, err := marshalNullable(m.H2H)
	if err != nil {
		return fmt.Errorf("failed to marshal h2h snapshot: %w", err)
	}

	query := `
		INSERT INTO matches (id, utc_date, status, matchday, stage, competition_code,
			competition_name, home_team, away_team, score, h2h, raw, ingested_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			utc_date = EXCLUDED.utc_date, status = EXCLUDED.status,
			matchday = EXCLUDED.matchday, stage = EXCLUDED.stage,
			competition_code = EXCLUDED.competition_code,
			competition_name = EXCLUDED.competition_name,
			home_team = EXCLUDED.home_team, away_team = EXCLUDED.away_team,
			score = EXCLUDED.score, raw = EXCLUDED.raw,
			h2h = COALESCE(EXCLUDED.h2h, matches.h2h),
			ingested_at = EXCLUDED.ingested_at
	`

	_, err = r.db.GetPool().Exec(ctx, query,
		m.ID, m.UTCDate, m.Status, m.Matchday, m.Stage, m.CompetitionCode,
		m.CompetitionName, homeTeam, awayTeam, score, h2h, []byte(m.Raw), m.IngestedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match: %w", err)
	}

	return nil
}

// GetByID retrieves a match by its provider ID
func (r *PostgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := "SELECT " + matchColumns + " FROM matches WHERE id = $1"

	m, err := scanMatch(r.db.GetPool().QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	return m, nil
}

// Find retrieves matches satisfying the filter, ordered by kickoff time
func (r *PostgresMatchRepository) Find(ctx context.Context, filter MatchFilter) ([]*models.Match, error) {
	var conditions []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CompetitionCode != "" {
		conditions = append(conditions, "competition_code = "+arg(filter.CompetitionCode))
	}
	if len(filter.CompetitionCodes) > 0 {
		conditions = append(conditions, "competition_code = ANY("+arg(filter.CompetitionCodes)+")")
	}
	if len(filter.Statuses) > 0 {
		conditions = append(conditions, "status = ANY("+arg(filter.Statuses)+")")
	}
	if !filter.DateFrom.IsZero() {
		conditions = append(conditions, "utc_date >= "+arg(filter.DateFrom))
	}
	if !filter.DateTo.IsZero() {
		conditions = append(conditions, "utc_date < "+arg(filter.DateTo))
	}
	query := "SELECT " + matchColumns + " FROM matches"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY utc_date ASC, id ASC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// UpdateH2H writes a fresh head-to-head snapshot onto the match
func (r *PostgresMatchRepository) UpdateH2H(ctx context.Context, matchID int, snapshot *models.H2HSnapshot) error {
	h2h, err := marshalNullable(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal h2h snapshot: %w", err)
	}

	tag, err := r.db.GetPool().Exec(ctx, "UPDATE matches SET h2h = $1 WHERE id = $2", h2h, matchID)
	if err != nil {
		return fmt.Errorf("failed to update h2h snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// FinishedInvolving retrieves a team's finished matches since the given time,
// newest first, capped at limit
func (r *PostgresMatchRepository) FinishedInvolving(ctx context.Context, teamID int, since time.Time, limit int) ([]*models.Match, error) {
	query := "SELECT " + matchColumns + ` FROM matches
		WHERE status = $1 AND utc_date >= $2
		  AND (home_team->>'id' = $3::text OR away_team->>'id' = $3::text)
		ORDER BY utc_date DESC LIMIT $4
	`

	rows, err := r.db.GetPool().Query(ctx, query, models.StatusFinished, since, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query finished matches: %w", err)
	}
	defer rows.Close()

	return collectMatches(rows)
}

// TeamIDsWithFinishedMatches returns the distinct team IDs appearing in
// finished matches since the given time
func (r *PostgresMatchRepository) TeamIDsWithFinishedMatches(ctx context.Context, since time.Time) ([]int, error) {
	query := `
		SELECT DISTINCT (home_team->>'id')::bigint FROM matches WHERE status = $1 AND utc_date >= $2
		UNION
		SELECT DISTINCT (away_team->>'id')::bigint FROM matches WHERE status = $1 AND utc_date >= $2
	`

	rows, err := r.db.GetPool().Query(ctx, query, models.StatusFinished, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query team ids: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan team id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// Name returns the collection name
func (r *PostgresMatchRepository) Name() string { return "matches" }

// Protected reports that matches are immune to retention
func (r *PostgresMatchRepository) Protected() bool { return true }

// DateField returns the retention date column
func (r *PostgresMatchRepository) DateField() string { return "utc_date" }

// Count returns the number of cached matches
func (r *PostgresMatchRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetPool().QueryRow(ctx, "SELECT COUNT(*) FROM matches").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count matches: %w", err)
	}
	return count, nil
}

// DateRange returns the oldest and newest kickoff dates
func (r *PostgresMatchRepository) DateRange(ctx context.Context) (string, string, error) {
	var oldest, newest *string
	err := r.db.GetPool().QueryRow(ctx,
		"SELECT MIN(utc_date)::date::text, MAX(utc_date)::date::text FROM matches",
	).Scan(&oldest, &newest)
	if err != nil {
		return "", "", fmt.Errorf("failed to get match date range: %w", err)
	}
	return deref(oldest), deref(newest), nil
}

// DeleteBefore never deletes: matches are protected
func (r *PostgresMatchRepository) DeleteBefore(ctx context.Context, cutoffDate string) (int64, error) {
	return 0, fmt.Errorf("matches are protected from retention")
}

// rowScanner covers both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	m := &models.Match{}
	var homeTeam, awayTeam, score, h2h, raw []byte

	err := row.Scan(
		&m.ID, &m.UTCDate, &m.Status, &m.Matchday, &m.Stage, &m.CompetitionCode,
		&m.CompetitionName, &homeTeam, &awayTeam, &score, &h2h, &raw, &m.IngestedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(homeTeam, &m.HomeTeam); err != nil {
		return nil, fmt.Errorf("failed to unmarshal home team: %w", err)
	}
	if err := json.Unmarshal(awayTeam, &m.AwayTeam); err != nil {
		return nil, fmt.Errorf("failed to unmarshal away team: %w", err)
	}
	if len(score) > 0 {
		m.Score = &models.Score{}
		if err := json.Unmarshal(score, m.Score); err != nil {
			return nil, fmt.Errorf("failed to unmarshal score: %w", err)
		}
	}
	if len(h2h) > 0 {
		m.H2H = &models.H2HSnapshot{}
		if err := json.Unmarshal(h2h, m.H2H); err != nil {
			return nil, fmt.Errorf("failed to unmarshal h2h snapshot: %w", err)
		}
	}
	m.Raw = json.RawMessage(raw)

	return m, nil
}

func collectMatches(rows pgx.Rows) ([]*models.Match, error) {
	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// marshalNullable marshals v to JSON, mapping a nil pointer to SQL NULL.
func marshalNullable(v interface{}) ([]byte, error) {
	switch t := v.(type) {
	case *models.Score:
		if t == nil {
			return nil, nil
		}
	case *models.H2HSnapshot:
		if t == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
