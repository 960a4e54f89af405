package database

import (
	"context"
	"fmt"

	"github.com/yourusername/match-oracle/internal/config"
)

// schema holds the DDL for the cached collections. JSONB columns carry the
// provider's document-shaped payloads (team refs, scores, H2H snapshots) so
// the store keeps the upstream document structure intact.
const schema = `
CREATE TABLE IF NOT EXISTS competitions (
	code               TEXT PRIMARY KEY,
	id                 BIGINT NOT NULL,
	name               TEXT NOT NULL,
	type               TEXT NOT NULL DEFAULT '',
	emblem             TEXT NOT NULL DEFAULT '',
	area               JSONB,
	current_season     JSONB,
	available_seasons  INT NOT NULL DEFAULT 0,
	ingested_at        DATE NOT NULL,
	last_ingested_date DATE
);

CREATE TABLE IF NOT EXISTS matches (
	id               BIGINT PRIMARY KEY,
	utc_date         TIMESTAMPTZ NOT NULL,
	status           TEXT NOT NULL,
	matchday         INT NOT NULL DEFAULT 0,
	stage            TEXT NOT NULL DEFAULT '',
	competition_code TEXT NOT NULL,
	competition_name TEXT NOT NULL DEFAULT '',
	home_team        JSONB NOT NULL,
	away_team        JSONB NOT NULL,
	score            JSONB,
	h2h              JSONB,
	raw              JSONB,
	ingested_at      DATE NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_matches_utc_date ON matches (utc_date);
CREATE INDEX IF NOT EXISTS idx_matches_competition ON matches (competition_code, status);

CREATE TABLE IF NOT EXISTS team_stats (
	team_id       BIGINT PRIMARY KEY,
	form          DOUBLE PRECISION NOT NULL,
	goals_for     DOUBLE PRECISION NOT NULL,
	goals_against DOUBLE PRECISION NOT NULL,
	games_played  INT NOT NULL,
	is_fallback   BOOLEAN NOT NULL DEFAULT FALSE,
	computed_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS predictions (
	match_id   BIGINT NOT NULL,
	created_at DATE NOT NULL,
	payload    JSONB NOT NULL,
	PRIMARY KEY (match_id, created_at)
);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions (created_at);

CREATE TABLE IF NOT EXISTS fixtures (
	fixture_id   BIGINT PRIMARY KEY,
	fixture_date TIMESTAMPTZ NOT NULL,
	payload      JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fixtures_date ON fixtures (fixture_date);
`

// Initialize creates a database connection pool and ensures the schema exists
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	if _, err := db.pool.Exec(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
