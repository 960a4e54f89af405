package models

import "time"

// TeamStats holds a team's recent performance rates. Recomputed wholesale
// from at most MaxFormMatches finished matches inside the lookback window;
// when no qualifying matches exist a deterministic fallback is generated
// and flagged with IsFallback.
type TeamStats struct {
	TeamID       int       `db:"team_id" json:"team_id"`
	Form         float64   `db:"form" json:"form"`
	GoalsForRate float64   `db:"goals_for" json:"goals_for"`
	GoalsAgainst float64   `db:"goals_against" json:"goals_against"`
	GamesPlayed  int       `db:"games_played" json:"games_played"`
	IsFallback   bool      `db:"is_fallback" json:"is_fallback"`
	ComputedAt   time.Time `db:"computed_at" json:"computed_at"`
}
