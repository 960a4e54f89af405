package models

import (
	"encoding/json"
	"time"
)

// Match status values as reported by the upstream provider.
const (
	StatusScheduled = "SCHEDULED"
	StatusTimed     = "TIMED"
	StatusInPlay    = "IN_PLAY"
	StatusFinished  = "FINISHED"
	StatusPostponed = "POSTPONED"
	StatusCancelled = "CANCELLED"
)

// TeamRef identifies one side of a match.
type TeamRef struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName,omitempty"`
	TLA       string `json:"tla,omitempty"`
	Crest     string `json:"crest,omitempty"`
}

// FullTimeScore holds the final goal tally. Pointers distinguish
// "not yet played" from a genuine zero.
type FullTimeScore struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Score holds the result of a match once available.
type Score struct {
	Winner   string        `json:"winner,omitempty"`
	FullTime FullTimeScore `json:"fullTime"`
}

// H2HSnapshot is the cached head-to-head aggregate embedded in a match.
// A snapshot is fresh only while LastUpdated is the current UTC calendar day.
type H2HSnapshot struct {
	LastUpdated      string  `json:"last_updated"`
	MatchesAnalyzed  int     `json:"matches_analyzed"`
	HomeWinRatio     float64 `json:"home_win_ratio"`
	AwayWinRatio     float64 `json:"away_win_ratio"`
	DrawRatio        float64 `json:"draw_ratio"`
	AvgGoalsPerMatch float64 `json:"avg_goals_per_match"`
	HomeAvgGoals     float64 `json:"home_avg_goals"`
	AwayAvgGoals     float64 `json:"away_avg_goals"`
}

// IsFresh reports whether the snapshot was refreshed on the given ISO date.
func (s *H2HSnapshot) IsFresh(today string) bool {
	return s != nil && s.LastUpdated == today
}

// Match represents a cached fixture from the upstream provider.
// Matches are a protected collection: updated in place as status, score and
// H2H data change, never deleted by retention.
type Match struct {
	ID              int             `db:"id" json:"id"`
	UTCDate         time.Time       `db:"utc_date" json:"utcDate"`
	Status          string          `db:"status" json:"status"`
	Matchday        int             `db:"matchday" json:"matchday,omitempty"`
	Stage           string          `db:"stage" json:"stage,omitempty"`
	CompetitionCode string          `db:"competition_code" json:"competition_code"`
	CompetitionName string          `db:"competition_name" json:"competition_name"`
	HomeTeam        TeamRef         `db:"home_team" json:"homeTeam"`
	AwayTeam        TeamRef         `db:"away_team" json:"awayTeam"`
	Score           *Score          `db:"score" json:"score,omitempty"`
	H2H             *H2HSnapshot    `db:"h2h" json:"h2h,omitempty"`
	Raw             json.RawMessage `db:"raw" json:"-"`
	IngestedAt      string          `db:"ingested_at" json:"ingested_at"`
}

// GoalsFor returns the goals scored and conceded by teamID in a finished
// match. ok is false when the team did not play or the score is missing.
func (m *Match) GoalsFor(teamID int) (scored, conceded int, ok bool) {
	if m.Status != StatusFinished || m.Score == nil {
		return 0, 0, false
	}
	home, away := 0, 0
	if m.Score.FullTime.Home != nil {
		home = *m.Score.FullTime.Home
	}
	if m.Score.FullTime.Away != nil {
		away = *m.Score.FullTime.Away
	}
	switch teamID {
	case m.HomeTeam.ID:
		return home, away, true
	case m.AwayTeam.ID:
		return away, home, true
	}
	return 0, 0, false
}
