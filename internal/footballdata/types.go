package footballdata

import (
	"encoding/json"

	"github.com/yourusername/match-oracle/internal/models"
)

// CompetitionsResponse wraps the /competitions payload
type CompetitionsResponse struct {
	Count        int                `json:"count"`
	Competitions []CompetitionEntry `json:"competitions"`
}

// CompetitionEntry is one competition as served by the provider
type CompetitionEntry struct {
	ID               int             `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	Emblem           string          `json:"emblem"`
	Area             json.RawMessage `json:"area"`
	CurrentSeason    json.RawMessage `json:"currentSeason"`
	AvailableSeasons int             `json:"numberOfAvailableSeasons"`
}

// MatchesResponse wraps the /competitions/{code}/matches payload
type MatchesResponse struct {
	Competition CompetitionEntry `json:"competition"`
	Matches     []MatchEntry     `json:"matches"`
}

// MatchEntry is one fixture as served by the provider
type MatchEntry struct {
	ID       int             `json:"id"`
	UTCDate  string          `json:"utcDate"`
	Status   string          `json:"status"`
	Matchday int             `json:"matchday"`
	Stage    string          `json:"stage"`
	HomeTeam models.TeamRef  `json:"homeTeam"`
	AwayTeam models.TeamRef  `json:"awayTeam"`
	Score    *models.Score   `json:"score,omitempty"`
	Raw      json.RawMessage `json:"-"`
}

// H2HAggregates carries the provider's precomputed head-to-head tallies
type H2HAggregates struct {
	NumberOfMatches int       `json:"numberOfMatches"`
	TotalGoals      int       `json:"totalGoals"`
	HomeTeam        H2HTotals `json:"homeTeam"`
	AwayTeam        H2HTotals `json:"awayTeam"`
}

// H2HTotals is one side's record across the analyzed meetings
type H2HTotals struct {
	ID     int `json:"id"`
	Wins   int `json:"wins"`
	Draws  int `json:"draws"`
	Losses int `json:"losses"`
}

// H2HResponse wraps the /matches/{id}/head2head payload
type H2HResponse struct {
	Aggregates H2HAggregates `json:"aggregates"`
	Matches    []MatchEntry  `json:"matches"`
}
