package repository

import (
	"context"
	"time"

	"github.com/yourusername/match-oracle/internal/models"
)

// MatchFilter narrows match queries. Zero values mean "no constraint".
type MatchFilter struct {
	CompetitionCode  string
	CompetitionCodes []string
	Statuses         []string
	DateFrom         time.Time
	DateTo           time.Time
	Limit            int
}

// CompetitionRepository defines the interface for competition data access
type CompetitionRepository interface {
	Upsert(ctx context.Context, competition *models.Competition) error
	GetByCode(ctx context.Context, code string) (*models.Competition, error)
	GetAll(ctx context.Context) ([]*models.Competition, error)
	TouchIngestedDate(ctx context.Context, code, date string) error
	LatestIngestedDate(ctx context.Context) (string, error)
	Collection
}

// MatchRepository defines the interface for match data access
type MatchRepository interface {
	Upsert(ctx context.Context, match *models.Match) error
	GetByID(ctx context.Context, id int) (*models.Match, error)
	Find(ctx context.Context, filter MatchFilter) ([]*models.Match, error)
	UpdateH2H(ctx context.Context, matchID int, snapshot *models.H2HSnapshot) error
	FinishedInvolving(ctx context.Context, teamID int, since time.Time, limit int) ([]*models.Match, error)
	TeamIDsWithFinishedMatches(ctx context.Context, since time.Time) ([]int, error)
	Collection
}

// TeamStatsRepository defines the interface for team stats data access
type TeamStatsRepository interface {
	Upsert(ctx context.Context, stats *models.TeamStats) error
	GetByTeamIDs(ctx context.Context, teamIDs []int) (map[int]*models.TeamStats, error)
	Collection
}

// PredictionRepository defines the interface for prediction data access
type PredictionRepository interface {
	UpsertBatch(ctx context.Context, predictions []*models.Prediction) error
	GetByDate(ctx context.Context, date string) ([]*models.Prediction, error)
	Collection
}

// FixtureRepository defines the interface for the legacy fixtures collection.
// Only retention and stats still touch it; ingestion moved to matches.
type FixtureRepository interface {
	Collection
}
