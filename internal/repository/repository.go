package repository

import (
	"fmt"

	"github.com/yourusername/match-oracle/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Competition CompetitionRepository
	Match       MatchRepository
	TeamStats   TeamStatsRepository
	Prediction  PredictionRepository
	Fixture     FixtureRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Competition: NewPostgresCompetitionRepository(db),
		Match:       NewPostgresMatchRepository(db),
		TeamStats:   NewPostgresTeamStatsRepository(db),
		Prediction:  NewPostgresPredictionRepository(db),
		Fixture:     NewPostgresFixtureRepository(db),
	}, nil
}
