package engine

import "github.com/yourusername/match-oracle/internal/models"

// H2HFeatures holds the normalized head-to-head ratios consumed by the
// blender. Extraction is a projection of the stored snapshot: aggregation
// already happened when the snapshot was ingested.
type H2HFeatures struct {
	HomeWinRatio     float64
	AwayWinRatio     float64
	DrawRatio        float64
	AvgGoalsPerMatch float64
	HomeAvgGoals     float64
	AwayAvgGoals     float64
	MatchesAnalyzed  int
}

// ExtractH2HFeatures projects a cached snapshot into blender features.
// Returns nil when no snapshot exists or it analyzed zero matches, which
// tells the blender to degrade to form-only prediction.
func ExtractH2HFeatures(snapshot *models.H2HSnapshot) *H2HFeatures {
	if snapshot == nil || snapshot.MatchesAnalyzed == 0 {
		return nil
	}
	return &H2HFeatures{
		HomeWinRatio:     snapshot.HomeWinRatio,
		AwayWinRatio:     snapshot.AwayWinRatio,
		DrawRatio:        snapshot.DrawRatio,
		AvgGoalsPerMatch: snapshot.AvgGoalsPerMatch,
		HomeAvgGoals:     snapshot.HomeAvgGoals,
		AwayAvgGoals:     snapshot.AwayAvgGoals,
		MatchesAnalyzed:  snapshot.MatchesAnalyzed,
	}
}
