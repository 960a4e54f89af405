package models

// Confidence labels attached to every predicted metric.
const (
	ConfidenceHigh   = "HIGH"
	ConfidenceMedium = "MEDIUM"
	ConfidenceLow    = "LOW"
)

// Prediction methods. H2H blending only applies when a usable snapshot exists;
// otherwise the blender degrades to form-only output.
const (
	MethodH2HForm  = "H2H+FormStats"
	MethodFormOnly = "FormStatsOnly"
)

// GoalsPrediction is the Over/Under 2.5 recommendation.
type GoalsPrediction struct {
	Bet         string  `json:"bet"`
	Probability float64 `json:"probability"`
	Confidence  string  `json:"confidence"`
}

// Prediction is the blended outcome forecast for a single match. One row per
// match per day: regeneration upserts on (match_id, created_at).
type Prediction struct {
	MatchID            int     `db:"match_id" json:"match_id"`
	Label              string  `db:"label" json:"match"`
	CompetitionCode    string  `db:"competition_code" json:"competition_code"`
	CompetitionName    string  `db:"competition_name" json:"competition"`
	HomeTeam           string  `db:"home_team" json:"home_team"`
	AwayTeam           string  `db:"away_team" json:"away_team"`
	UTCDate            string  `db:"utc_date" json:"utc_date"`
	Matchday           int     `db:"matchday" json:"matchday,omitempty"`
	HomeWinProbability float64 `db:"home_win_probability" json:"home_win_probability"`
	HomeWinConfidence  string  `db:"home_win_confidence" json:"home_win_confidence"`
	DrawProbability    float64 `db:"draw_probability" json:"draw_probability"`
	DrawConfidence     string  `db:"draw_confidence" json:"draw_confidence"`
	AwayWinProbability float64 `db:"away_win_probability" json:"away_win_probability"`
	AwayWinConfidence  string  `db:"away_win_confidence" json:"away_win_confidence"`
	PredictedOutcome   string  `db:"predicted_outcome" json:"predicted_outcome"`
	PredictedOutcomeP  float64 `db:"predicted_outcome_probability" json:"predicted_outcome_probability"`

	Goals GoalsPrediction `db:"goals_prediction" json:"goals_prediction"`

	BTTSProbability float64 `db:"btts_probability" json:"btts_probability"`
	BTTSConfidence  string  `db:"btts_confidence" json:"btts_confidence"`

	ValueScore float64 `db:"value_score" json:"value_score"`

	PredictionMethod string `db:"prediction_method" json:"prediction_method"`
	H2HAvailable     bool   `db:"h2h_available" json:"h2h_available"`
	CreatedAt        string `db:"created_at" json:"created_at"`
}

// BestOutcome returns the most likely of the three outcomes and its
// probability. Ties resolve home, then draw, then away.
func (p *Prediction) BestOutcome() (string, float64) {
	outcome, prob := "Home Win", p.HomeWinProbability
	if p.DrawProbability > prob {
		outcome, prob = "Draw", p.DrawProbability
	}
	if p.AwayWinProbability > prob {
		outcome, prob = "Away Win", p.AwayWinProbability
	}
	return outcome, prob
}
