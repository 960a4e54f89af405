package engine

import (
	"fmt"
	"math"

	"github.com/yourusername/match-oracle/internal/models"
)

// Blend weights and shape constants. H2H history dominates the blend because
// the snapshot already aggregates direct meetings; recent form corrects for
// current squad strength.
const (
	DefaultH2HWeight = 0.7

	homeAdvantage    = 2.0
	formWeight       = 0.8
	goalDiffWeight   = 0.6
	drawScale        = 0.35
	probabilityFloor = 0.05

	goalsLine     = 2.5
	bttsBaseline  = 0.8
	bttsSteepness = 2.0
)

// outcome is an unnormalized or normalized {home, draw, away} distribution.
type outcome struct {
	home, draw, away float64
}

// Blender combines team form and head-to-head features into calibrated
// probabilities. Predict is pure computation: fixed inputs produce identical
// output on every call.
type Blender struct {
	h2hWeight float64
	scorer    ValueScorer
}

// NewBlender creates a blender with the given H2H weight and value scorer.
// Out-of-range weights fall back to the default; a nil scorer means no market
// feed and zero value scores.
func NewBlender(h2hWeight float64, scorer ValueScorer) *Blender {
	if h2hWeight <= 0 || h2hWeight >= 1 {
		h2hWeight = DefaultH2HWeight
	}
	if scorer == nil {
		scorer = NoOddsScorer{}
	}
	return &Blender{h2hWeight: h2hWeight, scorer: scorer}
}

// Predict produces the full prediction for a match. h2h may be nil, in which
// case the method degrades to form-only. Identity fields (teams, competition,
// dates) are filled in by the caller.
func (b *Blender) Predict(match *models.Match, home, away *models.TeamStats, h2h *H2HFeatures) *models.Prediction {
	formDist := b.formDistribution(home, away)

	var final outcome
	method := models.MethodFormOnly
	if h2h != nil {
		final = b.blend(b.h2hDistribution(h2h), formDist)
		method = models.MethodH2HForm
	} else {
		final = formDist
	}
	final = normalize(final)

	pOver := b.overProbability(home, away, h2h)
	goals := goalsPrediction(pOver)

	btts := b.bttsProbability(home, away, h2h)

	pred := &models.Prediction{
		MatchID:            match.ID,
		Label:              fmt.Sprintf("%s vs %s", match.HomeTeam.Name, match.AwayTeam.Name),
		CompetitionCode:    match.CompetitionCode,
		CompetitionName:    match.CompetitionName,
		HomeTeam:           match.HomeTeam.Name,
		AwayTeam:           match.AwayTeam.Name,
		UTCDate:            match.UTCDate.UTC().Format("2006-01-02T15:04:05Z"),
		Matchday:           match.Matchday,
		HomeWinProbability: final.home,
		HomeWinConfidence:  OutcomeConfidence(final.home),
		DrawProbability:    final.draw,
		DrawConfidence:     DrawConfidence(final.draw),
		AwayWinProbability: final.away,
		AwayWinConfidence:  OutcomeConfidence(final.away),
		Goals:              goals,
		BTTSProbability:    btts,
		BTTSConfidence:     GoalsConfidence(btts),
		PredictionMethod:   method,
		H2HAvailable:       h2h != nil,
	}
	pred.PredictedOutcome, pred.PredictedOutcomeP = pred.BestOutcome()
	pred.ValueScore = b.scorer.Score(match.ID, pred.HomeWinProbability)

	return pred
}

// formDistribution derives {home, draw, away} from the two teams' form and
// goal rates. Home advantage enters as a fixed additive bias on the raw win
// scores before the sigmoid squashes them; the draw component grows as the
// two sides' raw scores converge.
func (b *Blender) formDistribution(home, away *models.TeamStats) outcome {
	formDiff := home.Form - away.Form
	goalDiff := (home.GoalsForRate - home.GoalsAgainst) - (away.GoalsForRate - away.GoalsAgainst)

	homeRaw := sigmoid(homeAdvantage + formDiff*formWeight + goalDiff*goalDiffWeight)
	awayRaw := sigmoid(-homeAdvantage - formDiff*formWeight - goalDiff*goalDiffWeight)
	drawRaw := (1 - math.Abs(homeRaw-awayRaw)) * drawScale

	return normalize(outcome{home: homeRaw, draw: drawRaw, away: awayRaw})
}

// h2hDistribution turns snapshot win/draw ratios into a distribution, floored
// so a lopsided history never produces a zero-probability outcome.
func (b *Blender) h2hDistribution(h2h *H2HFeatures) outcome {
	return normalize(outcome{
		home: math.Max(probabilityFloor, h2h.HomeWinRatio),
		draw: math.Max(probabilityFloor, h2h.DrawRatio),
		away: math.Max(probabilityFloor, h2h.AwayWinRatio),
	})
}

// blend combines the two distributions componentwise.
func (b *Blender) blend(h2h, form outcome) outcome {
	w := b.h2hWeight
	return outcome{
		home: w*h2h.home + (1-w)*form.home,
		draw: w*h2h.draw + (1-w)*form.draw,
		away: w*h2h.away + (1-w)*form.away,
	}
}

// overProbability computes P(over 2.5 goals) from the expected combined goal
// rate. Each side's expectation crosses its attack with the opponent's
// defense; H2H history blends in at the configured weight when present.
func (b *Blender) overProbability(home, away *models.TeamStats, h2h *H2HFeatures) float64 {
	homeExpected := (home.GoalsForRate + away.GoalsAgainst) / 2
	awayExpected := (away.GoalsForRate + home.GoalsAgainst) / 2
	expectedGoals := homeExpected + awayExpected

	if h2h != nil {
		expectedGoals = b.h2hWeight*h2h.AvgGoalsPerMatch + (1-b.h2hWeight)*expectedGoals
	}

	return sigmoid(expectedGoals - goalsLine)
}

// bttsProbability follows the weakest-link principle: both teams score only
// as often as the weaker scoring potential allows.
func (b *Blender) bttsProbability(home, away *models.TeamStats, h2h *H2HFeatures) float64 {
	homeScoring := (home.GoalsForRate + away.GoalsAgainst) / 2
	awayScoring := (away.GoalsForRate + home.GoalsAgainst) / 2

	if h2h != nil {
		homeScoring = b.h2hWeight*h2h.HomeAvgGoals + (1-b.h2hWeight)*homeScoring
		awayScoring = b.h2hWeight*h2h.AwayAvgGoals + (1-b.h2hWeight)*awayScoring
	}

	minScoring := math.Min(homeScoring, awayScoring)
	return sigmoid((minScoring - bttsBaseline) * bttsSteepness)
}

// goalsPrediction picks the stronger side of the 2.5 line.
func goalsPrediction(pOver float64) models.GoalsPrediction {
	bet, probability := "Over 2.5", pOver
	if pOver < 0.5 {
		bet, probability = "Under 2.5", 1-pOver
	}
	return models.GoalsPrediction{
		Bet:         bet,
		Probability: probability,
		Confidence:  GoalsConfidence(probability),
	}
}

// normalize clips negatives to zero and rescales so the components sum to
// exactly 1.0. A degenerate all-zero input becomes the uniform distribution.
func normalize(o outcome) outcome {
	o.home = math.Max(0, o.home)
	o.draw = math.Max(0, o.draw)
	o.away = math.Max(0, o.away)

	total := o.home + o.draw + o.away
	if total == 0 {
		return outcome{home: 1.0 / 3, draw: 1.0 / 3, away: 1.0 / 3}
	}
	return outcome{home: o.home / total, draw: o.draw / total, away: o.away / total}
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}
