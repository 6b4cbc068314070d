package projection

import "github.com/joshuakim/sharpline/internal/models"

// PropThreshold is the minimum gap between recent average and line to call value
const PropThreshold = 2.0

// NoRecentScoring is the game-log provider's "no games" sentinel
const NoRecentScoring = 0.0

// EvaluateProp compares a player's recent scoring average against a points line.
// Availability dominates: Out or Doubtful players are Unavailable whatever the gap.
// Callers must drop players whose average is NoRecentScoring before calling.
func EvaluateProp(seasonAvg, propLine float64, status models.InjuryStatus) models.PropResult {
	result := models.PropResult{SeasonAvg: seasonAvg}

	if status.IsSidelined() {
		result.Recommendation = models.PropUnavailable
		return result
	}

	result.Diff = seasonAvg - propLine
	switch {
	case result.Diff > PropThreshold:
		result.Recommendation = models.PropValueOver
	case result.Diff < -PropThreshold:
		result.Recommendation = models.PropValueUnder
	default:
		result.Recommendation = models.PropFair
	}
	return result
}
