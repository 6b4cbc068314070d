package projection

import (
	"fmt"
	"math"

	"github.com/joshuakim/sharpline/internal/models"
)

const (
	// HomeCourtBump is added to the home side's per-possession rate
	HomeCourtBump = 0.015

	// EdgeThreshold is the dead zone around the market total
	EdgeThreshold = 6.0

	// TrapThreshold marks deviations large enough to distrust the inputs
	TrapThreshold = 12.0

	// MaxEdgePercent caps the displayed edge
	MaxEdgePercent = 15.0
)

// Rationale strings for no-play outcomes
const (
	RationaleTrap      = "Unreliable Edge (Trap Line)"
	RationaleEfficient = "Line is too Efficient"
)

// Project computes the projected total for a matchup and compares it to the
// market total. The adjusted ratings are the offensive ratings after injuries.
func Project(away, home models.TeamMetrics, awayAdjusted, homeAdjusted, marketTotal float64) models.ProjectionResult {
	avgPace := (away.Pace + home.Pace) / 2
	awayExpected := (awayAdjusted + home.DefensiveRating) / 2
	homeExpected := (homeAdjusted + HomeCourtBump + away.DefensiveRating) / 2

	projected := (awayExpected + homeExpected) * avgPace
	return decide(projected, projected-marketTotal)
}

// decide applies the thresholds in order: trap, over, under, dead zone
func decide(projected, diff float64) models.ProjectionResult {
	result := models.ProjectionResult{
		ProjectedTotal: projected,
		Edge:           diff,
	}

	switch {
	case math.Abs(diff) > TrapThreshold:
		result.Recommendation = models.RecommendNoPlay
		result.Display = "STAY AWAY"
		result.ConfidenceTag = models.ConfidenceTrap
		result.Rationale = RationaleTrap
	case diff > EdgeThreshold:
		result.Recommendation = models.RecommendOver
		result.Display = "OVER"
		result.ConfidenceTag = models.ConfidenceStrong
		result.EdgePercent = math.Min(MaxEdgePercent, diff)
		result.Rationale = edgeRationale(result.EdgePercent)
	case diff < -EdgeThreshold:
		result.Recommendation = models.RecommendUnder
		result.Display = "UNDER"
		result.ConfidenceTag = models.ConfidenceStrong
		result.EdgePercent = math.Min(MaxEdgePercent, math.Abs(diff))
		result.Rationale = edgeRationale(result.EdgePercent)
	default:
		result.Recommendation = models.RecommendNoPlay
		result.Display = "STAY AWAY"
		result.ConfidenceTag = models.ConfidenceStrong
		result.Rationale = RationaleEfficient
	}

	return result
}

func edgeRationale(edgePercent float64) string {
	return fmt.Sprintf("Projected Edge: +%.1f%%", edgePercent)
}
