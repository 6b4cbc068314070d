package projection

import "github.com/joshuakim/sharpline/internal/models"

// Per-star offensive rating penalties
const (
	SidelinedPenalty    = 0.08
	QuestionablePenalty = 0.04
)

// StarStatus pairs a star with the status used for the adjustment
type StarStatus struct {
	Name   string              `json:"name"`
	Status models.InjuryStatus `json:"status"`
}

// Penalty returns the rating penalty for one star with the given status
func Penalty(status models.InjuryStatus) float64 {
	switch status {
	case models.StatusOut, models.StatusDoubtful:
		return SidelinedPenalty
	case models.StatusQuestionable:
		return QuestionablePenalty
	default:
		return 0
	}
}

// AdjustRating subtracts the penalty of every star from base. Stars missing
// from statuses count as available. There is no floor.
func AdjustRating(base float64, stars []string, statuses models.InjuryStatuses) float64 {
	adjusted := base
	for _, star := range stars {
		adjusted -= Penalty(statusOf(star, statuses))
	}
	return adjusted
}

func statusOf(star string, statuses models.InjuryStatuses) models.InjuryStatus {
	if status, ok := statuses.Lookup(star); ok {
		return status
	}
	return models.StatusAvailable
}

// starStatuses lists the stars that carry a non-zero penalty
func starStatuses(stars []string, statuses models.InjuryStatuses) []StarStatus {
	var out []StarStatus
	for _, star := range stars {
		status := statusOf(star, statuses)
		if Penalty(status) > 0 {
			out = append(out, StarStatus{Name: star, Status: status})
		}
	}
	return out
}
