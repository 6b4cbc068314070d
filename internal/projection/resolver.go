package projection

import (
	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/teams"
)

// MetricsSource records where a team's metrics came from
type MetricsSource string

const (
	SourceLive    MetricsSource = "live"
	SourceStatic  MetricsSource = "static"
	SourceDefault MetricsSource = "default"
)

// DefaultMetrics is used for teams unknown to every source
var DefaultMetrics = models.TeamMetrics{OffensiveRating: 1.1, DefensiveRating: 1.1, Pace: 100.0}

// LiveMetrics holds the metrics fetched for this refresh, keyed by team code
type LiveMetrics map[models.TeamCode]models.TeamMetrics

// Resolve returns the metrics for a team name: live first, then the static
// table, then DefaultMetrics. Names are looked up in table, so a team the
// table does not know gets the defaults. It always returns usable metrics.
func Resolve(teamName string, live LiveMetrics, table *teams.Table) models.TeamMetrics {
	if table == nil {
		return DefaultMetrics
	}
	code, ok := table.Code(teamName)
	if !ok {
		return DefaultMetrics
	}
	metrics, _ := resolveCode(code, live, table)
	return metrics
}

func resolveCode(code models.TeamCode, live LiveMetrics, table *teams.Table) (models.TeamMetrics, MetricsSource) {
	if m, ok := live[code]; ok && usable(m) {
		return m, SourceLive
	}
	if table != nil {
		if ref, ok := table.Get(code); ok && usable(ref.Metrics) {
			return ref.Metrics, SourceStatic
		}
	}
	return DefaultMetrics, SourceDefault
}

func usable(m models.TeamMetrics) bool {
	return m.OffensiveRating > 0 && m.DefensiveRating > 0 && m.Pace > 0
}
