package projection

import (
	"fmt"
	"time"

	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/teams"
)

// Snapshot is everything one refresh cycle fetched. It is built once by the
// caller and never mutated afterwards.
type Snapshot struct {
	ID            string
	TakenAt       time.Time
	LiveMetrics   LiveMetrics
	Injuries      models.InjuryStatuses
	GameLines     []models.GameLine
	PropLines     []models.PropLine
	RecentScoring map[models.PlayerKey]float64
}

// TeamSide is one team's inputs to a game projection
type TeamSide struct {
	Name           string             `json:"name"`
	Code           models.TeamCode    `json:"code,omitempty"`
	Metrics        models.TeamMetrics `json:"metrics"`
	Source         MetricsSource      `json:"source"`
	AdjustedRating float64            `json:"adjusted_rating"`
	InjuredStars   []StarStatus       `json:"injured_stars,omitempty"`
}

// GameAnalysis is the projection for one game line
type GameAnalysis struct {
	Line   models.GameLine         `json:"line"`
	Away   TeamSide                `json:"away"`
	Home   TeamSide                `json:"home"`
	Result models.ProjectionResult `json:"result"`
	Flags  []string                `json:"flags,omitempty"`
}

// PropAnalysis is the evaluation of one prop line
type PropAnalysis struct {
	Line   models.PropLine     `json:"line"`
	Status models.InjuryStatus `json:"status"`
	Result models.PropResult   `json:"result"`
}

// Report is the engine's output for one snapshot
type Report struct {
	SnapshotID    string         `json:"snapshot_id"`
	GeneratedAt   time.Time      `json:"generated_at"`
	Games         []GameAnalysis `json:"games"`
	Props         []PropAnalysis `json:"props"`
	ExcludedProps int            `json:"excluded_props"`
}

// Engine runs the projection rules against a snapshot
type Engine struct {
	table *teams.Table
}

// NewEngine creates an engine over the given reference table
func NewEngine(table *teams.Table) *Engine {
	return &Engine{table: table}
}

// Analyze projects every game line and evaluates every prop line in the snapshot
func (e *Engine) Analyze(s Snapshot) Report {
	report := Report{
		SnapshotID:  s.ID,
		GeneratedAt: s.TakenAt,
		Games:       make([]GameAnalysis, 0, len(s.GameLines)),
		Props:       make([]PropAnalysis, 0, len(s.PropLines)),
	}

	for _, line := range s.GameLines {
		report.Games = append(report.Games, e.AnalyzeGame(line, s.LiveMetrics, s.Injuries))
	}

	for _, line := range s.PropLines {
		analysis, ok := e.AnalyzeProp(line, s.RecentScoring, s.Injuries)
		if !ok {
			report.ExcludedProps++
			continue
		}
		report.Props = append(report.Props, analysis)
	}

	return report
}

// AnalyzeGame projects a single game line
func (e *Engine) AnalyzeGame(line models.GameLine, live LiveMetrics, injuries models.InjuryStatuses) GameAnalysis {
	away := e.side(line.AwayTeam, live, injuries)
	home := e.side(line.HomeTeam, live, injuries)

	analysis := GameAnalysis{
		Line:   line,
		Away:   away,
		Home:   home,
		Result: Project(away.Metrics, home.Metrics, away.AdjustedRating, home.AdjustedRating, line.TotalPoints),
	}

	for _, side := range []TeamSide{away, home} {
		if side.AdjustedRating <= 0 {
			analysis.Flags = append(analysis.Flags,
				fmt.Sprintf("%s offensive rating is %.3f after injury adjustment", side.Name, side.AdjustedRating))
		}
		if side.Source == SourceDefault {
			analysis.Flags = append(analysis.Flags,
				fmt.Sprintf("%s metrics unknown, neutral defaults used", side.Name))
		}
	}

	return analysis
}

// AnalyzeProp evaluates one prop line. It returns false when the player has no
// recent scoring data and must be left out of the results.
func (e *Engine) AnalyzeProp(line models.PropLine, recent map[models.PlayerKey]float64, injuries models.InjuryStatuses) (PropAnalysis, bool) {
	avg, ok := recent[models.NewPlayerKey(line.PlayerName)]
	if !ok || avg == NoRecentScoring {
		return PropAnalysis{}, false
	}

	status := statusOf(line.PlayerName, injuries)
	return PropAnalysis{
		Line:   line,
		Status: status,
		Result: EvaluateProp(avg, line.Line, status),
	}, true
}

func (e *Engine) side(name string, live LiveMetrics, injuries models.InjuryStatuses) TeamSide {
	side := TeamSide{Name: name}

	var (
		code models.TeamCode
		ok   bool
	)
	if e.table != nil {
		code, ok = e.table.Code(name)
	}
	if !ok {
		side.Metrics = DefaultMetrics
		side.Source = SourceDefault
		side.AdjustedRating = DefaultMetrics.OffensiveRating
		return side
	}

	side.Code = code
	side.Metrics, side.Source = resolveCode(code, live, e.table)

	stars := e.table.Stars(code)
	side.AdjustedRating = AdjustRating(side.Metrics.OffensiveRating, stars, injuries)
	side.InjuredStars = starStatuses(stars, injuries)
	return side
}
