package projection

import (
	"testing"
	"time"

	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/teams"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineAnalyzeGame(t *testing.T) {
	engine := NewEngine(teams.Default())
	line := models.GameLine{GameID: "g1", AwayTeam: "Oklahoma City Thunder", HomeTeam: "Los Angeles Lakers", TotalPoints: 225.0}

	t.Run("healthy rosters", func(t *testing.T) {
		got := engine.AnalyzeGame(line, nil, nil)

		assert.Equal(t, models.TeamCode("OKC"), got.Away.Code)
		assert.Equal(t, SourceStatic, got.Away.Source)
		assert.InDelta(t, 1.20, got.Away.AdjustedRating, 1e-9)
		assert.InDelta(t, 228.59, got.Result.ProjectedTotal, 0.01)
		assert.Equal(t, models.RecommendNoPlay, got.Result.Recommendation)
		assert.Empty(t, got.Flags)
	})

	t.Run("both away stars out", func(t *testing.T) {
		injuries := models.InjuryStatuses{
			models.NewPlayerKey("Shai Gilgeous-Alexander"): models.StatusOut,
			models.NewPlayerKey("Chet Holmgren"):           models.StatusOut,
		}
		got := engine.AnalyzeGame(line, nil, injuries)

		assert.InDelta(t, 1.04, got.Away.AdjustedRating, 1e-9)
		assert.Len(t, got.Away.InjuredStars, 2)
		assert.InDelta(t, 1.16, got.Home.AdjustedRating, 1e-9)
		assert.Empty(t, got.Home.InjuredStars)
	})

	t.Run("live metrics preferred", func(t *testing.T) {
		live := LiveMetrics{"LAL": {OffensiveRating: 1.10, DefensiveRating: 1.10, Pace: 100}}
		got := engine.AnalyzeGame(line, live, nil)

		assert.Equal(t, SourceLive, got.Home.Source)
		assert.Equal(t, SourceStatic, got.Away.Source)
	})
}

func TestEngineFlagsUnknownTeam(t *testing.T) {
	engine := NewEngine(teams.Default())
	got := engine.AnalyzeGame(models.GameLine{AwayTeam: "Seattle SuperSonics", HomeTeam: "Boston Celtics", TotalPoints: 220}, nil, nil)

	assert.Equal(t, SourceDefault, got.Away.Source)
	assert.Equal(t, DefaultMetrics, got.Away.Metrics)
	require.Len(t, got.Flags, 1)
	assert.Contains(t, got.Flags[0], "Seattle SuperSonics")
}

func TestEngineFlagsNonPositiveRating(t *testing.T) {
	table := teams.NewTable([]models.TeamReference{
		{Code: "BOS", Name: "Boston Celtics", Metrics: models.TeamMetrics{OffensiveRating: 0.10, DefensiveRating: 1.1, Pace: 100}, Stars: []string{"A", "B"}},
		{Code: "NYK", Name: "New York Knicks", Metrics: neutral},
	})
	injuries := models.InjuryStatuses{
		models.NewPlayerKey("A"): models.StatusOut,
		models.NewPlayerKey("B"): models.StatusOut,
	}

	got := NewEngine(table).AnalyzeGame(models.GameLine{AwayTeam: "Boston Celtics", HomeTeam: "New York Knicks", TotalPoints: 200}, nil, injuries)

	assert.InDelta(t, -0.06, got.Away.AdjustedRating, 1e-9)
	require.Len(t, got.Flags, 1)
	assert.Contains(t, got.Flags[0], "Boston Celtics offensive rating")
}

func TestEngineAnalyze(t *testing.T) {
	taken := time.Date(2026, 1, 15, 18, 0, 0, 0, time.UTC)
	snapshot := Snapshot{
		ID:      "snap-1",
		TakenAt: taken,
		Injuries: models.InjuryStatuses{
			models.NewPlayerKey("Injured Guy"): models.StatusOut,
		},
		GameLines: []models.GameLine{
			{GameID: "g1", AwayTeam: "Boston Celtics", HomeTeam: "Miami Heat", TotalPoints: 215.5},
			{GameID: "g2", AwayTeam: "Denver Nuggets", HomeTeam: "Utah Jazz", TotalPoints: 240.5},
		},
		PropLines: []models.PropLine{
			{GameID: "g1", PlayerName: "Hot Hand", Line: 24.5},
			{GameID: "g1", PlayerName: "Injured Guy", Line: 24.5},
			{GameID: "g1", PlayerName: "Zero Guy", Line: 10.5},
			{GameID: "g2", PlayerName: "Missing Guy", Line: 18.5},
		},
		RecentScoring: map[models.PlayerKey]float64{
			models.NewPlayerKey("Hot Hand"):    28.4,
			models.NewPlayerKey("Injured Guy"): 34.5,
			models.NewPlayerKey("Zero Guy"):    0,
		},
	}

	report := NewEngine(teams.Default()).Analyze(snapshot)

	assert.Equal(t, "snap-1", report.SnapshotID)
	assert.Equal(t, taken, report.GeneratedAt)
	require.Len(t, report.Games, 2)
	assert.Equal(t, "g1", report.Games[0].Line.GameID)
	assert.Equal(t, "g2", report.Games[1].Line.GameID)

	require.Len(t, report.Props, 2)
	assert.Equal(t, 2, report.ExcludedProps)
	assert.Equal(t, "Hot Hand", report.Props[0].Line.PlayerName)
	assert.Equal(t, models.PropValueOver, report.Props[0].Result.Recommendation)
	assert.Equal(t, models.StatusAvailable, report.Props[0].Status)
	assert.Equal(t, models.PropUnavailable, report.Props[1].Result.Recommendation)
	assert.Equal(t, models.StatusOut, report.Props[1].Status)
}

func TestEngineAnalyzeEmptySnapshot(t *testing.T) {
	report := NewEngine(teams.Default()).Analyze(Snapshot{ID: "empty"})

	assert.NotNil(t, report.Games)
	assert.NotNil(t, report.Props)
	assert.Empty(t, report.Games)
	assert.Empty(t, report.Props)
	assert.Zero(t, report.ExcludedProps)
}

func TestAnalyzePropMatchesAccentedNames(t *testing.T) {
	engine := NewEngine(teams.Default())
	recent := map[models.PlayerKey]float64{models.NewPlayerKey("Nikola Jokic"): 29.0}
	injuries := models.InjuryStatuses{models.NewPlayerKey("Nikola Jokic"): models.StatusQuestionable}

	got, ok := engine.AnalyzeProp(models.PropLine{PlayerName: "Nikola Jokić", Line: 26.5}, recent, injuries)

	require.True(t, ok)
	assert.Equal(t, models.StatusQuestionable, got.Status)
	assert.Equal(t, models.PropValueOver, got.Result.Recommendation)
}

func TestEngineAnalyzeGameCustomTable(t *testing.T) {
	table := teams.NewTable([]models.TeamReference{
		{Code: "SEA", Name: "Seattle SuperSonics", Metrics: models.TeamMetrics{OffensiveRating: 1.3, DefensiveRating: 1.0, Pace: 99}, Stars: []string{"Shawn Kemp"}},
		{Code: "VAN", Name: "Vancouver Grizzlies", Metrics: neutral},
	})
	injuries := models.InjuryStatuses{models.NewPlayerKey("Shawn Kemp"): models.StatusQuestionable}

	got := NewEngine(table).AnalyzeGame(models.GameLine{AwayTeam: "Seattle SuperSonics", HomeTeam: "Vancouver Grizzlies", TotalPoints: 220}, nil, injuries)

	assert.Equal(t, models.TeamCode("SEA"), got.Away.Code)
	assert.Equal(t, SourceStatic, got.Away.Source)
	assert.InDelta(t, 1.26, got.Away.AdjustedRating, 1e-9)
	assert.Equal(t, SourceStatic, got.Home.Source)
	assert.Empty(t, got.Flags)
}
