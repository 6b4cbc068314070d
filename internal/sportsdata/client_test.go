package sportsdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joshuakim/sharpline/internal/logger"
	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func game(date string, pts, reb, ast float64, minutes int) PlayerGameStats {
	return PlayerGameStats{DateTime: date + "T19:30:00", Day: date + "T00:00:00", Points: pts, Rebounds: reb, Assists: ast, Minutes: minutes}
}

func TestSummarize(t *testing.T) {
	stats := []PlayerGameStats{
		game("2026-01-01", 10, 5, 5, 30),
		game("2026-01-03", 20, 6, 4, 32),
		game("2026-01-05", 30, 7, 3, 35),
		game("2026-01-07", 0, 0, 0, 0), // did not play
		game("2026-01-09", 40, 8, 2, 36),
		game("2026-01-11", 25, 9, 1, 34),
		game("2026-01-13", 35, 10, 6, 33),
	}

	got := Summarize(stats, 5)

	assert.Equal(t, 5, got.GamesPlayed)
	assert.InDelta(t, 30.0, got.AvgPoints, 1e-9) // 35 25 40 30 20
	assert.InDelta(t, 8.0, got.AvgRebounds, 1e-9)
	assert.InDelta(t, 3.2, got.AvgAssists, 1e-9)
	require.Len(t, got.Games, 5)
	assert.Equal(t, "2026-01-13", got.Games[0].Date)
	assert.Equal(t, "2026-01-03", got.Games[4].Date)
}

func TestSummarizeNoGames(t *testing.T) {
	got := Summarize([]PlayerGameStats{game("2026-01-01", 0, 0, 0, 0)}, 5)

	assert.Zero(t, got.GamesPlayed)
	assert.Zero(t, got.AvgPoints)
	assert.Empty(t, got.Games)
}

func TestSummarizeAllGames(t *testing.T) {
	stats := []PlayerGameStats{game("2026-01-01", 10, 0, 0, 20), game("2026-01-02", 20, 0, 0, 20)}
	assert.Equal(t, 2, Summarize(stats, 0).GamesPlayed)
}

type callCounts struct {
	players int
	stats   int
}

func newTestClient(t *testing.T) (*Client, *callCounts) {
	t.Helper()
	calls := &callCounts{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sd-key", r.Header.Get("Ocp-Apim-Subscription-Key"))
		switch r.URL.Path {
		case "/nba/scores/json/Players":
			calls.players++
			fmt.Fprint(w, `[
				{"PlayerID": 1, "FirstName": "Nikola", "LastName": "Jokić", "Team": "DEN"},
				{"PlayerID": 2, "FirstName": "Rookie", "LastName": "Bench", "Team": "UTA"},
				{"PlayerID": 3, "FirstName": "Broken", "LastName": "Feed", "Team": "WAS"}]`)
		case "/nba/stats/json/PlayerGameStatsByPlayer/2026/1":
			calls.stats++
			fmt.Fprint(w, `[
				{"PlayerID": 1, "DateTime": "2026-01-10T20:00:00", "Points": 30, "Rebounds": 12, "Assists": 10, "Minutes": 36},
				{"PlayerID": 1, "DateTime": "2026-01-12T20:00:00", "Points": 26, "Rebounds": 14, "Assists": 8, "Minutes": 34}]`)
		case "/nba/stats/json/PlayerGameStatsByPlayer/2026/2":
			fmt.Fprint(w, `[]`)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)

	guard := providers.NewGuard(providers.GuardConfig{Name: providerName, BreakerThreshold: 10}, logger.Discard())
	c := NewClient("sd-key", "2026", 5, 5*time.Second, guard, nil, time.Hour, logger.Discard())
	c.SetBaseURL(srv.URL)
	return c, calls
}

func TestGetRecent(t *testing.T) {
	c, _ := newTestClient(t)

	recent, ok, err := c.GetRecent(context.Background(), "nikola jokic")

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Nikola Jokić", recent.Name)
	assert.Equal(t, "DEN", recent.Team)
	assert.Equal(t, 2, recent.GamesPlayed)
	assert.InDelta(t, 28.0, recent.AvgPoints, 1e-9)
	assert.Equal(t, "2026-01-12", recent.Games[0].Date)

	_, ok, err = c.GetRecent(context.Background(), "Nobody Special")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecentScoring(t *testing.T) {
	c, calls := newTestClient(t)

	scoring, err := c.RecentScoring(context.Background(), []string{
		"Nikola Jokic", "Nikola Jokić", "Rookie Bench", "Nobody Special", "Broken Feed",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Broken Feed")
	kind, _ := providers.KindOf(err)
	assert.Equal(t, providers.KindUnreachable, kind)

	assert.Len(t, scoring, 2)
	assert.InDelta(t, 28.0, scoring[models.NewPlayerKey("Nikola Jokic")], 1e-9)
	avg, ok := scoring[models.NewPlayerKey("Rookie Bench")]
	assert.True(t, ok)
	assert.Zero(t, avg)
	assert.Equal(t, 1, calls.stats)
	// no cache configured, the roster is still downloaded only once
	assert.Equal(t, 1, calls.players)
}

func TestRecentScoringRosterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	guard := providers.NewGuard(providers.GuardConfig{Name: providerName, BreakerThreshold: 10}, logger.Discard())
	c := NewClient("sd-key", "2026", 5, 5*time.Second, guard, nil, time.Hour, logger.Discard())
	c.SetBaseURL(srv.URL)

	scoring, err := c.RecentScoring(context.Background(), []string{"Nikola Jokic", "Rookie Bench"})
	require.Error(t, err)
	assert.NotNil(t, scoring)
	assert.Empty(t, scoring)
}
