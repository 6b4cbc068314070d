package nbastats

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joshuakim/sharpline/internal/cache"
	"github.com/joshuakim/sharpline/internal/logger"
	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const advancedBody = `{
	"resource": "leaguedashteamstats",
	"resultSets": [{
		"name": "LeagueDashTeamStats",
		"headers": ["TEAM_ID", "TEAM_NAME", "GP", "OFF_RATING", "DEF_RATING", "PACE"],
		"rowSet": [
			[1610612760, "Oklahoma City Thunder", 40, 120.4, 104.1, 101.6],
			[1610612747, "Los Angeles Lakers", 41, 116.2, 115.0, 98.9],
			[1, "Seattle SuperSonics", 1, 100.0, 100.0, 100.0]
		]
	}]
}`

func decode(t *testing.T, body string) statsResponse {
	t.Helper()
	var resp statsResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	return resp
}

func TestParseTeamMetrics(t *testing.T) {
	live, unknown, err := ParseTeamMetrics(decode(t, advancedBody))

	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.Equal(t, []string{"Seattle SuperSonics"}, unknown)

	okc := live[models.TeamCode("OKC")]
	assert.InDelta(t, 1.204, okc.OffensiveRating, 1e-9)
	assert.InDelta(t, 1.041, okc.DefensiveRating, 1e-9)
	assert.InDelta(t, 101.6, okc.Pace, 1e-9)
}

func TestParseTeamMetricsMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no result sets", `{"resultSets": []}`},
		{"missing column", `{"resultSets": [{"headers": ["TEAM_NAME", "OFF_RATING", "PACE"], "rowSet": []}]}`},
		{"short row", `{"resultSets": [{"headers": ["TEAM_NAME", "OFF_RATING", "DEF_RATING", "PACE"], "rowSet": [["Boston Celtics", 1]]}]}`},
		{"string rating", `{"resultSets": [{"headers": ["TEAM_NAME", "OFF_RATING", "DEF_RATING", "PACE"], "rowSet": [["Boston Celtics", "x", 110, 95]]}]}`},
		{"numeric name", `{"resultSets": [{"headers": ["TEAM_NAME", "OFF_RATING", "DEF_RATING", "PACE"], "rowSet": [[7, 120, 110, 95]]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ParseTeamMetrics(decode(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func newTestClient(t *testing.T, c cache.Cache, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	guard := providers.NewGuard(providers.GuardConfig{Name: providerName, BreakerThreshold: 10}, logger.Discard())
	client := NewClient("2025-26", 5*time.Second, guard, c, time.Hour, logger.Discard())
	client.SetBaseURL(srv.URL)
	return client
}

func TestGetTeamMetrics(t *testing.T) {
	calls := 0
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/leaguedashteamstats", r.URL.Path)
		assert.Equal(t, "Advanced", r.URL.Query().Get("MeasureType"))
		assert.Equal(t, "2025-26", r.URL.Query().Get("Season"))
		assert.Equal(t, "stats", r.Header.Get("x-nba-stats-origin"))
		fmt.Fprint(w, advancedBody)
	})

	live, err := client.GetTeamMetrics(context.Background())

	require.NoError(t, err)
	assert.Len(t, live, 2)
	assert.Equal(t, 1, calls)
}

func TestGetTeamMetricsCached(t *testing.T) {
	sqlite, err := cache.NewSQLite("file:TestGetTeamMetricsCached?mode=memory&cache=shared")
	require.NoError(t, err)
	defer sqlite.Close()

	calls := 0
	client := newTestClient(t, sqlite, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, advancedBody)
	})

	first, err := client.GetTeamMetrics(context.Background())
	require.NoError(t, err)
	second, err := client.GetTeamMetrics(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
}

func TestGetTeamMetricsMalformedShape(t *testing.T) {
	client := newTestClient(t, nil, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resultSets": []}`)
	})

	_, err := client.GetTeamMetrics(context.Background())

	kind, ok := providers.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, providers.KindMalformedResponse, kind)
}
