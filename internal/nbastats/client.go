package nbastats

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joshuakim/sharpline/internal/cache"
	"github.com/joshuakim/sharpline/internal/projection"
	"github.com/joshuakim/sharpline/internal/providers"
	"github.com/sirupsen/logrus"
)

const (
	baseURL      = "https://stats.nba.com/stats"
	providerName = "nbastats"
)

// Client fetches league team stats from stats.nba.com
type Client struct {
	season     string
	httpClient *http.Client
	baseURL    string
	guard      *providers.Guard
	cache      cache.Cache
	cacheTTL   time.Duration
	logger     *logrus.Logger
}

// NewClient creates a stats.nba.com client for a season such as "2025-26"
func NewClient(season string, timeout time.Duration, guard *providers.Guard, c cache.Cache, cacheTTL time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		season: season,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		guard:    guard,
		cache:    c,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// SetBaseURL points the client at another host
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// GetTeamMetrics returns live per-possession ratings and pace keyed by team code
func (c *Client) GetTeamMetrics(ctx context.Context) (projection.LiveMetrics, error) {
	key := fmt.Sprintf("%s:metrics:%s", providerName, c.season)
	return cache.Fetch(ctx, c.cache, key, c.cacheTTL, c.fetchTeamMetrics)
}

func (c *Client) fetchTeamMetrics(ctx context.Context) (projection.LiveMetrics, error) {
	params := url.Values{}
	params.Add("MeasureType", "Advanced")
	params.Add("PerMode", "PerGame")
	params.Add("Season", c.season)
	params.Add("SeasonType", "Regular Season")
	params.Add("LeagueID", "00")
	params.Add("PaceAdjust", "N")
	params.Add("PlusMinus", "N")
	params.Add("Rank", "N")
	params.Add("LastNGames", "0")
	params.Add("Month", "0")
	params.Add("OpponentTeamID", "0")
	params.Add("Period", "0")

	endpoint := c.baseURL + "/leaguedashteamstats?" + params.Encode()

	var resp statsResponse
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		_, err := providers.GetJSON(ctx, c.httpClient, providerName, endpoint, browserHeaders(), &resp)
		return err
	})
	if err != nil {
		return nil, err
	}

	live, unknown, err := ParseTeamMetrics(resp)
	if err != nil {
		return nil, providers.Malformed(providerName, err)
	}
	if len(unknown) > 0 {
		c.logger.WithFields(logrus.Fields{
			"provider": providerName,
			"teams":    unknown,
		}).Warn("Unrecognized team names in league stats")
	}
	return live, nil
}

// stats.nba.com rejects requests that do not look like they came from its site
func browserHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Referer", "https://www.nba.com/")
	h.Set("Origin", "https://www.nba.com")
	h.Set("x-nba-stats-origin", "stats")
	h.Set("x-nba-stats-token", "true")
	return h
}
