package oddsapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/providers"
	"github.com/sirupsen/logrus"
)

const (
	baseURL      = "https://api.the-odds-api.com/v4"
	providerName = "oddsapi"
)

// Client handles communication with The Odds API
type Client struct {
	apiKey     string
	bookmaker  string
	httpClient *http.Client
	baseURL    string
	guard      *providers.Guard
	logger     *logrus.Logger
}

// NewClient creates a new Odds API client. bookmaker is the preferred book for
// both totals and props; other books are used only when it has no line.
func NewClient(apiKey, bookmaker string, timeout time.Duration, guard *providers.Guard, logger *logrus.Logger) *Client {
	return &Client{
		apiKey:    apiKey,
		bookmaker: bookmaker,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		guard:   guard,
		logger:  logger,
	}
}

// SetBaseURL points the client at another host
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// GetOdds fetches every game for a sport with the given markets
func (c *Client) GetOdds(ctx context.Context, sport models.Sport, markets ...models.Market) ([]models.Game, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/odds/", c.baseURL, sport)

	params := url.Values{}
	params.Add("apiKey", c.apiKey)
	params.Add("regions", "us")
	params.Add("markets", joinMarkets(markets))
	params.Add("oddsFormat", "american")

	var games []models.Game
	if err := c.get(ctx, endpoint+"?"+params.Encode(), &games); err != nil {
		return nil, err
	}
	return games, nil
}

// GetEvents lists upcoming games without odds
func (c *Client) GetEvents(ctx context.Context, sport models.Sport) ([]models.Event, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/events", c.baseURL, sport)

	params := url.Values{}
	params.Add("apiKey", c.apiKey)

	var events []models.Event
	if err := c.get(ctx, endpoint+"?"+params.Encode(), &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetEventOdds fetches the given markets for a single event
func (c *Client) GetEventOdds(ctx context.Context, sport models.Sport, eventID string, markets ...models.Market) (models.Game, error) {
	endpoint := fmt.Sprintf("%s/sports/%s/events/%s/odds", c.baseURL, sport, url.PathEscape(eventID))

	params := url.Values{}
	params.Add("apiKey", c.apiKey)
	params.Add("regions", "us")
	params.Add("markets", joinMarkets(markets))
	params.Add("oddsFormat", "american")

	var game models.Game
	if err := c.get(ctx, endpoint+"?"+params.Encode(), &game); err != nil {
		return models.Game{}, err
	}
	return game, nil
}

// GetGameLines fetches NBA totals and reduces each game to one market total.
// Games without any totals line are skipped.
func (c *Client) GetGameLines(ctx context.Context) ([]models.GameLine, error) {
	games, err := c.GetOdds(ctx, models.SportNBA, models.MarketTotals)
	if err != nil {
		return nil, err
	}

	lines, skipped := ParseGameLines(games, c.bookmaker)
	if skipped > 0 {
		c.logger.WithFields(logrus.Fields{
			"provider": providerName,
			"skipped":  skipped,
		}).Debug("Games without a totals line")
	}
	return lines, nil
}

// GetPropLines fetches player points lines for the first limit upcoming games
// by tip-off, or all games when limit is 0. Lines from events that loaded are
// returned alongside the joined errors of events that did not.
func (c *Client) GetPropLines(ctx context.Context, limit int) ([]models.PropLine, error) {
	events, err := c.GetEvents(ctx, models.SportNBA)
	if err != nil {
		return nil, err
	}

	events = ScanWindow(events, limit)

	var lines []models.PropLine
	var errs []error
	for _, event := range events {
		game, err := c.GetEventOdds(ctx, models.SportNBA, event.ID, models.MarketPlayerPoints)
		if err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", event.ID, err))
			continue
		}
		lines = append(lines, ParsePropLines(game, c.bookmaker)...)
	}

	return lines, errors.Join(errs...)
}

func (c *Client) get(ctx context.Context, u string, out any) error {
	return c.guard.Do(ctx, func(ctx context.Context) error {
		header, err := providers.GetJSON(ctx, c.httpClient, providerName, u, nil, out)
		c.logQuota(header)
		return err
	})
}

// logQuota records the remaining request budget from the response headers
func (c *Client) logQuota(header http.Header) {
	if header == nil {
		return
	}
	remaining := header.Get("X-Requests-Remaining")
	if remaining == "" {
		return
	}
	c.logger.WithFields(logrus.Fields{
		"provider":  providerName,
		"remaining": remaining,
		"used":      header.Get("X-Requests-Used"),
	}).Debug("Odds API quota")
}

// ScanWindow orders events by tip-off and keeps the first limit (0 keeps all)
func ScanWindow(events []models.Event, limit int) []models.Event {
	sorted := make([]models.Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CommenceTime.Before(sorted[j].CommenceTime)
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func joinMarkets(markets []models.Market) string {
	keys := make([]string, len(markets))
	for i, m := range markets {
		keys[i] = string(m)
	}
	return strings.Join(keys, ",")
}
