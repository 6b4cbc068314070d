package injuries

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/joshuakim/sharpline/internal/cache"
	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/providers"
	"github.com/sirupsen/logrus"
)

const (
	rapidAPIHost = "nba-injury-reports.p.rapidapi.com"
	providerName = "injuries"
)

// Report is one row of the daily injury report
type Report struct {
	Player string `json:"player"`
	Team   string `json:"team,omitempty"`
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Client fetches the daily NBA injury report through RapidAPI
type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	guard      *providers.Guard
	cache      cache.Cache
	cacheTTL   time.Duration
	now        func() time.Time
	logger     *logrus.Logger
}

// NewClient creates a new injury report client
func NewClient(apiKey string, timeout time.Duration, guard *providers.Guard, c cache.Cache, cacheTTL time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  "https://" + rapidAPIHost,
		guard:    guard,
		cache:    c,
		cacheTTL: cacheTTL,
		now:      time.Now,
		logger:   logger,
	}
}

// SetBaseURL points the client at another host
func (c *Client) SetBaseURL(u string) {
	c.baseURL = strings.TrimRight(u, "/")
}

// GetStatuses returns today's availability status per player
func (c *Client) GetStatuses(ctx context.Context) (models.InjuryStatuses, error) {
	date := c.now().Format("2006-01-02")

	reports, err := cache.Fetch(ctx, c.cache, providerName+":"+date, c.cacheTTL, func(ctx context.Context) ([]Report, error) {
		return c.fetchReports(ctx, date)
	})
	if err != nil {
		return nil, err
	}

	statuses, unknown := ParseStatuses(reports)
	if unknown > 0 {
		c.logger.WithFields(logrus.Fields{
			"provider": providerName,
			"count":    unknown,
		}).Debug("Injury statuses outside the known vocabulary")
	}
	return statuses, nil
}

func (c *Client) fetchReports(ctx context.Context, date string) ([]Report, error) {
	endpoint := fmt.Sprintf("%s/injuries/%s", c.baseURL, date)

	header := http.Header{}
	header.Set("X-RapidAPI-Key", c.apiKey)
	header.Set("X-RapidAPI-Host", rapidAPIHost)

	var reports []Report
	err := c.guard.Do(ctx, func(ctx context.Context) error {
		_, err := providers.GetJSON(ctx, c.httpClient, providerName, endpoint, header, &reports)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reports, nil
}

// ParseStatuses keys the report by player. When a player is listed more than
// once the most restrictive status wins. Rows without a player name are
// skipped; unknown counts statuses that mapped to Unknown.
func ParseStatuses(reports []Report) (statuses models.InjuryStatuses, unknown int) {
	statuses = make(models.InjuryStatuses, len(reports))

	for _, r := range reports {
		key := models.NewPlayerKey(r.Player)
		if key == "" {
			continue
		}

		status := models.ParseInjuryStatus(r.Status)
		if status == models.StatusUnknown {
			unknown++
		}

		if prev, ok := statuses[key]; ok && severity(prev) >= severity(status) {
			continue
		}
		statuses[key] = status
	}

	return statuses, unknown
}

func severity(s models.InjuryStatus) int {
	switch s {
	case models.StatusOut:
		return 4
	case models.StatusDoubtful:
		return 3
	case models.StatusQuestionable:
		return 2
	case models.StatusAvailable:
		return 1
	default:
		return 0
	}
}
