package sportsdata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/joshuakim/sharpline/internal/cache"
	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/providers"
	"github.com/sirupsen/logrus"
)

const (
	baseURL      = "https://api.sportsdata.io/v3"
	providerName = "sportsdata"
)

// Client handles communication with SportsDataIO API
type Client struct {
	apiKey      string
	season      string
	recentGames int
	httpClient  *http.Client
	baseURL     string
	guard       *providers.Guard
	cache       cache.Cache
	cacheTTL    time.Duration
	logger      *logrus.Logger
}

// NewClient creates a new SportsDataIO client. recentGames is how many of the
// latest games feed each average.
func NewClient(apiKey, season string, recentGames int, timeout time.Duration, guard *providers.Guard, c cache.Cache, cacheTTL time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		apiKey:      apiKey,
		season:      season,
		recentGames: recentGames,
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

// Player represents a player from SportsDataIO
type Player struct {
	PlayerID  int    `json:"PlayerID"`
	FirstName string `json:"FirstName"`
	LastName  string `json:"LastName"`
	Team      string `json:"Team"`
	Position  string `json:"Position"`
	Status    string `json:"Status"`
}

// FullName joins first and last name
func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// PlayerGameStats represents a player's stats for a single game
type PlayerGameStats struct {
	PlayerID int     `json:"PlayerID"`
	Name     string  `json:"Name"`
	Team     string  `json:"Team"`
	GameID   int     `json:"GameID"`
	DateTime string  `json:"DateTime"`
	Day      string  `json:"Day"`
	Points   float64 `json:"Points"`
	Rebounds float64 `json:"Rebounds"`
	Assists  float64 `json:"Assists"`
	Minutes  int     `json:"Minutes"`
	Games    int     `json:"Games"`
}

// GetNBAPlayers fetches all NBA players
func (c *Client) GetNBAPlayers(ctx context.Context) ([]Player, error) {
	return cache.Fetch(ctx, c.cache, providerName+":players", c.cacheTTL, func(ctx context.Context) ([]Player, error) {
		var players []Player
		err := c.fetch(ctx, fmt.Sprintf("%s/nba/scores/json/Players", c.baseURL), &players)
		return players, err
	})
}

// GetNBAPlayerGameStats fetches a player's game stats for the configured season
func (c *Client) GetNBAPlayerGameStats(ctx context.Context, playerID int) ([]PlayerGameStats, error) {
	key := fmt.Sprintf("%s:gamestats:%s:%d", providerName, c.season, playerID)
	return cache.Fetch(ctx, c.cache, key, c.cacheTTL, func(ctx context.Context) ([]PlayerGameStats, error) {
		var stats []PlayerGameStats
		err := c.fetch(ctx, fmt.Sprintf("%s/nba/stats/json/PlayerGameStatsByPlayer/%s/%d", c.baseURL, c.season, playerID), &stats)
		return stats, err
	})
}

// FindPlayer resolves a display name to a SportsDataIO player
func (c *Client) FindPlayer(ctx context.Context, name string) (Player, bool, error) {
	players, err := c.GetNBAPlayers(ctx)
	if err != nil {
		return Player{}, false, err
	}
	p, ok := indexPlayers(players)[models.NewPlayerKey(name)]
	return p, ok, nil
}

// GetRecent summarizes a player's most recent games. It returns false when
// no player matches the name.
func (c *Client) GetRecent(ctx context.Context, name string) (models.PlayerRecent, bool, error) {
	player, ok, err := c.FindPlayer(ctx, name)
	if err != nil || !ok {
		return models.PlayerRecent{}, false, err
	}

	recent, err := c.recent(ctx, player)
	if err != nil {
		return models.PlayerRecent{}, false, err
	}
	return recent, true, nil
}

func (c *Client) recent(ctx context.Context, player Player) (models.PlayerRecent, error) {
	stats, err := c.GetNBAPlayerGameStats(ctx, player.PlayerID)
	if err != nil {
		return models.PlayerRecent{}, err
	}

	recent := Summarize(stats, c.recentGames)
	recent.Name = player.FullName()
	recent.Team = player.Team
	return recent, nil
}

// RecentScoring returns the recent points average for each named player.
// The player list is fetched once per call. Players that cannot be matched
// are left out. A matched player with no games maps to 0. Lookups that fail
// are skipped and their errors joined.
func (c *Client) RecentScoring(ctx context.Context, names []string) (map[models.PlayerKey]float64, error) {
	scoring := make(map[models.PlayerKey]float64, len(names))

	players, err := c.GetNBAPlayers(ctx)
	if err != nil {
		return scoring, err
	}
	index := indexPlayers(players)

	var errs []error
	for _, name := range names {
		key := models.NewPlayerKey(name)
		if _, done := scoring[key]; done {
			continue
		}

		player, ok := index[key]
		if !ok {
			c.logger.WithFields(logrus.Fields{
				"provider": providerName,
				"player":   name,
			}).Debug("Player not found")
			continue
		}

		recent, err := c.recent(ctx, player)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				break
			}
			continue
		}
		scoring[key] = recent.AvgPoints
	}

	return scoring, errors.Join(errs...)
}

// indexPlayers keys players by normalized full name; the first match wins
func indexPlayers(players []Player) map[models.PlayerKey]Player {
	index := make(map[models.PlayerKey]Player, len(players))
	for _, p := range players {
		key := models.NewPlayerKey(p.FullName())
		if _, dup := index[key]; !dup {
			index[key] = p
		}
	}
	return index
}

func (c *Client) fetch(ctx context.Context, endpoint string, out any) error {
	header := http.Header{}
	header.Set("Ocp-Apim-Subscription-Key", c.apiKey)

	return c.guard.Do(ctx, func(ctx context.Context) error {
		_, err := providers.GetJSON(ctx, c.httpClient, providerName, endpoint, header, out)
		return err
	})
}

// Summarize averages the n most recent games the player appeared in
func Summarize(stats []PlayerGameStats, n int) models.PlayerRecent {
	played := make([]PlayerGameStats, 0, len(stats))
	for _, s := range stats {
		if s.Minutes > 0 || s.Games > 0 {
			played = append(played, s)
		}
	}
	sort.SliceStable(played, func(i, j int) bool {
		return played[i].DateTime > played[j].DateTime
	})
	if n > 0 && len(played) > n {
		played = played[:n]
	}

	recent := models.PlayerRecent{
		GamesPlayed: len(played),
		Games:       make([]models.GameLog, 0, len(played)),
	}
	if len(played) == 0 {
		return recent
	}

	for _, s := range played {
		recent.AvgPoints += s.Points
		recent.AvgRebounds += s.Rebounds
		recent.AvgAssists += s.Assists
		recent.Games = append(recent.Games, models.GameLog{
			Date:     gameDate(s),
			Points:   s.Points,
			Rebounds: s.Rebounds,
			Assists:  s.Assists,
		})
	}

	count := float64(len(played))
	recent.AvgPoints /= count
	recent.AvgRebounds /= count
	recent.AvgAssists /= count
	return recent
}

func gameDate(s PlayerGameStats) string {
	d := s.Day
	if d == "" {
		d = s.DateTime
	}
	if len(d) >= 10 {
		return d[:10]
	}
	return d
}
