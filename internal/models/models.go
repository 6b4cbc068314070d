package models

import "time"

// Sport represents supported sports
type Sport string

const (
	SportNBA Sport = "basketball_nba"
)

// Market represents betting market types
type Market string

const (
	MarketTotals       Market = "totals"        // Over/under
	MarketPlayerPoints Market = "player_points" // Player points prop
)

// TeamCode is the validated three-letter identifier for an NBA team
type TeamCode string

// PlayerKey is a normalized player name used for lookups across providers
type PlayerKey string

// TeamMetrics holds per-possession scoring rates and pace for a team.
// Ratings are points per possession; pace is possessions per game.
type TeamMetrics struct {
	OffensiveRating float64 `json:"offensive_rating"`
	DefensiveRating float64 `json:"defensive_rating"`
	Pace            float64 `json:"pace"`
}

// TeamReference is a static baseline entry for one team
type TeamReference struct {
	Code    TeamCode    `json:"code"`
	Name    string      `json:"name"`
	Metrics TeamMetrics `json:"metrics"`
	Stars   []string    `json:"stars"`
}

// InjuryStatus is a player's availability
type InjuryStatus string

const (
	StatusAvailable    InjuryStatus = "Available"
	StatusQuestionable InjuryStatus = "Questionable"
	StatusDoubtful     InjuryStatus = "Doubtful"
	StatusOut          InjuryStatus = "Out"
	StatusUnknown      InjuryStatus = "Unknown"
)

// IsSidelined reports whether the player should be treated as not playing
func (s InjuryStatus) IsSidelined() bool {
	return s == StatusOut || s == StatusDoubtful
}

// GameLine is the market total for one matchup
type GameLine struct {
	GameID       string    `json:"game_id"`
	AwayTeam     string    `json:"away_team"`
	HomeTeam     string    `json:"home_team"`
	CommenceTime time.Time `json:"commence_time"`
	TotalPoints  float64   `json:"total_points"`
	Bookmaker    string    `json:"bookmaker"`
}

// PropLine is a player points line for one matchup
type PropLine struct {
	GameID       string  `json:"game_id"`
	PlayerName   string  `json:"player_name"`
	Line         float64 `json:"line"`
	MatchupLabel string  `json:"matchup_label"`
	Bookmaker    string  `json:"bookmaker"`
}

// Recommendation is the call for a game total
type Recommendation string

const (
	RecommendOver   Recommendation = "over"
	RecommendUnder  Recommendation = "under"
	RecommendNoPlay Recommendation = "no_play"
)

// ConfidenceTag qualifies a recommendation
type ConfidenceTag string

const (
	ConfidenceStrong ConfidenceTag = "strong"
	ConfidenceTrap   ConfidenceTag = "trap"
)

// ProjectionResult is the outcome of projecting one game total
type ProjectionResult struct {
	Recommendation Recommendation `json:"recommendation"`
	Display        string         `json:"display"`
	ProjectedTotal float64        `json:"projected_total"`
	Edge           float64        `json:"edge"`
	EdgePercent    float64        `json:"edge_percent,omitempty"`
	Rationale      string         `json:"rationale"`
	ConfidenceTag  ConfidenceTag  `json:"confidence_tag"`
}

// PropRecommendation is the call for a player prop
type PropRecommendation string

const (
	PropValueOver   PropRecommendation = "value_over"
	PropValueUnder  PropRecommendation = "value_under"
	PropFair        PropRecommendation = "fair"
	PropUnavailable PropRecommendation = "unavailable"
)

// PropResult is the outcome of evaluating one player prop
type PropResult struct {
	Recommendation PropRecommendation `json:"recommendation"`
	SeasonAvg      float64            `json:"season_avg"`
	Diff           float64            `json:"diff"`
}

// Game represents a single sporting event as returned by The Odds API
type Game struct {
	ID           string      `json:"id"`
	SportKey     Sport       `json:"sport_key"`
	SportTitle   string      `json:"sport_title"`
	CommenceTime time.Time   `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers,omitempty"`
}

// Bookmaker represents a sportsbook's odds for a game
type Bookmaker struct {
	Key        string       `json:"key"`
	Title      string       `json:"title"`
	LastUpdate time.Time    `json:"last_update"`
	Markets    []MarketData `json:"markets"`
}

// MarketData represents odds for a specific market type
type MarketData struct {
	Key      Market    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome represents a single betting option.
// For player props Description carries the player name.
type Outcome struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Price       float64  `json:"price"`           // American odds (e.g., -110, +150)
	Point       *float64 `json:"point,omitempty"` // Total or prop line
}

// Event is an upcoming game listing from the events endpoint
type Event struct {
	ID           string    `json:"id"`
	SportKey     Sport     `json:"sport_key"`
	CommenceTime time.Time `json:"commence_time"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
}

// GameLog is one game from a player's log
type GameLog struct {
	Date     string  `json:"date"`
	Points   float64 `json:"points"`
	Rebounds float64 `json:"rebounds"`
	Assists  float64 `json:"assists"`
}

// PlayerRecent summarizes a player's most recent games
type PlayerRecent struct {
	Name        string    `json:"name"`
	Team        string    `json:"team"`
	GamesPlayed int       `json:"games_played"`
	AvgPoints   float64   `json:"avg_points"`
	AvgRebounds float64   `json:"avg_rebounds"`
	AvgAssists  float64   `json:"avg_assists"`
	Games       []GameLog `json:"games"`
}

// ProviderFailure is a collaborator error surfaced in a refresh response
type ProviderFailure struct {
	Provider string `json:"provider"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// SnapshotInfo describes what one refresh cycle fetched
type SnapshotInfo struct {
	ID             string            `json:"id"`
	TakenAt        time.Time         `json:"taken_at"`
	DurationMs     int64             `json:"duration_ms"`
	LiveTeams      int               `json:"live_teams"`
	InjuryEntries  int               `json:"injury_entries"`
	GameLines      int               `json:"game_lines"`
	PropLines      int               `json:"prop_lines"`
	RecentPlayers  int               `json:"recent_players"`
	ExcludedProps  int               `json:"excluded_props"`
	ProviderErrors []ProviderFailure `json:"provider_errors"`
}
