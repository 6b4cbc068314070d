package oddsapi

import (
	"fmt"

	"github.com/joshuakim/sharpline/internal/models"
)

// ParseGameLines picks one market total per game: the preferred bookmaker's
// totals market if it has one, otherwise the first bookmaker that does. The
// total is the first outcome's point. Games with no usable total are counted
// in skipped.
func ParseGameLines(games []models.Game, preferred string) (lines []models.GameLine, skipped int) {
	lines = make([]models.GameLine, 0, len(games))

	for _, game := range games {
		if game.AwayTeam == "" || game.HomeTeam == "" {
			skipped++
			continue
		}

		book, market, ok := pickMarket(game.Bookmakers, models.MarketTotals, preferred)
		if !ok || len(market.Outcomes) == 0 || market.Outcomes[0].Point == nil {
			skipped++
			continue
		}

		lines = append(lines, models.GameLine{
			GameID:       game.ID,
			AwayTeam:     game.AwayTeam,
			HomeTeam:     game.HomeTeam,
			CommenceTime: game.CommenceTime,
			TotalPoints:  *market.Outcomes[0].Point,
			Bookmaker:    book,
		})
	}

	return lines, skipped
}

// ParsePropLines extracts one points line per player from an event's
// player_points market. The player name is carried in the outcome
// description and the line in the Over outcome's point.
func ParsePropLines(game models.Game, preferred string) []models.PropLine {
	book, market, ok := pickMarket(game.Bookmakers, models.MarketPlayerPoints, preferred)
	if !ok {
		return nil
	}

	matchup := MatchupLabel(game.AwayTeam, game.HomeTeam)
	seen := make(map[models.PlayerKey]bool)
	var lines []models.PropLine

	for _, outcome := range market.Outcomes {
		if outcome.Name != "Over" || outcome.Description == "" || outcome.Point == nil {
			continue
		}
		key := models.NewPlayerKey(outcome.Description)
		if seen[key] {
			continue
		}
		seen[key] = true

		lines = append(lines, models.PropLine{
			GameID:       game.ID,
			PlayerName:   outcome.Description,
			Line:         *outcome.Point,
			MatchupLabel: matchup,
			Bookmaker:    book,
		})
	}

	return lines
}

// MatchupLabel renders "Away at Home"
func MatchupLabel(away, home string) string {
	return fmt.Sprintf("%s at %s", away, home)
}

func pickMarket(books []models.Bookmaker, key models.Market, preferred string) (string, models.MarketData, bool) {
	if preferred != "" {
		for _, b := range books {
			if b.Key != preferred {
				continue
			}
			if m, ok := findMarket(b.Markets, key); ok {
				return b.Key, m, true
			}
		}
	}
	for _, b := range books {
		if m, ok := findMarket(b.Markets, key); ok {
			return b.Key, m, true
		}
	}
	return "", models.MarketData{}, false
}

func findMarket(markets []models.MarketData, key models.Market) (models.MarketData, bool) {
	for _, m := range markets {
		if m.Key == key {
			return m, true
		}
	}
	return models.MarketData{}, false
}
