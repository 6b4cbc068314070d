package models

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nameSuffixes = map[string]bool{
	"jr": true, "sr": true, "ii": true, "iii": true, "iv": true,
}

// NewPlayerKey normalizes a display name so that "Luka Dončić", "luka doncic"
// and "Luka Doncic " all resolve to the same key. Providers disagree on
// accents, punctuation and generational suffixes.
func NewPlayerKey(name string) PlayerKey {
	stripAccents := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(stripAccents, name)
	if err != nil {
		folded = name
	}

	folded = strings.ToLower(folded)
	folded = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return r
		case r == '-' || unicode.IsSpace(r):
			return ' '
		default:
			return -1
		}
	}, folded)

	parts := strings.Fields(folded)
	if len(parts) > 1 && nameSuffixes[parts[len(parts)-1]] {
		parts = parts[:len(parts)-1]
	}
	return PlayerKey(strings.Join(parts, " "))
}

// InjuryStatuses maps players to their current availability
type InjuryStatuses map[PlayerKey]InjuryStatus

// Lookup returns the status for a player, and false when the provider had no entry
func (s InjuryStatuses) Lookup(name string) (InjuryStatus, bool) {
	status, ok := s[NewPlayerKey(name)]
	return status, ok
}

// ParseInjuryStatus maps a provider's status string onto the enum
func ParseInjuryStatus(raw string) InjuryStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "out", "out for season", "inactive", "suspended":
		return StatusOut
	case "doubtful":
		return StatusDoubtful
	case "questionable", "game time decision", "gtd", "day-to-day", "day to day":
		return StatusQuestionable
	case "available", "probable", "active", "healthy":
		return StatusAvailable
	default:
		return StatusUnknown
	}
}
