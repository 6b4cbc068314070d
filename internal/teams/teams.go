package teams

import (
	"sort"
	"strings"

	"github.com/joshuakim/sharpline/internal/models"
)

// Table is the static team reference, keyed by team code. Read-only after construction.
type Table struct {
	byCode map[models.TeamCode]models.TeamReference
	byName map[string]models.TeamCode
}

// Baseline ratings and stars for the 2025-26 season
var baseline = []models.TeamReference{
	{Code: "ATL", Name: "Atlanta Hawks", Metrics: models.TeamMetrics{OffensiveRating: 1.12, DefensiveRating: 1.13, Pace: 105.9}, Stars: []string{"Jalen Johnson", "Zaccharie Risacher"}},
	{Code: "BOS", Name: "Boston Celtics", Metrics: models.TeamMetrics{OffensiveRating: 1.21, DefensiveRating: 1.10, Pace: 95.3}, Stars: []string{"Jayson Tatum", "Jaylen Brown"}},
	{Code: "BKN", Name: "Brooklyn Nets", Metrics: models.TeamMetrics{OffensiveRating: 1.07, DefensiveRating: 1.16, Pace: 97.8}, Stars: []string{"Cam Thomas", "Nicolas Claxton"}},
	{Code: "CHA", Name: "Charlotte Hornets", Metrics: models.TeamMetrics{OffensiveRating: 1.13, DefensiveRating: 1.13, Pace: 101.5}, Stars: []string{"LaMelo Ball", "Brandon Miller"}},
	{Code: "CHI", Name: "Chicago Bulls", Metrics: models.TeamMetrics{OffensiveRating: 1.13, DefensiveRating: 1.14, Pace: 103.3}, Stars: []string{"Josh Giddey", "Coby White"}},
	{Code: "CLE", Name: "Cleveland Cavaliers", Metrics: models.TeamMetrics{OffensiveRating: 1.18, DefensiveRating: 1.11, Pace: 101.0}, Stars: []string{"Donovan Mitchell", "Evan Mobley"}},
	{Code: "DAL", Name: "Dallas Mavericks", Metrics: models.TeamMetrics{OffensiveRating: 1.14, DefensiveRating: 1.11, Pace: 100.1}, Stars: []string{"Luka Doncic", "Kyrie Irving"}},
	{Code: "DEN", Name: "Denver Nuggets", Metrics: models.TeamMetrics{OffensiveRating: 1.20, DefensiveRating: 1.15, Pace: 99.0}, Stars: []string{"Nikola Jokic", "Jamal Murray"}},
	{Code: "DET", Name: "Detroit Pistons", Metrics: models.TeamMetrics{OffensiveRating: 1.17, DefensiveRating: 1.07, Pace: 100.1}, Stars: []string{"Cade Cunningham", "Jaden Ivey"}},
	{Code: "GSW", Name: "Golden State Warriors", Metrics: models.TeamMetrics{OffensiveRating: 1.15, DefensiveRating: 1.11, Pace: 100.8}, Stars: []string{"Stephen Curry", "Buddy Hield"}},
	{Code: "HOU", Name: "Houston Rockets", Metrics: models.TeamMetrics{OffensiveRating: 1.15, DefensiveRating: 1.10, Pace: 101.1}, Stars: []string{"Alperen Sengun", "Jalen Green"}},
	{Code: "IND", Name: "Indiana Pacers", Metrics: models.TeamMetrics{OffensiveRating: 1.11, DefensiveRating: 1.14, Pace: 100.1}, Stars: []string{"Tyrese Haliburton", "Pascal Siakam"}},
	{Code: "LAC", Name: "Los Angeles Clippers", Metrics: models.TeamMetrics{OffensiveRating: 1.12, DefensiveRating: 1.14, Pace: 99.5}, Stars: []string{"James Harden", "Kawhi Leonard"}},
	{Code: "LAL", Name: "Los Angeles Lakers", Metrics: models.TeamMetrics{OffensiveRating: 1.16, DefensiveRating: 1.15, Pace: 98.8}, Stars: []string{"LeBron James", "Anthony Davis"}},
	{Code: "MEM", Name: "Memphis Grizzlies", Metrics: models.TeamMetrics{OffensiveRating: 1.14, DefensiveRating: 1.12, Pace: 102.1}, Stars: []string{"Ja Morant", "Desmond Bane"}},
	{Code: "MIA", Name: "Miami Heat", Metrics: models.TeamMetrics{OffensiveRating: 1.17, DefensiveRating: 1.10, Pace: 100.0}, Stars: []string{"Jimmy Butler", "Bam Adebayo"}},
	{Code: "MIL", Name: "Milwaukee Bucks", Metrics: models.TeamMetrics{OffensiveRating: 1.12, DefensiveRating: 1.14, Pace: 101.0}, Stars: []string{"Giannis Antetokounmpo", "Damian Lillard"}},
	{Code: "MIN", Name: "Minnesota Timberwolves", Metrics: models.TeamMetrics{OffensiveRating: 1.19, DefensiveRating: 1.10, Pace: 102.5}, Stars: []string{"Anthony Edwards", "Rudy Gobert"}},
	{Code: "NOP", Name: "New Orleans Pelicans", Metrics: models.TeamMetrics{OffensiveRating: 1.14, DefensiveRating: 1.21, Pace: 101.8}, Stars: []string{"Zion Williamson", "Brandon Ingram"}},
	{Code: "NYK", Name: "New York Knicks", Metrics: models.TeamMetrics{OffensiveRating: 1.20, DefensiveRating: 1.11, Pace: 98.2}, Stars: []string{"Jalen Brunson", "Karl-Anthony Towns"}},
	{Code: "OKC", Name: "Oklahoma City Thunder", Metrics: models.TeamMetrics{OffensiveRating: 1.20, DefensiveRating: 1.04, Pace: 101.5}, Stars: []string{"Shai Gilgeous-Alexander", "Chet Holmgren"}},
	{Code: "ORL", Name: "Orlando Magic", Metrics: models.TeamMetrics{OffensiveRating: 1.15, DefensiveRating: 1.12, Pace: 101.2}, Stars: []string{"Paolo Banchero", "Franz Wagner"}},
	{Code: "PHI", Name: "Philadelphia 76ers", Metrics: models.TeamMetrics{OffensiveRating: 1.16, DefensiveRating: 1.11, Pace: 100.3}, Stars: []string{"Joel Embiid", "Tyrese Maxey"}},
	{Code: "PHX", Name: "Phoenix Suns", Metrics: models.TeamMetrics{OffensiveRating: 1.13, DefensiveRating: 1.10, Pace: 100.2}, Stars: []string{"Kevin Durant", "Devin Booker"}},
	{Code: "POR", Name: "Portland Trail Blazers", Metrics: models.TeamMetrics{OffensiveRating: 1.15, DefensiveRating: 1.13, Pace: 102.0}, Stars: []string{"Anfernee Simons", "Shaedon Sharpe"}},
	{Code: "SAC", Name: "Sacramento Kings", Metrics: models.TeamMetrics{OffensiveRating: 1.10, DefensiveRating: 1.17, Pace: 101.8}, Stars: []string{"De'Aaron Fox", "Domantas Sabonis"}},
	{Code: "SAS", Name: "San Antonio Spurs", Metrics: models.TeamMetrics{OffensiveRating: 1.17, DefensiveRating: 1.09, Pace: 95.4}, Stars: []string{"Victor Wembanyama", "Devin Vassell"}},
	{Code: "TOR", Name: "Toronto Raptors", Metrics: models.TeamMetrics{OffensiveRating: 1.14, DefensiveRating: 1.10, Pace: 101.8}, Stars: []string{"Scottie Barnes", "RJ Barrett"}},
	{Code: "UTA", Name: "Utah Jazz", Metrics: models.TeamMetrics{OffensiveRating: 1.18, DefensiveRating: 1.20, Pace: 104.5}, Stars: []string{"Lauri Markkanen", "Keyonte George"}},
	{Code: "WAS", Name: "Washington Wizards", Metrics: models.TeamMetrics{OffensiveRating: 1.12, DefensiveRating: 1.18, Pace: 106.8}, Stars: []string{"Kyle Kuzma", "Alex Sarr"}},
}

// Names some providers use instead of the full franchise name
var aliases = map[string]models.TeamCode{
	"la clippers":   "LAC",
	"la lakers":     "LAL",
	"philadelphia":  "PHI",
	"brooklyn":      "BKN",
	"golden state":  "GSW",
	"new orleans":   "NOP",
	"new york":      "NYK",
	"oklahoma city": "OKC",
	"san antonio":   "SAS",
	"portland":      "POR",
	"phx":           "PHX",
	"bkn":           "BKN",
	"gs":            "GSW",
	"no":            "NOP",
	"ny":            "NYK",
	"sa":            "SAS",
	"utah":          "UTA",
	"uta":           "UTA",
	"was":           "WAS",
	"wsh":           "WAS",
}

// builtin indexes the baseline teams for callers that have no table of their own
var builtin = NewTable(baseline)

// Default returns the built-in reference table
func Default() *Table {
	return NewTable(baseline)
}

// NewTable builds a table from the given references. Each team is indexed by
// full name and code, plus any known alias whose code is in the table.
func NewTable(refs []models.TeamReference) *Table {
	t := &Table{
		byCode: make(map[models.TeamCode]models.TeamReference, len(refs)),
		byName: make(map[string]models.TeamCode, len(refs)*2),
	}
	for _, ref := range refs {
		ref.Stars = copyStars(ref.Stars)
		t.byCode[ref.Code] = ref
		t.byName[normalize(ref.Name)] = ref.Code
		t.byName[normalize(string(ref.Code))] = ref.Code
	}
	for alias, code := range aliases {
		if _, ok := t.byCode[code]; ok {
			t.byName[alias] = code
		}
	}
	return t
}

// Code resolves a team name, alias or abbreviation against the built-in table
func Code(name string) (models.TeamCode, bool) {
	return builtin.Code(name)
}

// Code resolves a team name, alias or abbreviation to a code in this table
func (t *Table) Code(name string) (models.TeamCode, bool) {
	code, ok := t.byName[normalize(name)]
	return code, ok
}

func normalize(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

func copyStars(stars []string) []string {
	if stars == nil {
		return nil
	}
	out := make([]string, len(stars))
	copy(out, stars)
	return out
}

// Get returns the reference for a team code
func (t *Table) Get(code models.TeamCode) (models.TeamReference, bool) {
	ref, ok := t.byCode[code]
	ref.Stars = copyStars(ref.Stars)
	return ref, ok
}

// Stars returns the star roster for a team, or nil when the team is not in the table
func (t *Table) Stars(code models.TeamCode) []string {
	return copyStars(t.byCode[code].Stars)
}

// All returns every reference sorted by code
func (t *Table) All() []models.TeamReference {
	refs := make([]models.TeamReference, 0, len(t.byCode))
	for _, ref := range t.byCode {
		ref.Stars = copyStars(ref.Stars)
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Code < refs[j].Code })
	return refs
}
