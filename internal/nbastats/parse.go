package nbastats

import (
	"errors"
	"fmt"

	"github.com/joshuakim/sharpline/internal/models"
	"github.com/joshuakim/sharpline/internal/projection"
	"github.com/joshuakim/sharpline/internal/teams"
)

type statsResponse struct {
	ResultSets []resultSet `json:"resultSets"`
}

type resultSet struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	RowSet  [][]any  `json:"rowSet"`
}

// ParseTeamMetrics converts an Advanced leaguedashteamstats result into live
// metrics. Ratings come per 100 possessions and are scaled to per possession.
// Rows whose team name is not recognized are returned in unknown.
func ParseTeamMetrics(resp statsResponse) (live projection.LiveMetrics, unknown []string, err error) {
	if len(resp.ResultSets) == 0 {
		return nil, nil, errors.New("no result sets")
	}
	set := resp.ResultSets[0]

	idx := make(map[string]int, len(set.Headers))
	for i, h := range set.Headers {
		idx[h] = i
	}
	nameCol, offCol, defCol, paceCol, err := columns(idx, "TEAM_NAME", "OFF_RATING", "DEF_RATING", "PACE")
	if err != nil {
		return nil, nil, err
	}

	live = make(projection.LiveMetrics, len(set.RowSet))
	for i, row := range set.RowSet {
		if len(row) != len(set.Headers) {
			return nil, nil, fmt.Errorf("row %d has %d cells, want %d", i, len(row), len(set.Headers))
		}

		name, ok := row[nameCol].(string)
		if !ok {
			return nil, nil, fmt.Errorf("row %d: TEAM_NAME is %T", i, row[nameCol])
		}
		off, offOK := row[offCol].(float64)
		def, defOK := row[defCol].(float64)
		pace, paceOK := row[paceCol].(float64)
		if !offOK || !defOK || !paceOK {
			return nil, nil, fmt.Errorf("row %d (%s): non-numeric rating or pace", i, name)
		}

		code, ok := teams.Code(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		live[code] = models.TeamMetrics{
			OffensiveRating: off / 100,
			DefensiveRating: def / 100,
			Pace:            pace,
		}
	}

	return live, unknown, nil
}

func columns(idx map[string]int, names ...string) (int, int, int, int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		col, ok := idx[name]
		if !ok {
			return 0, 0, 0, 0, fmt.Errorf("missing column %s", name)
		}
		out[i] = col
	}
	return out[0], out[1], out[2], out[3], nil
}
