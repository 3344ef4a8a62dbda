// Package ranking orders scored player-match records, either within one
// match or averaged per player across matches.
package ranking

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

const (
	// DefaultLimit is the number of rows returned when no limit is given.
	DefaultLimit = 20

	// MaxLimit caps the number of rows a caller may request.
	MaxLimit = 100

	// DefaultMinMinutes is the per-record minutes threshold applied in
	// aggregated mode when none is given.
	DefaultMinMinutes = 20.0
)

// Record is a scored player-match record with the joined player and match
// fields rankings need.
type Record struct {
	StatID        int
	PlayerID      int
	PlayerName    string
	MatchID       int
	Opponent      string
	Team          string
	Position      int
	MinutesPlayed float64
	AbsoluteScore *float64
	FinalScore    *float64
}

// Filter selects and limits ranking rows. A nil MatchID selects
// aggregated mode.
type Filter struct {
	MatchID       *int
	Opponent      string
	Team          string
	PositionClass rugby.PositionClass
	MinMinutes    *float64
	Limit         int
}

// Row is one ranking line. Per-match rows leave MatchesPlayed and
// TotalMinutes nil; aggregated rows leave the per-match fields nil.
type Row struct {
	Rank          int      `json:"rank"`
	PlayerID      int      `json:"player_id"`
	PlayerName    string   `json:"player_name"`
	Opponent      *string  `json:"opponent"`
	Position      *int     `json:"position"`
	Minutes       *float64 `json:"minutes"`
	AbsoluteScore *float64 `json:"absolute_score"`
	FinalScore    float64  `json:"final_score"`
	MatchesPlayed *int     `json:"matches_played"`
	TotalMinutes  *float64 `json:"total_minutes"`
}

// IsAggregated reports whether the row came from aggregated mode.
func (r Row) IsAggregated() bool {
	return r.MatchesPlayed != nil
}

// Rank builds the ranking for records. Records are expected in a stable
// order (storage returns them by id); equal scores keep that order.
func Rank(records []Record, filter Filter) []Row {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	if filter.MatchID != nil {
		return rankMatch(records, filter, limit)
	}
	return rankAggregated(records, filter, limit)
}

func rankMatch(records []Record, filter Filter, limit int) []Row {
	var selected []Record
	for _, r := range records {
		if r.FinalScore == nil || r.MatchID != *filter.MatchID {
			continue
		}
		if filter.Team != "" && r.Team != filter.Team {
			continue
		}
		if filter.MinMinutes != nil && r.MinutesPlayed < *filter.MinMinutes {
			continue
		}
		if !filter.PositionClass.Contains(r.Position) {
			continue
		}
		selected = append(selected, r)
	}

	sort.SliceStable(selected, func(i, j int) bool {
		return *selected[i].FinalScore > *selected[j].FinalScore
	})
	if len(selected) > limit {
		selected = selected[:limit]
	}

	rows := make([]Row, 0, len(selected))
	for i, r := range selected {
		opponent := r.Opponent
		position := r.Position
		minutes := r.MinutesPlayed
		var absolute *float64
		if r.AbsoluteScore != nil {
			a := round2(*r.AbsoluteScore)
			absolute = &a
		}
		rows = append(rows, Row{
			Rank:          i + 1,
			PlayerID:      r.PlayerID,
			PlayerName:    r.PlayerName,
			Opponent:      &opponent,
			Position:      &position,
			Minutes:       &minutes,
			AbsoluteScore: absolute,
			FinalScore:    round2(*r.FinalScore),
		})
	}
	return rows
}

type playerAggregate struct {
	playerID int
	name     string
	scores   []float64
	minutes  float64
	mean     float64
}

func rankAggregated(records []Record, filter Filter, limit int) []Row {
	minMinutes := DefaultMinMinutes
	if filter.MinMinutes != nil {
		minMinutes = *filter.MinMinutes
	}

	byPlayer := make(map[int]*playerAggregate)
	var order []*playerAggregate
	for _, r := range records {
		if r.FinalScore == nil || r.MinutesPlayed < minMinutes {
			continue
		}
		if filter.Opponent != "" && r.Opponent != filter.Opponent {
			continue
		}
		if filter.Team != "" && r.Team != filter.Team {
			continue
		}
		if !filter.PositionClass.Contains(r.Position) {
			continue
		}

		agg, ok := byPlayer[r.PlayerID]
		if !ok {
			agg = &playerAggregate{playerID: r.PlayerID, name: r.PlayerName}
			byPlayer[r.PlayerID] = agg
			order = append(order, agg)
		}
		agg.scores = append(agg.scores, *r.FinalScore)
		agg.minutes += r.MinutesPlayed
	}

	for _, agg := range order {
		agg.mean = stat.Mean(agg.scores, nil)
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].mean > order[j].mean
	})
	if len(order) > limit {
		order = order[:limit]
	}

	rows := make([]Row, 0, len(order))
	for i, agg := range order {
		played := len(agg.scores)
		total := round2(agg.minutes)
		rows = append(rows, Row{
			Rank:          i + 1,
			PlayerID:      agg.playerID,
			PlayerName:    agg.name,
			FinalScore:    round2(agg.mean),
			MatchesPlayed: &played,
			TotalMinutes:  &total,
		})
	}
	return rows
}

func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
