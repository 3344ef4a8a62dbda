// Package comparison measures a player's per-statistic averages against a
// positional peer group.
package comparison

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

// Entry compares one statistic.
type Entry struct {
	PlayerAvg     float64 `json:"player_avg"`
	GroupAvg      float64 `json:"group_avg"`
	DifferencePct float64 `json:"difference_pct"`
}

// Result maps every statistic to its comparison.
type Result map[rugby.Statistic]Entry

// Compare averages each statistic over the player's and the group's records.
// Averages and differences are rounded to one decimal; an empty or all-zero
// group yields a difference of 0.
func Compare(player, group []rugby.StatLine) Result {
	out := make(Result, rugby.NumStatistics)
	for _, s := range rugby.Statistics() {
		playerAvg := average(player, s)
		groupAvg := average(group, s)

		diff := 0.0
		if groupAvg > 0 {
			diff = round1((playerAvg - groupAvg) / groupAvg * 100)
		}

		out[s] = Entry{
			PlayerAvg:     round1(playerAvg),
			GroupAvg:      round1(groupAvg),
			DifferencePct: diff,
		}
	}
	return out
}

func average(lines []rugby.StatLine, s rugby.Statistic) float64 {
	if len(lines) == 0 {
		return 0
	}
	values := make([]float64, len(lines))
	for i, l := range lines {
		values[i] = float64(l.Get(s))
	}
	return stat.Mean(values, nil)
}

// MostCommonPosition returns the most frequent valid position. On a tie the
// position that reached the top count first wins. It reports false when no
// valid position is present.
func MostCommonPosition(positions []int) (int, bool) {
	counts := make(map[int]int)
	best, bestCount := 0, 0
	for _, p := range positions {
		if !rugby.ValidPosition(p) {
			continue
		}
		counts[p]++
		if counts[p] > bestCount {
			best, bestCount = p, counts[p]
		}
	}
	return best, bestCount > 0
}

// Scope selects the peer group a player is compared with.
type Scope string

const (
	// ScopePosition compares with every record at the same position.
	ScopePosition Scope = "position"
	// ScopeGroup compares with every record in the position's group.
	ScopeGroup Scope = "group"
	// ScopeClass compares with all forwards or all backs.
	ScopeClass Scope = "class"
)

// ParseScope validates a scope string. The empty string means ScopePosition.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopePosition:
		return ScopePosition, nil
	case ScopeGroup, ScopeClass:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("invalid comparison scope %q (want position, group or class)", s)
	}
}

// PeerPositions returns the positions whose records form the peer group.
func PeerPositions(position int, scope Scope) []int {
	switch scope {
	case ScopeGroup:
		if g, ok := rugby.GroupFor(position); ok {
			return g.Positions
		}
	case ScopeClass:
		if rugby.ValidPosition(position) {
			return rugby.ClassOf(position).Positions()
		}
	}
	return []int{position}
}

// Label describes the peer group for reports.
func Label(position int, scope Scope) string {
	switch scope {
	case ScopeGroup:
		if g, ok := rugby.GroupFor(position); ok {
			return g.Label
		}
	case ScopeClass:
		return string(rugby.ClassOf(position))
	}
	return rugby.PositionLabel(position)
}

func round1(v float64) float64 {
	return math.RoundToEven(v*10) / 10
}
