// Package scoring computes position-weighted performance scores for
// player-match records.
package scoring

import (
	"errors"
	"fmt"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

var (
	// ErrConfigurationMissing is returned when scoring is requested without
	// an explicit or active weight configuration.
	ErrConfigurationMissing = errors.New("no active scoring configuration")

	// ErrInvalidPosition is returned for weight rows outside positions 1-15.
	ErrInvalidPosition = errors.New("position must be between 1 and 15")
)

// WeightRow is a stored weight as read from a configuration.
type WeightRow struct {
	Action   string
	Position int
	Weight   float64
}

// WeightTable is a resolved, read-only weight configuration.
// Missing (statistic, position) pairs weigh 0.
type WeightTable struct {
	ConfigID int
	Name     string

	weights rugby.WeightMatrix
	entries int
}

// NewWeightTable builds a table from configuration rows.
func NewWeightTable(configID int, name string, rows []WeightRow) (*WeightTable, error) {
	t := &WeightTable{ConfigID: configID, Name: name}
	for _, row := range rows {
		stat, err := rugby.ParseStatistic(row.Action)
		if err != nil {
			return nil, fmt.Errorf("config %d: %w", configID, err)
		}
		if !rugby.ValidPosition(row.Position) {
			return nil, fmt.Errorf("config %d, %s position %d: %w", configID, row.Action, row.Position, ErrInvalidPosition)
		}
		t.weights[stat][row.Position-1] = row.Weight
		t.entries++
	}
	return t, nil
}

// DefaultWeightTable returns the built-in weights under the given id.
func DefaultWeightTable(configID int) *WeightTable {
	return &WeightTable{
		ConfigID: configID,
		Name:     rugby.DefaultConfigurationName,
		weights:  rugby.DefaultWeights,
		entries:  rugby.NumStatistics * rugby.MaxPosition,
	}
}

// Weight returns the coefficient for stat at position pos.
func (t *WeightTable) Weight(stat rugby.Statistic, pos int) float64 {
	return t.weights.At(stat, pos)
}

// Len returns the number of rows the table was built from.
func (t *WeightTable) Len() int {
	return t.entries
}

// Rows returns the full matrix as rows, statistic-major.
func (t *WeightTable) Rows() []WeightRow {
	entries := t.weights.Entries()
	rows := make([]WeightRow, len(entries))
	for i, e := range entries {
		rows[i] = WeightRow{Action: e.Statistic.Key(), Position: e.Position, Weight: e.Weight}
	}
	return rows
}
