package config

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/rugby-stats/internal/scoring"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// WeightFile is a scoring configuration kept in TOML:
//
//	name = "backs-heavy"
//	activate = true
//
//	[weights.try]
//	"11" = 12.0
//	"14" = 12.0
type WeightFile struct {
	Name        string                        `toml:"name"`
	Description string                        `toml:"description"`
	Activate    bool                          `toml:"activate"`
	Weights     map[string]map[string]float64 `toml:"weights"`
}

// LoadWeightFile reads and validates a weight file.
func LoadWeightFile(path string) (*WeightFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read weight file: %w", err)
	}

	var wf WeightFile
	if err := toml.Unmarshal(data, &wf); err != nil {
		return nil, fmt.Errorf("parse weight file: %w", err)
	}
	if wf.Name == "" {
		return nil, fmt.Errorf("weight file %s has no name", path)
	}
	if _, err := wf.Rows(); err != nil {
		return nil, fmt.Errorf("weight file %s: %w", path, err)
	}
	return &wf, nil
}

// Rows flattens the file into weight rows, sorted by action then position.
// Statistic keys and positions are validated.
func (wf *WeightFile) Rows() ([]scoring.WeightRow, error) {
	var rows []scoring.WeightRow
	for action, byPosition := range wf.Weights {
		for pos, weight := range byPosition {
			p, err := strconv.Atoi(pos)
			if err != nil {
				return nil, fmt.Errorf("position %q for %s is not a number", pos, action)
			}
			rows = append(rows, scoring.WeightRow{Action: action, Position: p, Weight: weight})
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Action != rows[j].Action {
			return rows[i].Action < rows[j].Action
		}
		return rows[i].Position < rows[j].Position
	})

	if _, err := scoring.NewWeightTable(0, wf.Name, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// WeightSet converts the file into a weight set for storage.Service.ApplyWeightSet.
func (wf *WeightFile) WeightSet() (storage.WeightSet, error) {
	rows, err := wf.Rows()
	if err != nil {
		return storage.WeightSet{}, err
	}
	return storage.WeightSet{
		Name:        wf.Name,
		Description: wf.Description,
		Activate:    wf.Activate,
		Weights:     rows,
	}, nil
}

// SaveWeightFile writes wf to path.
func SaveWeightFile(path string, wf *WeightFile) error {
	data, err := toml.Marshal(wf)
	if err != nil {
		return fmt.Errorf("marshal weight file: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write weight file: %w", err)
	}
	return nil
}
