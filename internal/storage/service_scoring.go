package storage

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/scoring"
	"github.com/ramonehamilton/rugby-stats/internal/storage/models"
)

// SeedDefaultWeights creates the built-in "default" configuration with all
// 240 weights and makes it the active one. Without force an existing default
// configuration is returned untouched. With force it is deleted, detaching
// stat records that referenced it, and recreated.
func (s *Service) SeedDefaultWeights(ctx context.Context, force bool) (*ScoringConfiguration, error) {
	var config *ScoringConfiguration
	err := s.inTx(ctx, func(r repos) error {
		existing, err := r.configs.GetByName(ctx, rugby.DefaultConfigurationName)
		if err != nil {
			return err
		}
		if existing != nil {
			if !force {
				config = existing
				return nil
			}
			if err := r.configs.ClearStatReferences(ctx, existing.ID); err != nil {
				return err
			}
			if err := r.configs.Delete(ctx, existing.ID); err != nil {
				return err
			}
		}

		description := rugby.DefaultConfigurationDescription
		config = &ScoringConfiguration{
			Name:        rugby.DefaultConfigurationName,
			Description: &description,
		}
		if err := r.configs.Create(ctx, config); err != nil {
			return err
		}

		entries := rugby.DefaultWeights.Entries()
		weights := make([]*ScoringWeight, len(entries))
		for i, e := range entries {
			weights[i] = &ScoringWeight{ActionName: e.Statistic.Key(), Position: e.Position, Weight: e.Weight}
		}
		if err := r.configs.AddWeights(ctx, config.ID, weights); err != nil {
			return err
		}

		if _, err := r.configs.Activate(ctx, config.ID); err != nil {
			return err
		}
		config.IsActive = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to seed default weights: %w", err)
	}

	s.logger.Info("Default weights ready", "configID", config.ID, "force", force)
	return config, nil
}

// ActiveConfiguration returns the active configuration, or
// scoring.ErrConfigurationMissing when none is active.
func (s *Service) ActiveConfiguration(ctx context.Context) (*ScoringConfiguration, error) {
	active, err := s.configs.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, scoring.ErrConfigurationMissing
	}
	return active, nil
}

// ActiveWeightTable resolves the active configuration into a weight table.
func (s *Service) ActiveWeightTable(ctx context.Context) (*scoring.WeightTable, error) {
	active, err := s.ActiveConfiguration(ctx)
	if err != nil {
		return nil, err
	}
	return s.weightTable(ctx, active)
}

// WeightTable resolves a configuration by ID into a weight table.
func (s *Service) WeightTable(ctx context.Context, configID int) (*scoring.WeightTable, error) {
	config, err := s.configs.GetByID(ctx, configID)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("%w: %d", ErrConfigNotFound, configID)
	}
	return s.weightTable(ctx, config)
}

func (s *Service) weightTable(ctx context.Context, config *ScoringConfiguration) (*scoring.WeightTable, error) {
	weights, err := s.configs.GetWeights(ctx, config.ID)
	if err != nil {
		return nil, err
	}
	rows := make([]scoring.WeightRow, len(weights))
	for i, w := range weights {
		rows[i] = scoring.WeightRow{Action: w.ActionName, Position: w.Position, Weight: w.Weight}
	}
	return scoring.NewWeightTable(config.ID, config.Name, rows)
}

// resolveTable uses configID when given, the active configuration otherwise.
func (s *Service) resolveTable(ctx context.Context, configID *int) (*scoring.WeightTable, error) {
	if configID != nil {
		return s.WeightTable(ctx, *configID)
	}
	return s.ActiveWeightTable(ctx)
}

// ComputeScore scores one stat record, persists the result and returns the
// updated record.
func (s *Service) ComputeScore(ctx context.Context, statID int, configID *int) (*PlayerMatchStat, error) {
	table, err := s.resolveTable(ctx, configID)
	if err != nil {
		return nil, err
	}

	stat, err := s.stats.GetByID(ctx, statID)
	if err != nil {
		return nil, err
	}
	if stat == nil {
		return nil, fmt.Errorf("%w: %d", ErrStatNotFound, statID)
	}

	absolute, final, err := s.engine.Compute(scoringInput(stat), table)
	if err != nil {
		return nil, err
	}
	update := scoring.ScoreUpdate{StatID: stat.ID, AbsoluteScore: absolute, FinalScore: final, ConfigID: table.ConfigID}
	if err := s.stats.UpdateScores(ctx, []scoring.ScoreUpdate{update}); err != nil {
		return nil, err
	}

	stat.AbsoluteScore = &absolute
	stat.FinalScore = &final
	stat.ScoringConfigID = &table.ConfigID
	return stat, nil
}

// RecalculateAll rescores every stat record and returns how many were updated.
func (s *Service) RecalculateAll(ctx context.Context, configID *int) (int, error) {
	table, err := s.resolveTable(ctx, configID)
	if err != nil {
		return 0, err
	}
	return s.engine.RecalculateAll(ctx, statStore{s}, table)
}

// statStore adapts the service to scoring.StatStore. Updates are written
// in one transaction.
type statStore struct {
	s *Service
}

func (st statStore) ListScoringInputs(ctx context.Context) ([]scoring.Input, error) {
	stats, err := st.s.stats.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	inputs := make([]scoring.Input, len(stats))
	for i, stat := range stats {
		inputs[i] = scoringInput(stat)
	}
	return inputs, nil
}

func (st statStore) UpdateScores(ctx context.Context, updates []scoring.ScoreUpdate) error {
	return st.s.inTx(ctx, func(r repos) error {
		return r.stats.UpdateScores(ctx, updates)
	})
}

func scoringInput(stat *PlayerMatchStat) scoring.Input {
	return scoring.Input{
		StatID:        stat.ID,
		Position:      stat.Position,
		MinutesPlayed: stat.Minutes(),
		Stats:         stat.Stats,
	}
}

// ListConfigurations returns all configurations.
func (s *Service) ListConfigurations(ctx context.Context) ([]*ScoringConfiguration, error) {
	return s.configs.List(ctx)
}

// GetConfiguration returns a configuration with its weights.
func (s *Service) GetConfiguration(ctx context.Context, id int) (*ConfigurationDetail, error) {
	config, err := s.configs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if config == nil {
		return nil, fmt.Errorf("%w: %d", ErrConfigNotFound, id)
	}
	weights, err := s.configs.GetWeights(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ConfigurationDetail{ScoringConfiguration: config, Weights: weights}, nil
}

// ActivateConfiguration makes id the only active configuration.
func (s *Service) ActivateConfiguration(ctx context.Context, id int) error {
	err := s.inTx(ctx, func(r repos) error {
		ok, err := r.configs.Activate(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrConfigNotFound, id)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("Activated scoring configuration", "configID", id)
	return nil
}

// CreateConfiguration creates an empty configuration, or a copy of the
// weights of copyFrom when given.
func (s *Service) CreateConfiguration(ctx context.Context, name, description string, copyFrom *int, activate bool) (*ScoringConfiguration, error) {
	if name == "" {
		return nil, fmt.Errorf("configuration name is required")
	}

	var config *ScoringConfiguration
	err := s.inTx(ctx, func(r repos) error {
		existing, err := r.configs.GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: %q", ErrConfigExists, name)
		}

		var source []*ScoringWeight
		if copyFrom != nil {
			src, err := r.configs.GetByID(ctx, *copyFrom)
			if err != nil {
				return err
			}
			if src == nil {
				return fmt.Errorf("%w: %d", ErrConfigNotFound, *copyFrom)
			}
			if source, err = r.configs.GetWeights(ctx, src.ID); err != nil {
				return err
			}
		}

		config = &ScoringConfiguration{Name: name}
		if description != "" {
			config.Description = &description
		}
		if err := r.configs.Create(ctx, config); err != nil {
			return err
		}

		copies := make([]*ScoringWeight, len(source))
		for i, w := range source {
			copies[i] = &ScoringWeight{ActionName: w.ActionName, Position: w.Position, Weight: w.Weight}
		}
		if err := r.configs.AddWeights(ctx, config.ID, copies); err != nil {
			return err
		}

		if activate {
			if _, err := r.configs.Activate(ctx, config.ID); err != nil {
				return err
			}
			config.IsActive = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return config, nil
}

// UpdateWeight changes a single weight value.
func (s *Service) UpdateWeight(ctx context.Context, weightID int, value float64) (*ScoringWeight, error) {
	ok, err := s.configs.UpdateWeight(ctx, weightID, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrWeightNotFound, weightID)
	}
	return s.configs.GetWeight(ctx, weightID)
}

// ApplyWeightSet creates the named configuration if needed and upserts the
// set's weights into it. Rows are validated before anything is written.
func (s *Service) ApplyWeightSet(ctx context.Context, set WeightSet) (*ScoringConfiguration, error) {
	if set.Name == "" {
		return nil, fmt.Errorf("weight set name is required")
	}
	if _, err := scoring.NewWeightTable(0, set.Name, set.Weights); err != nil {
		return nil, err
	}

	var config *ScoringConfiguration
	err := s.inTx(ctx, func(r repos) error {
		var err error
		config, err = r.configs.GetByName(ctx, set.Name)
		if err != nil {
			return err
		}
		if config == nil {
			config = &ScoringConfiguration{Name: set.Name}
			if set.Description != "" {
				config.Description = &set.Description
			}
			if err := r.configs.Create(ctx, config); err != nil {
				return err
			}
		}

		weights := make([]*models.ScoringWeight, len(set.Weights))
		for i, w := range set.Weights {
			weights[i] = &models.ScoringWeight{ActionName: w.Action, Position: w.Position, Weight: w.Weight}
		}
		if err := r.configs.AddWeights(ctx, config.ID, weights); err != nil {
			return err
		}

		if set.Activate {
			if _, err := r.configs.Activate(ctx, config.ID); err != nil {
				return err
			}
			config.IsActive = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Applied weight set",
		"config", config.Name,
		"configID", config.ID,
		"weights", len(set.Weights),
		"activated", set.Activate)
	return config, nil
}
