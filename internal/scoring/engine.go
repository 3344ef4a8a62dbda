package scoring

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

const (
	// StandardMatchDuration is the reference match length scores are normalized to.
	StandardMatchDuration = 70.0

	// MinMinutesFloor keeps short appearances from inflating the per-minute rate.
	MinMinutesFloor = 40.0
)

// Params holds the normalization constants.
type Params struct {
	StandardMatchDuration float64
	MinMinutesFloor       float64
}

// DefaultParams returns the standard normalization constants.
func DefaultParams() Params {
	return Params{
		StandardMatchDuration: StandardMatchDuration,
		MinMinutesFloor:       MinMinutesFloor,
	}
}

// Input is the part of a player-match record the engine reads.
// Zero minutes means the minutes were not recorded.
type Input struct {
	StatID        int
	Position      int
	MinutesPlayed float64
	Stats         rugby.StatLine
}

// ScoreUpdate is a computed score ready to be persisted.
type ScoreUpdate struct {
	StatID        int
	AbsoluteScore float64
	FinalScore    float64
	ConfigID      int
}

// StatStore is the storage the batch recalculation needs.
type StatStore interface {
	// ListScoringInputs returns every stored player-match record.
	ListScoringInputs(ctx context.Context) ([]Input, error)

	// UpdateScores persists all updates as one batch.
	UpdateScores(ctx context.Context, updates []ScoreUpdate) error
}

// Engine computes scores. It holds no mutable state and is safe for
// concurrent use.
type Engine struct {
	params Params
	logger *slog.Logger
}

// NewEngine creates an engine. Zero params fall back to the defaults and a
// nil logger to slog.Default().
func NewEngine(params Params, logger *slog.Logger) *Engine {
	if params.StandardMatchDuration <= 0 {
		params.StandardMatchDuration = StandardMatchDuration
	}
	if params.MinMinutesFloor <= 0 {
		params.MinMinutesFloor = MinMinutesFloor
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{params: params, logger: logger}
}

// Params returns the engine's normalization constants.
func (e *Engine) Params() Params {
	return e.params
}

// Compute returns the absolute and minute-normalized score of one record.
func (e *Engine) Compute(in Input, table *WeightTable) (absolute, final float64, err error) {
	if table == nil {
		return 0, 0, ErrConfigurationMissing
	}

	for _, stat := range rugby.Statistics() {
		absolute += float64(in.Stats.Get(stat)) * table.Weight(stat, in.Position)
	}

	return absolute, e.Normalize(absolute, in.MinutesPlayed), nil
}

// Normalize scales an absolute score to a standard-length match.
func (e *Engine) Normalize(absolute, minutes float64) float64 {
	if minutes <= 0 {
		minutes = e.params.StandardMatchDuration
	}
	effective := max(minutes, e.params.MinMinutesFloor)
	if effective <= 0 {
		return 0
	}
	return (absolute / effective) * e.params.StandardMatchDuration
}

// RecalculateAll recomputes every stored record with table and writes the
// results back in one batch. It returns the number of records updated.
func (e *Engine) RecalculateAll(ctx context.Context, store StatStore, table *WeightTable) (int, error) {
	if table == nil {
		return 0, ErrConfigurationMissing
	}

	inputs, err := store.ListScoringInputs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load stats: %w", err)
	}

	updates := make([]ScoreUpdate, 0, len(inputs))
	for _, in := range inputs {
		absolute, final, err := e.Compute(in, table)
		if err != nil {
			return 0, err
		}
		updates = append(updates, ScoreUpdate{
			StatID:        in.StatID,
			AbsoluteScore: absolute,
			FinalScore:    final,
			ConfigID:      table.ConfigID,
		})
	}

	if len(updates) > 0 {
		if err := store.UpdateScores(ctx, updates); err != nil {
			return 0, fmt.Errorf("failed to save scores: %w", err)
		}
	}

	e.logger.Info("Recalculated scores",
		"config", table.Name,
		"configID", table.ConfigID,
		"records", len(updates))

	return len(updates), nil
}
