package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/storage/models"
)

// ScoringConfigRepository handles scoring configurations and their weights.
type ScoringConfigRepository interface {
	// Create inserts a configuration and sets its ID.
	Create(ctx context.Context, config *models.ScoringConfiguration) error

	// GetByID retrieves a configuration. Returns nil if not found.
	GetByID(ctx context.Context, id int) (*models.ScoringConfiguration, error)

	// GetByName retrieves a configuration by name. Returns nil if not found.
	GetByName(ctx context.Context, name string) (*models.ScoringConfiguration, error)

	// GetActive returns the active configuration, or nil if none is active.
	GetActive(ctx context.Context) (*models.ScoringConfiguration, error)

	// List returns all configurations ordered by ID.
	List(ctx context.Context) ([]*models.ScoringConfiguration, error)

	// GetWeights returns a configuration's weights ordered by action and position.
	GetWeights(ctx context.Context, configID int) ([]*models.ScoringWeight, error)

	// GetWeight retrieves a single weight. Returns nil if not found.
	GetWeight(ctx context.Context, id int) (*models.ScoringWeight, error)

	// AddWeights inserts weights, replacing existing (action, position) pairs.
	AddWeights(ctx context.Context, configID int, weights []*models.ScoringWeight) error

	// UpdateWeight changes the value of a single weight.
	// Returns false if the weight did not exist.
	UpdateWeight(ctx context.Context, id int, value float64) (bool, error)

	// Delete removes a configuration and its weights.
	Delete(ctx context.Context, id int) error

	// ClearStatReferences detaches stat records computed with the configuration.
	ClearStatReferences(ctx context.Context, configID int) error

	// Activate marks the configuration active and every other one inactive
	// in a single statement. Returns false if the configuration does not exist.
	Activate(ctx context.Context, id int) (bool, error)
}

type scoringConfigRepository struct {
	db Querier
}

// NewScoringConfigRepository creates a new scoring configuration repository.
func NewScoringConfigRepository(db Querier) ScoringConfigRepository {
	return &scoringConfigRepository{db: db}
}

func (r *scoringConfigRepository) Create(ctx context.Context, config *models.ScoringConfiguration) error {
	now := time.Now().UTC()
	if config.CreatedAt.IsZero() {
		config.CreatedAt = now
	}
	config.UpdatedAt = now

	query := `
		INSERT INTO scoring_configurations (name, description, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		config.Name, config.Description, config.IsActive, config.CreatedAt, config.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scoring configuration: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get scoring configuration id: %w", err)
	}
	config.ID = int(id)
	return nil
}

const configColumns = `id, name, description, is_active, created_at, updated_at`

func scanConfig(row interface{ Scan(...any) error }) (*models.ScoringConfiguration, error) {
	c := &models.ScoringConfiguration{}
	var description sql.NullString
	if err := row.Scan(&c.ID, &c.Name, &description, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if description.Valid {
		c.Description = &description.String
	}
	return c, nil
}

func (r *scoringConfigRepository) getOne(ctx context.Context, where string, arg ...any) (*models.ScoringConfiguration, error) {
	query := `SELECT ` + configColumns + ` FROM scoring_configurations WHERE ` + where
	c, err := scanConfig(r.db.QueryRowContext(ctx, query, arg...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scoring configuration: %w", err)
	}
	return c, nil
}

func (r *scoringConfigRepository) GetByID(ctx context.Context, id int) (*models.ScoringConfiguration, error) {
	return r.getOne(ctx, "id = ?", id)
}

func (r *scoringConfigRepository) GetByName(ctx context.Context, name string) (*models.ScoringConfiguration, error) {
	return r.getOne(ctx, "name = ?", name)
}

func (r *scoringConfigRepository) GetActive(ctx context.Context) (*models.ScoringConfiguration, error) {
	return r.getOne(ctx, "is_active = 1 ORDER BY id LIMIT 1")
}

func (r *scoringConfigRepository) List(ctx context.Context) ([]*models.ScoringConfiguration, error) {
	query := `SELECT ` + configColumns + ` FROM scoring_configurations ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list scoring configurations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var configs []*models.ScoringConfiguration
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scoring configuration: %w", err)
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scoring configurations: %w", err)
	}
	return configs, nil
}

func (r *scoringConfigRepository) GetWeights(ctx context.Context, configID int) ([]*models.ScoringWeight, error) {
	query := `
		SELECT id, config_id, action_name, position, weight
		FROM scoring_weights
		WHERE config_id = ?
		ORDER BY action_name, position
	`
	rows, err := r.db.QueryContext(ctx, query, configID)
	if err != nil {
		return nil, fmt.Errorf("failed to get weights for config %d: %w", configID, err)
	}
	defer func() { _ = rows.Close() }()

	var weights []*models.ScoringWeight
	for rows.Next() {
		w := &models.ScoringWeight{}
		if err := rows.Scan(&w.ID, &w.ConfigID, &w.ActionName, &w.Position, &w.Weight); err != nil {
			return nil, fmt.Errorf("failed to scan weight: %w", err)
		}
		weights = append(weights, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating weights: %w", err)
	}
	return weights, nil
}

func (r *scoringConfigRepository) GetWeight(ctx context.Context, id int) (*models.ScoringWeight, error) {
	query := `SELECT id, config_id, action_name, position, weight FROM scoring_weights WHERE id = ?`

	w := &models.ScoringWeight{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&w.ID, &w.ConfigID, &w.ActionName, &w.Position, &w.Weight)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weight %d: %w", id, err)
	}
	return w, nil
}

func (r *scoringConfigRepository) AddWeights(ctx context.Context, configID int, weights []*models.ScoringWeight) error {
	query := `
		INSERT INTO scoring_weights (config_id, action_name, position, weight)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(config_id, action_name, position) DO UPDATE SET weight = excluded.weight
		RETURNING id
	`
	for _, w := range weights {
		err := r.db.QueryRowContext(ctx, query, configID, w.ActionName, w.Position, w.Weight).Scan(&w.ID)
		if err != nil {
			return fmt.Errorf("failed to add weight %s/%d: %w", w.ActionName, w.Position, err)
		}
		w.ConfigID = configID
	}
	return nil
}

func (r *scoringConfigRepository) UpdateWeight(ctx context.Context, id int, value float64) (bool, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE scoring_weights SET weight = ? WHERE id = ?`, value, id)
	if err != nil {
		return false, fmt.Errorf("failed to update weight %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check updated rows: %w", err)
	}
	return n > 0, nil
}

func (r *scoringConfigRepository) Delete(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM scoring_configurations WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete scoring configuration %d: %w", id, err)
	}
	return nil
}

func (r *scoringConfigRepository) ClearStatReferences(ctx context.Context, configID int) error {
	query := `UPDATE player_match_stats SET scoring_config_id = NULL WHERE scoring_config_id = ?`
	if _, err := r.db.ExecContext(ctx, query, configID); err != nil {
		return fmt.Errorf("failed to clear stat references to config %d: %w", configID, err)
	}
	return nil
}

func (r *scoringConfigRepository) Activate(ctx context.Context, id int) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM scoring_configurations WHERE id = ?)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check scoring configuration %d: %w", id, err)
	}
	if !exists {
		return false, nil
	}

	query := `UPDATE scoring_configurations SET is_active = (id = ?), updated_at = ?`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return false, fmt.Errorf("failed to activate scoring configuration %d: %w", id, err)
	}
	return true, nil
}
