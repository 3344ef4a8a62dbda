package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/storage/models"
)

// PlayerRepository handles database operations for players.
type PlayerRepository interface {
	// Create inserts a new player and sets its ID.
	Create(ctx context.Context, player *models.Player) error

	// GetByID retrieves a player by ID. Returns nil if not found.
	GetByID(ctx context.Context, id int) (*models.Player, error)

	// GetByName retrieves a player by exact name. Returns nil if not found.
	GetByName(ctx context.Context, name string) (*models.Player, error)

	// GetOrCreate returns the player with the given name, creating it if needed.
	GetOrCreate(ctx context.Context, name string) (*models.Player, bool, error)

	// List returns players ordered by name.
	List(ctx context.Context, offset, limit int) ([]*models.Player, error)

	// Update writes the player's name, weight and height.
	// Returns false if the player did not exist.
	Update(ctx context.Context, player *models.Player) (bool, error)

	// Count returns the number of players.
	Count(ctx context.Context) (int, error)

	// Delete removes a player and, by cascade, its stat records.
	// Returns false if the player did not exist.
	Delete(ctx context.Context, id int) (bool, error)
}

type playerRepository struct {
	db Querier
}

// NewPlayerRepository creates a new player repository.
func NewPlayerRepository(db Querier) PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Create(ctx context.Context, player *models.Player) error {
	now := time.Now().UTC()
	if player.CreatedAt.IsZero() {
		player.CreatedAt = now
	}
	player.UpdatedAt = now

	query := `
		INSERT INTO players (name, weight_kg, height_cm, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		player.Name, player.WeightKg, player.HeightCm, player.CreatedAt, player.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get player id: %w", err)
	}
	player.ID = int(id)
	return nil
}

const playerColumns = `id, name, weight_kg, height_cm, created_at, updated_at`

func scanPlayer(row interface{ Scan(...any) error }) (*models.Player, error) {
	p := &models.Player{}
	var weight, height sql.NullFloat64
	if err := row.Scan(&p.ID, &p.Name, &weight, &height, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if weight.Valid {
		p.WeightKg = &weight.Float64
	}
	if height.Valid {
		p.HeightCm = &height.Float64
	}
	return p, nil
}

func (r *playerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ?`

	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %d: %w", id, err)
	}
	return p, nil
}

func (r *playerRepository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE name = ?`

	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %q: %w", name, err)
	}
	return p, nil
}

func (r *playerRepository) GetOrCreate(ctx context.Context, name string) (*models.Player, bool, error) {
	existing, err := r.GetByName(ctx, name)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		return existing, false, nil
	}

	p := &models.Player{Name: name}
	if err := r.Create(ctx, p); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (r *playerRepository) List(ctx context.Context, offset, limit int) ([]*models.Player, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	query := `SELECT ` + playerColumns + ` FROM players ORDER BY name LIMIT ? OFFSET ?`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var players []*models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating players: %w", err)
	}
	return players, nil
}

func (r *playerRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return n, nil
}

func (r *playerRepository) Update(ctx context.Context, player *models.Player) (bool, error) {
	player.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE players
		SET name = ?, weight_kg = ?, height_cm = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		player.Name, player.WeightKg, player.HeightCm, player.UpdatedAt, player.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update player %d: %w", player.ID, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check updated rows: %w", err)
	}
	return n > 0, nil
}

func (r *playerRepository) Delete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete player %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}
	return n > 0, nil
}
