package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/storage/models"
)

// MatchRepository handles database operations for matches.
type MatchRepository interface {
	// Create inserts a new match and sets its ID.
	Create(ctx context.Context, match *models.Match) error

	// GetByID retrieves a match by ID. Returns nil if not found.
	GetByID(ctx context.Context, id int) (*models.Match, error)

	// List returns matches, most recent first; undated matches come last.
	List(ctx context.Context, filter models.MatchFilter) ([]*models.Match, error)

	// ListTeams returns the distinct non-empty team names, sorted.
	ListTeams(ctx context.Context) ([]string, error)

	// Delete removes a match and, by cascade, its stat records.
	// Returns false if the match did not exist.
	Delete(ctx context.Context, id int) (bool, error)
}

type matchRepository struct {
	db Querier
}

// NewMatchRepository creates a new match repository.
func NewMatchRepository(db Querier) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *models.Match) error {
	if match.CreatedAt.IsZero() {
		match.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO matches (
			opponent_name, team, match_date, location, result,
			our_score, opponent_score, source, import_batch_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		match.OpponentName,
		match.Team,
		match.MatchDate,
		match.Location,
		match.Result,
		match.OurScore,
		match.OpponentScore,
		match.Source,
		match.ImportBatchID,
		match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create match: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get match id: %w", err)
	}
	match.ID = int(id)
	return nil
}

const matchColumns = `
	id, opponent_name, team, match_date, location, result,
	our_score, opponent_score, source, import_batch_id, created_at
`

func scanMatch(row interface{ Scan(...any) error }) (*models.Match, error) {
	m := &models.Match{}
	var (
		date               sql.NullTime
		location, result   sql.NullString
		ourScore, oppScore sql.NullInt64
		batchID            sql.NullString
	)
	err := row.Scan(&m.ID, &m.OpponentName, &m.Team, &date, &location, &result,
		&ourScore, &oppScore, &m.Source, &batchID, &m.CreatedAt)
	if err != nil {
		return nil, err
	}

	if date.Valid {
		m.MatchDate = &date.Time
	}
	if location.Valid {
		m.Location = &location.String
	}
	if result.Valid {
		m.Result = &result.String
	}
	if ourScore.Valid {
		v := int(ourScore.Int64)
		m.OurScore = &v
	}
	if oppScore.Valid {
		v := int(oppScore.Int64)
		m.OpponentScore = &v
	}
	if batchID.Valid {
		m.ImportBatchID = &batchID.String
	}
	return m, nil
}

func (r *matchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = ?`

	m, err := scanMatch(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %d: %w", id, err)
	}
	return m, nil
}

func (r *matchRepository) List(ctx context.Context, filter models.MatchFilter) ([]*models.Match, error) {
	var (
		where []string
		args  []any
	)
	if filter.Opponent != "" {
		where = append(where, "opponent_name = ?")
		args = append(args, filter.Opponent)
	}
	if filter.Team != "" {
		where = append(where, "team = ?")
		args = append(args, filter.Team)
	}

	query := `SELECT ` + matchColumns + ` FROM matches`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY match_date IS NULL, match_date DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []*models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	return matches, nil
}

func (r *matchRepository) ListTeams(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT team FROM matches WHERE team <> '' ORDER BY team`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer func() { _ = rows.Close() }()

	teams := []string{}
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		teams = append(teams, team)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating teams: %w", err)
	}
	return teams, nil
}

func (r *matchRepository) Delete(ctx context.Context, id int) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM matches WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}
	return n > 0, nil
}
