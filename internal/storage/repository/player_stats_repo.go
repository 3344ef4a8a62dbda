package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/scoring"
	"github.com/ramonehamilton/rugby-stats/internal/storage/models"
)

// RecordFilter narrows joined stat record listings.
type RecordFilter struct {
	MatchID    *int
	ScoredOnly bool
}

// StatFilter narrows and pages plain stat listings. A zero Limit means no limit.
type StatFilter struct {
	PlayerID *int
	MatchID  *int
	Offset   int
	Limit    int
}

func (f StatFilter) where() (string, []any) {
	var (
		where []string
		args  []any
	)
	if f.PlayerID != nil {
		where = append(where, "player_id = ?")
		args = append(args, *f.PlayerID)
	}
	if f.MatchID != nil {
		where = append(where, "match_id = ?")
		args = append(args, *f.MatchID)
	}
	if len(where) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(where, " AND "), args
}

// PlayerStatsRepository handles per-match player statistics.
type PlayerStatsRepository interface {
	// Create inserts a stat record and sets its ID.
	Create(ctx context.Context, stat *models.PlayerMatchStat) error

	// GetByID retrieves a stat record. Returns nil if not found.
	GetByID(ctx context.Context, id int) (*models.PlayerMatchStat, error)

	// ListByPlayer returns a player's records in chronological order:
	// by match date ascending, undated matches last, then by match ID.
	ListByPlayer(ctx context.Context, playerID int) ([]*models.StatRecord, error)

	// ListByPositions returns every record played at one of the positions.
	ListByPositions(ctx context.Context, positions []int) ([]*models.PlayerMatchStat, error)

	// ListAll returns every record ordered by ID.
	ListAll(ctx context.Context) ([]*models.PlayerMatchStat, error)

	// List returns records matching the filter, ordered by ID.
	List(ctx context.Context, filter StatFilter) ([]*models.PlayerMatchStat, error)

	// Count returns the number of records matching the filter, ignoring paging.
	Count(ctx context.Context, filter StatFilter) (int, error)

	// ListRecords returns records joined with player and match, ordered by ID.
	ListRecords(ctx context.Context, filter RecordFilter) ([]*models.StatRecord, error)

	// UpdateScores writes computed scores onto their records.
	UpdateScores(ctx context.Context, updates []scoring.ScoreUpdate) error
}

type playerStatsRepository struct {
	db Querier
}

// NewPlayerStatsRepository creates a new player stats repository.
func NewPlayerStatsRepository(db Querier) PlayerStatsRepository {
	return &playerStatsRepository{db: db}
}

func (r *playerStatsRepository) Create(ctx context.Context, stat *models.PlayerMatchStat) error {
	if stat.CreatedAt.IsZero() {
		stat.CreatedAt = time.Now().UTC()
	}

	columns := "player_id, match_id, position, minutes_played, " + statColumnList("") +
		", absolute_score, final_score, scoring_config_id, created_at"
	args := []any{stat.PlayerID, stat.MatchID, stat.Position, stat.MinutesPlayed}
	for _, v := range stat.Stats {
		args = append(args, v)
	}
	args = append(args, stat.AbsoluteScore, stat.FinalScore, stat.ScoringConfigID, stat.CreatedAt)

	query := `INSERT INTO player_match_stats (` + columns + `) VALUES (` + placeholders(len(args)) + `)`
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create player stats: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get player stats id: %w", err)
	}
	stat.ID = int(id)
	return nil
}

func statSelectColumns(alias string) string {
	p := ""
	if alias != "" {
		p = alias + "."
	}
	return p + "id, " + p + "player_id, " + p + "match_id, " + p + "position, " + p + "minutes_played, " +
		statColumnList(alias) + ", " +
		p + "absolute_score, " + p + "final_score, " + p + "scoring_config_id, " + p + "created_at"
}

// statScanner collects nullable destinations for one stat row.
type statScanner struct {
	stat     models.PlayerMatchStat
	minutes  sql.NullFloat64
	absolute sql.NullFloat64
	final    sql.NullFloat64
	configID sql.NullInt64
}

func (s *statScanner) dest() []any {
	d := []any{&s.stat.ID, &s.stat.PlayerID, &s.stat.MatchID, &s.stat.Position, &s.minutes}
	for i := range s.stat.Stats {
		d = append(d, &s.stat.Stats[i])
	}
	return append(d, &s.absolute, &s.final, &s.configID, &s.stat.CreatedAt)
}

func (s *statScanner) result() models.PlayerMatchStat {
	out := s.stat
	if s.minutes.Valid {
		v := s.minutes.Float64
		out.MinutesPlayed = &v
	}
	if s.absolute.Valid {
		v := s.absolute.Float64
		out.AbsoluteScore = &v
	}
	if s.final.Valid {
		v := s.final.Float64
		out.FinalScore = &v
	}
	if s.configID.Valid {
		v := int(s.configID.Int64)
		out.ScoringConfigID = &v
	}
	return out
}

func (r *playerStatsRepository) GetByID(ctx context.Context, id int) (*models.PlayerMatchStat, error) {
	query := `SELECT ` + statSelectColumns("") + ` FROM player_match_stats WHERE id = ?`

	var sc statScanner
	err := r.db.QueryRowContext(ctx, query, id).Scan(sc.dest()...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player stats %d: %w", id, err)
	}
	stat := sc.result()
	return &stat, nil
}

func (r *playerStatsRepository) queryStats(ctx context.Context, query string, args ...any) ([]*models.PlayerMatchStat, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query player stats: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []*models.PlayerMatchStat
	for rows.Next() {
		var sc statScanner
		if err := rows.Scan(sc.dest()...); err != nil {
			return nil, fmt.Errorf("failed to scan player stats: %w", err)
		}
		stat := sc.result()
		stats = append(stats, &stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating player stats: %w", err)
	}
	return stats, nil
}

func (r *playerStatsRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*models.StatRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query stat records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*models.StatRecord
	for rows.Next() {
		var (
			sc   statScanner
			rec  models.StatRecord
			date sql.NullTime
		)
		dest := append(sc.dest(), &rec.PlayerName, &rec.Opponent, &rec.Team, &date)
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan stat record: %w", err)
		}
		rec.PlayerMatchStat = sc.result()
		if date.Valid {
			rec.MatchDate = &date.Time
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stat records: %w", err)
	}
	return records, nil
}

const recordJoins = `
	FROM player_match_stats s
	JOIN players p ON p.id = s.player_id
	JOIN matches m ON m.id = s.match_id
`

func (r *playerStatsRepository) ListByPlayer(ctx context.Context, playerID int) ([]*models.StatRecord, error) {
	query := `SELECT ` + statSelectColumns("s") + `, p.name, m.opponent_name, m.team, m.match_date` +
		recordJoins + `
		WHERE s.player_id = ?
		ORDER BY m.match_date IS NULL, m.match_date ASC, s.match_id ASC
	`
	return r.queryRecords(ctx, query, playerID)
}

func (r *playerStatsRepository) ListByPositions(ctx context.Context, positions []int) ([]*models.PlayerMatchStat, error) {
	if len(positions) == 0 {
		return nil, nil
	}
	query := `SELECT ` + statSelectColumns("") + ` FROM player_match_stats
		WHERE position IN (` + placeholders(len(positions)) + `)
		ORDER BY id`
	return r.queryStats(ctx, query, intArgs(positions)...)
}

func (r *playerStatsRepository) ListAll(ctx context.Context) ([]*models.PlayerMatchStat, error) {
	query := `SELECT ` + statSelectColumns("") + ` FROM player_match_stats ORDER BY id`
	return r.queryStats(ctx, query)
}

func (r *playerStatsRepository) List(ctx context.Context, filter StatFilter) ([]*models.PlayerMatchStat, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	where, args := filter.where()
	query := `SELECT ` + statSelectColumns("") + ` FROM player_match_stats` + where + ` ORDER BY id LIMIT ? OFFSET ?`
	return r.queryStats(ctx, query, append(args, limit, filter.Offset)...)
}

func (r *playerStatsRepository) Count(ctx context.Context, filter StatFilter) (int, error) {
	where, args := filter.where()
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM player_match_stats`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count player stats: %w", err)
	}
	return n, nil
}

func (r *playerStatsRepository) ListRecords(ctx context.Context, filter RecordFilter) ([]*models.StatRecord, error) {
	var (
		where []string
		args  []any
	)
	if filter.MatchID != nil {
		where = append(where, "s.match_id = ?")
		args = append(args, *filter.MatchID)
	}
	if filter.ScoredOnly {
		where = append(where, "s.final_score IS NOT NULL")
	}

	query := `SELECT ` + statSelectColumns("s") + `, p.name, m.opponent_name, m.team, m.match_date` + recordJoins
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY s.id`
	return r.queryRecords(ctx, query, args...)
}

func (r *playerStatsRepository) UpdateScores(ctx context.Context, updates []scoring.ScoreUpdate) error {
	query := `
		UPDATE player_match_stats
		SET absolute_score = ?, final_score = ?, scoring_config_id = ?
		WHERE id = ?
	`
	for _, u := range updates {
		if _, err := r.db.ExecContext(ctx, query, u.AbsoluteScore, u.FinalScore, u.ConfigID, u.StatID); err != nil {
			return fmt.Errorf("failed to update scores for stat %d: %w", u.StatID, err)
		}
	}
	return nil
}
