package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/ranking"
	"github.com/ramonehamilton/rugby-stats/internal/scoring"
)

// ServiceConfig configures a Service. Zero fields take defaults.
type ServiceConfig struct {
	Engine   *scoring.Engine
	Detector *anomaly.Detector
	Logger   *slog.Logger

	// RankingLimit is the row count used when a ranking request has none.
	RankingLimit int
	// RankingMinMinutes is the aggregated ranking threshold used when a
	// request has none.
	RankingMinMinutes float64
}

// Service is the library facade over storage and the scoring and
// analysis calculators. It is safe for concurrent use.
type Service struct {
	repos

	db       *DB
	engine   *scoring.Engine
	detector *anomaly.Detector
	logger   *slog.Logger

	rankingLimit      int
	rankingMinMinutes float64
}

// NewService creates a service with default calculators.
func NewService(db *DB) *Service {
	return NewServiceWithConfig(db, ServiceConfig{})
}

// NewServiceWithConfig creates a service from cfg.
func NewServiceWithConfig(db *DB, cfg ServiceConfig) *Service {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Engine == nil {
		cfg.Engine = scoring.NewEngine(scoring.DefaultParams(), cfg.Logger)
	}
	if cfg.Detector == nil {
		cfg.Detector = anomaly.NewDetector(anomaly.DefaultConfig())
	}
	if cfg.RankingLimit <= 0 {
		cfg.RankingLimit = ranking.DefaultLimit
	}
	if cfg.RankingMinMinutes <= 0 {
		cfg.RankingMinMinutes = ranking.DefaultMinMinutes
	}

	return &Service{
		repos:             newRepos(db.Conn()),
		db:                db,
		engine:            cfg.Engine,
		detector:          cfg.Detector,
		logger:            cfg.Logger,
		rankingLimit:      cfg.RankingLimit,
		rankingMinMinutes: cfg.RankingMinMinutes,
	}
}

// DB returns the underlying database.
func (s *Service) DB() *DB {
	return s.db
}

// Engine returns the scoring engine.
func (s *Service) Engine() *scoring.Engine {
	return s.engine
}

// Close closes the database.
func (s *Service) Close() error {
	return s.db.Close()
}

// GetPlayer returns a player or ErrPlayerNotFound.
func (s *Service) GetPlayer(ctx context.Context, id int) (*Player, error) {
	p, err := s.players.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
	}
	return p, nil
}

// FindPlayer returns a player by exact name or ErrPlayerNotFound.
func (s *Service) FindPlayer(ctx context.Context, name string) (*Player, error) {
	p, err := s.players.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: %q", ErrPlayerNotFound, name)
	}
	return p, nil
}

// UpdatePlayer applies a partial update and returns the stored player.
// Renaming onto another player's name fails with ErrPlayerExists.
func (s *Service) UpdatePlayer(ctx context.Context, id int, update PlayerUpdate) (*Player, error) {
	var player *Player
	err := s.inTx(ctx, func(r repos) error {
		p, err := r.players.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
		}

		if update.Name != nil && *update.Name != p.Name {
			other, err := r.players.GetByName(ctx, *update.Name)
			if err != nil {
				return err
			}
			if other != nil {
				return fmt.Errorf("%w: %q", ErrPlayerExists, *update.Name)
			}
			p.Name = *update.Name
		}
		if update.WeightKg != nil {
			p.WeightKg = update.WeightKg
		}
		if update.HeightCm != nil {
			p.HeightCm = update.HeightCm
		}

		if _, err := r.players.Update(ctx, p); err != nil {
			return err
		}
		player = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Updated player", "playerID", id, "name", player.Name)
	return player, nil
}

// GetMatch returns a match or ErrMatchNotFound.
func (s *Service) GetMatch(ctx context.Context, id int) (*Match, error) {
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %d", ErrMatchNotFound, id)
	}
	return m, nil
}

// ListMatches returns matches, most recent first.
func (s *Service) ListMatches(ctx context.Context, filter MatchFilter) ([]*Match, error) {
	return s.matches.List(ctx, filter)
}

// ListTeams returns the distinct team names across matches, sorted.
func (s *Service) ListTeams(ctx context.Context) ([]string, error) {
	return s.matches.ListTeams(ctx)
}

// GetStat returns one stat row with its counts or ErrStatNotFound.
func (s *Service) GetStat(ctx context.Context, id int) (*StatDetail, error) {
	stat, err := s.stats.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if stat == nil {
		return nil, fmt.Errorf("%w: %d", ErrStatNotFound, id)
	}
	return &StatDetail{PlayerMatchStat: stat, Counts: stat.Stats.Map()}, nil
}

// ListStats returns a page of stat rows and the number of rows matching
// the filter.
func (s *Service) ListStats(ctx context.Context, filter StatFilter) ([]StatDetail, int, error) {
	total, err := s.stats.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	stats, err := s.stats.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	out := make([]StatDetail, 0, len(stats))
	for _, stat := range stats {
		out = append(out, StatDetail{PlayerMatchStat: stat, Counts: stat.Stats.Map()})
	}
	return out, total, nil
}

// DeletePlayer removes a player with all of its stat records.
func (s *Service) DeletePlayer(ctx context.Context, id int) error {
	deleted, err := s.players.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %d", ErrPlayerNotFound, id)
	}
	s.logger.Info("Deleted player", "playerID", id)
	return nil
}

// DeleteMatch removes a match with all of its stat records.
func (s *Service) DeleteMatch(ctx context.Context, id int) error {
	deleted, err := s.matches.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("%w: %d", ErrMatchNotFound, id)
	}
	s.logger.Info("Deleted match", "matchID", id)
	return nil
}

// StoreMatchSheet stores a match and its player lines in one transaction.
// Players are created on first sight.
func (s *Service) StoreMatchSheet(ctx context.Context, match *Match, entries []SheetEntry) (*ImportResult, error) {
	result := &ImportResult{}
	if match.ImportBatchID != nil {
		result.ImportBatchID = *match.ImportBatchID
	}

	err := s.inTx(ctx, func(r repos) error {
		if err := r.matches.Create(ctx, match); err != nil {
			return err
		}
		result.MatchID = match.ID

		for _, e := range entries {
			player, created, err := r.players.GetOrCreate(ctx, e.PlayerName)
			if err != nil {
				return err
			}
			if created {
				result.PlayersCreated++
			}

			stat := &PlayerMatchStat{
				PlayerID:      player.ID,
				MatchID:       match.ID,
				Position:      e.Position,
				MinutesPlayed: e.MinutesPlayed,
				Stats:         e.Stats,
			}
			if err := r.stats.Create(ctx, stat); err != nil {
				return fmt.Errorf("failed to store stats for %s: %w", e.PlayerName, err)
			}
			result.StatsCreated++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stored match sheet",
		"matchID", result.MatchID,
		"opponent", match.OpponentName,
		"players", result.StatsCreated,
		"newPlayers", result.PlayersCreated)
	return result, nil
}
