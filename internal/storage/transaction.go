package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/rugby-stats/internal/storage/repository"
)

// TxFunc is a function that runs within a transaction.
type TxFunc func(*sql.Tx) error

// WithTransaction executes fn within a database transaction. It commits
// when fn returns nil and rolls back otherwise. A panic in fn rolls back
// and is re-raised.
func (db *DB) WithTransaction(ctx context.Context, fn TxFunc) (err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("transaction error: %w, rollback error: %v", err, rbErr)
			}
		} else if err = tx.Commit(); err != nil {
			err = fmt.Errorf("failed to commit transaction: %w", err)
		}
	}()

	return fn(tx)
}

// repos bundles the repositories over one Querier.
type repos struct {
	players repository.PlayerRepository
	matches repository.MatchRepository
	stats   repository.PlayerStatsRepository
	configs repository.ScoringConfigRepository
}

func newRepos(q repository.Querier) repos {
	return repos{
		players: repository.NewPlayerRepository(q),
		matches: repository.NewMatchRepository(q),
		stats:   repository.NewPlayerStatsRepository(q),
		configs: repository.NewScoringConfigRepository(q),
	}
}

// inTx runs fn with repositories bound to a single transaction.
func (s *Service) inTx(ctx context.Context, fn func(r repos) error) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(newRepos(tx))
	})
}
