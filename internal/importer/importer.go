// Package importer loads JSON match sheets into storage.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// Store is the part of the storage service the importer writes through.
type Store interface {
	StoreMatchSheet(ctx context.Context, match *storage.Match, entries []storage.SheetEntry) (*storage.ImportResult, error)
	RecalculateAll(ctx context.Context, configID *int) (int, error)
}

// Options controls an import.
type Options struct {
	// Recalculate rescores every record with the active configuration
	// after the sheets are stored.
	Recalculate bool
	// Source is recorded on each match, usually the file name.
	Source string
}

// Result summarizes an import run.
type Result struct {
	BatchID      string                  `json:"import_batch_id"`
	Matches      []*storage.ImportResult `json:"matches"`
	Players      int                     `json:"players_created"`
	Stats        int                     `json:"stats_created"`
	Recalculated int                     `json:"recalculated"`
}

// Importer stores match sheets. Each sheet is written in its own
// transaction; all sheets of one run share a batch ID.
type Importer struct {
	store  Store
	logger *slog.Logger
}

// New creates an importer. A nil logger uses slog.Default().
func New(store Store, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{store: store, logger: logger}
}

// ImportFile reads and imports a sheet file.
func (i *Importer) ImportFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sheet: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets, err := ParseSheets(f)
	if err != nil {
		return nil, err
	}
	if opts.Source == "" {
		opts.Source = filepath.Base(path)
	}
	return i.Import(ctx, sheets, opts)
}

// Import validates every sheet, then stores them. Nothing is written when a
// sheet fails validation. A failure while storing leaves earlier sheets of
// the run in place.
func (i *Importer) Import(ctx context.Context, sheets []Sheet, opts Options) (*Result, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: no sheets", ErrInvalidSheet)
	}

	type built struct {
		match   *storage.Match
		entries []storage.SheetEntry
	}
	prepared := make([]built, len(sheets))
	for n := range sheets {
		match, entries, err := sheets[n].Build()
		if err != nil {
			return nil, fmt.Errorf("sheet %d: %w", n+1, err)
		}
		prepared[n] = built{match: match, entries: entries}
	}

	result := &Result{BatchID: uuid.NewString()}
	for _, p := range prepared {
		p.match.Source = opts.Source
		p.match.ImportBatchID = &result.BatchID

		stored, err := i.store.StoreMatchSheet(ctx, p.match, p.entries)
		if err != nil {
			return nil, fmt.Errorf("failed to import match against %s: %w", p.match.OpponentName, err)
		}
		result.Matches = append(result.Matches, stored)
		result.Players += stored.PlayersCreated
		result.Stats += stored.StatsCreated
	}

	if opts.Recalculate {
		n, err := i.store.RecalculateAll(ctx, nil)
		if err != nil {
			return result, fmt.Errorf("sheets stored but recalculation failed: %w", err)
		}
		result.Recalculated = n
		for _, m := range result.Matches {
			m.Recalculated = n
		}
	}

	i.logger.Info("Imported match sheets",
		"batch", result.BatchID,
		"matches", len(result.Matches),
		"players", result.Players,
		"stats", result.Stats,
		"recalculated", result.Recalculated)
	return result, nil
}
