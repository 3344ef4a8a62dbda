package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultPollInterval is the backup poll period of WatchWeightFile.
const DefaultPollInterval = 2 * time.Second

// WatchOptions tunes WatchWeightFile.
type WatchOptions struct {
	// PollInterval checks the file even without a notification.
	PollInterval time.Duration
	Logger       *slog.Logger
}

// WatchWeightFile calls fn with the loaded weight file each time the file
// at path changes, until ctx is done. Invalid files are logged and skipped.
// The parent directory is watched so editors that replace the file on save
// are seen too.
func WatchWeightFile(ctx context.Context, path string, opts WatchOptions, fn func(*WeightFile) error) error {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve weight file path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	var last time.Time
	check := func() {
		info, err := os.Stat(path)
		if err != nil {
			return
		}
		if !info.ModTime().After(last) {
			return
		}
		last = info.ModTime()

		wf, err := LoadWeightFile(path)
		if err != nil {
			opts.Logger.Warn("Ignoring invalid weight file", "path", path, "error", err)
			return
		}
		if err := fn(wf); err != nil {
			opts.Logger.Error("Weight file handler failed", "path", path, "error", err)
		}
	}

	check()

	// Backup polling in case file events are missed
	ticker := time.NewTicker(opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				check()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			opts.Logger.Warn("File watcher error", "error", err)
		case <-ticker.C:
			check()
		}
	}
}
