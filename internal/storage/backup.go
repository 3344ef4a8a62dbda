package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// DefaultBackupPath returns a timestamped file in a "backups" directory
// next to the database.
func DefaultBackupPath(dbPath string) string {
	name := fmt.Sprintf("backup_%s.db", time.Now().Format("20060102_150405"))
	return filepath.Join(filepath.Dir(dbPath), "backups", name)
}

// Backup writes a consistent copy of the database to dest using
// VACUUM INTO, then checks that the copy opens and holds the schema.
// dest must not exist yet.
func (db *DB) Backup(ctx context.Context, dest string) error {
	if dest == "" {
		return errors.New("backup path cannot be empty")
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup file %s already exists", dest)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to check backup file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	if _, err := db.conn.ExecContext(ctx, `VACUUM INTO ?`, dest); err != nil {
		return fmt.Errorf("failed to back up database: %w", err)
	}

	if err := verifyBackup(ctx, dest); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("backup verification failed: %w", err)
	}
	return nil
}

func verifyBackup(ctx context.Context, path string) error {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer func() { _ = conn.Close() }()

	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n); err != nil {
		return fmt.Errorf("failed to query backup: %w", err)
	}
	return nil
}
