package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/ramonehamilton/rugby-stats/internal/config"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

func runBackup(cfg *config.Config, logger *slog.Logger, args []string) {
	dest := storage.DefaultBackupPath(cfg.Database.Path)
	if len(args) > 0 {
		dest = args[0]
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	if err := svc.DB().Backup(context.Background(), dest); err != nil {
		log.Fatalf("Backup failed: %v", err)
	}
	logger.Info("Database backed up", "path", dest)
	fmt.Printf("✓ Backup written to %s\n", dest)
}
