package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/ramonehamilton/rugby-stats/internal/config"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

func runMigrationCommand(cfg *config.Config, args []string) {
	if len(args) < 1 {
		printMigrationUsage()
		os.Exit(1)
	}

	mgr, err := storage.NewMigrationManager(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Error creating migration manager: %v", err)
	}
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Printf("Error closing migration manager: %v", err)
		}
	}()

	switch args[0] {
	case "up":
		fmt.Println("Applying all pending migrations...")
		if err := mgr.Up(); err != nil {
			log.Fatalf("Error applying migrations: %v", err)
		}
		printMigrationStatus(mgr)
		fmt.Println("All migrations applied successfully!")

	case "down":
		fmt.Println("Rolling back last migration...")
		if err := mgr.Down(); err != nil {
			log.Fatalf("Error rolling back migration: %v", err)
		}
		printMigrationStatus(mgr)
		fmt.Println("Migration rolled back successfully!")

	case "status", "version":
		printMigrationStatus(mgr)

	case "force":
		if len(args) < 2 {
			fmt.Println("Error: force command requires a version number")
			fmt.Println("Usage: rugby-stats migrate force <version>")
			os.Exit(1)
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		fmt.Printf("Forcing migration version to %d...\n", version)
		fmt.Println("WARNING: This does not run migrations, only sets the version.")
		if err := mgr.Force(version); err != nil {
			log.Fatalf("Error forcing version: %v", err)
		}
		fmt.Println("Version forced successfully!")

	case "goto":
		if len(args) < 2 {
			fmt.Println("Error: goto command requires a version number")
			fmt.Println("Usage: rugby-stats migrate goto <version>")
			os.Exit(1)
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			log.Fatalf("Invalid version number: %v", err)
		}
		fmt.Printf("Migrating to version %d...\n", version)
		if err := mgr.Goto(uint(version)); err != nil {
			log.Fatalf("Error migrating to version %d: %v", version, err)
		}
		fmt.Println("Migration successful!")

	default:
		fmt.Printf("Unknown migration command: %s\n\n", args[0])
		printMigrationUsage()
		os.Exit(1)
	}
}

func printMigrationStatus(mgr *storage.MigrationManager) {
	status, err := mgr.Status()
	if err != nil {
		log.Fatalf("Error getting version: %v", err)
	}
	switch {
	case !status.Applied:
		fmt.Println("No migrations applied")
	case status.Dirty:
		fmt.Printf("Current version: %d (dirty - migration failed or interrupted)\n", status.Version)
		fmt.Println("Use 'migrate force <version>' to recover")
	default:
		fmt.Printf("Current version: %d\n", status.Version)
	}
}

func printMigrationUsage() {
	fmt.Println("Rugby Stats - Database Migration Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  rugby-stats migrate <command> [args]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                Apply all pending migrations")
	fmt.Println("  down              Rollback the last migration")
	fmt.Println("  status            Show current migration version")
	fmt.Println("  goto <version>    Migrate to a specific version")
	fmt.Println("  force <version>   Force set migration version (use with caution)")
}
