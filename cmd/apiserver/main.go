// Package main provides a standalone REST API server. It runs the same API
// as "rugby-stats serve" with only flags for configuration, which suits
// containers and end-to-end test runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/api"
	"github.com/ramonehamilton/rugby-stats/internal/config"
	"github.com/ramonehamilton/rugby-stats/internal/importer"
	"github.com/ramonehamilton/rugby-stats/internal/scoring"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

var (
	port       = flag.Int("port", 8080, "API server port")
	dbPath     = flag.String("db-path", "", "Database path (default: ~/.rugby-stats/data.db)")
	configPath = flag.String("config", "", "Optional config.toml")
	seed       = flag.Bool("seed", false, "Create the default scoring configuration if none exists")
)

func main() {
	flag.Parse()

	fmt.Println("Rugby Stats - REST API Server")
	fmt.Println("=============================")
	fmt.Println()
	fmt.Printf("Starting API server on port %d...\n", *port)

	cfg := config.DefaultConfig()
	if *configPath != "" {
		loaded, err := config.LoadFrom(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		cfg = loaded
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	cfg.Database.AutoMigrate = true

	fmt.Printf("Database: %s\n", cfg.Database.Path)

	logger := config.NewLogger(cfg.Log)

	db, err := storage.Open(cfg.StorageConfig())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	storageService := storage.NewServiceWithConfig(db, cfg.ServiceConfig(logger))
	defer func() {
		if err := storageService.Close(); err != nil {
			log.Printf("Error closing storage service: %v", err)
		}
	}()

	if *seed {
		_, err := storageService.ActiveConfiguration(context.Background())
		if errors.Is(err, scoring.ErrConfigurationMissing) {
			if _, err := storageService.SeedDefaultWeights(context.Background(), false); err != nil {
				log.Fatalf("Failed to seed default weights: %v", err)
			}
			fmt.Println("Seeded default scoring configuration")
		} else if err != nil {
			log.Fatalf("Failed to read active configuration: %v", err)
		}
	}

	interval, err := cfg.GetRecalculateInterval()
	if err != nil {
		log.Fatalf("Invalid recalculate interval: %v", err)
	}

	server := api.NewServer(&api.Config{
		Port:                *port,
		AllowedOrigins:      cfg.API.AllowedOrigins,
		RecalculateInterval: interval,
		Logger:              logger,
	}, storageService, importer.New(storageService, logger))

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at http://localhost:%d\n", *port)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("API server stopped.")
}
