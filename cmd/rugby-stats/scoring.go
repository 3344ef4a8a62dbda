package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/config"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

func runSeedWeights(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("seed-weights", flag.ExitOnError)
	force := fs.Bool("force", false, "Delete and recreate the default configuration")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	seeded, err := svc.SeedDefaultWeights(context.Background(), *force)
	if err != nil {
		log.Fatalf("Failed to seed default weights: %v", err)
	}
	fmt.Printf("✓ Configuration %q (id %d) is active\n", seeded.Name, seeded.ID)
}

func runListConfigurations(cfg *config.Config, logger *slog.Logger) {
	svc := openService(cfg, logger)
	defer closeService(svc)

	configs, err := svc.ListConfigurations(context.Background())
	if err != nil {
		log.Fatalf("Failed to list configurations: %v", err)
	}
	if len(configs) == 0 {
		fmt.Println("No scoring configurations. Run 'rugby-stats seed-weights' to create the default one.")
		return
	}

	fmt.Printf("%-4s %-24s %-7s %s\n", "ID", "Name", "Active", "Description")
	for _, c := range configs {
		active := ""
		if c.IsActive {
			active = "yes"
		}
		description := ""
		if c.Description != nil {
			description = *c.Description
		}
		fmt.Printf("%-4d %-24s %-7s %s\n", c.ID, c.Name, active, description)
	}
}

func runActivate(cfg *config.Config, logger *slog.Logger, args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: rugby-stats activate <config-id>")
		os.Exit(1)
	}
	id := requireID(args[0], "configuration id")

	svc := openService(cfg, logger)
	defer closeService(svc)

	if err := svc.ActivateConfiguration(context.Background(), id); err != nil {
		log.Fatalf("Failed to activate configuration: %v", err)
	}
	fmt.Printf("✓ Configuration %d is now active\n", id)
}

func runRecalculate(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("recalculate", flag.ExitOnError)
	configID := fs.Int("config-id", 0, "Score with this configuration instead of the active one")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	var id *int
	if *configID > 0 {
		id = configID
	}
	start := time.Now()
	n, err := svc.RecalculateAll(context.Background(), id)
	if err != nil {
		log.Fatalf("Failed to recalculate scores: %v", err)
	}
	fmt.Printf("✓ Rescored %d records in %s\n", n, time.Since(start).Round(time.Millisecond))
}

func runApplyWeights(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("apply-weights", flag.ExitOnError)
	recalculate := fs.Bool("recalculate", false, "Rescore all records afterwards when the configuration is active")
	path := parseWithTarget(fs, args)
	if path == "" {
		fmt.Println("Usage: rugby-stats apply-weights <file.toml> [-recalculate]")
		os.Exit(1)
	}

	wf, err := config.LoadWeightFile(path)
	if err != nil {
		log.Fatalf("Failed to load weight file: %v", err)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	ctx := context.Background()
	applied, n, err := applyWeightFile(ctx, svc, wf, *recalculate)
	if err != nil {
		log.Fatalf("Failed to apply weight file: %v", err)
	}
	fmt.Printf("✓ Configuration %q (id %d) updated\n", applied.Name, applied.ID)
	if n > 0 {
		fmt.Printf("✓ Rescored %d records\n", n)
	}
}

func runWatchWeights(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("watch-weights", flag.ExitOnError)
	interval := fs.Duration("interval", config.DefaultPollInterval, "Backup poll interval")
	path := parseWithTarget(fs, args)
	if path == "" {
		fmt.Println("Usage: rugby-stats watch-weights <file.toml> [-interval 2s]")
		os.Exit(1)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", path)
	err := config.WatchWeightFile(ctx, path, config.WatchOptions{PollInterval: *interval, Logger: logger},
		func(wf *config.WeightFile) error {
			applied, n, err := applyWeightFile(ctx, svc, wf, true)
			if err != nil {
				return err
			}
			logger.Info("Weight file applied", "config", applied.Name, "configID", applied.ID, "rescored", n)
			return nil
		})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("Watcher stopped: %v", err)
	}
	fmt.Println("Stopped watching.")
}

// applyWeightFile stores the file's weights and, when recalculate is set
// and the configuration ends up active, rescores every record.
func applyWeightFile(ctx context.Context, svc *storage.Service, wf *config.WeightFile, recalculate bool) (*storage.ScoringConfiguration, int, error) {
	set, err := wf.WeightSet()
	if err != nil {
		return nil, 0, err
	}
	applied, err := svc.ApplyWeightSet(ctx, set)
	if err != nil {
		return nil, 0, err
	}
	if !recalculate || !applied.IsActive {
		return applied, 0, nil
	}
	n, err := svc.RecalculateAll(ctx, nil)
	if err != nil {
		return applied, 0, err
	}
	return applied, n, nil
}
