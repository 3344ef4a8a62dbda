// Command rugby-stats manages the player statistics database: migrations,
// scoring configurations, match sheet imports, analysis reports and the
// HTTP and MCP servers.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/ramonehamilton/rugby-stats/internal/config"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
	"github.com/ramonehamilton/rugby-stats/internal/version"
)

var configPath = flag.String("config", "", "Path to config.toml (default: ~/.rugby-stats/config.toml)")

func main() {
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	cfg := loadConfig()
	logger := config.NewLogger(cfg.Log)
	slog.SetDefault(logger)

	command, rest := args[0], args[1:]
	switch command {
	case "migrate":
		runMigrationCommand(cfg, rest)
	case "backup":
		runBackup(cfg, logger, rest)
	case "seed-weights":
		runSeedWeights(cfg, logger, rest)
	case "configs":
		runListConfigurations(cfg, logger)
	case "activate":
		runActivate(cfg, logger, rest)
	case "recalculate":
		runRecalculate(cfg, logger, rest)
	case "apply-weights":
		runApplyWeights(cfg, logger, rest)
	case "watch-weights":
		runWatchWeights(cfg, logger, rest)
	case "import":
		runImport(cfg, logger, rest)
	case "rankings":
		runRankings(cfg, logger, rest)
	case "anomalies":
		runAnomalies(cfg, logger, rest)
	case "compare":
		runCompare(cfg, logger, rest)
	case "summary":
		runSummary(cfg, logger, rest)
	case "export":
		runExport(cfg, logger, rest)
	case "serve":
		runServe(cfg, logger, rest)
	case "mcp":
		runMCP(cfg, logger, rest)
	case "version":
		fmt.Println(version.GetVersion())
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Rugby Stats - player scoring and analysis")
	fmt.Println()
	fmt.Println("Usage: rugby-stats [-config path] <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate <up|down|status|force|goto>   Manage the database schema")
	fmt.Println("  backup [file.db]                      Write a consistent copy of the database")
	fmt.Println("  seed-weights [-force]                 Create the default scoring configuration")
	fmt.Println("  configs                               List scoring configurations")
	fmt.Println("  activate <config-id>                  Make a configuration the active one")
	fmt.Println("  recalculate [-config-id N]            Rescore every player-match record")
	fmt.Println("  apply-weights <file.toml>             Create or update a configuration from a weight file")
	fmt.Println("  watch-weights <file.toml>             Re-apply a weight file whenever it changes")
	fmt.Println("  import <file.json> [-recalculate]     Import match sheets")
	fmt.Println("  rankings [filters]                    Rank players by final score")
	fmt.Println("  anomalies <player> [-mode]            Flag unusual statistics in the latest match")
	fmt.Println("  compare <player> [-scope]             Compare a player with their position peers")
	fmt.Println("  summary <player>                      Show a player's matches and scores")
	fmt.Println("  export <kind> [options]               Write a report (rankings, anomalies, comparison, evolution)")
	fmt.Println("  serve [-port N]                       Run the REST API")
	fmt.Println("  mcp [-addr :8090]                     Run the MCP tool server")
	fmt.Println("  version                               Print the version")
	fmt.Println()
	fmt.Println("A player is given by id or exact name.")
	fmt.Println()
	fmt.Println("Environment:")
	fmt.Println("  RUGBY_STATS_DB_PATH   Override the database path from the config file")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  rugby-stats migrate up")
	fmt.Println("  rugby-stats seed-weights")
	fmt.Println("  rugby-stats import fecha-3.json -recalculate")
	fmt.Println("  rugby-stats rankings -position backs -limit 10")
	fmt.Println("  rugby-stats export comparison -player 12 -format html -open")
}

func loadConfig() *config.Config {
	var (
		cfg *config.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if dbPath := os.Getenv("RUGBY_STATS_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
	return cfg
}

func openService(cfg *config.Config, logger *slog.Logger) *storage.Service {
	db, err := storage.Open(cfg.StorageConfig())
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	return storage.NewServiceWithConfig(db, cfg.ServiceConfig(logger))
}

func closeService(svc *storage.Service) {
	if err := svc.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}

// parseWithTarget parses fs from args, accepting the positional target
// either before or after the flags.
func parseWithTarget(fs *flag.FlagSet, args []string) string {
	var target string
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		target, args = args[0], args[1:]
	}
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}
	if target == "" {
		target = fs.Arg(0)
	}
	return target
}

// resolvePlayer accepts a player id or an exact player name.
func resolvePlayer(ctx context.Context, svc *storage.Service, arg string) int {
	if arg == "" {
		log.Fatal("A player id or name is required")
	}
	if id, err := strconv.Atoi(arg); err == nil {
		return id
	}
	player, err := svc.FindPlayer(ctx, arg)
	if err != nil {
		log.Fatalf("Failed to find player: %v", err)
	}
	return player.ID
}

func requireID(arg, what string) int {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		log.Fatalf("Invalid %s: %q", what, arg)
	}
	return id
}

func formatOptional(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}
