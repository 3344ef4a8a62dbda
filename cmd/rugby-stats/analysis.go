package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/config"
	"github.com/ramonehamilton/rugby-stats/internal/export"
	"github.com/ramonehamilton/rugby-stats/internal/importer"
	"github.com/ramonehamilton/rugby-stats/internal/ranking"
	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

func runImport(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	recalculate := fs.Bool("recalculate", false, "Rescore every record with the active configuration afterwards")
	source := fs.String("source", "", "Source recorded on the imported matches (default: file name)")
	path := parseWithTarget(fs, args)
	if path == "" {
		fmt.Println("Usage: rugby-stats import <file.json> [-recalculate] [-source name]")
		os.Exit(1)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	imp := importer.New(svc, logger)
	result, err := imp.ImportFile(context.Background(), path, importer.Options{
		Recalculate: *recalculate,
		Source:      *source,
	})
	if result != nil {
		fmt.Printf("✓ Imported %d match(es), batch %s\n", len(result.Matches), result.BatchID)
		fmt.Printf("  Players created: %d\n", result.Players)
		fmt.Printf("  Stat lines:      %d\n", result.Stats)
		if result.Recalculated > 0 {
			fmt.Printf("  Rescored:        %d\n", result.Recalculated)
		}
	}
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
}

// rankingFlags registers the ranking filters on fs.
type rankingFlags struct {
	match      *int
	opponent   *string
	team       *string
	position   *string
	minMinutes *float64
	limit      *int
}

func addRankingFlags(fs *flag.FlagSet) rankingFlags {
	return rankingFlags{
		match:      fs.Int("match", 0, "Rank a single match"),
		opponent:   fs.String("opponent", "", "Only matches against this opponent"),
		team:       fs.String("team", "", "Only matches of this team"),
		position:   fs.String("position", "", "forwards or backs"),
		minMinutes: fs.Float64("min-minutes", ranking.DefaultMinMinutes, "Minimum minutes (total minutes when aggregated)"),
		limit:      fs.Int("limit", ranking.DefaultLimit, "Maximum rows"),
	}
}

func (f rankingFlags) filter() ranking.Filter {
	class, err := rugby.ParsePositionClass(*f.position)
	if err != nil {
		log.Fatalf("%v", err)
	}
	filter := ranking.Filter{
		Opponent:      *f.opponent,
		Team:          *f.team,
		PositionClass: class,
		MinMinutes:    f.minMinutes,
		Limit:         min(*f.limit, ranking.MaxLimit),
	}
	if *f.match > 0 {
		filter.MatchID = f.match
	}
	return filter
}

func runRankings(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("rankings", flag.ExitOnError)
	rf := addRankingFlags(fs)
	format := fs.String("format", "table", "table, csv or json")
	if err := fs.Parse(args); err != nil {
		os.Exit(2)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	rows, err := svc.GetRankings(context.Background(), rf.filter())
	if err != nil {
		log.Fatalf("Failed to build rankings: %v", err)
	}

	if *format != "table" {
		writeRows(*format, export.RankingRows(rows))
		return
	}
	if len(rows) == 0 {
		fmt.Println("No scored records match the filters.")
		return
	}

	if rows[0].IsAggregated() {
		fmt.Printf("%-5s %-28s %8s %10s %8s\n", "Rank", "Player", "Matches", "Minutes", "Score")
		for _, r := range rows {
			fmt.Printf("%-5d %-28s %8d %10.1f %8.2f\n", r.Rank, r.PlayerName, *r.MatchesPlayed, *r.TotalMinutes, r.FinalScore)
		}
		return
	}
	fmt.Printf("%-5s %-28s %-20s %4s %8s %8s\n", "Rank", "Player", "Opponent", "Pos", "Minutes", "Score")
	for _, r := range rows {
		opponent := ""
		if r.Opponent != nil {
			opponent = *r.Opponent
		}
		position := 0
		if r.Position != nil {
			position = *r.Position
		}
		fmt.Printf("%-5d %-28s %-20s %4d %8s %8.2f\n",
			r.Rank, r.PlayerName, opponent, position, formatOptional(r.Minutes, "%.1f"), r.FinalScore)
	}
}

func runAnomalies(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("anomalies", flag.ExitOnError)
	modeFlag := fs.String("mode", "all", "all or recent")
	alertsOnly := fs.Bool("alerts-only", false, "Only show statistics with an alert")
	format := fs.String("format", "table", "table, csv or json")
	target := parseWithTarget(fs, args)

	mode, err := anomaly.ParseMode(*modeFlag)
	if err != nil {
		log.Fatalf("%v", err)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	ctx := context.Background()
	playerID := resolvePlayer(ctx, svc, target)
	report, err := svc.DetectAnomalies(ctx, playerID, mode)
	if err != nil {
		log.Fatalf("Failed to detect anomalies: %v", err)
	}

	rows := export.AnomalyRows(report, *alertsOnly)
	if *format != "table" {
		writeRows(*format, rows)
		return
	}
	if len(report) == 0 {
		fmt.Println("Not enough matches to compare (need at least 2).")
		return
	}
	if len(rows) == 0 {
		fmt.Println("No anomalies in the latest match.")
		return
	}

	fmt.Printf("%-28s %8s %8s %6s %9s %6s  %s\n", "Statistic", "Median", "Recent", "Last", "Dev %", "Thr %", "Alert")
	for _, r := range rows {
		fmt.Printf("%-28s %8.1f %8.1f %6d %9.1f %6.0f  %s\n",
			r.Label, r.MedianAll, r.MedianRecent, r.LastValue, r.DeviationPct, r.Threshold, r.Alert)
	}
}

func runCompare(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("compare", flag.ExitOnError)
	scopeFlag := fs.String("scope", "position", "position, group or class")
	format := fs.String("format", "table", "table, csv or json")
	target := parseWithTarget(fs, args)

	scope, err := comparison.ParseScope(*scopeFlag)
	if err != nil {
		log.Fatalf("%v", err)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)

	ctx := context.Background()
	playerID := resolvePlayer(ctx, svc, target)
	cmp, err := svc.CompareToGroup(ctx, playerID, scope)
	if err != nil {
		log.Fatalf("Failed to compare player: %v", err)
	}

	rows := export.ComparisonRows(cmp)
	if *format != "table" {
		writeRows(*format, rows)
		return
	}

	fmt.Printf("%s (%s) vs %s: %d peer records\n", cmp.PlayerName, cmp.PositionLabel, cmp.PeerLabel, cmp.PeerRecords)
	if len(rows) == 0 {
		fmt.Println("No statistics to compare.")
		return
	}
	fmt.Printf("%-28s %10s %10s %9s\n", "Statistic", "Player", "Peers", "Diff %")
	for _, r := range rows {
		fmt.Printf("%-28s %10.2f %10.2f %+9.1f\n", r.Label, r.PlayerAvg, r.GroupAvg, r.DifferencePct)
	}
}

func runSummary(cfg *config.Config, logger *slog.Logger, args []string) {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	format := fs.String("format", "table", "table or json")
	target := parseWithTarget(fs, args)

	svc := openService(cfg, logger)
	defer closeService(svc)

	ctx := context.Background()
	playerID := resolvePlayer(ctx, svc, target)
	summary, err := svc.PlayerSummary(ctx, playerID)
	if err != nil {
		log.Fatalf("Failed to load summary: %v", err)
	}

	if *format == "json" {
		if err := export.WriteTo(os.Stdout, export.FormatJSON, summary, true); err != nil {
			log.Fatalf("Failed to write summary: %v", err)
		}
		return
	}

	fmt.Printf("%s (id %d)\n", summary.PlayerName, summary.PlayerID)
	fmt.Printf("  Matches played:  %d\n", summary.MatchesPlayed)
	fmt.Printf("  Total minutes:   %.1f\n", summary.TotalMinutes)
	fmt.Printf("  Avg final score: %.2f\n", summary.AvgFinalScore)
	if len(summary.Matches) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("%-12s %-20s %-20s %4s %8s %8s\n", "Date", "Opponent", "Team", "Pos", "Minutes", "Score")
	for _, m := range summary.Matches {
		date := "-"
		if m.MatchDate != nil {
			date = m.MatchDate.Format("2006-01-02")
		}
		fmt.Printf("%-12s %-20s %-20s %4d %8s %8s\n",
			date, m.Opponent, m.Team, m.Position, formatOptional(m.MinutesPlayed, "%.1f"), formatOptional(m.FinalScore, "%.2f"))
	}
}

// writeRows prints rows to stdout as csv or json.
func writeRows(format string, rows any) {
	f, err := export.ParseFormat(format)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if err := export.WriteTo(os.Stdout, f, rows, true); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
}
