package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/charts"
	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/config"
	"github.com/ramonehamilton/rugby-stats/internal/export"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

func runExport(cfg *config.Config, logger *slog.Logger, args []string) {
	if len(args) < 1 {
		printExportUsage()
		os.Exit(1)
	}
	kind := args[0]

	fs := flag.NewFlagSet("export "+kind, flag.ExitOnError)
	player := fs.String("player", "", "Player id or exact name")
	format := fs.String("format", "csv", "csv or json; html or png for charts")
	output := fs.String("output", "", "Output file (default: <kind>_<timestamp>.<format>)")
	overwrite := fs.Bool("overwrite", false, "Replace an existing output file")
	modeFlag := fs.String("mode", "all", "Anomaly mode: all or recent")
	alertsOnly := fs.Bool("alerts-only", false, "Only statistics with an alert")
	scopeFlag := fs.String("scope", "position", "Comparison scope: position, group or class")
	open := fs.Bool("open", false, "Open HTML charts in the browser")
	rf := addRankingFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		os.Exit(2)
	}

	svc := openService(cfg, logger)
	defer closeService(svc)
	ctx := context.Background()

	path := *output
	if path == "" {
		path = export.GenerateFilename(kind, export.Format(*format))
	}

	switch kind {
	case "rankings":
		rows, err := svc.GetRankings(ctx, rf.filter())
		if err != nil {
			log.Fatalf("Failed to build rankings: %v", err)
		}
		exportRows(path, *format, *overwrite, export.RankingRows(rows))

	case "anomalies":
		mode, err := anomaly.ParseMode(*modeFlag)
		if err != nil {
			log.Fatalf("%v", err)
		}
		report, err := svc.DetectAnomalies(ctx, resolvePlayer(ctx, svc, *player), mode)
		if err != nil {
			log.Fatalf("Failed to detect anomalies: %v", err)
		}
		exportRows(path, *format, *overwrite, export.AnomalyRows(report, *alertsOnly))

	case "comparison":
		scope, err := comparison.ParseScope(*scopeFlag)
		if err != nil {
			log.Fatalf("%v", err)
		}
		cmp, err := svc.CompareToGroup(ctx, resolvePlayer(ctx, svc, *player), scope)
		if err != nil {
			log.Fatalf("Failed to compare player: %v", err)
		}
		switch *format {
		case "html":
			saveChart(path, *open, func(w io.Writer) error { return charts.ComparisonHTML(w, cmp) })
		case "png":
			saveChart(path, false, func(w io.Writer) error { return charts.ComparisonPNG(w, cmp) })
		default:
			exportRows(path, *format, *overwrite, export.ComparisonRows(cmp))
		}

	case "evolution":
		summary, err := svc.PlayerSummary(ctx, resolvePlayer(ctx, svc, *player))
		if err != nil {
			log.Fatalf("Failed to load summary: %v", err)
		}
		exportEvolution(path, *format, *open, summary)

	default:
		fmt.Printf("Unknown export kind: %s\n\n", kind)
		printExportUsage()
		os.Exit(1)
	}
}

func exportRows(path, format string, overwrite bool, rows any) {
	f, err := export.ParseFormat(format)
	if err != nil {
		log.Fatalf("%v", err)
	}
	exporter := export.NewExporter(export.Options{
		Format:     f,
		FilePath:   path,
		PrettyJSON: true,
		Overwrite:  overwrite,
	})
	if err := exporter.Export(rows); err != nil {
		log.Fatalf("Export failed: %v", err)
	}
	fmt.Printf("✓ Exported to %s\n", path)
}

func exportEvolution(path, format string, open bool, summary *storage.PlayerSummary) {
	switch format {
	case "html":
		saveChart(path, open, func(w io.Writer) error { return charts.EvolutionHTML(w, summary) })
	case "png":
		saveChart(path, false, func(w io.Writer) error { return charts.EvolutionPNG(w, summary) })
	default:
		log.Fatalf("Evolution exports are charts: use -format html or png")
	}
}

func saveChart(path string, open bool, render func(io.Writer) error) {
	if err := charts.SaveChart(path, render); err != nil {
		log.Fatalf("Failed to write chart: %v", err)
	}
	fmt.Printf("✓ Chart written to %s\n", path)
	if open {
		if err := charts.OpenInBrowser(path); err != nil {
			log.Printf("Could not open browser: %v", err)
		}
	}
}

func printExportUsage() {
	fmt.Println("Usage: rugby-stats export <kind> [options]")
	fmt.Println()
	fmt.Println("Kinds:")
	fmt.Println("  rankings     Ranking rows (csv, json); takes the rankings filters")
	fmt.Println("  anomalies    A player's anomaly report (csv, json)")
	fmt.Println("  comparison   A player vs position peers (csv, json, html, png)")
	fmt.Println("  evolution    A player's final score per match (html, png)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  rugby-stats export rankings -format json -position forwards")
	fmt.Println("  rugby-stats export anomalies -player 3 -mode recent -alerts-only")
	fmt.Println("  rugby-stats export evolution -player \"Ana Pérez\" -format html -open")
}
