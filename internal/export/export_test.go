package export

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/ranking"
	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

type sampleRow struct {
	ID       int       `csv:"id"`
	Name     string    `csv:"name"`
	Score    float64   `csv:"score"`
	Played   time.Time `csv:"played"`
	Note     *string   `csv:"note"`
	Internal string    `csv:"-"`
	hidden   int
}

func samples() []sampleRow {
	note := "capitán"
	return []sampleRow{
		{ID: 1, Name: "Ana", Score: 44.1875, Played: time.Date(2024, 4, 6, 0, 0, 0, 0, time.UTC), Note: &note},
		{ID: 2, Name: "Bruno", Score: 51, Played: time.Date(2024, 4, 13, 0, 0, 0, 0, time.UTC), Internal: "x", hidden: 3},
	}
}

func TestWriteTo_CSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, FormatCSV, samples(), false); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	want := "id,name,score,played,note\n" +
		"1,Ana,44.19,2024-04-06,capitán\n" +
		"2,Bruno,51.00,2024-04-13,\n"
	if buf.String() != want {
		t.Errorf("unexpected CSV:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteTo_CSVEmptySliceWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, FormatCSV, []sampleRow{}, false); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if buf.String() != "id,name,score,played,note\n" {
		t.Errorf("unexpected CSV: %q", buf.String())
	}
}

func TestWriteTo_CSVRejectsNonSlices(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, FormatCSV, samples()[0], false); err == nil {
		t.Error("expected error for a single struct")
	}
	if err := WriteTo(&buf, FormatCSV, []int{1, 2}, false); err == nil {
		t.Error("expected error for a slice of ints")
	}
	if err := WriteTo(&buf, Format("xml"), samples(), false); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestExporter_JSONFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "rankings.json")
	exporter := NewExporter(Options{Format: FormatJSON, FilePath: path, PrettyJSON: true})

	if err := exporter.Export(samples()); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if len(decoded) != 2 {
		t.Errorf("expected 2 rows, got %d", len(decoded))
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("expected indented JSON")
	}
}

func TestExporter_Overwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankings.csv")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := NewExporter(Options{Format: FormatCSV, FilePath: path}).Export(samples()); err == nil {
		t.Error("expected error when file exists without overwrite")
	}
	if err := NewExporter(Options{Format: FormatCSV, FilePath: path, Overwrite: true}).Export(samples()); err != nil {
		t.Fatalf("Export with overwrite failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	if !strings.HasPrefix(string(data), "id,name") {
		t.Errorf("file not replaced: %q", data)
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("csv"); err != nil || f != FormatCSV {
		t.Errorf("ParseFormat(csv) = %v, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Error("expected error for pdf")
	}
}

func TestGenerateFilename(t *testing.T) {
	name := GenerateFilename("rankings", FormatCSV)
	if !strings.HasPrefix(name, "rankings_") || !strings.HasSuffix(name, ".csv") {
		t.Errorf("unexpected filename %q", name)
	}
}

func TestRankingRows(t *testing.T) {
	matches, minutes := 2, 160.0
	rows := RankingRows([]ranking.Row{{Rank: 1, PlayerName: "Ana", FinalScore: 50.06, MatchesPlayed: &matches, TotalMinutes: &minutes}})

	var buf bytes.Buffer
	if err := WriteTo(&buf, FormatCSV, rows, false); err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	want := "rank,player,opponent,position,minutes,matches_played,total_minutes,final_score\n" +
		"1,Ana,,,,2,160.00,50.06\n"
	if buf.String() != want {
		t.Errorf("unexpected CSV:\n%s", buf.String())
	}
}

func TestAnomalyRows(t *testing.T) {
	report := anomaly.Report{
		rugby.Tries:            {LastValue: 2, DeviationPct: 100, Alert: anomaly.AlertPositive, Threshold: 50},
		rugby.TacklesCompleted: {MedianAll: 10, LastValue: 10, Threshold: 25},
	}

	all := AnomalyRows(report, false)
	if len(all) != 2 || all[0].Statistic != "tackles_positivos" || all[1].Statistic != "try" {
		t.Fatalf("unexpected rows: %+v", all)
	}
	alerts := AnomalyRows(report, true)
	if len(alerts) != 1 || alerts[0].Alert != "positive" {
		t.Errorf("unexpected alert rows: %+v", alerts)
	}
}

func TestComparisonRows(t *testing.T) {
	cmp := &storage.PositionComparison{Stats: comparison.Result{
		rugby.PassesCompleted: {PlayerAvg: 5, GroupAvg: 4, DifferencePct: 25},
		rugby.TacklesMade:     {PlayerAvg: 2, GroupAvg: 2},
	}}

	rows := ComparisonRows(cmp)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Statistic != "tackles" || rows[1].Statistic != "pases" {
		t.Errorf("rows not in canonical order: %+v", rows)
	}
	if rows[1].DifferencePct != 25 {
		t.Errorf("unexpected difference %v", rows[1].DifferencePct)
	}
}
