package handlers

import (
	"bytes"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/ranking"
	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

const comparisonPattern = "/exports/players/{id}/comparison.{format}"

func exportFixture() *fakeService {
	d := time.Date(2024, time.May, 4, 0, 0, 0, 0, time.UTC)
	s1, s2 := 44.19, 51.2
	return &fakeService{
		comparison: &storage.PositionComparison{
			PlayerID:      3,
			PlayerName:    "Ana",
			Position:      10,
			PositionLabel: "10 - Apertura",
			PeerLabel:     "Apertura",
			PeerRecords:   4,
			Stats: comparison.Result{
				rugby.TacklesCompleted: {PlayerAvg: 12.5, GroupAvg: 10, DifferencePct: 25},
			},
		},
		summary: &storage.PlayerSummary{
			PlayerID:   3,
			PlayerName: "Ana",
			Matches: []storage.MatchLine{
				{Opponent: "CASI", MatchDate: &d, FinalScore: &s1},
				{Opponent: "SIC", FinalScore: &s2},
			},
		},
		report: anomaly.Report{
			rugby.TacklesCompleted: {MedianAll: 10, LastValue: 15, DeviationPct: 50, Threshold: 25, Alert: anomaly.AlertPositive},
			rugby.Tries:            {MedianAll: 1, LastValue: 1, Threshold: 50},
		},
		rows: []ranking.Row{{Rank: 1, PlayerName: "Bruno", FinalScore: 51.19}},
	}
}

func TestExportHandler_ComparisonCSV(t *testing.T) {
	h := NewExportHandler(exportFixture())

	rec := serve(t, http.MethodGet, comparisonPattern, h.ExportComparison, "/exports/players/3/comparison.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "player_3_comparison.csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "statistic,label,player_avg,group_avg,difference_pct", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], rugby.TacklesCompleted.Key()+","))
	assert.True(t, strings.HasSuffix(lines[1], ",12.50,10.00,25.00"))
}

func TestExportHandler_ComparisonCharts(t *testing.T) {
	svc := exportFixture()
	h := NewExportHandler(svc)

	rec := serve(t, http.MethodGet, comparisonPattern, h.ExportComparison, "/exports/players/3/comparison.html?scope=class", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "echarts")
	assert.Equal(t, comparison.ScopeClass, svc.gotScope)

	rec = serve(t, http.MethodGet, comparisonPattern, h.ExportComparison, "/exports/players/3/comparison.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = serve(t, http.MethodGet, comparisonPattern, h.ExportComparison, "/exports/players/3/comparison.xml", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	svc.err = storage.ErrNoStats
	rec = serve(t, http.MethodGet, comparisonPattern, h.ExportComparison, "/exports/players/3/comparison.json", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportHandler_Anomalies(t *testing.T) {
	h := NewExportHandler(exportFixture())
	pattern := "/exports/players/{id}/anomalies.{format}"

	rec := serve(t, http.MethodGet, pattern, h.ExportAnomalies, "/exports/players/3/anomalies.csv?alerts_only=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], rugby.TacklesCompleted.Key()+","))

	rec = serve(t, http.MethodGet, pattern, h.ExportAnomalies, "/exports/players/3/anomalies.json", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"statistic"`)

	rec = serve(t, http.MethodGet, pattern, h.ExportAnomalies, "/exports/players/3/anomalies.png", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportHandler_EvolutionAndRankings(t *testing.T) {
	h := NewExportHandler(exportFixture())

	rec := serve(t, http.MethodGet, "/exports/players/{id}/evolution.{format}", h.ExportEvolution, "/exports/players/3/evolution.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = serve(t, http.MethodGet, "/exports/players/{id}/evolution.{format}", h.ExportEvolution, "/exports/players/3/evolution.csv", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, http.MethodGet, "/exports/rankings.{format}", h.ExportRankings, "/exports/rankings.csv?position=forwards", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bruno")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "rankings.csv")
}
