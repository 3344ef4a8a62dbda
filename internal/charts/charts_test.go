package charts

import (
	"bytes"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

func sampleComparison() *storage.PositionComparison {
	return &storage.PositionComparison{
		PlayerName:    "Ana",
		PositionLabel: "10 - Apertura",
		PeerLabel:     "Apertura",
		PeerRecords:   4,
		Stats: comparison.Result{
			rugby.KicksInPlay:     {PlayerAvg: 6, GroupAvg: 4.5, DifferencePct: 33.3},
			rugby.PassesCompleted: {PlayerAvg: 5, GroupAvg: 4, DifferencePct: 25},
		},
	}
}

func sampleSummary() *storage.PlayerSummary {
	d := time.Date(2024, time.April, 6, 0, 0, 0, 0, time.UTC)
	s1, s2 := 44.19, 51.2
	return &storage.PlayerSummary{
		PlayerName: "Ana",
		Matches: []storage.MatchLine{
			{Opponent: "Los Tilos", MatchDate: &d, FinalScore: &s1},
			{Opponent: "Hindú"},
			{Opponent: "CASI", FinalScore: &s2},
		},
	}
}

func TestComparisonSeries(t *testing.T) {
	labels, series := ComparisonSeries(sampleComparison())

	assert.Equal(t, []string{rugby.PassesCompleted.Label(), rugby.KicksInPlay.Label()}, labels)
	require.Len(t, series, 2)
	assert.Equal(t, "Ana", series[0].Name)
	assert.Equal(t, []float64{5, 6}, series[0].Values)
	assert.Equal(t, []float64{4, 4.5}, series[1].Values)
}

func TestEvolutionPoints(t *testing.T) {
	points := EvolutionPoints(sampleSummary())
	assert.Equal(t, []DataPoint{
		{Label: "06/04 Los Tilos", Value: 44.19},
		{Label: "CASI", Value: 51.2},
	}, points)
}

func TestHTMLCharts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ComparisonHTML(&buf, sampleComparison()))
	assert.True(t, strings.Contains(buf.String(), "echarts"))
	assert.Contains(t, buf.String(), "Ana vs Apertura")

	buf.Reset()
	require.NoError(t, EvolutionHTML(&buf, sampleSummary()))
	assert.Contains(t, buf.String(), "Final score")
}

func TestPNGCharts(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ComparisonPNG(&buf, sampleComparison()))
	_, err := png.Decode(&buf)
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, EvolutionPNG(&buf, sampleSummary()))
	_, err = png.Decode(&buf)
	require.NoError(t, err)
}

func TestRenderGroupedBar_MismatchedSeries(t *testing.T) {
	var buf bytes.Buffer
	err := RenderGroupedBar(&buf, []string{"a", "b"}, []SeriesData{{Name: "x", Values: []float64{1}}}, DefaultChartConfig())
	assert.Error(t, err)

	err = WriteGroupedBarPNG(&buf, "t", []string{"a"}, nil)
	assert.Error(t, err)
}

func TestSaveChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "charts", "cmp.html")
	err := SaveChart(path, func(w io.Writer) error { return ComparisonHTML(w, sampleComparison()) })
	require.NoError(t, err)
	assert.FileExists(t, path)
}
