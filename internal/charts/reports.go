package charts

import (
	"fmt"
	"io"

	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// ComparisonSeries returns statistic labels plus the player and group
// average series, in canonical statistic order.
func ComparisonSeries(cmp *storage.PositionComparison) ([]string, []SeriesData) {
	var labels []string
	player := SeriesData{Name: cmp.PlayerName}
	group := SeriesData{Name: cmp.PeerLabel}
	for _, s := range rugby.Statistics() {
		e, ok := cmp.Stats[s]
		if !ok {
			continue
		}
		labels = append(labels, s.Label())
		player.Values = append(player.Values, e.PlayerAvg)
		group.Values = append(group.Values, e.GroupAvg)
	}
	return labels, []SeriesData{player, group}
}

// EvolutionPoints returns the final score of each scored match of a
// summary, labelled by date or opponent.
func EvolutionPoints(summary *storage.PlayerSummary) []DataPoint {
	points := make([]DataPoint, 0, len(summary.Matches))
	for _, m := range summary.Matches {
		if m.FinalScore == nil {
			continue
		}
		label := m.Opponent
		if m.MatchDate != nil {
			label = m.MatchDate.Format("02/01") + " " + m.Opponent
		}
		points = append(points, DataPoint{Label: label, Value: *m.FinalScore})
	}
	return points
}

// ComparisonHTML writes the player vs group bar chart as HTML.
func ComparisonHTML(w io.Writer, cmp *storage.PositionComparison) error {
	labels, series := ComparisonSeries(cmp)
	config := DefaultChartConfig()
	config.Title = cmp.PlayerName + " vs " + cmp.PeerLabel
	config.Subtitle = fmt.Sprintf("%s, %d peer records", cmp.PositionLabel, cmp.PeerRecords)
	return RenderGroupedBar(w, labels, series, config)
}

// ComparisonPNG writes the player vs group bar chart as PNG.
func ComparisonPNG(w io.Writer, cmp *storage.PositionComparison) error {
	labels, series := ComparisonSeries(cmp)
	return WriteGroupedBarPNG(w, cmp.PlayerName+" vs "+cmp.PeerLabel, labels, series)
}

// EvolutionHTML writes the final score line chart as HTML.
func EvolutionHTML(w io.Writer, summary *storage.PlayerSummary) error {
	config := DefaultChartConfig()
	config.Title = summary.PlayerName
	config.Subtitle = "Final score per match"
	return RenderLine(w, "Final score", EvolutionPoints(summary), config)
}

// EvolutionPNG writes the final score line chart as PNG.
func EvolutionPNG(w io.Writer, summary *storage.PlayerSummary) error {
	return WriteLinePNG(w, summary.PlayerName, "Final score", EvolutionPoints(summary))
}
