package export

import (
	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/ranking"
	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// RankingRow is one ranking line.
type RankingRow struct {
	Rank          int      `csv:"rank" json:"rank"`
	Player        string   `csv:"player" json:"player"`
	Opponent      *string  `csv:"opponent" json:"opponent,omitempty"`
	Position      *int     `csv:"position" json:"position,omitempty"`
	Minutes       *float64 `csv:"minutes" json:"minutes,omitempty"`
	MatchesPlayed *int     `csv:"matches_played" json:"matches_played,omitempty"`
	TotalMinutes  *float64 `csv:"total_minutes" json:"total_minutes,omitempty"`
	FinalScore    float64  `csv:"final_score" json:"final_score"`
}

// RankingRows converts ranking output.
func RankingRows(rows []ranking.Row) []RankingRow {
	out := make([]RankingRow, len(rows))
	for i, r := range rows {
		out[i] = RankingRow{
			Rank:          r.Rank,
			Player:        r.PlayerName,
			Opponent:      r.Opponent,
			Position:      r.Position,
			Minutes:       r.Minutes,
			MatchesPlayed: r.MatchesPlayed,
			TotalMinutes:  r.TotalMinutes,
			FinalScore:    r.FinalScore,
		}
	}
	return out
}

// AnomalyRow is one statistic of an anomaly report.
type AnomalyRow struct {
	Statistic    string  `csv:"statistic" json:"statistic"`
	Label        string  `csv:"label" json:"label"`
	MedianAll    float64 `csv:"median_all" json:"median_all"`
	MedianRecent float64 `csv:"median_recent" json:"median_recent"`
	LastValue    int     `csv:"last_value" json:"last_value"`
	DeviationPct float64 `csv:"deviation_pct" json:"deviation_pct"`
	Threshold    float64 `csv:"threshold" json:"threshold"`
	Alert        string  `csv:"alert" json:"alert"`
}

// AnomalyRows flattens a report in canonical statistic order. With
// alertsOnly, statistics without an alert are left out.
func AnomalyRows(report anomaly.Report, alertsOnly bool) []AnomalyRow {
	out := make([]AnomalyRow, 0, len(report))
	for _, s := range rugby.Statistics() {
		res, ok := report[s]
		if !ok || (alertsOnly && res.Alert == anomaly.AlertNone) {
			continue
		}
		out = append(out, AnomalyRow{
			Statistic:    s.Key(),
			Label:        s.Label(),
			MedianAll:    res.MedianAll,
			MedianRecent: res.MedianRecent,
			LastValue:    res.LastValue,
			DeviationPct: res.DeviationPct,
			Threshold:    res.Threshold,
			Alert:        string(res.Alert),
		})
	}
	return out
}

// ComparisonRow is one statistic of a position comparison.
type ComparisonRow struct {
	Statistic     string  `csv:"statistic" json:"statistic"`
	Label         string  `csv:"label" json:"label"`
	PlayerAvg     float64 `csv:"player_avg" json:"player_avg"`
	GroupAvg      float64 `csv:"group_avg" json:"group_avg"`
	DifferencePct float64 `csv:"difference_pct" json:"difference_pct"`
}

// ComparisonRows flattens a comparison in canonical statistic order.
func ComparisonRows(cmp *storage.PositionComparison) []ComparisonRow {
	out := make([]ComparisonRow, 0, len(cmp.Stats))
	for _, s := range rugby.Statistics() {
		e, ok := cmp.Stats[s]
		if !ok {
			continue
		}
		out = append(out, ComparisonRow{
			Statistic:     s.Key(),
			Label:         s.Label(),
			PlayerAvg:     e.PlayerAvg,
			GroupAvg:      e.GroupAvg,
			DifferencePct: e.DifferencePct,
		})
	}
	return out
}
