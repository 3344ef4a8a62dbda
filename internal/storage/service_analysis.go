package storage

import (
	"context"
	"fmt"
	"math"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/ranking"
	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/storage/repository"
)

// GetRankings ranks scored records. Missing limit and aggregated minimum
// minutes take the service defaults.
func (s *Service) GetRankings(ctx context.Context, filter ranking.Filter) ([]ranking.Row, error) {
	if filter.Limit <= 0 {
		filter.Limit = s.rankingLimit
	}
	if filter.MatchID == nil && filter.MinMinutes == nil {
		minMinutes := s.rankingMinMinutes
		filter.MinMinutes = &minMinutes
	}

	records, err := s.stats.ListRecords(ctx, repository.RecordFilter{MatchID: filter.MatchID, ScoredOnly: true})
	if err != nil {
		return nil, err
	}

	input := make([]ranking.Record, len(records))
	for i, r := range records {
		input[i] = ranking.Record{
			StatID:        r.ID,
			PlayerID:      r.PlayerID,
			PlayerName:    r.PlayerName,
			MatchID:       r.MatchID,
			Opponent:      r.Opponent,
			Team:          r.Team,
			Position:      r.Position,
			MinutesPlayed: r.Minutes(),
			AbsoluteScore: r.AbsoluteScore,
			FinalScore:    r.FinalScore,
		}
	}
	return ranking.Rank(input, filter), nil
}

// DetectAnomalies compares a player's latest match with their history.
// Players with fewer than two matches get an empty report.
func (s *Service) DetectAnomalies(ctx context.Context, playerID int, mode anomaly.Mode) (anomaly.Report, error) {
	if _, err := s.GetPlayer(ctx, playerID); err != nil {
		return nil, err
	}

	records, err := s.stats.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	history := make([]rugby.StatLine, len(records))
	for i, r := range records {
		history[i] = r.Stats
	}
	return s.detector.Detect(history, mode), nil
}

// CompareToGroup compares a player's averages with the records of peers at
// the player's most common position, widened by scope.
func (s *Service) CompareToGroup(ctx context.Context, playerID int, scope comparison.Scope) (*PositionComparison, error) {
	player, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	records, err := s.stats.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %d", ErrNoStats, playerID)
	}

	positions := make([]int, len(records))
	own := make([]rugby.StatLine, len(records))
	for i, r := range records {
		positions[i] = r.Position
		own[i] = r.Stats
	}
	position, ok := comparison.MostCommonPosition(positions)
	if !ok {
		return nil, fmt.Errorf("%w: no position data for player %d", ErrNoStats, playerID)
	}

	peerPositions := comparison.PeerPositions(position, scope)
	peers, err := s.stats.ListByPositions(ctx, peerPositions)
	if err != nil {
		return nil, err
	}
	group := make([]rugby.StatLine, len(peers))
	for i, p := range peers {
		group[i] = p.Stats
	}

	return &PositionComparison{
		PlayerID:      player.ID,
		PlayerName:    player.Name,
		Position:      position,
		PositionLabel: rugby.PositionLabel(position),
		Scope:         scope,
		PeerLabel:     comparison.Label(position, scope),
		PeerPositions: peerPositions,
		PeerRecords:   len(peers),
		Stats:         comparison.Compare(own, group),
	}, nil
}

// PlayerSummary returns a player's totals and per-match lines.
func (s *Service) PlayerSummary(ctx context.Context, playerID int) (*PlayerSummary, error) {
	player, err := s.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	records, err := s.stats.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}

	summary := &PlayerSummary{
		PlayerID:      player.ID,
		PlayerName:    player.Name,
		WeightKg:      player.WeightKg,
		HeightCm:      player.HeightCm,
		MatchesPlayed: len(records),
		Matches:       make([]MatchLine, 0, len(records)),
	}

	var minutes, scores float64
	for _, r := range records {
		minutes += r.Minutes()
		if r.FinalScore != nil {
			scores += *r.FinalScore
		}
		summary.Matches = append(summary.Matches, MatchLine{
			StatID:        r.ID,
			MatchID:       r.MatchID,
			Opponent:      r.Opponent,
			Team:          r.Team,
			MatchDate:     r.MatchDate,
			Position:      r.Position,
			MinutesPlayed: r.MinutesPlayed,
			AbsoluteScore: r.AbsoluteScore,
			FinalScore:    r.FinalScore,
			Stats:         r.Stats.Map(),
		})
	}
	if len(records) > 0 {
		summary.TotalMinutes = round(minutes, 1)
		summary.AvgFinalScore = round(scores/float64(len(records)), 2)
	}
	return summary, nil
}

// PlayerSummaryByName is PlayerSummary for the player with the exact name.
func (s *Service) PlayerSummaryByName(ctx context.Context, name string) (*PlayerSummary, error) {
	player, err := s.FindPlayer(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.PlayerSummary(ctx, player.ID)
}

// ListPlayersWithStats returns a page of players with aggregate scores and
// the total player count. Unscored records count as zero.
func (s *Service) ListPlayersWithStats(ctx context.Context, offset, limit int) ([]PlayerOverview, int, error) {
	players, err := s.players.List(ctx, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.players.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	records, err := s.stats.ListRecords(ctx, repository.RecordFilter{})
	if err != nil {
		return nil, 0, err
	}
	byPlayer := make(map[int][]*StatRecord)
	for _, r := range records {
		byPlayer[r.PlayerID] = append(byPlayer[r.PlayerID], r)
	}

	out := make([]PlayerOverview, 0, len(players))
	for _, p := range players {
		own := byPlayer[p.ID]
		row := PlayerOverview{
			ID:            p.ID,
			Name:          p.Name,
			CreatedAt:     p.CreatedAt,
			UpdatedAt:     p.UpdatedAt,
			MatchesPlayed: len(own),
		}

		var sum float64
		positions := make([]int, 0, len(own))
		for _, r := range own {
			if r.FinalScore != nil {
				sum += *r.FinalScore
			}
			positions = append(positions, r.Position)
		}
		if len(own) > 0 {
			row.TotalScore = round(sum, 1)
			row.AvgScore = round(sum/float64(len(own)), 1)
		}
		if pos, ok := comparison.MostCommonPosition(positions); ok {
			row.PrimaryPosition = &pos
		}
		out = append(out, row)
	}
	return out, total, nil
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.RoundToEven(v*scale) / scale
}
