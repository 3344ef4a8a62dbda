package mcpserver

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/export"
	"github.com/ramonehamilton/rugby-stats/internal/ranking"
	"github.com/ramonehamilton/rugby-stats/internal/rugby"
)

// RankingsArgs is the input schema for the rankings tool.
type RankingsArgs struct {
	MatchID    *int     `json:"match_id,omitempty" jsonschema:"Rank within one match; omit to average across matches"`
	Opponent   string   `json:"opponent,omitempty" jsonschema:"Only matches against this opponent (aggregated mode)"`
	Team       string   `json:"team,omitempty" jsonschema:"Only matches of this team"`
	Position   string   `json:"position,omitempty" jsonschema:"forwards or backs"`
	MinMinutes *float64 `json:"min_minutes,omitempty" jsonschema:"Minimum minutes per record (default 20 when aggregated)"`
	Limit      int      `json:"limit,omitempty" jsonschema:"Maximum rows (default 20, max 100)"`
}

// PlayerAnomaliesArgs is the input schema for the player_anomalies tool.
type PlayerAnomaliesArgs struct {
	PlayerID   int    `json:"player_id" jsonschema:"Player id (required)"`
	Mode       string `json:"mode,omitempty" jsonschema:"all (default) or recent"`
	AlertsOnly bool   `json:"alerts_only,omitempty" jsonschema:"Only statistics with an alert"`
}

// PositionComparisonArgs is the input schema for the position_comparison tool.
type PositionComparisonArgs struct {
	PlayerID int    `json:"player_id" jsonschema:"Player id (required)"`
	Scope    string `json:"scope,omitempty" jsonschema:"position (default), group or class"`
}

// PlayerSummaryArgs is the input schema for the player_summary tool.
type PlayerSummaryArgs struct {
	PlayerID int `json:"player_id" jsonschema:"Player id (required)"`
}

// AnomaliesResult is the output of the player_anomalies tool.
type AnomaliesResult struct {
	PlayerID   int                 `json:"player_id"`
	Mode       anomaly.Mode        `json:"mode"`
	Statistics []export.AnomalyRow `json:"statistics"`
}

func (s *Server) rankings(ctx context.Context, _ *mcp.CallToolRequest, args RankingsArgs) (*mcp.CallToolResult, any, error) {
	class, err := rugby.ParsePositionClass(args.Position)
	if err != nil {
		return s.fail(err), nil, nil
	}
	filter := ranking.Filter{
		MatchID:       args.MatchID,
		Opponent:      args.Opponent,
		Team:          args.Team,
		PositionClass: class,
		MinMinutes:    args.MinMinutes,
		Limit:         min(args.Limit, ranking.MaxLimit),
	}

	rows, err := s.svc.GetRankings(ctx, filter)
	if err != nil {
		return s.fail(err), nil, nil
	}
	return toolJSON(rows)
}

func (s *Server) playerAnomalies(ctx context.Context, _ *mcp.CallToolRequest, args PlayerAnomaliesArgs) (*mcp.CallToolResult, any, error) {
	if args.PlayerID <= 0 {
		return s.fail(fmt.Errorf("player_id is required")), nil, nil
	}
	mode, err := anomaly.ParseMode(args.Mode)
	if err != nil {
		return s.fail(err), nil, nil
	}

	report, err := s.svc.DetectAnomalies(ctx, args.PlayerID, mode)
	if err != nil {
		return s.fail(err), nil, nil
	}
	return toolJSON(AnomaliesResult{
		PlayerID:   args.PlayerID,
		Mode:       mode,
		Statistics: export.AnomalyRows(report, args.AlertsOnly),
	})
}

func (s *Server) positionComparison(ctx context.Context, _ *mcp.CallToolRequest, args PositionComparisonArgs) (*mcp.CallToolResult, any, error) {
	if args.PlayerID <= 0 {
		return s.fail(fmt.Errorf("player_id is required")), nil, nil
	}
	scope, err := comparison.ParseScope(args.Scope)
	if err != nil {
		return s.fail(err), nil, nil
	}

	cmp, err := s.svc.CompareToGroup(ctx, args.PlayerID, scope)
	if err != nil {
		return s.fail(err), nil, nil
	}
	return toolJSON(map[string]any{
		"player_id":      cmp.PlayerID,
		"player_name":    cmp.PlayerName,
		"position":       cmp.Position,
		"position_label": cmp.PositionLabel,
		"peer_label":     cmp.PeerLabel,
		"peer_records":   cmp.PeerRecords,
		"statistics":     export.ComparisonRows(cmp),
	})
}

func (s *Server) playerSummary(ctx context.Context, _ *mcp.CallToolRequest, args PlayerSummaryArgs) (*mcp.CallToolResult, any, error) {
	if args.PlayerID <= 0 {
		return s.fail(fmt.Errorf("player_id is required")), nil, nil
	}

	summary, err := s.svc.PlayerSummary(ctx, args.PlayerID)
	if err != nil {
		return s.fail(err), nil, nil
	}
	return toolJSON(summary)
}
