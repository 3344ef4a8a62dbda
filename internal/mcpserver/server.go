// Package mcpserver exposes read-only statistics tools to MCP clients over
// streamable HTTP.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/ranking"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// DefaultPath is where the MCP endpoint is mounted.
const DefaultPath = "/mcp"

// Analytics is the part of the storage service the tools read from.
type Analytics interface {
	GetRankings(ctx context.Context, filter ranking.Filter) ([]ranking.Row, error)
	DetectAnomalies(ctx context.Context, playerID int, mode anomaly.Mode) (anomaly.Report, error)
	CompareToGroup(ctx context.Context, playerID int, scope comparison.Scope) (*storage.PositionComparison, error)
	PlayerSummary(ctx context.Context, playerID int) (*storage.PlayerSummary, error)
}

// ToolInfo describes a registered tool for the /tools listing.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Server wraps an MCP server with the statistics tools registered.
type Server struct {
	svc    Analytics
	server *mcp.Server
	tools  []ToolInfo
	logger *slog.Logger
}

// New creates a server and registers every tool. A nil logger uses
// slog.Default().
func New(svc Analytics, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:    svc,
		server: mcp.NewServer(&mcp.Implementation{Name: "rugby-stats-mcp", Version: version}, nil),
		logger: logger,
	}

	addTool(s, &mcp.Tool{
		Name:        "rankings",
		Description: "Players ordered by final score, per match or averaged across matches",
	}, s.rankings)
	addTool(s, &mcp.Tool{
		Name:        "player_anomalies",
		Description: "Compare a player's latest match with the median of their history, per statistic",
	}, s.playerAnomalies)
	addTool(s, &mcp.Tool{
		Name:        "position_comparison",
		Description: "Compare a player's per-statistic averages with their position peers",
	}, s.positionComparison)
	addTool(s, &mcp.Tool{
		Name:        "player_summary",
		Description: "A player's totals and per-match lines with scores",
	}, s.playerSummary)

	return s
}

func addTool[T any](s *Server, tool *mcp.Tool, handler func(context.Context, *mcp.CallToolRequest, T) (*mcp.CallToolResult, any, error)) {
	s.tools = append(s.tools, ToolInfo{Name: tool.Name, Description: tool.Description})
	mcp.AddTool(s.server, tool, handler)
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// Tools lists the registered tools in registration order.
func (s *Server) Tools() []ToolInfo {
	return s.tools
}

// Handler serves the MCP endpoint at path plus /health and /tools.
func (s *Server) Handler(path string) http.Handler {
	if path == "" {
		path = DefaultPath
	}
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]string{"status": "ok"})
	})
	r.Get("/tools", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, map[string]any{"tools": s.tools})
	})
	r.Handle(path, streamable)
	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(b)}},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)}},
	}
}

func (s *Server) fail(err error) *mcp.CallToolResult {
	s.logger.Warn("MCP tool call failed", "error", err)
	return toolError(err)
}
