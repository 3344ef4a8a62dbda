package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/api/response"
	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// PlayerService is what PlayerHandler needs from the storage service.
type PlayerService interface {
	ListPlayersWithStats(ctx context.Context, offset, limit int) ([]storage.PlayerOverview, int, error)
	GetPlayer(ctx context.Context, playerID int) (*storage.Player, error)
	UpdatePlayer(ctx context.Context, playerID int, update storage.PlayerUpdate) (*storage.Player, error)
	PlayerSummary(ctx context.Context, playerID int) (*storage.PlayerSummary, error)
	PlayerSummaryByName(ctx context.Context, name string) (*storage.PlayerSummary, error)
	DetectAnomalies(ctx context.Context, playerID int, mode anomaly.Mode) (anomaly.Report, error)
	CompareToGroup(ctx context.Context, playerID int, scope comparison.Scope) (*storage.PositionComparison, error)
	DeletePlayer(ctx context.Context, playerID int) error
}

// PlayerHandler handles player listing and per-player analysis.
type PlayerHandler struct {
	svc PlayerService
}

// NewPlayerHandler creates a new PlayerHandler.
func NewPlayerHandler(svc PlayerService) *PlayerHandler {
	return &PlayerHandler{svc: svc}
}

// AnomalyResponse is the body of GET /players/{id}/anomalies.
type AnomalyResponse struct {
	PlayerID  int               `json:"player_id"`
	Mode      anomaly.Mode      `json:"mode"`
	Anomalies anomaly.Report    `json:"anomalies"`
	Alerts    []rugby.Statistic `json:"alerts"`
}

// ListPlayers returns a page of players with aggregate scores.
func (h *PlayerHandler) ListPlayers(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	players, total, err := h.svc.ListPlayersWithStats(r.Context(), (page-1)*size, size)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Paginated(w, players, page, size, total)
}

// GetPlayer returns a single player.
func (h *PlayerHandler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	player, err := h.svc.GetPlayer(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, player)
}

// UpdatePlayer applies a partial update of name, weight_kg and height_cm.
// Omitted fields keep their value.
func (h *PlayerHandler) UpdatePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req storage.PlayerUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			response.BadRequest(w, errors.New("name must not be empty"))
			return
		}
		req.Name = &name
	}
	if (req.WeightKg != nil && *req.WeightKg <= 0) || (req.HeightCm != nil && *req.HeightCm <= 0) {
		response.BadRequest(w, errors.New("weight_kg and height_cm must be positive"))
		return
	}

	player, err := h.svc.UpdatePlayer(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, player)
}

// GetSummary returns a player's totals and match lines.
func (h *PlayerHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	summary, err := h.svc.PlayerSummary(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, summary)
}

// GetSummaryByName returns the summary of the player with the exact,
// URL-escaped name.
func (h *PlayerHandler) GetSummaryByName(w http.ResponseWriter, r *http.Request) {
	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || strings.TrimSpace(name) == "" {
		response.BadRequest(w, fmt.Errorf("invalid player name %q", chi.URLParam(r, "name")))
		return
	}

	summary, err := h.svc.PlayerSummaryByName(r.Context(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, summary)
}

// GetAnomalies runs anomaly detection for a player. The mode query
// parameter selects "all" (default) or "recent".
func (h *PlayerHandler) GetAnomalies(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	mode, err := anomaly.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	report, err := h.svc.DetectAnomalies(r.Context(), id, mode)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, AnomalyResponse{
		PlayerID:  id,
		Mode:      mode,
		Anomalies: report,
		Alerts:    report.Alerts(),
	})
}

// GetPositionComparison compares a player with their peer group. The scope
// query parameter selects "position" (default), "group" or "class".
func (h *PlayerHandler) GetPositionComparison(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	scope, err := comparison.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	cmp, err := h.svc.CompareToGroup(r.Context(), id, scope)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, cmp)
}

// DeletePlayer removes a player and their stat records.
func (h *PlayerHandler) DeletePlayer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	if err := h.svc.DeletePlayer(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}
