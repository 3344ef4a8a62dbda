package handlers

import (
	"context"
	"net/http"

	"github.com/ramonehamilton/rugby-stats/internal/api/response"
	"github.com/ramonehamilton/rugby-stats/internal/ranking"
	"github.com/ramonehamilton/rugby-stats/internal/rugby"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// StatsService is what StatsHandler needs from the storage service.
type StatsService interface {
	GetRankings(ctx context.Context, filter ranking.Filter) ([]ranking.Row, error)
	ListStats(ctx context.Context, filter storage.StatFilter) ([]storage.StatDetail, int, error)
	GetStat(ctx context.Context, statID int) (*storage.StatDetail, error)
}

// StatsHandler serves stat rows and rankings.
type StatsHandler struct {
	svc StatsService
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(svc StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// RankingFilter reads a ranking filter from the query string:
// match_id, opponent, team, position (forwards|backs), min_minutes, limit.
func RankingFilter(r *http.Request) (ranking.Filter, error) {
	q := r.URL.Query()
	filter := ranking.Filter{
		Opponent: q.Get("opponent"),
		Team:     q.Get("team"),
	}

	var err error
	if filter.MatchID, err = queryInt(r, "match_id"); err != nil {
		return filter, err
	}
	if filter.MinMinutes, err = queryFloat(r, "min_minutes"); err != nil {
		return filter, err
	}
	if filter.PositionClass, err = rugby.ParsePositionClass(q.Get("position")); err != nil {
		return filter, err
	}
	limit, err := queryInt(r, "limit")
	if err != nil {
		return filter, err
	}
	if limit != nil {
		filter.Limit = min(*limit, ranking.MaxLimit)
	}
	return filter, nil
}

// GetRankings returns players ordered by final score.
func (h *StatsHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	filter, err := RankingFilter(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	rows, err := h.svc.GetRankings(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, rows)
}

// ListStats returns a page of stat rows, optionally filtered by player_id
// and match_id.
func (h *StatsHandler) ListStats(w http.ResponseWriter, r *http.Request) {
	page, size, err := pageParams(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	filter := storage.StatFilter{Offset: (page - 1) * size, Limit: size}
	if filter.PlayerID, err = queryInt(r, "player_id"); err != nil {
		response.BadRequest(w, err)
		return
	}
	if filter.MatchID, err = queryInt(r, "match_id"); err != nil {
		response.BadRequest(w, err)
		return
	}

	stats, total, err := h.svc.ListStats(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Paginated(w, stats, page, size, total)
}

// GetStat returns one stat row with its counts.
func (h *StatsHandler) GetStat(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	stat, err := h.svc.GetStat(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, stat)
}
