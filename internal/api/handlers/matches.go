package handlers

import (
	"context"
	"net/http"

	"github.com/ramonehamilton/rugby-stats/internal/api/response"
	"github.com/ramonehamilton/rugby-stats/internal/importer"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// maxSheetBytes bounds the body of an import request.
const maxSheetBytes = 4 << 20

// MatchService is what MatchHandler needs from the storage service.
type MatchService interface {
	ListMatches(ctx context.Context, filter storage.MatchFilter) ([]*storage.Match, error)
	GetMatch(ctx context.Context, matchID int) (*storage.Match, error)
	ListTeams(ctx context.Context) ([]string, error)
	DeleteMatch(ctx context.Context, matchID int) error
}

// SheetImporter stores parsed match sheets.
type SheetImporter interface {
	Import(ctx context.Context, sheets []importer.Sheet, opts importer.Options) (*importer.Result, error)
}

// MatchHandler handles match listing, deletion and sheet imports.
type MatchHandler struct {
	svc      MatchService
	importer SheetImporter
}

// NewMatchHandler creates a new MatchHandler.
func NewMatchHandler(svc MatchService, imp SheetImporter) *MatchHandler {
	return &MatchHandler{svc: svc, importer: imp}
}

// ImportResponse is the body of POST /matches/import. Warning is set when
// the sheets were stored but rescoring failed.
type ImportResponse struct {
	*importer.Result
	Warning string `json:"warning,omitempty"`
}

// ListMatches returns matches, most recent first, optionally filtered by
// opponent and team.
func (h *MatchHandler) ListMatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	matches, err := h.svc.ListMatches(r.Context(), storage.MatchFilter{
		Opponent: q.Get("opponent"),
		Team:     q.Get("team"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, matches)
}

// GetMatch returns a single match.
func (h *MatchHandler) GetMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	match, err := h.svc.GetMatch(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, match)
}

// ListTeams returns the distinct team names, sorted.
func (h *MatchHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.svc.ListTeams(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, teams)
}

// DeleteMatch removes a match and its stat records.
func (h *MatchHandler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	if err := h.svc.DeleteMatch(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.NoContent(w)
}

// ImportSheets stores the match sheets in the request body, a single sheet
// object or an array. recalculate=true rescores everything afterwards and
// source names the origin recorded on each match.
func (h *MatchHandler) ImportSheets(w http.ResponseWriter, r *http.Request) {
	recalculate, err := queryBool(r, "recalculate")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	sheets, err := importer.ParseSheets(http.MaxBytesReader(w, r.Body, maxSheetBytes))
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "api"
	}

	result, err := h.importer.Import(r.Context(), sheets, importer.Options{
		Recalculate: recalculate,
		Source:      source,
	})
	if err != nil {
		if result == nil {
			writeError(w, err)
			return
		}
		response.Created(w, ImportResponse{Result: result, Warning: err.Error()})
		return
	}
	response.Created(w, ImportResponse{Result: result})
}
