package handlers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/rugby-stats/internal/anomaly"
	"github.com/ramonehamilton/rugby-stats/internal/api/response"
	"github.com/ramonehamilton/rugby-stats/internal/charts"
	"github.com/ramonehamilton/rugby-stats/internal/comparison"
	"github.com/ramonehamilton/rugby-stats/internal/export"
	"github.com/ramonehamilton/rugby-stats/internal/ranking"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// Report formats served in addition to export.FormatCSV and export.FormatJSON.
const (
	formatHTML = "html"
	formatPNG  = "png"
)

var contentTypes = map[string]string{
	string(export.FormatCSV):  "text/csv; charset=utf-8",
	string(export.FormatJSON): "application/json",
	formatHTML:                "text/html; charset=utf-8",
	formatPNG:                 "image/png",
}

// ExportService is what ExportHandler needs from the storage service.
type ExportService interface {
	GetRankings(ctx context.Context, filter ranking.Filter) ([]ranking.Row, error)
	DetectAnomalies(ctx context.Context, playerID int, mode anomaly.Mode) (anomaly.Report, error)
	CompareToGroup(ctx context.Context, playerID int, scope comparison.Scope) (*storage.PositionComparison, error)
	PlayerSummary(ctx context.Context, playerID int) (*storage.PlayerSummary, error)
}

// ExportHandler serves downloadable reports as CSV, JSON, HTML charts or
// PNG charts. The format comes from the file extension in the route.
type ExportHandler struct {
	svc ExportService
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(svc ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// ExportRankings writes the ranking as CSV or JSON. Filters are the same as
// for GET /stats/rankings.
func (h *ExportHandler) ExportRankings(w http.ResponseWriter, r *http.Request) {
	format, err := tableFormat(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
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

	var buf bytes.Buffer
	if err := export.WriteTo(&buf, format, export.RankingRows(rows), false); err != nil {
		response.InternalError(w, err)
		return
	}
	writeFile(w, &buf, "rankings", string(format))
}

// ExportAnomalies writes a player's anomaly report as CSV or JSON.
// alerts_only=true leaves out statistics without an alert.
func (h *ExportHandler) ExportAnomalies(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	format, err := tableFormat(r)
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	mode, err := anomaly.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	alertsOnly, err := queryBool(r, "alerts_only")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	report, err := h.svc.DetectAnomalies(r.Context(), id, mode)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteTo(&buf, format, export.AnomalyRows(report, alertsOnly), false); err != nil {
		response.InternalError(w, err)
		return
	}
	writeFile(w, &buf, "player_"+strconv.Itoa(id)+"_anomalies", string(format))
}

// ExportComparison writes a player's position comparison as CSV, JSON, an
// HTML bar chart or a PNG bar chart.
func (h *ExportHandler) ExportComparison(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	format := chi.URLParam(r, "format")
	if _, ok := contentTypes[format]; !ok {
		response.BadRequest(w, fmt.Errorf("unsupported export format: %s", format))
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

	var buf bytes.Buffer
	switch format {
	case formatHTML:
		err = charts.ComparisonHTML(&buf, cmp)
	case formatPNG:
		err = charts.ComparisonPNG(&buf, cmp)
	default:
		err = export.WriteTo(&buf, export.Format(format), export.ComparisonRows(cmp), false)
	}
	if err != nil {
		response.InternalError(w, err)
		return
	}
	writeFile(w, &buf, "player_"+strconv.Itoa(id)+"_comparison", format)
}

// ExportEvolution writes a player's final score per match as an HTML or
// PNG line chart.
func (h *ExportHandler) ExportEvolution(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	format := chi.URLParam(r, "format")
	if format != formatHTML && format != formatPNG {
		response.BadRequest(w, fmt.Errorf("unsupported chart format: %s", format))
		return
	}

	summary, err := h.svc.PlayerSummary(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if format == formatHTML {
		err = charts.EvolutionHTML(&buf, summary)
	} else {
		err = charts.EvolutionPNG(&buf, summary)
	}
	if err != nil {
		response.InternalError(w, err)
		return
	}
	writeFile(w, &buf, "player_"+strconv.Itoa(id)+"_evolution", format)
}

func tableFormat(r *http.Request) (export.Format, error) {
	return export.ParseFormat(chi.URLParam(r, "format"))
}

func writeFile(w http.ResponseWriter, buf *bytes.Buffer, name, format string) {
	w.Header().Set("Content-Type", contentTypes[format])
	if format != formatHTML {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+format))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
