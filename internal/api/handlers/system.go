package handlers

import (
	"net/http"

	"github.com/ramonehamilton/rugby-stats/internal/api/response"
	"github.com/ramonehamilton/rugby-stats/internal/metrics"
	"github.com/ramonehamilton/rugby-stats/internal/version"
)

// SystemHandler serves version and request metrics.
type SystemHandler struct {
	metrics *metrics.RequestMetrics
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(m *metrics.RequestMetrics) *SystemHandler {
	return &SystemHandler{metrics: m}
}

// GetVersion returns the application version.
func (h *SystemHandler) GetVersion(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"version": version.GetVersion(),
		"service": "rugby-stats-api",
	})
}

// GetMetrics returns request counts and latency percentiles.
func (h *SystemHandler) GetMetrics(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.metrics.Snapshot())
}
