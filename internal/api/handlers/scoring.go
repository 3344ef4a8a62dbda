package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"github.com/ramonehamilton/rugby-stats/internal/api/response"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// errRecalculateBusy is returned when recalculations come in faster than
// the configured interval.
var errRecalculateBusy = errors.New("recalculation requested too recently, try again later")

// ScoringService is what ScoringHandler needs from the storage service.
type ScoringService interface {
	ListConfigurations(ctx context.Context) ([]*storage.ScoringConfiguration, error)
	ActiveConfiguration(ctx context.Context) (*storage.ScoringConfiguration, error)
	GetConfiguration(ctx context.Context, id int) (*storage.ConfigurationDetail, error)
	CreateConfiguration(ctx context.Context, name, description string, copyFrom *int, activate bool) (*storage.ScoringConfiguration, error)
	ActivateConfiguration(ctx context.Context, id int) error
	SeedDefaultWeights(ctx context.Context, force bool) (*storage.ScoringConfiguration, error)
	UpdateWeight(ctx context.Context, weightID int, value float64) (*storage.ScoringWeight, error)
	RecalculateAll(ctx context.Context, configID *int) (int, error)
}

// ScoringHandler manages weight configurations and rescoring.
type ScoringHandler struct {
	svc     ScoringService
	limiter *rate.Limiter
}

// NewScoringHandler creates a new ScoringHandler. A nil limiter disables
// rate limiting of recalculations.
func NewScoringHandler(svc ScoringService, limiter *rate.Limiter) *ScoringHandler {
	return &ScoringHandler{svc: svc, limiter: limiter}
}

// CreateConfigurationRequest is the body of POST /scoring/configurations.
type CreateConfigurationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CopyFrom    *int   `json:"copy_from,omitempty"`
	Activate    bool   `json:"activate,omitempty"`
}

// UpdateWeightRequest is the body of PUT /scoring/weights/{id}.
type UpdateWeightRequest struct {
	Weight *float64 `json:"weight"`
}

// RecalculateRequest is the optional body of POST /scoring/recalculate.
type RecalculateRequest struct {
	ConfigID *int `json:"config_id,omitempty"`
}

// RecalculateResponse reports how many records were rescored.
type RecalculateResponse struct {
	Updated  int  `json:"updated"`
	ConfigID *int `json:"config_id,omitempty"`
}

// ListConfigurations returns all configurations.
func (h *ScoringHandler) ListConfigurations(w http.ResponseWriter, r *http.Request) {
	configs, err := h.svc.ListConfigurations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, configs)
}

// GetActiveConfiguration returns the active configuration or 400 when none
// is active.
func (h *ScoringHandler) GetActiveConfiguration(w http.ResponseWriter, r *http.Request) {
	config, err := h.svc.ActiveConfiguration(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, config)
}

// GetConfiguration returns a configuration with its weights.
func (h *ScoringHandler) GetConfiguration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	config, err := h.svc.GetConfiguration(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, config)
}

// CreateConfiguration creates a configuration, optionally copying the
// weights of another one.
func (h *ScoringHandler) CreateConfiguration(w http.ResponseWriter, r *http.Request) {
	var req CreateConfigurationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		response.BadRequest(w, errors.New("name is required"))
		return
	}

	config, err := h.svc.CreateConfiguration(r.Context(), req.Name, req.Description, req.CopyFrom, req.Activate)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, config)
}

// ActivateConfiguration makes a configuration the only active one.
func (h *ScoringHandler) ActivateConfiguration(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}
	if err := h.svc.ActivateConfiguration(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, map[string]any{"id": id, "is_active": true})
}

// SeedDefaults creates the built-in default configuration. force=true
// recreates it.
func (h *ScoringHandler) SeedDefaults(w http.ResponseWriter, r *http.Request) {
	force, err := queryBool(r, "force")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	config, err := h.svc.SeedDefaultWeights(r.Context(), force)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, config)
}

// UpdateWeight changes one weight value.
func (h *ScoringHandler) UpdateWeight(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, err)
		return
	}

	var req UpdateWeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.Weight == nil {
		response.BadRequest(w, errors.New("weight is required"))
		return
	}

	weight, err := h.svc.UpdateWeight(r.Context(), id, *req.Weight)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, weight)
}

// Recalculate rescores every record with the given or active configuration.
func (h *ScoringHandler) Recalculate(w http.ResponseWriter, r *http.Request) {
	var req RecalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, err)
		return
	}

	if h.limiter != nil && !h.limiter.Allow() {
		response.TooManyRequests(w, errRecalculateBusy)
		return
	}

	updated, err := h.svc.RecalculateAll(r.Context(), req.ConfigID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, RecalculateResponse{Updated: updated, ConfigID: req.ConfigID})
}
