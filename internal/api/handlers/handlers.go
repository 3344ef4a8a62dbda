// Package handlers implements the HTTP handlers of the statistics API.
// Handlers depend on small service interfaces so they can be tested with
// in-memory fakes.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/rugby-stats/internal/api/response"
	"github.com/ramonehamilton/rugby-stats/internal/importer"
	"github.com/ramonehamilton/rugby-stats/internal/scoring"
	"github.com/ramonehamilton/rugby-stats/internal/storage"
)

// writeError maps service errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrPlayerNotFound),
		errors.Is(err, storage.ErrMatchNotFound),
		errors.Is(err, storage.ErrStatNotFound),
		errors.Is(err, storage.ErrConfigNotFound),
		errors.Is(err, storage.ErrWeightNotFound),
		errors.Is(err, storage.ErrNoStats):
		response.NotFound(w, err)
	case errors.Is(err, scoring.ErrConfigurationMissing),
		errors.Is(err, scoring.ErrInvalidPosition),
		errors.Is(err, importer.ErrInvalidSheet):
		response.BadRequest(w, err)
	case errors.Is(err, storage.ErrConfigExists),
		errors.Is(err, storage.ErrPlayerExists):
		response.Conflict(w, err)
	default:
		response.InternalError(w, err)
	}
}

// pathID parses a positive integer URL parameter.
func pathID(r *http.Request, name string) (int, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// queryInt parses an optional integer query parameter.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &v, nil
}

// queryFloat parses an optional float query parameter.
func queryFloat(r *http.Request, name string) (*float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &v, nil
}

// queryBool parses an optional boolean query parameter, false when absent.
func queryBool(r *http.Request, name string) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}

// pageParams reads page (1-based) and page_size, clamped to maxPageSize.
func pageParams(r *http.Request) (page, size int, err error) {
	p, err := queryInt(r, "page")
	if err != nil {
		return 0, 0, err
	}
	ps, err := queryInt(r, "page_size")
	if err != nil {
		return 0, 0, err
	}

	page, size = 1, defaultPageSize
	if p != nil && *p > 0 {
		page = *p
	}
	if ps != nil && *ps > 0 {
		size = min(*ps, maxPageSize)
	}
	return page, size, nil
}
