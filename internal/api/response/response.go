// Package response writes the JSON envelopes returned by the API.
package response

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}

// SuccessResponse wraps successful payloads.
type SuccessResponse struct {
	Data any `json:"data"`
}

// PaginatedResponse wraps one page of a listing.
type PaginatedResponse struct {
	Data       any `json:"data"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// JSON writes data with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Success writes a 200 with data in the envelope.
func Success(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// Created writes a 201 with data in the envelope.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// NoContent writes a 204.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes an error reply with the given status code.
func Error(w http.ResponseWriter, status int, err error) {
	JSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: err.Error(),
		Code:    status,
	})
}

// BadRequest writes a 400.
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, err)
}

// NotFound writes a 404.
func NotFound(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, err)
}

// Conflict writes a 409.
func Conflict(w http.ResponseWriter, err error) {
	Error(w, http.StatusConflict, err)
}

// TooManyRequests writes a 429.
func TooManyRequests(w http.ResponseWriter, err error) {
	Error(w, http.StatusTooManyRequests, err)
}

// InternalError writes a 500.
func InternalError(w http.ResponseWriter, err error) {
	Error(w, http.StatusInternalServerError, err)
}

// Paginated writes one page of results. pageSize must be positive.
func Paginated(w http.ResponseWriter, data any, page, pageSize, totalCount int) {
	totalPages := (totalCount + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	JSON(w, http.StatusOK, PaginatedResponse{
		Data:       data,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	})
}
