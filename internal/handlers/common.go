package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gamereview-backend/internal/apperrors"

	"github.com/go-playground/validator/v10"
)

// validate checks request shapes before anything reaches the services;
// the services only re-validate existence, ownership and relationships.
var validate = validator.New()

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// respondError maps a service error to its HTTP status. Unclassified
// errors become a generic 500 so internals never leak to clients.
func respondError(w http.ResponseWriter, err error) {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		respondJSON(w, appErr.HTTPStatus(), ErrorResponse{Error: appErr.Message})
		return
	}
	respondJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

// respondValidation sends a 400 for a malformed request body.
func respondValidation(w http.ResponseWriter, message string) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: message})
}

// parsePagination reads limit and offset query parameters. Range checks
// stay in the services so every caller hits the same page-size ceiling.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = 10
	offset = 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil {
			limit = parsed
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil {
			offset = parsed
		}
	}
	return limit, offset
}
