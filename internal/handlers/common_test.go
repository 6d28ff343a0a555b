package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gamereview-backend/internal/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsCodes(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{apperrors.NotFound("user not found"), http.StatusNotFound},
		{apperrors.Forbidden("only the author can delete a post"), http.StatusForbidden},
		{apperrors.Conflict("already following"), http.StatusConflict},
		{apperrors.Validation("limit must be between 1 and 10"), http.StatusBadRequest},
		{apperrors.Unauthorized("invalid credentials"), http.StatusUnauthorized},
		{apperrors.Internal("following edge not applied"), http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		respondError(rec, tc.err)
		assert.Equal(t, tc.want, rec.Code, tc.err.Error())
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	}
}

func TestRespondErrorUnwrapsCause(t *testing.T) {
	err := fmt.Errorf("handling request: %w", apperrors.Conflict("game already exists"))

	rec := httptest.NewRecorder()
	respondError(rec, err)
	assert.Equal(t, http.StatusConflict, rec.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "game already exists", body.Error)
}

func TestRespondErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	respondError(rec, errors.New("pq: connection refused on 10.0.0.3"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal error", body.Error)
}

func TestParsePagination(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/v1/posts?limit=5&offset=20", nil)
	limit, offset := parsePagination(r)
	assert.Equal(t, 5, limit)
	assert.Equal(t, 20, offset)

	r = httptest.NewRequest(http.MethodGet, "/api/v1/posts", nil)
	limit, offset = parsePagination(r)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 0, offset)

	// Garbage falls back to defaults; out-of-range values pass through for
	// the services to reject.
	r = httptest.NewRequest(http.MethodGet, "/api/v1/posts?limit=abc&offset=-3", nil)
	limit, offset = parsePagination(r)
	assert.Equal(t, 10, limit)
	assert.Equal(t, -3, offset)
}
