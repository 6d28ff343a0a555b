package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMatchesByCode(t *testing.T) {
	err := NotFound("user not found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))

	// Message differences never affect matching.
	assert.True(t, errors.Is(NotFound("post not found"), ErrNotFound))
}

func TestIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("handling request: %w", Conflict("already following"))
	assert.True(t, errors.Is(err, ErrConflict))

	var appErr *Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, CodeConflict, appErr.Code)
}

func TestWithCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("failed to load user").WithCause(cause)

	assert.True(t, errors.Is(err, ErrInternal))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeNotFound:     http.StatusNotFound,
		CodeForbidden:    http.StatusForbidden,
		CodeConflict:     http.StatusConflict,
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), string(code))
	}
	assert.Equal(t, http.StatusNotFound, NotFound("x").HTTPStatus())
}
