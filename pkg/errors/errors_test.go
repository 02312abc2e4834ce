package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   string
		status int
	}{
		{"not found", NotFound("Rental"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "b-1"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("count must be positive", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad json"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("admins only"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("slot already approved"), CodeConflict, http.StatusConflict},
		{"internal", Internal("boom", errors.New("cause")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("remote store timed out"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Remote store"), CodeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.status, tt.err.StatusCode())
		})
	}
}

func TestNotFoundWithIDDetails(t *testing.T) {
	err := NotFoundWithID("Booking", "b-1")
	assert.Equal(t, "Booking not found", err.Message)
	assert.Equal(t, map[string]any{"resource": "Booking", "id": "b-1"}, err.Details)
}

func TestAppErrorMessage(t *testing.T) {
	plain := New(CodeValidation, "count must be positive", http.StatusUnprocessableEntity)
	assert.Equal(t, "VALIDATION_ERROR: count must be positive", plain.Error())

	wrapped := Unavailable("remote store").WithCause(errors.New("dial tcp: refused"))
	assert.Equal(t, "SERVICE_UNAVAILABLE: remote store is temporarily unavailable (caused by: dial tcp: refused)", wrapped.Error())
}

func TestWithCauseKeepsSentinelReachable(t *testing.T) {
	sentinel := errors.New("insufficient availability")
	err := Validation("not enough units", map[string]any{"available": 2}).WithCause(sentinel)

	assert.ErrorIs(t, err, sentinel)

	outer := fmt.Errorf("rent: %w", err)
	assert.ErrorIs(t, outer, sentinel)
	assert.True(t, IsAppError(outer))
	assert.Same(t, err, AsAppError(outer))
}

func TestAsAppErrorWrapsForeignErrors(t *testing.T) {
	regular := errors.New("regular error")

	result := AsAppError(regular)
	require.NotNil(t, result)
	assert.Equal(t, CodeInternal, result.Code)
	assert.Same(t, regular, result.Err)
	assert.False(t, IsAppError(regular))
}
