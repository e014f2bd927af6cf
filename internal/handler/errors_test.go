package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/absolute-cinema/ticketing-engine/internal/engine"
)

func recordEngineError(t *testing.T, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	require.NoError(t, writeEngineError(c, err))
	return rec
}

func TestWriteEngineErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"seat conflict", &engine.SeatConflictError{Labels: []string{"A1"}}, http.StatusConflict},
		{"unknown seats", &engine.UnknownSeatError{Labels: []string{"Z9"}}, http.StatusNotFound},
		{"already used", &engine.AlreadyUsedError{UsedAt: time.Now()}, http.StatusConflict},
		{"not found", engine.ErrNotFound, http.StatusNotFound},
		{"no seats", engine.ErrNoSeats, http.StatusBadRequest},
		{"duplicate seat", engine.ErrDuplicateSeat, http.StatusBadRequest},
		{"invalid state", engine.ErrInvalidState, http.StatusConflict},
		{"cancelled", engine.ErrCancelled, http.StatusUnprocessableEntity},
		{"not active", engine.ErrNotActive, http.StatusUnprocessableEntity},
		{"expired", engine.ErrExpired, http.StatusUnprocessableEntity},
		{"out of window", engine.ErrOutOfWindow, http.StatusUnprocessableEntity},
		{"unavailable", engine.ErrUnavailable, http.StatusServiceUnavailable},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := recordEngineError(t, tc.err)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestWriteEngineErrorConflictPayload(t *testing.T) {
	rec := recordEngineError(t, &engine.SeatConflictError{Labels: []string{"A1", "B2"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `"A1"`)
	assert.Contains(t, rec.Body.String(), `"B2"`)
}

func TestWriteEngineErrorWrappedSentinel(t *testing.T) {
	// Wrapped sentinels must still map; the engine wraps transient
	// storage failures around ErrUnavailable.
	wrapped := errors.Join(engine.ErrUnavailable, errors.New("dial tcp: connection refused"))
	rec := recordEngineError(t, wrapped)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
