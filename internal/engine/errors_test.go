package engine

import (
    "errors"
    "fmt"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestSeatConflictError(t *testing.T) {
    err := &SeatConflictError{Labels: []string{"A1", "B2"}}
    assert.Contains(t, err.Error(), "A1")
    assert.Contains(t, err.Error(), "B2")

    var sc *SeatConflictError
    wrapped := fmt.Errorf("reserving: %w", err)
    assert.True(t, errors.As(wrapped, &sc))
    assert.Equal(t, []string{"A1", "B2"}, sc.Labels)
}

func TestUnknownSeatErrorUnwrapsToNotFound(t *testing.T) {
    err := &UnknownSeatError{Labels: []string{"Z99"}}
    assert.ErrorIs(t, err, ErrNotFound)
    assert.Contains(t, err.Error(), "Z99")
}

func TestAlreadyUsedErrorCarriesAdmissionTime(t *testing.T) {
    usedAt := time.Date(2026, 3, 14, 21, 15, 0, 0, time.UTC)
    err := &AlreadyUsedError{UsedAt: usedAt}

    var au *AlreadyUsedError
    assert.True(t, errors.As(error(err), &au))
    assert.Equal(t, usedAt, au.UsedAt)
}
