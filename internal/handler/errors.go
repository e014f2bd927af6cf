package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/absolute-cinema/ticketing-engine/internal/engine"
)

// writeEngineError translates a reservation/lifecycle/validation error
// into the HTTP contract.  Conflicts over resources map to 409, bad
// lifecycle timing to 422, unknown resources to 404 and storage
// outages to 503.  Anything unrecognized is a plain 500; the caller
// is expected to have logged it.
func writeEngineError(c echo.Context, err error) error {
    var conflict *engine.SeatConflictError
    if errors.As(err, &conflict) {
        return c.JSON(http.StatusConflict, echo.Map{
            "error": "seats already claimed",
            "seats": conflict.Labels,
        })
    }
    var unknown *engine.UnknownSeatError
    if errors.As(err, &unknown) {
        return c.JSON(http.StatusNotFound, echo.Map{
            "error": "unknown seats",
            "seats": unknown.Labels,
        })
    }
    var used *engine.AlreadyUsedError
    if errors.As(err, &used) {
        return c.JSON(http.StatusConflict, echo.Map{
            "error":   "ticket already used",
            "used_at": used.UsedAt.UTC().Format(time.RFC3339),
        })
    }
    switch {
    case errors.Is(err, engine.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, engine.ErrNoSeats):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "seats are required"})
    case errors.Is(err, engine.ErrDuplicateSeat):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "duplicate seat in request"})
    case errors.Is(err, engine.ErrInvalidState):
        return c.JSON(http.StatusConflict, echo.Map{"error": "ticket state does not allow this"})
    case errors.Is(err, engine.ErrCancelled):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "ticket is cancelled"})
    case errors.Is(err, engine.ErrNotActive):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "ticket is not active"})
    case errors.Is(err, engine.ErrExpired):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "ticket or session expired"})
    case errors.Is(err, engine.ErrOutOfWindow):
        return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": "outside admission window"})
    case errors.Is(err, engine.ErrUnavailable):
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage temporarily unavailable"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
