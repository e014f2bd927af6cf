package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

type sessionReq struct {
    MovieID        uint64 `json:"movie_id" validate:"required"`
    RoomID         uint64 `json:"room_id" validate:"required"`
    StartsAt       string `json:"starts_at" validate:"required"`
    DurationMin    uint32 `json:"duration_min" validate:"required,min=1"`
    BasePriceCents uint32 `json:"base_price_cents" validate:"required"`
}

// bindSession resolves a session request body to a model, checking
// that the referenced movie and room exist.  A nil session means the
// response has already been written.
func (h *AdminHandler) bindSession(c echo.Context) (*model.Session, error) {
    var req sessionReq
    if err := c.Bind(&req); err != nil {
        return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return nil, err
    }
    startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
    if err != nil {
        return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "starts_at must be RFC3339"})
    }
    ctx := c.Request().Context()
    if _, err := h.Movies.GetByID(ctx, req.MovieID); err != nil {
        if err == repository.ErrMovieNotFound {
            return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if _, err := h.Rooms.GetByID(ctx, req.RoomID); err != nil {
        if err == repository.ErrRoomNotFound {
            return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return &model.Session{
        MovieID:        req.MovieID,
        RoomID:         req.RoomID,
        StartsAt:       startsAt.UTC(),
        DurationMin:    req.DurationMin,
        BasePriceCents: req.BasePriceCents,
    }, nil
}

// CreateSession handles POST /v1/admin/sessions.
func (h *AdminHandler) CreateSession(c echo.Context) error {
    s, errResp := h.bindSession(c)
    if s == nil {
        return errResp
    }
    if err := h.Sessions.Create(c.Request().Context(), s); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create session"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": toSessionPart(s)})
}

// UpdateSession handles PUT /v1/admin/sessions/:id.  Sessions with
// tickets refuse edits; live seat claims depend on the admission
// window staying put.
func (h *AdminHandler) UpdateSession(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    s, errResp := h.bindSession(c)
    if s == nil {
        return errResp
    }
    s.ID = id
    if err := h.Sessions.Update(c.Request().Context(), s); err != nil {
        switch err {
        case repository.ErrSessionNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
        case repository.ErrConflict:
            return c.JSON(http.StatusConflict, echo.Map{"error": "session has tickets"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update session"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toSessionPart(s)})
}

// DeleteSession handles DELETE /v1/admin/sessions/:id.
func (h *AdminHandler) DeleteSession(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    if err := h.Sessions.Delete(c.Request().Context(), id); err != nil {
        switch err {
        case repository.ErrSessionNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
        case repository.ErrConflict:
            return c.JSON(http.StatusConflict, echo.Map{"error": "session has tickets"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete session"})
    }
    return c.NoContent(http.StatusNoContent)
}

// ListSessionTickets handles GET /v1/admin/sessions/:id/tickets, the
// console view of every claim against a session, terminal ones
// included.
func (h *AdminHandler) ListSessionTickets(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    if _, err := h.Sessions.GetByID(c.Request().Context(), id); err != nil {
        if err == repository.ErrSessionNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    details, err := h.Tickets.ListDetailsBySession(c.Request().Context(), id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": details})
}
