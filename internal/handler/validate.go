package handler

import (
    "context"
    "log"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/absolute-cinema/ticketing-engine/internal/engine"
    "github.com/absolute-cinema/ticketing-engine/internal/queue"
    queue_publisher "github.com/absolute-cinema/ticketing-engine/internal/service"
)

// ValidationHandler exposes the door-scanner endpoints.  Only staff
// may call them; the route group applies the ADMIN role middleware.
type ValidationHandler struct {
    Gateway *engine.Gateway
}

// NewValidationHandler constructs a ValidationHandler.
func NewValidationHandler(gateway *engine.Gateway) *ValidationHandler {
    if gateway == nil {
        panic("nil gateway passed to NewValidationHandler")
    }
    return &ValidationHandler{Gateway: gateway}
}

type validateReq struct {
    QRUUID string `json:"qr_uuid" validate:"required,uuid4"`
}

// ValidateByQR handles POST /v1/admin/validate.  The body carries the
// scanned QR UUID.  Exactly one scan per ticket ever succeeds.
func (h *ValidationHandler) ValidateByQR(c echo.Context) error {
    var req validateReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    return h.admit(c, strings.TrimSpace(req.QRUUID))
}

// ValidateByID handles POST /v1/admin/tickets/:id/validate, the
// manual fallback when a QR code will not scan.
func (h *ValidationHandler) ValidateByID(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    }
    return h.admit(c, strconv.FormatUint(id, 10))
}

func (h *ValidationHandler) admit(c echo.Context, identifier string) error {
    res, err := h.Gateway.Validate(c.Request().Context(), identifier)
    if err != nil {
        return writeEngineError(c, err)
    }

    // Best-effort event for the back office; admission already stuck.
    go func(r engine.ValidationResult) {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        ev := queue.TicketValidatedEvent{
            TicketID:  r.TicketID,
            SessionID: r.SessionID,
            SeatLabel: r.SeatLabel,
            Occupant:  r.OccupantName,
            UsedAt:    r.UsedAt.UTC().Format(time.RFC3339),
        }
        if err := queue_publisher.PublishTicketValidated(ctx, ev); err != nil {
            log.Printf("publish ticket.validated failed: %v", err)
        }
    }(*res)

    return c.JSON(http.StatusOK, echo.Map{
        "admitted":   true,
        "ticket_id":  res.TicketID,
        "session_id": res.SessionID,
        "seat_label": res.SeatLabel,
        "occupant":   res.OccupantName,
        "used_at":    res.UsedAt.UTC().Format(time.RFC3339),
    })
}
