package handler

import (
    "context"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/absolute-cinema/ticketing-engine/internal/engine"
    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/queue"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
    queue_publisher "github.com/absolute-cinema/ticketing-engine/internal/service"
)

// TicketHandler exposes the reservation and ticket lifecycle endpoints
// for authenticated customers.  The heavy lifting lives in the engine
// package; this layer binds requests, checks ownership and maps
// domain errors onto the HTTP contract.
type TicketHandler struct {
    Ledger    *engine.Ledger
    Lifecycle *engine.Lifecycle
    Tickets   *repository.TicketRepo
}

// NewTicketHandler constructs a TicketHandler.  All dependencies must
// be non-nil.
func NewTicketHandler(ledger *engine.Ledger, lifecycle *engine.Lifecycle, tickets *repository.TicketRepo) *TicketHandler {
    if ledger == nil || lifecycle == nil || tickets == nil {
        panic("nil dependency passed to NewTicketHandler")
    }
    return &TicketHandler{Ledger: ledger, Lifecycle: lifecycle, Tickets: tickets}
}

// ----- DTOs -----

type seatReq struct {
    SeatLabel     string `json:"seat_label" validate:"required"`
    OccupantName  string `json:"occupant_name" validate:"required"`
    OccupantEmail string `json:"occupant_email" validate:"required,email"`
    OccupantCPF   string `json:"occupant_cpf" validate:"required,cpf"`
}

type reserveReq struct {
    Seats []seatReq `json:"seats" validate:"required,min=1,dive"`
}

type ticketPart struct {
    ID        uint64 `json:"id"`
    SeatLabel string `json:"seat_label"`
    QRUUID    string `json:"qr_uuid"`
    Status    string `json:"status"`
}

// Reserve handles POST /v1/sessions/:id/reserve.  The whole batch
// either succeeds or fails; on a seat conflict the response lists
// every contested label so the client can re-pick in one round trip.
// An optional Idempotency-Key header makes retries of the same batch
// return the originally minted tickets.
func (h *TicketHandler) Reserve(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    sessionID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    var req reserveReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }

    seats := make([]engine.SeatRequest, 0, len(req.Seats))
    for _, s := range req.Seats {
        seats = append(seats, engine.SeatRequest{
            SeatLabel:     s.SeatLabel,
            OccupantName:  s.OccupantName,
            OccupantEmail: s.OccupantEmail,
            OccupantCPF:   s.OccupantCPF,
        })
    }
    tickets, err := h.Ledger.Reserve(c.Request().Context(), engine.ReserveRequest{
        SessionID:      sessionID,
        UserID:         userID,
        Seats:          seats,
        IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
    })
    if err != nil {
        return writeEngineError(c, err)
    }

    h.publishReserved(sessionID, userID, tickets)

    out := make([]ticketPart, 0, len(tickets))
    for _, t := range tickets {
        out = append(out, ticketPart{ID: t.ID, SeatLabel: t.SeatLabel, QRUUID: t.QRUUID, Status: string(t.Status)})
    }
    return c.JSON(http.StatusCreated, echo.Map{"tickets": out})
}

// publishReserved emits the ticket.reserved event in the background.
// Publishing is best-effort; a broker outage must not fail a committed
// reservation.
func (h *TicketHandler) publishReserved(sessionID, userID uint64, tickets []model.Ticket) {
    if len(tickets) == 0 {
        return
    }
    ids := make([]uint64, 0, len(tickets))
    labels := make([]string, 0, len(tickets))
    for _, t := range tickets {
        ids = append(ids, t.ID)
        labels = append(labels, t.SeatLabel)
    }
    first := tickets[0].ID
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        ev := queue.TicketsReservedEvent{
            SessionID:  sessionID,
            UserID:     userID,
            TicketIDs:  ids,
            SeatLabels: labels,
            ReservedAt: time.Now().UTC().Format(time.RFC3339),
        }
        if d, err := h.Tickets.Detail(ctx, first); err == nil {
            ev.MovieTitle = d.Session.Movie.Title
            ev.RoomName = d.Session.Room.Name
            ev.StartsAt = d.Session.StartsAt
        }
        if err := queue_publisher.PublishTicketsReserved(ctx, ev); err != nil {
            log.Printf("publish ticket.reserved failed: %v", err)
        }
    }()
}

// Confirm handles POST /v1/tickets/:id/confirm.  It promotes the
// caller's RESERVED ticket to ACTIVE; repeating the call on an
// already ACTIVE ticket succeeds, so payment callbacks can retry.
func (h *TicketHandler) Confirm(c echo.Context) error {
    t, errResp := h.ownTicket(c)
    if t == nil {
        return errResp
    }
    confirmed, err := h.Lifecycle.Confirm(c.Request().Context(), t.ID)
    if err != nil {
        return writeEngineError(c, err)
    }
    return c.JSON(http.StatusOK, ticketPart{
        ID: confirmed.ID, SeatLabel: confirmed.SeatLabel, QRUUID: confirmed.QRUUID, Status: string(confirmed.Status),
    })
}

// Cancel handles DELETE /v1/tickets/:id.  RESERVED and ACTIVE tickets
// cancel and free their seat; USED and EXPIRED ones refuse.
func (h *TicketHandler) Cancel(c echo.Context) error {
    t, errResp := h.ownTicket(c)
    if t == nil {
        return errResp
    }
    if _, err := h.Lifecycle.Cancel(c.Request().Context(), t.ID); err != nil {
        return writeEngineError(c, err)
    }
    return c.NoContent(http.StatusNoContent)
}

// Get handles GET /v1/tickets/:id.  It returns the denormalized
// ticket detail with the nested session, movie and room.
func (h *TicketHandler) Get(c echo.Context) error {
    t, errResp := h.ownTicket(c)
    if t == nil {
        return errResp
    }
    detail, err := h.Tickets.Detail(c.Request().Context(), t.ID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch ticket"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": detail})
}

// MyTickets handles GET /v1/my-tickets.  Newest purchases first.
func (h *TicketHandler) MyTickets(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    details, err := h.Tickets.ListDetailsByUser(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tickets"})
    }
    return c.JSON(http.StatusOK, echo.Map{"items": details})
}

// ownTicket loads the ticket from the :id path parameter and checks
// that it belongs to the caller.  Admins may act on any ticket.  On
// failure it returns a nil ticket and the response already written.
func (h *TicketHandler) ownTicket(c echo.Context) (*model.Ticket, error) {
    userID, err := getUserID(c)
    if err != nil {
        return nil, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return nil, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ticket id"})
    }
    t, err := h.Tickets.GetByID(c.Request().Context(), id)
    if err != nil {
        if err == repository.ErrTicketNotFound {
            return nil, c.JSON(http.StatusNotFound, echo.Map{"error": "ticket not found"})
        }
        return nil, c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if role, _ := c.Get("role").(string); role != model.RoleAdmin && t.UserID != userID {
        return nil, c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    }
    return t, nil
}
