package engine

import (
    "context"
    "errors"
    "strconv"
    "time"

    "github.com/google/uuid"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

// Gateway is the validation gateway at the room door.  It admits a
// ticket at most once: the USED transition is a compare-and-swap on
// ACTIVE, so of two scanners racing over the same QR code exactly
// one wins and the other sees AlreadyUsedError.
type Gateway struct {
    tickets  *repository.TicketRepo
    sessions *repository.SessionRepo
    grace    time.Duration
}

// NewGateway wires a Gateway.  grace extends the admission window
// past the scheduled end of the session, covering late entry.
func NewGateway(tickets *repository.TicketRepo, sessions *repository.SessionRepo, grace time.Duration) *Gateway {
    return &Gateway{tickets: tickets, sessions: sessions, grace: grace}
}

// ValidationResult is what the door scanner displays after a
// successful admission.
type ValidationResult struct {
    TicketID     uint64    `json:"ticket_id"`
    SessionID    uint64    `json:"session_id"`
    SeatLabel    string    `json:"seat_label"`
    OccupantName string    `json:"occupant_name"`
    UsedAt       time.Time `json:"used_at"`
}

// Validate admits the ticket identified by a QR UUID or a numeric
// ticket id.  Only an ACTIVE ticket inside the session's admission
// window passes; every other state maps to a distinct sentinel so
// the scanner can tell the operator why the gate stayed shut.
func (g *Gateway) Validate(ctx context.Context, identifier string) (*ValidationResult, error) {
    t, err := g.lookup(ctx, identifier)
    if err != nil {
        return nil, err
    }
    switch t.Status {
    case model.StatusUsed:
        return nil, &AlreadyUsedError{UsedAt: *t.UsedAt}
    case model.StatusCancelled:
        return nil, ErrCancelled
    case model.StatusReserved:
        return nil, ErrNotActive
    case model.StatusExpired:
        return nil, ErrExpired
    case model.StatusActive:
        // fall through to the window check
    default:
        return nil, ErrInvalidState
    }
    sess, err := g.sessions.GetByID(ctx, t.SessionID)
    if err != nil {
        return nil, err
    }
    now := time.Now().UTC()
    if now.Before(sess.StartsAt) || now.After(sess.EndsAt().Add(g.grace)) {
        return nil, ErrOutOfWindow
    }
    ok, err := g.tickets.MarkUsed(ctx, t.ID, now)
    if err != nil {
        return nil, err
    }
    if !ok {
        // Lost the race to a concurrent scan.  Re-read so the error
        // carries the actual admission time.
        fresh, err := g.tickets.GetByID(ctx, t.ID)
        if err != nil {
            return nil, err
        }
        if fresh.Status == model.StatusUsed && fresh.UsedAt != nil {
            return nil, &AlreadyUsedError{UsedAt: *fresh.UsedAt}
        }
        if fresh.Status == model.StatusExpired {
            return nil, ErrExpired
        }
        return nil, ErrInvalidState
    }
    return &ValidationResult{
        TicketID:     t.ID,
        SessionID:    t.SessionID,
        SeatLabel:    t.SeatLabel,
        OccupantName: t.OccupantName,
        UsedAt:       now,
    }, nil
}

// lookup resolves the scanner input: a well-formed UUID selects by
// QR code, a bare integer selects by ticket id, anything else is not
// a ticket.
func (g *Gateway) lookup(ctx context.Context, identifier string) (*model.Ticket, error) {
    var (
        t   *model.Ticket
        err error
    )
    if _, perr := uuid.Parse(identifier); perr == nil {
        t, err = g.tickets.GetByQR(ctx, identifier)
    } else if id, perr := strconv.ParseUint(identifier, 10, 64); perr == nil {
        t, err = g.tickets.GetByID(ctx, id)
    } else {
        return nil, ErrNotFound
    }
    if err != nil {
        if errors.Is(err, repository.ErrTicketNotFound) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    return t, nil
}
