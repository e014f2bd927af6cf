package engine

import (
    "context"
    "errors"
    "log"
    "time"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

// Lifecycle drives individual tickets through the state machine in
// transitions.go.  Every write here is a compare-and-swap on the
// current status, so two concurrent callers can never both win the
// same transition.
type Lifecycle struct {
    tickets  *repository.TicketRepo
    sessions *repository.SessionRepo
    holdTTL  time.Duration
    grace    time.Duration
}

// NewLifecycle wires a Lifecycle.  holdTTL bounds how long a
// RESERVED ticket may wait for confirmation; grace is how long after
// a session ends unused ACTIVE tickets survive before expiry.
func NewLifecycle(tickets *repository.TicketRepo, sessions *repository.SessionRepo, holdTTL, grace time.Duration) *Lifecycle {
    return &Lifecycle{tickets: tickets, sessions: sessions, holdTTL: holdTTL, grace: grace}
}

// Confirm promotes a RESERVED ticket to ACTIVE, typically after
// payment settles.  Confirming an already ACTIVE ticket is a no-op
// so payment-callback retries stay safe.  A hold that lapsed before
// the confirm arrives is cancelled on the spot and reported as
// ErrInvalidState rather than silently revived.
func (lc *Lifecycle) Confirm(ctx context.Context, id uint64) (*model.Ticket, error) {
    t, err := lc.tickets.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrTicketNotFound) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    tr, ok := TransitionFor(t.Status, EvConfirm)
    if !ok {
        if t.Status == model.StatusActive {
            return t, nil
        }
        return nil, ErrInvalidState
    }
    now := time.Now().UTC()
    if holdLapsed(t.CreatedAt, holdCutoff(now, lc.holdTTL)) {
        // The hold lapsed before confirmation; retire it instead of
        // racing the sweeper.
        _, err := lc.tickets.CompareAndSwapStatus(ctx, id, []model.TicketStatus{model.StatusReserved}, model.StatusCancelled)
        if err != nil {
            return nil, err
        }
        return nil, ErrInvalidState
    }
    swapped, err := lc.tickets.CompareAndSwapStatus(ctx, id, []model.TicketStatus{tr.From}, tr.To)
    if err != nil {
        return nil, err
    }
    if !swapped {
        // Someone else moved the ticket between our read and the
        // swap.  Re-read and decide from the fresh state.
        t, err = lc.tickets.GetByID(ctx, id)
        if err != nil {
            return nil, err
        }
        if t.Status == model.StatusActive {
            return t, nil
        }
        return nil, ErrInvalidState
    }
    return lc.tickets.GetByID(ctx, id)
}

// Cancel retires a RESERVED or ACTIVE ticket, freeing its seat.
// Cancelling twice is a no-op; USED and EXPIRED tickets cannot be
// cancelled.
func (lc *Lifecycle) Cancel(ctx context.Context, id uint64) (*model.Ticket, error) {
    t, err := lc.tickets.GetByID(ctx, id)
    if err != nil {
        if errors.Is(err, repository.ErrTicketNotFound) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    tr, ok := TransitionFor(t.Status, EvCancel)
    if !ok {
        if t.Status == model.StatusCancelled {
            return t, nil
        }
        return nil, ErrInvalidState
    }
    swapped, err := lc.tickets.CompareAndSwapStatus(ctx, id, []model.TicketStatus{tr.From}, tr.To)
    if err != nil {
        return nil, err
    }
    if !swapped {
        t, err = lc.tickets.GetByID(ctx, id)
        if err != nil {
            return nil, err
        }
        if t.Status == model.StatusCancelled {
            return t, nil
        }
        return nil, ErrInvalidState
    }
    return lc.tickets.GetByID(ctx, id)
}

// StartSweeper runs the time-driven transitions in the background:
// cancelling RESERVED holds older than the hold window and expiring
// ACTIVE tickets of sessions that ended past the admission grace.
// Both sweeps are idempotent, so overlapping with the lazy in-line
// checks is harmless.  Returns when ctx is cancelled.
func (lc *Lifecycle) StartSweeper(ctx context.Context, every time.Duration) {
    ticker := time.NewTicker(every)
    defer ticker.Stop()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
        }
        now := time.Now().UTC()
        if n, err := lc.tickets.SweepStaleReserved(ctx, holdCutoff(now, lc.holdTTL)); err != nil {
            log.Printf("sweeper: stale holds: %v", err)
        } else if n > 0 {
            log.Printf("sweeper: cancelled %d stale holds", n)
        }
        if n, err := lc.tickets.SweepEndedSessions(ctx, now, lc.grace); err != nil {
            log.Printf("sweeper: ended sessions: %v", err)
        } else if n > 0 {
            log.Printf("sweeper: expired %d tickets of ended sessions", n)
        }
    }
}
