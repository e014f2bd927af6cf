// Package engine implements the booking core: the reservation
// ledger that claims seats atomically, the ticket lifecycle state
// machine, and the validation gateway that admits a ticket bearer
// exactly once.  Handlers translate the typed errors defined here
// into HTTP status codes; nothing in this package retries a domain
// failure on its own.
package engine

import (
    "errors"
    "fmt"
    "strings"
    "time"
)

// Sentinel errors forming the recoverable taxonomy of the engine.
var (
    // ErrNotFound reports an unknown ticket, session or seat.
    ErrNotFound = errors.New("not found")
    // ErrInvalidState reports a transition not allowed from the
    // ticket's current status.
    ErrInvalidState = errors.New("invalid state")
    // ErrCancelled reports a validation attempt on a cancelled ticket.
    ErrCancelled = errors.New("ticket cancelled")
    // ErrNotActive reports a validation attempt on a ticket that was
    // reserved but never confirmed.
    ErrNotActive = errors.New("ticket not active")
    // ErrOutOfWindow reports a validation attempt outside the
    // session's admission window.
    ErrOutOfWindow = errors.New("outside admission window")
    // ErrExpired reports an operation against a session that already
    // started or ended, or a ticket expired with it.
    ErrExpired = errors.New("expired")
    // ErrUnavailable wraps storage errors that persisted through the
    // bounded internal retries.
    ErrUnavailable = errors.New("storage unavailable")
    // ErrNoSeats reports an empty reservation batch.
    ErrNoSeats = errors.New("no seats requested")
    // ErrDuplicateSeat reports the same label twice in one batch.
    ErrDuplicateSeat = errors.New("duplicate seat label in request")
)

// SeatConflictError is returned when any requested seat already
// holds a live claim.  It names every contended label so the client
// can re-fetch availability and present the full conflict at once.
type SeatConflictError struct {
    Labels []string
}

func (e *SeatConflictError) Error() string {
    return fmt.Sprintf("seats already claimed: %s", strings.Join(e.Labels, ", "))
}

// UnknownSeatError is returned when a requested label does not exist
// in the session's room.  It unwraps to ErrNotFound.
type UnknownSeatError struct {
    Labels []string
}

func (e *UnknownSeatError) Error() string {
    return fmt.Sprintf("unknown seats: %s", strings.Join(e.Labels, ", "))
}

func (e *UnknownSeatError) Unwrap() error { return ErrNotFound }

// AlreadyUsedError is returned when a ticket has already been
// validated.  The original validation time is carried along for
// operator feedback at the door.
type AlreadyUsedError struct {
    UsedAt time.Time
}

func (e *AlreadyUsedError) Error() string {
    return fmt.Sprintf("ticket already used at %s", e.UsedAt.UTC().Format(time.RFC3339))
}
