package engine

import "github.com/absolute-cinema/ticketing-engine/internal/model"

// EventKind identifies what is driving a status change.
type EventKind string

const (
    EvConfirm    EventKind = "confirm"     // payment success confirms the hold
    EvCancel     EventKind = "cancel"      // explicit cancellation by the buyer
    EvTimeout    EventKind = "timeout"     // hold window elapsed unconfirmed
    EvValidate   EventKind = "validate"    // first successful scan at the door
    EvSessionEnd EventKind = "session_end" // session ended with the ticket unused
)

// Transition is a single allowed edge in the ticket state machine.
type Transition struct {
    From  model.TicketStatus
    To    model.TicketStatus
    Event EventKind
}

// transitionsTable enumerates every legal edge.  USED, CANCELLED and
// EXPIRED have no outgoing edges; they are terminal.
var transitionsTable = []Transition{
    {From: model.StatusReserved, To: model.StatusActive, Event: EvConfirm},
    {From: model.StatusReserved, To: model.StatusCancelled, Event: EvCancel},
    {From: model.StatusReserved, To: model.StatusCancelled, Event: EvTimeout},
    {From: model.StatusActive, To: model.StatusUsed, Event: EvValidate},
    {From: model.StatusActive, To: model.StatusCancelled, Event: EvCancel},
    {From: model.StatusActive, To: model.StatusExpired, Event: EvSessionEnd},
}

// TransitionFor returns the allowed transition for a given
// status+event pair, if one exists.
func TransitionFor(from model.TicketStatus, ev EventKind) (Transition, bool) {
    for _, tr := range transitionsTable {
        if tr.From == from && tr.Event == ev {
            return tr, true
        }
    }
    return Transition{}, false
}

// CanTransition reports whether moving from one status to another is
// legal under any event.
func CanTransition(from, to model.TicketStatus) bool {
    for _, tr := range transitionsTable {
        if tr.From == from && tr.To == to {
            return true
        }
    }
    return false
}
