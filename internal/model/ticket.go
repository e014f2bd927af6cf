package model

import "time"

// TicketStatus enumerates the states of the ticket lifecycle.
// A ticket doubles as the seat claim: the (SessionID, SeatLabel)
// pair of a RESERVED or ACTIVE ticket is exclusive, enforced by a
// uniqueness constraint over live rows.  Terminal rows are never
// deleted so that seat history survives for audit.
type TicketStatus string

const (
    StatusReserved  TicketStatus = "RESERVED"  // transient hold awaiting confirmation
    StatusActive    TicketStatus = "ACTIVE"    // confirmed, admits the bearer once
    StatusUsed      TicketStatus = "USED"      // validated at the door (terminal)
    StatusCancelled TicketStatus = "CANCELLED" // released before use (terminal)
    StatusExpired   TicketStatus = "EXPIRED"   // session ended unused (terminal)
)

// Terminal reports whether no further transition is allowed from s.
func (s TicketStatus) Terminal() bool {
    switch s {
    case StatusUsed, StatusCancelled, StatusExpired:
        return true
    }
    return false
}

// Live reports whether the ticket currently holds its seat claim.
func (s TicketStatus) Live() bool {
    return s == StatusReserved || s == StatusActive
}

// Ticket is the persisted aggregate of a seat claim and its
// lifecycle state.  The QRUUID is generated once at creation from a
// cryptographically random UUID and never changes; it is the sole
// lookup key used by the validation gateway.
//
// Fields:
//  ID            – primary key identifier (opaque to clients).
//  SessionID     – session this seat belongs to.
//  SeatLabel     – seat label within the session's room.
//  UserID        – buyer account that placed the reservation.
//  OccupantName  – name of the person occupying the seat.
//  OccupantEmail – contact email of the occupant.
//  OccupantCPF   – occupant document in the form XXX.XXX.XXX-XX.
//  QRUUID        – immutable validation token printed as a QR code.
//  Status        – current lifecycle state.
//  CreatedAt     – creation timestamp; hold expiry counts from here.
//  UpdatedAt     – last transition timestamp.
//  UsedAt        – when the ticket was validated (nil until USED).
type Ticket struct {
    ID            uint64       // tickets.id
    SessionID     uint64       // tickets.session_id
    SeatLabel     string       // tickets.seat_label
    UserID        uint64       // tickets.user_id
    OccupantName  string       // tickets.occupant_name
    OccupantEmail string       // tickets.occupant_email
    OccupantCPF   string       // tickets.occupant_cpf
    QRUUID        string       // tickets.qr_uuid
    Status        TicketStatus // tickets.status
    CreatedAt     time.Time    // tickets.created_at
    UpdatedAt     time.Time    // tickets.updated_at
    UsedAt        *time.Time   // tickets.used_at (nullable)
}
