// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketsReservedEvent is published after a reservation batch commits.
// It carries enough for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type TicketsReservedEvent struct {
    SessionID  uint64   `json:"session_id"`
    UserID     uint64   `json:"user_id"`
    MovieTitle string   `json:"movie_title"`
    RoomName   string   `json:"room_name"`
    StartsAt   string   `json:"starts_at"`
    TicketIDs  []uint64 `json:"ticket_ids"`
    SeatLabels []string `json:"seats"`
    ReservedAt string   `json:"reserved_at"`
}

// TicketValidatedEvent is published when a ticket is admitted at the
// room door.
type TicketValidatedEvent struct {
    TicketID  uint64 `json:"ticket_id"`
    SessionID uint64 `json:"session_id"`
    SeatLabel string `json:"seat_label"`
    Occupant  string `json:"occupant"`
    UsedAt    string `json:"used_at"`
}
