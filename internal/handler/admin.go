package handler

import (
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

// AdminHandler bundles the repositories behind the staff console:
// catalog management (movies, rooms, sessions) and per-session ticket
// listings.  All routes carrying it require the ADMIN role.
type AdminHandler struct {
    Movies   *repository.MovieRepo
    Rooms    *repository.RoomRepo
    Sessions *repository.SessionRepo
    Tickets  *repository.TicketRepo
    Users    *repository.UserRepo
}

// NewAdminHandler constructs an AdminHandler and panics if any
// dependency is nil.
func NewAdminHandler(movies *repository.MovieRepo, rooms *repository.RoomRepo, sessions *repository.SessionRepo, tickets *repository.TicketRepo, users *repository.UserRepo) *AdminHandler {
    if movies == nil || rooms == nil || sessions == nil || tickets == nil || users == nil {
        panic("nil repository passed to NewAdminHandler")
    }
    return &AdminHandler{Movies: movies, Rooms: rooms, Sessions: sessions, Tickets: tickets, Users: users}
}
