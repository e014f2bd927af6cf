package model

import "time"

// Session represents a scheduled screening of a movie in a room.
// StartsAt plus DurationMin defines the occupancy window used for
// the admission check; the engine does not schedule-conflict-check
// room double-booking, only seat conflicts within one session.
//
// Fields:
//  ID             – primary key identifier.
//  MovieID        – movie being screened.
//  RoomID         – room hosting the screening.
//  StartsAt       – when the screening begins (UTC).
//  DurationMin    – running time in minutes.
//  BasePriceCents – base seat price in cents.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Session struct {
    ID             uint64    // sessions.id
    MovieID        uint64    // sessions.movie_id
    RoomID         uint64    // sessions.room_id
    StartsAt       time.Time // sessions.starts_at
    DurationMin    uint32    // sessions.duration_min
    BasePriceCents uint32    // sessions.base_price_cents
    CreatedAt      time.Time // sessions.created_at
    UpdatedAt      time.Time // sessions.updated_at
}

// EndsAt returns the scheduled end of the screening.
func (s Session) EndsAt() time.Time {
    return s.StartsAt.Add(time.Duration(s.DurationMin) * time.Minute)
}
