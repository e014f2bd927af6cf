package model

import "time"

// Room represents a screening room and its fixed seat geometry.
// The geometry is treated as immutable once a session has been
// scheduled in the room; administrative edits do not pass through
// the booking engine.  This struct corresponds to a row in the
// `rooms` table plus its ordered `room_seats` rows.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – unique room name.
//  Capacity  – total number of seats in the room.
//  Seats     – ordered seat list (row label, then column).
//  CreatedAt – timestamp when the room was created.
//  UpdatedAt – timestamp of last update.
type Room struct {
    ID        uint64    // rooms.id
    Name      string    // rooms.name
    Capacity  uint32    // rooms.capacity
    Seats     []Seat    // room_seats rows, ordered
    CreatedAt time.Time // rooms.created_at
    UpdatedAt time.Time // rooms.updated_at
}

// Seat describes one physical seat inside a room.  Labels are
// unique within a room and are the key clients use when reserving;
// the booking engine never hands out numeric seat IDs.
//
// Fields:
//  Label  – seat label shown on the map (e.g. "A1", "C12").
//  Row    – row label portion ("A", "C", "AA").
//  Column – 1-based position within the row.
type Seat struct {
    Label  string // room_seats.seat_label
    Row    string // room_seats.row_label
    Column uint32 // room_seats.col_number
}
