package repository

import (
    "context"
    "database/sql"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
)

// RoomRepo provides data access for rooms and their seat geometry.
// A room's seats are written once at creation; the booking engine
// only ever reads them to validate seat labels and to build seat
// availability maps.
type RoomRepo struct {
    db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo {
    return &RoomRepo{db: db}
}

// Create inserts a room together with its seat list.  The insert of
// the room row and the bulk insert of room_seats happen in one
// transaction so a room can never exist without its geometry.  On
// success the generated ID is populated.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    res, err := tx.ExecContext(ctx, `INSERT INTO rooms (name, capacity) VALUES (?, ?)`, room.Name, room.Capacity)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    room.ID = uint64(id)
    if len(room.Seats) > 0 {
        query := `INSERT INTO room_seats (room_id, seat_label, row_label, col_number) VALUES `
        args := make([]interface{}, 0, len(room.Seats)*4)
        for i, s := range room.Seats {
            if i > 0 {
                query += ","
            }
            query += "(?, ?, ?, ?)"
            args = append(args, room.ID, s.Label, s.Row, s.Column)
        }
        if _, err := tx.ExecContext(ctx, query, args...); err != nil {
            return err
        }
    }
    if err := tx.QueryRowContext(ctx, `SELECT created_at, updated_at FROM rooms WHERE id = ?`, room.ID).
        Scan(&room.CreatedAt, &room.UpdatedAt); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// GetByID retrieves a room with its ordered seat list.  It returns
// ErrRoomNotFound if there is no matching row.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
    const q = `SELECT id, name, capacity, created_at, updated_at FROM rooms WHERE id = ?`
    var room model.Room
    err := r.db.QueryRowContext(ctx, q, id).Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt)
    if err == sql.ErrNoRows {
        return nil, ErrRoomNotFound
    }
    if err != nil {
        return nil, err
    }
    seats, err := r.seatsByRoom(ctx, room.ID)
    if err != nil {
        return nil, err
    }
    room.Seats = seats
    return &room, nil
}

// SeatsByRoomTx returns the ordered seat list of a room within an
// existing transaction.  The reservation ledger uses this to
// validate requested labels against the room geometry while holding
// the claim transaction open.
func (r *RoomRepo) SeatsByRoomTx(ctx context.Context, tx *sql.Tx, roomID uint64) ([]model.Seat, error) {
    const q = `SELECT seat_label, row_label, col_number FROM room_seats
               WHERE room_id = ? ORDER BY row_label, col_number`
    rows, err := tx.QueryContext(ctx, q, roomID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanSeats(rows)
}

func (r *RoomRepo) seatsByRoom(ctx context.Context, roomID uint64) ([]model.Seat, error) {
    const q = `SELECT seat_label, row_label, col_number FROM room_seats
               WHERE room_id = ? ORDER BY row_label, col_number`
    rows, err := r.db.QueryContext(ctx, q, roomID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    return scanSeats(rows)
}

func scanSeats(rows *sql.Rows) ([]model.Seat, error) {
    seats := make([]model.Seat, 0)
    for rows.Next() {
        var s model.Seat
        if err := rows.Scan(&s.Label, &s.Row, &s.Column); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    return seats, rows.Err()
}

// List returns all rooms without their seat lists (geometry is
// fetched per room on demand to keep list responses small).
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
    const q = `SELECT id, name, capacity, created_at, updated_at FROM rooms ORDER BY name`
    rows, err := r.db.QueryContext(ctx, q)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    rooms := make([]model.Room, 0)
    for rows.Next() {
        var room model.Room
        if err := rows.Scan(&room.ID, &room.Name, &room.Capacity, &room.CreatedAt, &room.UpdatedAt); err != nil {
            return nil, err
        }
        rooms = append(rooms, room)
    }
    return rooms, rows.Err()
}

// Delete removes a room and its seats.  Deletion is refused with
// ErrConflict while sessions are scheduled in the room.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
    var inUse bool
    if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE room_id = ?)`, id).Scan(&inUse); err != nil {
        return err
    }
    if inUse {
        return ErrConflict
    }
    res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrRoomNotFound
    }
    return nil
}
