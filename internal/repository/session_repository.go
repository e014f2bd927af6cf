package repository

import (
    "context"
    "database/sql"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
)

// SessionRepo manages persistence for scheduled screenings.  All
// timestamps are stored and compared in UTC; parseTime on the MySQL
// driver maps DATETIME columns to time.Time directly.
type SessionRepo struct {
    db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo {
    return &SessionRepo{db: db}
}

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories.  Use this method to
// obtain a *sql.DB when you need fine-grained transaction control.
func (r *SessionRepo) DB() *sql.DB {
    return r.db
}

// Create inserts a new session and populates the generated ID and
// DB-default timestamps on the provided struct.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
    const q = `INSERT INTO sessions (movie_id, room_id, starts_at, duration_min, base_price_cents) VALUES (?, ?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, s.MovieID, s.RoomID, s.StartsAt.UTC(), s.DurationMin, s.BasePriceCents)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    s.ID = uint64(id)
    const sel = `SELECT created_at, updated_at FROM sessions WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

// GetByID retrieves a session by its ID.  It returns
// ErrSessionNotFound if there is no matching row.
func (r *SessionRepo) GetByID(ctx context.Context, id uint64) (*model.Session, error) {
    const q = `SELECT id, movie_id, room_id, starts_at, duration_min, base_price_cents, created_at, updated_at
               FROM sessions WHERE id = ?`
    var s model.Session
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.DurationMin, &s.BasePriceCents, &s.CreatedAt, &s.UpdatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrSessionNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// GetByIDTx is GetByID inside an existing transaction.  The ledger
// reads the session row under the claim transaction so that the
// not-yet-started check and the seat inserts observe one snapshot.
func (r *SessionRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Session, error) {
    const q = `SELECT id, movie_id, room_id, starts_at, duration_min, base_price_cents, created_at, updated_at
               FROM sessions WHERE id = ?`
    var s model.Session
    err := tx.QueryRowContext(ctx, q, id).Scan(
        &s.ID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.DurationMin, &s.BasePriceCents, &s.CreatedAt, &s.UpdatedAt,
    )
    if err == sql.ErrNoRows {
        return nil, ErrSessionNotFound
    }
    if err != nil {
        return nil, err
    }
    return &s, nil
}

// List returns sessions, optionally filtered by movie, ordered by
// start time.  Pass movieID == 0 for all sessions.
func (r *SessionRepo) List(ctx context.Context, movieID uint64) ([]model.Session, error) {
    q := `SELECT id, movie_id, room_id, starts_at, duration_min, base_price_cents, created_at, updated_at
          FROM sessions`
    args := []interface{}{}
    if movieID != 0 {
        q += ` WHERE movie_id = ?`
        args = append(args, movieID)
    }
    q += ` ORDER BY starts_at`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    sessions := make([]model.Session, 0)
    for rows.Next() {
        var s model.Session
        if err := rows.Scan(&s.ID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.DurationMin, &s.BasePriceCents, &s.CreatedAt, &s.UpdatedAt); err != nil {
            return nil, err
        }
        sessions = append(sessions, s)
    }
    return sessions, rows.Err()
}

// Update applies administrative corrections to a session.  Updates
// are refused with ErrConflict once tickets exist against the
// session, since live seat claims reference its admission window.
func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
    var hasTickets bool
    if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE session_id = ?)`, s.ID).Scan(&hasTickets); err != nil {
        return err
    }
    if hasTickets {
        return ErrConflict
    }
    const q = `UPDATE sessions SET movie_id = ?, room_id = ?, starts_at = ?, duration_min = ?, base_price_cents = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, s.MovieID, s.RoomID, s.StartsAt.UTC(), s.DurationMin, s.BasePriceCents, s.ID)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        var exists bool
        if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM sessions WHERE id = ?)`, s.ID).Scan(&exists); err != nil {
            return err
        }
        if !exists {
            return ErrSessionNotFound
        }
    }
    return nil
}

// Delete removes a session.  Deletion is refused with ErrConflict
// when tickets exist against it, preserving the audit trail of
// cancelled and used claims.
func (r *SessionRepo) Delete(ctx context.Context, id uint64) error {
    var hasTickets bool
    if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tickets WHERE session_id = ?)`, id).Scan(&hasTickets); err != nil {
        return err
    }
    if hasTickets {
        return ErrConflict
    }
    res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
    if err != nil {
        return err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if n == 0 {
        return ErrSessionNotFound
    }
    return nil
}
