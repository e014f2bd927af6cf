package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
)

// TicketRepo provides data access to the tickets table.  A ticket
// row is both the ticket and its seat claim: the schema carries a
// generated `live` column that is non-NULL only for RESERVED and
// ACTIVE rows, and a UNIQUE(session_id, seat_label, live) index over
// it.  That index is the last line of defence for the one-live-claim
// invariant; the ledger additionally serializes claim decisions with
// SELECT ... FOR UPDATE inside one transaction.
type TicketRepo struct {
    db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *TicketRepo) DB() *sql.DB { return r.db }

// liveStatuses is the SQL fragment matching statuses that hold a claim.
const liveStatuses = `('RESERVED','ACTIVE')`

// IsDuplicateClaim reports whether err is the MySQL duplicate-key
// error raised by the live-claim uniqueness index.  The ledger
// translates it into a seat conflict instead of a 500.
func IsDuplicateClaim(err error) bool {
    var me *mysql.MySQLError
    return errors.As(err, &me) && me.Number == 1062
}

// InsertTx inserts a single ticket within the scope of an existing
// transaction and populates the generated ID and DB-default
// timestamps on the provided record.  Status must be a valid
// enumeration value; the ledger always inserts RESERVED.
func (r *TicketRepo) InsertTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
    const q = `INSERT INTO tickets (session_id, seat_label, user_id, occupant_name, occupant_email, occupant_cpf, qr_uuid, status)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    res, err := tx.ExecContext(ctx, q, t.SessionID, t.SeatLabel, t.UserID, t.OccupantName, t.OccupantEmail, t.OccupantCPF, t.QRUUID, t.Status)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    const sel = `SELECT created_at, updated_at FROM tickets WHERE id = ?`
    return tx.QueryRowContext(ctx, sel, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// LiveLabelsForUpdateTx returns, among the requested labels, those
// that currently hold a live claim for the session.  The rows are
// locked FOR UPDATE so that two concurrent reservations for an
// overlapping seat set serialize on the same claims; the loser
// observes the winner's rows and fails with a conflict.
func (r *TicketRepo) LiveLabelsForUpdateTx(ctx context.Context, tx *sql.Tx, sessionID uint64, labels []string) ([]string, error) {
    if len(labels) == 0 {
        return nil, nil
    }
    placeholders := make([]string, 0, len(labels))
    args := make([]interface{}, 0, len(labels)+1)
    args = append(args, sessionID)
    for _, l := range labels {
        placeholders = append(placeholders, "?")
        args = append(args, l)
    }
    q := `SELECT seat_label FROM tickets
          WHERE session_id = ? AND seat_label IN (` + strings.Join(placeholders, ",") + `)
          AND status IN ` + liveStatuses + ` FOR UPDATE`
    rows, err := tx.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var claimed []string
    for rows.Next() {
        var label string
        if err := rows.Scan(&label); err != nil {
            return nil, err
        }
        claimed = append(claimed, label)
    }
    return claimed, rows.Err()
}

// CancelStaleReservedTx transitions RESERVED tickets of a session
// whose hold window already elapsed to CANCELLED, releasing their
// seats.  The cutoff is computed by the engine so that the lazy
// check here and the background sweeper apply the same rule.  It
// returns the number of released claims.
func (r *TicketRepo) CancelStaleReservedTx(ctx context.Context, tx *sql.Tx, sessionID uint64, cutoff time.Time) (int64, error) {
    const q = `UPDATE tickets SET status = 'CANCELLED'
               WHERE session_id = ? AND status = 'RESERVED' AND created_at <= ?`
    res, err := tx.ExecContext(ctx, q, sessionID, cutoff.UTC())
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// SweepStaleReserved is the global variant of CancelStaleReservedTx
// used by the background sweeper.
func (r *TicketRepo) SweepStaleReserved(ctx context.Context, cutoff time.Time) (int64, error) {
    const q = `UPDATE tickets SET status = 'CANCELLED'
               WHERE status = 'RESERVED' AND created_at <= ?`
    res, err := r.db.ExecContext(ctx, q, cutoff.UTC())
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// SweepEndedSessions expires ACTIVE tickets whose session admission
// window (end of screening plus grace) has fully passed.  Such
// tickets were never validated and can no longer admit anyone.
func (r *TicketRepo) SweepEndedSessions(ctx context.Context, now time.Time, grace time.Duration) (int64, error) {
    const q = `UPDATE tickets t
               JOIN sessions s ON s.id = t.session_id
               SET t.status = 'EXPIRED'
               WHERE t.status = 'ACTIVE'
                 AND DATE_ADD(s.starts_at, INTERVAL s.duration_min MINUTE) <= ?`
    res, err := r.db.ExecContext(ctx, q, now.UTC().Add(-grace))
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

func scanTicket(row *sql.Row) (*model.Ticket, error) {
    var t model.Ticket
    var usedAt sql.NullTime
    err := row.Scan(&t.ID, &t.SessionID, &t.SeatLabel, &t.UserID,
        &t.OccupantName, &t.OccupantEmail, &t.OccupantCPF,
        &t.QRUUID, &t.Status, &t.CreatedAt, &t.UpdatedAt, &usedAt)
    if err == sql.ErrNoRows {
        return nil, ErrTicketNotFound
    }
    if err != nil {
        return nil, err
    }
    if usedAt.Valid {
        u := usedAt.Time
        t.UsedAt = &u
    }
    return &t, nil
}

const ticketColumns = `id, session_id, seat_label, user_id, occupant_name, occupant_email, occupant_cpf, qr_uuid, status, created_at, updated_at, used_at`

// GetByID retrieves a ticket by its primary key.  It returns
// ErrTicketNotFound when no such ticket exists.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
    return scanTicket(r.db.QueryRowContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets WHERE id = ?`, id))
}

// GetByQR retrieves a ticket by its QR identifier.  The qr_uuid
// column carries a unique index, so at most one row can match.
func (r *TicketRepo) GetByQR(ctx context.Context, qrUUID string) (*model.Ticket, error) {
    return scanTicket(r.db.QueryRowContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets WHERE qr_uuid = ?`, qrUUID))
}

// CompareAndSwapStatus transitions a ticket from one of the expected
// statuses to the target status.  It returns false without error
// when the row was concurrently moved out of the expected set; the
// caller re-reads and classifies the outcome.  This is the primitive
// that totally orders all transitions on one (session, seat) pair.
func (r *TicketRepo) CompareAndSwapStatus(ctx context.Context, id uint64, from []model.TicketStatus, to model.TicketStatus) (bool, error) {
    if len(from) == 0 {
        return false, nil
    }
    placeholders := make([]string, 0, len(from))
    args := []interface{}{to, id}
    for _, s := range from {
        placeholders = append(placeholders, "?")
        args = append(args, s)
    }
    q := `UPDATE tickets SET status = ? WHERE id = ? AND status IN (` + strings.Join(placeholders, ",") + `)`
    res, err := r.db.ExecContext(ctx, q, args...)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// UpdateStatusTx sets a ticket's status within an existing
// transaction.  Callers are expected to have locked the row (FOR
// UPDATE) and verified the transition beforehand.
func (r *TicketRepo) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id uint64, to model.TicketStatus) error {
    _, err := tx.ExecContext(ctx, `UPDATE tickets SET status = ? WHERE id = ?`, to, id)
    return err
}

// MarkUsed atomically moves an ACTIVE ticket to USED and records the
// validation time.  Exactly one caller can ever win this update for
// a given ticket; a concurrent second scanner sees zero affected
// rows and reports AlreadyUsed.
func (r *TicketRepo) MarkUsed(ctx context.Context, id uint64, usedAt time.Time) (bool, error) {
    const q = `UPDATE tickets SET status = 'USED', used_at = ? WHERE id = ? AND status = 'ACTIVE'`
    res, err := r.db.ExecContext(ctx, q, usedAt.UTC(), id)
    if err != nil {
        return false, err
    }
    n, err := res.RowsAffected()
    if err != nil {
        return false, err
    }
    return n > 0, nil
}

// LiveBySeatTx returns the live claim for a specific seat within
// a transaction, or ErrTicketNotFound when the seat is free.  Used
// by the ledger's release operation.
func (r *TicketRepo) LiveBySeatTx(ctx context.Context, tx *sql.Tx, sessionID uint64, seatLabel string) (*model.Ticket, error) {
    var t model.Ticket
    var usedAt sql.NullTime
    err := tx.QueryRowContext(ctx,
        `SELECT `+ticketColumns+` FROM tickets
         WHERE session_id = ? AND seat_label = ? AND status IN `+liveStatuses+` FOR UPDATE`,
        sessionID, seatLabel).Scan(&t.ID, &t.SessionID, &t.SeatLabel, &t.UserID,
        &t.OccupantName, &t.OccupantEmail, &t.OccupantCPF,
        &t.QRUUID, &t.Status, &t.CreatedAt, &t.UpdatedAt, &usedAt)
    if err == sql.ErrNoRows {
        return nil, ErrTicketNotFound
    }
    if err != nil {
        return nil, err
    }
    if usedAt.Valid {
        u := usedAt.Time
        t.UsedAt = &u
    }
    return &t, nil
}

// ClaimState is the slice of a ticket the availability read model
// needs: which seat, which state, and when the hold was placed.
type ClaimState struct {
    SeatLabel string
    Status    model.TicketStatus
    CreatedAt time.Time
}

// ClaimsBySession returns the claim state of every non-terminal-free
// ticket of a session (RESERVED, ACTIVE and USED rows; cancelled and
// expired rows do not affect availability).
func (r *TicketRepo) ClaimsBySession(ctx context.Context, sessionID uint64) ([]ClaimState, error) {
    const q = `SELECT seat_label, status, created_at FROM tickets
               WHERE session_id = ? AND status IN ('RESERVED','ACTIVE','USED')`
    rows, err := r.db.QueryContext(ctx, q, sessionID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    claims := make([]ClaimState, 0)
    for rows.Next() {
        var c ClaimState
        if err := rows.Scan(&c.SeatLabel, &c.Status, &c.CreatedAt); err != nil {
            return nil, err
        }
        claims = append(claims, c)
    }
    return claims, rows.Err()
}

// TicketDetail is the denormalized read model for the ticket detail
// page and QR rendering.  The nested session/movie/room shape means
// clients need a single request instead of joining three fetches.
type TicketDetail struct {
    ID            uint64  `json:"id"`
    SeatLabel     string  `json:"seat_label"`
    OccupantName  string  `json:"occupant_name"`
    OccupantEmail string  `json:"occupant_email"`
    OccupantCPF   string  `json:"occupant_cpf"`
    QRUUID        string  `json:"qr_uuid"`
    Status        string  `json:"status"`
    CreatedAt     string  `json:"created_at"`
    UsedAt        *string `json:"used_at,omitempty"`
    Session       struct {
        ID             uint64 `json:"id"`
        StartsAt       string `json:"starts_at"`
        DurationMin    uint32 `json:"duration_min"`
        BasePriceCents uint32 `json:"base_price_cents"`
        Movie          struct {
            ID    uint64 `json:"id"`
            Title string `json:"title"`
        } `json:"movie"`
        Room struct {
            ID   uint64 `json:"id"`
            Name string `json:"name"`
        } `json:"room"`
    } `json:"session"`
    UserID uint64 `json:"user_id"`
}

const detailQuery = `SELECT t.id, t.seat_label, t.occupant_name, t.occupant_email, t.occupant_cpf,
                            t.qr_uuid, t.status, t.created_at, t.used_at, t.user_id,
                            s.id, s.starts_at, s.duration_min, s.base_price_cents,
                            m.id, m.title, r.id, r.name
                     FROM tickets t
                     JOIN sessions s ON s.id = t.session_id
                     JOIN movies m ON m.id = s.movie_id
                     JOIN rooms r ON r.id = s.room_id`

func scanDetail(scan func(dest ...interface{}) error) (*TicketDetail, error) {
    var d TicketDetail
    var createdAt, startsAt time.Time
    var usedAt sql.NullTime
    err := scan(&d.ID, &d.SeatLabel, &d.OccupantName, &d.OccupantEmail, &d.OccupantCPF,
        &d.QRUUID, &d.Status, &createdAt, &usedAt, &d.UserID,
        &d.Session.ID, &startsAt, &d.Session.DurationMin, &d.Session.BasePriceCents,
        &d.Session.Movie.ID, &d.Session.Movie.Title, &d.Session.Room.ID, &d.Session.Room.Name)
    if err != nil {
        return nil, err
    }
    d.CreatedAt = createdAt.UTC().Format(time.RFC3339)
    d.Session.StartsAt = startsAt.UTC().Format(time.RFC3339)
    if usedAt.Valid {
        u := usedAt.Time.UTC().Format(time.RFC3339)
        d.UsedAt = &u
    }
    return &d, nil
}

// Detail returns the denormalized detail of a single ticket.  It
// returns ErrTicketNotFound when the ticket does not exist.
func (r *TicketRepo) Detail(ctx context.Context, id uint64) (*TicketDetail, error) {
    row := r.db.QueryRowContext(ctx, detailQuery+` WHERE t.id = ?`, id)
    d, err := scanDetail(row.Scan)
    if err == sql.ErrNoRows {
        return nil, ErrTicketNotFound
    }
    if err != nil {
        return nil, err
    }
    return d, nil
}

// ListDetailsByUser returns the denormalized details of all tickets
// bought by a user, newest first.
func (r *TicketRepo) ListDetailsByUser(ctx context.Context, userID uint64) ([]TicketDetail, error) {
    rows, err := r.db.QueryContext(ctx, detailQuery+` WHERE t.user_id = ? ORDER BY t.created_at DESC`, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]TicketDetail, 0)
    for rows.Next() {
        d, err := scanDetail(rows.Scan)
        if err != nil {
            return nil, err
        }
        details = append(details, *d)
    }
    return details, rows.Err()
}

// ListDetailsBySession returns the denormalized details of all
// tickets of a session, for the admin console list view.
func (r *TicketRepo) ListDetailsBySession(ctx context.Context, sessionID uint64) ([]TicketDetail, error) {
    rows, err := r.db.QueryContext(ctx, detailQuery+` WHERE t.session_id = ? ORDER BY t.seat_label`, sessionID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    details := make([]TicketDetail, 0)
    for rows.Next() {
        d, err := scanDetail(rows.Scan)
        if err != nil {
            return nil, err
        }
        details = append(details, *d)
    }
    return details, rows.Err()
}
