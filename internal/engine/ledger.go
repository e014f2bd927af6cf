package engine

import (
    "context"
    "database/sql"
    "database/sql/driver"
    "encoding/json"
    "errors"
    "fmt"
    "sort"
    "strings"
    "time"

    "github.com/go-sql-driver/mysql"
    "github.com/google/uuid"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

// Ledger is the reservation ledger: the only component allowed to
// create seat claims.  A reservation batch either claims every
// requested seat or none; the decision and the inserts run inside
// one transaction, with the requested labels locked FOR UPDATE and
// the live-claim uniqueness index as a backstop.
type Ledger struct {
    db       *sql.DB
    tickets  *repository.TicketRepo
    sessions *repository.SessionRepo
    rooms    *repository.RoomRepo
    idem     *repository.IdempotencyStore
    holdTTL  time.Duration
}

// NewLedger wires a Ledger.  idem may be backed by a nil Redis
// client, in which case idempotency-key replay is disabled.
func NewLedger(db *sql.DB, tickets *repository.TicketRepo, sessions *repository.SessionRepo, rooms *repository.RoomRepo, idem *repository.IdempotencyStore, holdTTL time.Duration) *Ledger {
    return &Ledger{db: db, tickets: tickets, sessions: sessions, rooms: rooms, idem: idem, holdTTL: holdTTL}
}

// SeatRequest carries the occupant data for one requested seat.
type SeatRequest struct {
    SeatLabel     string
    OccupantName  string
    OccupantEmail string
    OccupantCPF   string
}

// ReserveRequest is one all-or-nothing reservation batch.  The
// optional IdempotencyKey makes network retries safe: within the
// replay window the ledger returns the originally minted tickets
// instead of claiming again.
type ReserveRequest struct {
    SessionID      uint64
    UserID         uint64
    Seats          []SeatRequest
    IdempotencyKey string
}

// NormalizeLabel canonicalizes a seat label for comparison: labels
// are matched case-insensitively and without surrounding spaces.
func NormalizeLabel(label string) string {
    return strings.ToUpper(strings.TrimSpace(label))
}

// normalizeSeatSet validates and canonicalizes the requested seats.
// It rejects empty batches and duplicate labels within the batch.
func normalizeSeatSet(seats []SeatRequest) ([]SeatRequest, []string, error) {
    if len(seats) == 0 {
        return nil, nil, ErrNoSeats
    }
    cleaned := make([]SeatRequest, 0, len(seats))
    labels := make([]string, 0, len(seats))
    seen := make(map[string]struct{}, len(seats))
    for _, s := range seats {
        label := NormalizeLabel(s.SeatLabel)
        if label == "" {
            return nil, nil, ErrNoSeats
        }
        if _, dup := seen[label]; dup {
            return nil, nil, ErrDuplicateSeat
        }
        seen[label] = struct{}{}
        s.SeatLabel = label
        cleaned = append(cleaned, s)
        labels = append(labels, label)
    }
    return cleaned, labels, nil
}

// missingLabels returns the requested labels that do not exist in
// the room's seat list, sorted for deterministic error payloads.
func missingLabels(requested []string, seats []model.Seat) []string {
    known := make(map[string]struct{}, len(seats))
    for _, s := range seats {
        known[NormalizeLabel(s.Label)] = struct{}{}
    }
    var missing []string
    for _, l := range requested {
        if _, ok := known[l]; !ok {
            missing = append(missing, l)
        }
    }
    sort.Strings(missing)
    return missing
}

// holdCutoff is the single rule deciding whether a RESERVED ticket
// is still a live hold.  The lazy check in Reserve, the background
// sweeper and the availability read model all call this, so they can
// never disagree about whether a hold has lapsed.
func holdCutoff(now time.Time, ttl time.Duration) time.Time {
    return now.Add(-ttl)
}

// holdLapsed matches the `created_at <= cutoff` predicate of the SQL
// sweeps, boundary included, so the in-line check in Confirm and the
// sweeper agree on a hold created exactly at the cutoff.
func holdLapsed(createdAt, cutoff time.Time) bool {
    return !createdAt.After(cutoff)
}

// isTransient reports whether a storage error is worth an internal
// retry (lost connections only; everything else surfaces verbatim).
func isTransient(err error) bool {
    return errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn)
}

// withRetry runs fn up to three times with doubling backoff while
// the failure is transient, then wraps the last error in
// ErrUnavailable.  Domain errors pass through on the first attempt.
func withRetry(ctx context.Context, fn func() error) error {
    backoff := 100 * time.Millisecond
    var err error
    for attempt := 0; attempt < 3; attempt++ {
        err = fn()
        if err == nil || !isTransient(err) {
            return err
        }
        select {
        case <-ctx.Done():
            return ctx.Err()
        case <-time.After(backoff):
        }
        backoff *= 2
    }
    return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// Reserve atomically claims every requested seat for the session and
// mints one RESERVED ticket per seat, or claims nothing and reports
// the failure.  Conflicting labels are reported all at once via
// SeatConflictError; the client is expected to re-fetch availability
// rather than retry blindly.
func (l *Ledger) Reserve(ctx context.Context, req ReserveRequest) ([]model.Ticket, error) {
    seats, labels, err := normalizeSeatSet(req.Seats)
    if err != nil {
        return nil, err
    }
    var idemKey string
    if req.IdempotencyKey != "" && l.idem.Enabled() {
        idemKey = l.idem.Key(req.UserID, req.SessionID, req.IdempotencyKey)
        if bs, ok, err := l.idem.Get(ctx, idemKey); err == nil && ok {
            var cached []model.Ticket
            if json.Unmarshal(bs, &cached) == nil {
                return cached, nil
            }
        }
    }
    var minted []model.Ticket
    attempt := func() error {
        minted = minted[:0]
        tx, err := l.db.BeginTx(ctx, nil)
        if err != nil {
            return err
        }
        committed := false
        defer func() {
            if !committed {
                _ = tx.Rollback()
            }
        }()
        sess, err := l.sessions.GetByIDTx(ctx, tx, req.SessionID)
        if err != nil {
            if errors.Is(err, repository.ErrSessionNotFound) {
                return ErrNotFound
            }
            return err
        }
        now := time.Now().UTC()
        if !sess.StartsAt.After(now) {
            // Seats are only sold before the screening starts.
            return ErrExpired
        }
        roomSeats, err := l.rooms.SeatsByRoomTx(ctx, tx, sess.RoomID)
        if err != nil {
            return err
        }
        if unknown := missingLabels(labels, roomSeats); len(unknown) > 0 {
            return &UnknownSeatError{Labels: unknown}
        }
        // Release lapsed holds first so the conflict check below and
        // the availability endpoint agree on what is still claimed.
        if _, err := l.tickets.CancelStaleReservedTx(ctx, tx, req.SessionID, holdCutoff(now, l.holdTTL)); err != nil {
            return err
        }
        claimed, err := l.tickets.LiveLabelsForUpdateTx(ctx, tx, req.SessionID, labels)
        if err != nil {
            return err
        }
        if len(claimed) > 0 {
            sort.Strings(claimed)
            return &SeatConflictError{Labels: claimed}
        }
        for _, s := range seats {
            t := model.Ticket{
                SessionID:     req.SessionID,
                SeatLabel:     s.SeatLabel,
                UserID:        req.UserID,
                OccupantName:  s.OccupantName,
                OccupantEmail: s.OccupantEmail,
                OccupantCPF:   s.OccupantCPF,
                QRUUID:        uuid.NewString(),
                Status:        model.StatusReserved,
            }
            if err := l.tickets.InsertTx(ctx, tx, &t); err != nil {
                if repository.IsDuplicateClaim(err) {
                    // A claim slipped in between our lock and this
                    // insert; the uniqueness index caught it.
                    return &SeatConflictError{Labels: []string{t.SeatLabel}}
                }
                return err
            }
            minted = append(minted, t)
        }
        if err := tx.Commit(); err != nil {
            return err
        }
        committed = true
        return nil
    }
    if err := withRetry(ctx, attempt); err != nil {
        return nil, err
    }
    if idemKey != "" {
        if bs, err := json.Marshal(minted); err == nil {
            _ = l.idem.Put(ctx, idemKey, bs)
        }
    }
    return minted, nil
}

// Release frees the seat held by a RESERVED claim, transitioning it
// to CANCELLED.  It fails with ErrNotFound when no live claim exists
// for the seat and with ErrInvalidState when the claim is already
// ACTIVE or USED; paid and admitted seats are not released here.
func (l *Ledger) Release(ctx context.Context, sessionID uint64, seatLabel string) error {
    label := NormalizeLabel(seatLabel)
    return withRetry(ctx, func() error {
        tx, err := l.db.BeginTx(ctx, nil)
        if err != nil {
            return err
        }
        committed := false
        defer func() {
            if !committed {
                _ = tx.Rollback()
            }
        }()
        t, err := l.tickets.LiveBySeatTx(ctx, tx, sessionID, label)
        if err != nil {
            if errors.Is(err, repository.ErrTicketNotFound) {
                return ErrNotFound
            }
            return err
        }
        if t.Status != model.StatusReserved {
            return ErrInvalidState
        }
        if err := l.tickets.UpdateStatusTx(ctx, tx, t.ID, model.StatusCancelled); err != nil {
            return err
        }
        if err := tx.Commit(); err != nil {
            return err
        }
        committed = true
        return nil
    })
}
