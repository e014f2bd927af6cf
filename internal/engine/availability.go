package engine

import (
    "context"
    "errors"
    "time"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

// Seat availability states as presented to browsing clients.  A held
// seat may come back; a sold seat will not.
const (
    SeatAvailable = "available"
    SeatHeld      = "held"
    SeatSold      = "sold"
)

// SeatAvailability is one seat of the per-session availability map.
type SeatAvailability struct {
    SeatLabel string `json:"seat_label"`
    Row       string `json:"row"`
    Column    uint32 `json:"column"`
    Status    string `json:"status"`
}

// Availability derives the current seat map for a session from the
// room layout and the live claims.  It is a pure read: lapsed holds
// are classified as available on the fly instead of being written
// back, so browsing traffic never takes locks.
func (l *Ledger) Availability(ctx context.Context, sessionID uint64) ([]SeatAvailability, error) {
    sess, err := l.sessions.GetByID(ctx, sessionID)
    if err != nil {
        if errors.Is(err, repository.ErrSessionNotFound) {
            return nil, ErrNotFound
        }
        return nil, err
    }
    room, err := l.rooms.GetByID(ctx, sess.RoomID)
    if err != nil {
        return nil, err
    }
    claims, err := l.tickets.ClaimsBySession(ctx, sessionID)
    if err != nil {
        return nil, err
    }
    return deriveAvailability(room.Seats, claims, time.Now().UTC(), l.holdTTL), nil
}

// deriveAvailability folds the claims over the room layout.  ACTIVE
// and USED claims are sold; a RESERVED claim is held only while its
// hold window is still open.
func deriveAvailability(seats []model.Seat, claims []repository.ClaimState, now time.Time, holdTTL time.Duration) []SeatAvailability {
    cutoff := holdCutoff(now, holdTTL)
    byLabel := make(map[string]string, len(claims))
    for _, c := range claims {
        switch c.Status {
        case model.StatusActive, model.StatusUsed:
            byLabel[NormalizeLabel(c.SeatLabel)] = SeatSold
        case model.StatusReserved:
            if c.CreatedAt.After(cutoff) {
                byLabel[NormalizeLabel(c.SeatLabel)] = SeatHeld
            }
        }
    }
    out := make([]SeatAvailability, 0, len(seats))
    for _, s := range seats {
        status := SeatAvailable
        if st, ok := byLabel[NormalizeLabel(s.Label)]; ok {
            status = st
        }
        out = append(out, SeatAvailability{
            SeatLabel: s.Label,
            Row:       s.Row,
            Column:    s.Column,
            Status:    status,
        })
    }
    return out
}
