package engine

import (
    "context"
    "database/sql/driver"
    "errors"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

func TestNormalizeSeatSet(t *testing.T) {
    t.Run("canonicalizes labels", func(t *testing.T) {
        seats, labels, err := normalizeSeatSet([]SeatRequest{
            {SeatLabel: " a1 ", OccupantName: "Ana"},
            {SeatLabel: "b10", OccupantName: "Bruno"},
        })
        require.NoError(t, err)
        assert.Equal(t, []string{"A1", "B10"}, labels)
        assert.Equal(t, "A1", seats[0].SeatLabel)
        assert.Equal(t, "Ana", seats[0].OccupantName)
    })

    t.Run("empty batch", func(t *testing.T) {
        _, _, err := normalizeSeatSet(nil)
        assert.ErrorIs(t, err, ErrNoSeats)
    })

    t.Run("blank label", func(t *testing.T) {
        _, _, err := normalizeSeatSet([]SeatRequest{{SeatLabel: "   "}})
        assert.ErrorIs(t, err, ErrNoSeats)
    })

    t.Run("duplicate after normalization", func(t *testing.T) {
        _, _, err := normalizeSeatSet([]SeatRequest{{SeatLabel: "A1"}, {SeatLabel: "a1 "}})
        assert.ErrorIs(t, err, ErrDuplicateSeat)
    })
}

func TestMissingLabels(t *testing.T) {
    seats := []model.Seat{
        {Label: "A1", Row: "A", Column: 1},
        {Label: "A2", Row: "A", Column: 2},
        {Label: "B1", Row: "B", Column: 1},
    }
    assert.Empty(t, missingLabels([]string{"A1", "B1"}, seats))
    assert.Equal(t, []string{"C1", "Z9"}, missingLabels([]string{"Z9", "A1", "C1"}, seats))
}

func TestHoldCutoff(t *testing.T) {
    now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
    cutoff := holdCutoff(now, 10*time.Minute)
    assert.Equal(t, now.Add(-10*time.Minute), cutoff)

    fresh := now.Add(-9 * time.Minute)
    stale := now.Add(-11 * time.Minute)
    assert.True(t, fresh.After(cutoff))
    assert.False(t, stale.After(cutoff))
}

func TestHoldLapsed(t *testing.T) {
    cutoff := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
    assert.True(t, holdLapsed(cutoff.Add(-time.Second), cutoff))
    // A hold created exactly at the cutoff lapses, matching the
    // created_at <= cutoff predicate of the SQL sweeps.
    assert.True(t, holdLapsed(cutoff, cutoff))
    assert.False(t, holdLapsed(cutoff.Add(time.Second), cutoff))
}

func TestIsTransient(t *testing.T) {
    assert.True(t, isTransient(driver.ErrBadConn))
    assert.False(t, isTransient(errors.New("syntax error")))
    assert.False(t, isTransient(ErrNotFound))
    assert.False(t, isTransient(&SeatConflictError{Labels: []string{"A1"}}))
}

func TestDeriveAvailability(t *testing.T) {
    now := time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)
    holdTTL := 10 * time.Minute
    seats := []model.Seat{
        {Label: "A1", Row: "A", Column: 1},
        {Label: "A2", Row: "A", Column: 2},
        {Label: "A3", Row: "A", Column: 3},
        {Label: "A4", Row: "A", Column: 4},
        {Label: "A5", Row: "A", Column: 5},
    }
    claims := []repository.ClaimState{
        {SeatLabel: "A1", Status: model.StatusReserved, CreatedAt: now.Add(-2 * time.Minute)},
        {SeatLabel: "A2", Status: model.StatusReserved, CreatedAt: now.Add(-30 * time.Minute)},
        {SeatLabel: "A3", Status: model.StatusActive, CreatedAt: now.Add(-1 * time.Hour)},
        {SeatLabel: "A4", Status: model.StatusUsed, CreatedAt: now.Add(-2 * time.Hour)},
    }

    got := deriveAvailability(seats, claims, now, holdTTL)
    require.Len(t, got, 5)

    byLabel := make(map[string]string, len(got))
    for _, s := range got {
        byLabel[s.SeatLabel] = s.Status
    }
    assert.Equal(t, SeatHeld, byLabel["A1"], "fresh hold")
    assert.Equal(t, SeatAvailable, byLabel["A2"], "lapsed hold reads as free")
    assert.Equal(t, SeatSold, byLabel["A3"])
    assert.Equal(t, SeatSold, byLabel["A4"])
    assert.Equal(t, SeatAvailable, byLabel["A5"])
}

func newLedger(t *testing.T) (*Ledger, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    l := NewLedger(db,
        repository.NewTicketRepo(db),
        repository.NewSessionRepo(db),
        repository.NewRoomRepo(db),
        repository.NewIdempotencyStore(nil, time.Minute),
        10*time.Minute)
    return l, mock
}

func roomSeatRows(labels ...string) *sqlmock.Rows {
    rows := sqlmock.NewRows([]string{"seat_label", "row_label", "col_number"})
    for i, l := range labels {
        rows.AddRow(l, "A", i+1)
    }
    return rows
}

// Two overlapping batches for the same session: the loser observes
// the winner's locked claims and the whole batch fails with the
// contended labels, claiming nothing.
func TestReserveSeatConflictClaimsNothing(t *testing.T) {
    l, mock := newLedger(t)
    now := time.Now().UTC()

    mock.ExpectBegin()
    mock.ExpectQuery("FROM sessions WHERE id").
        WithArgs(uint64(3)).
        WillReturnRows(sessionRow(3, now.Add(2*time.Hour), 120))
    mock.ExpectQuery("FROM room_seats").
        WillReturnRows(roomSeatRows("A1", "A2"))
    mock.ExpectExec("UPDATE tickets SET status = 'CANCELLED'").
        WillReturnResult(sqlmock.NewResult(0, 0))
    // A1 already carries a live claim from the concurrent winner.
    mock.ExpectQuery("SELECT seat_label FROM tickets").
        WillReturnRows(sqlmock.NewRows([]string{"seat_label"}).AddRow("A1"))
    mock.ExpectRollback()

    tickets, err := l.Reserve(context.Background(), ReserveRequest{
        SessionID: 3,
        UserID:    12,
        Seats: []SeatRequest{
            {SeatLabel: "A1", OccupantName: "Ana", OccupantEmail: "ana@example.com", OccupantCPF: "111.222.333-44"},
            {SeatLabel: "A2", OccupantName: "Bruno", OccupantEmail: "bruno@example.com", OccupantCPF: "555.666.777-88"},
        },
    })
    require.Nil(t, tickets)
    var conflict *SeatConflictError
    require.ErrorAs(t, err, &conflict)
    assert.Equal(t, []string{"A1"}, conflict.Labels)
    assert.NoError(t, mock.ExpectationsWereMet())
}

// A claim slipping in between the FOR UPDATE read and the insert is
// caught by the live-claim uniqueness index and still surfaces as a
// seat conflict instead of a storage error.
func TestReserveDuplicateClaimRace(t *testing.T) {
    l, mock := newLedger(t)
    now := time.Now().UTC()

    mock.ExpectBegin()
    mock.ExpectQuery("FROM sessions WHERE id").
        WithArgs(uint64(3)).
        WillReturnRows(sessionRow(3, now.Add(2*time.Hour), 120))
    mock.ExpectQuery("FROM room_seats").
        WillReturnRows(roomSeatRows("A1"))
    mock.ExpectExec("UPDATE tickets SET status = 'CANCELLED'").
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("SELECT seat_label FROM tickets").
        WillReturnRows(sqlmock.NewRows([]string{"seat_label"}))
    mock.ExpectExec("INSERT INTO tickets").
        WillReturnError(&mysql.MySQLError{Number: 1062, Message: "duplicate entry"})
    mock.ExpectRollback()

    tickets, err := l.Reserve(context.Background(), ReserveRequest{
        SessionID: 3,
        UserID:    12,
        Seats:     []SeatRequest{{SeatLabel: "A1", OccupantName: "Ana", OccupantEmail: "ana@example.com", OccupantCPF: "111.222.333-44"}},
    })
    require.Nil(t, tickets)
    var conflict *SeatConflictError
    require.ErrorAs(t, err, &conflict)
    assert.Equal(t, []string{"A1"}, conflict.Labels)
    assert.NoError(t, mock.ExpectationsWereMet())
}

// A session whose screening already started no longer sells seats.
func TestReserveStartedSession(t *testing.T) {
    l, mock := newLedger(t)
    now := time.Now().UTC()

    mock.ExpectBegin()
    mock.ExpectQuery("FROM sessions WHERE id").
        WithArgs(uint64(3)).
        WillReturnRows(sessionRow(3, now.Add(-time.Minute), 120))
    mock.ExpectRollback()

    _, err := l.Reserve(context.Background(), ReserveRequest{
        SessionID: 3,
        UserID:    12,
        Seats:     []SeatRequest{{SeatLabel: "A1", OccupantName: "Ana"}},
    })
    assert.ErrorIs(t, err, ErrExpired)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeriveAvailabilityPreservesRoomOrder(t *testing.T) {
    seats := []model.Seat{
        {Label: "A1", Row: "A", Column: 1},
        {Label: "A2", Row: "A", Column: 2},
        {Label: "B1", Row: "B", Column: 1},
    }
    got := deriveAvailability(seats, nil, time.Now().UTC(), 10*time.Minute)
    require.Len(t, got, 3)
    assert.Equal(t, "A1", got[0].SeatLabel)
    assert.Equal(t, "A2", got[1].SeatLabel)
    assert.Equal(t, "B1", got[2].SeatLabel)
}
