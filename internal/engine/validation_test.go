package engine

import (
    "context"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

var ticketCols = []string{
    "id", "session_id", "seat_label", "user_id",
    "occupant_name", "occupant_email", "occupant_cpf",
    "qr_uuid", "status", "created_at", "updated_at", "used_at",
}

func ticketRow(t *model.Ticket) *sqlmock.Rows {
    var used interface{}
    if t.UsedAt != nil {
        used = *t.UsedAt
    }
    return sqlmock.NewRows(ticketCols).AddRow(
        t.ID, t.SessionID, t.SeatLabel, t.UserID,
        t.OccupantName, t.OccupantEmail, t.OccupantCPF,
        t.QRUUID, string(t.Status), t.CreatedAt, t.UpdatedAt, used,
    )
}

func sessionRow(id uint64, startsAt time.Time, durationMin uint32) *sqlmock.Rows {
    now := time.Now().UTC()
    return sqlmock.NewRows([]string{
        "id", "movie_id", "room_id", "starts_at", "duration_min", "base_price_cents", "created_at", "updated_at",
    }).AddRow(id, 1, 1, startsAt, durationMin, 2500, now, now)
}

func newGateway(t *testing.T) (*Gateway, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    g := NewGateway(repository.NewTicketRepo(db), repository.NewSessionRepo(db), 30*time.Minute)
    return g, mock
}

// A ticket scanned twice admits only once: the second scan finds the
// row already USED and reports when the first admission happened.
func TestValidateSecondScanReportsAlreadyUsed(t *testing.T) {
    g, mock := newGateway(t)

    usedAt := time.Date(2026, 8, 30, 20, 15, 0, 0, time.UTC)
    now := time.Now().UTC()
    used := &model.Ticket{
        ID: 7, SessionID: 3, SeatLabel: "B4", UserID: 12,
        OccupantName: "Clara", Status: model.StatusUsed,
        CreatedAt: now.Add(-time.Hour), UpdatedAt: now, UsedAt: &usedAt,
    }
    mock.ExpectQuery("FROM tickets WHERE id").
        WithArgs(uint64(7)).
        WillReturnRows(ticketRow(used))

    res, err := g.Validate(context.Background(), "7")
    require.Nil(t, res)
    var already *AlreadyUsedError
    require.ErrorAs(t, err, &already)
    assert.True(t, already.UsedAt.Equal(usedAt))
    assert.NoError(t, mock.ExpectationsWereMet())
}

// Two scanners racing over the same ACTIVE ticket: the loser's
// compare-and-swap affects zero rows, and the re-read hands it the
// winner's admission time instead of a success.
func TestValidateLostRaceReportsAlreadyUsed(t *testing.T) {
    g, mock := newGateway(t)

    now := time.Now().UTC()
    winnerAt := now.Add(-time.Second)
    active := &model.Ticket{
        ID: 9, SessionID: 3, SeatLabel: "C2", UserID: 12,
        OccupantName: "Davi", Status: model.StatusActive,
        CreatedAt: now.Add(-time.Hour), UpdatedAt: now,
    }
    usedNow := *active
    usedNow.Status = model.StatusUsed
    usedNow.UsedAt = &winnerAt

    mock.ExpectQuery("FROM tickets WHERE id").
        WithArgs(uint64(9)).
        WillReturnRows(ticketRow(active))
    mock.ExpectQuery("FROM sessions WHERE id").
        WithArgs(uint64(3)).
        WillReturnRows(sessionRow(3, now.Add(-10*time.Minute), 120))
    // The CAS loses: another scanner already flipped the row to USED.
    mock.ExpectExec("UPDATE tickets SET status = 'USED'").
        WithArgs(sqlmock.AnyArg(), uint64(9)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("FROM tickets WHERE id").
        WithArgs(uint64(9)).
        WillReturnRows(ticketRow(&usedNow))

    res, err := g.Validate(context.Background(), "9")
    require.Nil(t, res)
    var already *AlreadyUsedError
    require.ErrorAs(t, err, &already)
    assert.True(t, already.UsedAt.Equal(winnerAt))
    assert.NoError(t, mock.ExpectationsWereMet())
}

// When the lost CAS turns out to be the sweeper expiring the ticket,
// the scanner reports the expiry, not a generic invalid state.
func TestValidateLostRaceAgainstSweeperReportsExpired(t *testing.T) {
    g, mock := newGateway(t)

    now := time.Now().UTC()
    active := &model.Ticket{
        ID: 11, SessionID: 3, SeatLabel: "D1", UserID: 12,
        OccupantName: "Eva", Status: model.StatusActive,
        CreatedAt: now.Add(-3 * time.Hour), UpdatedAt: now,
    }
    expired := *active
    expired.Status = model.StatusExpired

    mock.ExpectQuery("FROM tickets WHERE id").
        WithArgs(uint64(11)).
        WillReturnRows(ticketRow(active))
    mock.ExpectQuery("FROM sessions WHERE id").
        WithArgs(uint64(3)).
        WillReturnRows(sessionRow(3, now.Add(-10*time.Minute), 120))
    mock.ExpectExec("UPDATE tickets SET status = 'USED'").
        WithArgs(sqlmock.AnyArg(), uint64(11)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("FROM tickets WHERE id").
        WithArgs(uint64(11)).
        WillReturnRows(ticketRow(&expired))

    res, err := g.Validate(context.Background(), "11")
    require.Nil(t, res)
    assert.ErrorIs(t, err, ErrExpired)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestValidateOutsideAdmissionWindow(t *testing.T) {
    g, mock := newGateway(t)

    now := time.Now().UTC()
    active := &model.Ticket{
        ID: 13, SessionID: 4, SeatLabel: "A1", UserID: 12,
        OccupantName: "Gil", Status: model.StatusActive,
        CreatedAt: now.Add(-time.Hour), UpdatedAt: now,
    }
    mock.ExpectQuery("FROM tickets WHERE id").
        WithArgs(uint64(13)).
        WillReturnRows(ticketRow(active))
    // Session starts tomorrow; no MarkUsed must be attempted.
    mock.ExpectQuery("FROM sessions WHERE id").
        WithArgs(uint64(4)).
        WillReturnRows(sessionRow(4, now.Add(24*time.Hour), 120))

    res, err := g.Validate(context.Background(), "13")
    require.Nil(t, res)
    assert.ErrorIs(t, err, ErrOutOfWindow)
    assert.NoError(t, mock.ExpectationsWereMet())
}
