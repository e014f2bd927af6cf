package handler

import (
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/absolute-cinema/ticketing-engine/internal/config"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

// Self-registration must never mint an ADMIN account, whatever the
// request body claims; ADMIN gates the door-validation endpoints and
// is only granted through the admin console afterwards.
func TestRegisterIgnoresRequestedRole(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectExec("INSERT INTO users").
        WithArgs("mallory@example.com", sqlmock.AnyArg(), "USER").
        WillReturnResult(sqlmock.NewResult(7, 1))
    mock.ExpectExec("INSERT INTO refresh_tokens").
        WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
        WillReturnResult(sqlmock.NewResult(1, 1))

    cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
    h := NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))

    body := `{"email":"Mallory@Example.com","password":"hunter22","role":"ADMIN"}`
    req := httptest.NewRequest(http.MethodPost, "/v1/auth/register", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()

    require.NoError(t, h.Register(echo.New().NewContext(req, rec)))
    require.Equal(t, http.StatusCreated, rec.Code)
    assert.Contains(t, rec.Body.String(), `"role":"USER"`)
    assert.NotContains(t, rec.Body.String(), `"role":"ADMIN"`)
    assert.NoError(t, mock.ExpectationsWereMet())
}
