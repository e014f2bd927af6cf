package handler

import (
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/absolute-cinema/ticketing-engine/internal/engine"
    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

// PublicHandler serves the unauthenticated browsing surface: movies,
// sessions and per-session seat availability.  These routes sit
// behind the response cache middleware, so they must stay read-only.
type PublicHandler struct {
    Movies   *repository.MovieRepo
    Sessions *repository.SessionRepo
    Rooms    *repository.RoomRepo
    Ledger   *engine.Ledger
}

// NewPublicHandler constructs a PublicHandler.
func NewPublicHandler(movies *repository.MovieRepo, sessions *repository.SessionRepo, rooms *repository.RoomRepo, ledger *engine.Ledger) *PublicHandler {
    if movies == nil || sessions == nil || rooms == nil || ledger == nil {
        panic("nil dependency passed to NewPublicHandler")
    }
    return &PublicHandler{Movies: movies, Sessions: sessions, Rooms: rooms, Ledger: ledger}
}

// ----- DTOs -----

type moviePart struct {
    ID          uint64  `json:"id"`
    Title       string  `json:"title"`
    Description *string `json:"description,omitempty"`
    DurationMin uint32  `json:"duration_min"`
    Genre       *string `json:"genre,omitempty"`
    PosterURL   *string `json:"poster_url,omitempty"`
}

type sessionPart struct {
    ID             uint64 `json:"id"`
    MovieID        uint64 `json:"movie_id"`
    RoomID         uint64 `json:"room_id"`
    StartsAt       string `json:"starts_at"`
    EndsAt         string `json:"ends_at"`
    DurationMin    uint32 `json:"duration_min"`
    BasePriceCents uint32 `json:"base_price_cents"`
}

func toMoviePart(m *model.Movie) moviePart {
    return moviePart{
        ID:          m.ID,
        Title:       m.Title,
        Description: m.Description,
        DurationMin: m.DurationMin,
        Genre:       m.Genre,
        PosterURL:   m.PosterURL,
    }
}

func toSessionPart(s *model.Session) sessionPart {
    return sessionPart{
        ID:             s.ID,
        MovieID:        s.MovieID,
        RoomID:         s.RoomID,
        StartsAt:       s.StartsAt.UTC().Format(time.RFC3339),
        EndsAt:         s.EndsAt().UTC().Format(time.RFC3339),
        DurationMin:    s.DurationMin,
        BasePriceCents: s.BasePriceCents,
    }
}

// ListMovies handles GET /v1/movies.
func (h *PublicHandler) ListMovies(c echo.Context) error {
    movies, err := h.Movies.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load movies"})
    }
    items := make([]moviePart, 0, len(movies))
    for i := range movies {
        items = append(items, toMoviePart(&movies[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetMovie handles GET /v1/movies/:id.
func (h *PublicHandler) GetMovie(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
    }
    m, err := h.Movies.GetByID(c.Request().Context(), id)
    if err != nil {
        if err == repository.ErrMovieNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toMoviePart(m)})
}

// ListSessions handles GET /v1/sessions.  An optional movie_id query
// parameter narrows the listing to one movie.
func (h *PublicHandler) ListSessions(c echo.Context) error {
    var movieID uint64
    if raw := c.QueryParam("movie_id"); raw != "" {
        id, err := strconv.ParseUint(raw, 10, 64)
        if err != nil || id == 0 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie_id"})
        }
        movieID = id
    }
    sessions, err := h.Sessions.List(c.Request().Context(), movieID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sessions"})
    }
    items := make([]sessionPart, 0, len(sessions))
    for i := range sessions {
        items = append(items, toSessionPart(&sessions[i]))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetSession handles GET /v1/sessions/:id.
func (h *PublicHandler) GetSession(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    s, err := h.Sessions.GetByID(c.Request().Context(), id)
    if err != nil {
        if err == repository.ErrSessionNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toSessionPart(s)})
}

// GetRoom handles GET /v1/rooms/:id.  The seat grid is included so
// clients can render the room layout before picking a session.
func (h *PublicHandler) GetRoom(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    room, err := h.Rooms.GetByID(c.Request().Context(), id)
    if err != nil {
        if err == repository.ErrRoomNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toRoomPart(room, true)})
}

// Availability handles GET /v1/sessions/:id/availability.  It returns
// one entry per physical seat with its derived status, so a seat map
// can render straight off the response.
func (h *PublicHandler) Availability(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid session id"})
    }
    seats, err := h.Ledger.Availability(c.Request().Context(), id)
    if err != nil {
        return writeEngineError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"seats": seats})
}
