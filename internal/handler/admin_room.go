package handler

import (
    "fmt"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

type roomReq struct {
    Name string `json:"name" validate:"required"`
    Rows int    `json:"rows" validate:"required,min=1,max=100"`
    Cols int    `json:"cols" validate:"required,min=1,max=100"`
}

type seatPart struct {
    Label  string `json:"label"`
    Row    string `json:"row"`
    Column uint32 `json:"column"`
}

type roomPart struct {
    ID       uint64     `json:"id"`
    Name     string     `json:"name"`
    Capacity uint32     `json:"capacity"`
    Seats    []seatPart `json:"seats,omitempty"`
}

func toRoomPart(r *model.Room, withSeats bool) roomPart {
    out := roomPart{ID: r.ID, Name: r.Name, Capacity: r.Capacity}
    if withSeats {
        out.Seats = make([]seatPart, 0, len(r.Seats))
        for _, s := range r.Seats {
            out.Seats = append(out.Seats, seatPart{Label: s.Label, Row: s.Row, Column: s.Column})
        }
    }
    return out
}

// buildSeatGrid generates the seat list for a rows x cols room.  Row
// labels run A..Z, AA, AB and so on; columns are 1-based, giving
// labels like "A1" or "AB12".
func buildSeatGrid(rows, cols int) []model.Seat {
    seats := make([]model.Seat, 0, rows*cols)
    for r := 0; r < rows; r++ {
        row := indexToRowLabel(r)
        for col := 1; col <= cols; col++ {
            seats = append(seats, model.Seat{
                Label:  fmt.Sprintf("%s%d", row, col),
                Row:    row,
                Column: uint32(col),
            })
        }
    }
    return seats
}

// CreateRoom handles POST /v1/admin/rooms.  The room geometry is
// specified as a rows x cols grid and generated server-side; seats
// cannot be edited afterwards.
func (h *AdminHandler) CreateRoom(c echo.Context) error {
    var req roomReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    seats := buildSeatGrid(req.Rows, req.Cols)
    room := model.Room{
        Name:     strings.TrimSpace(req.Name),
        Capacity: uint32(len(seats)),
        Seats:    seats,
    }
    if err := h.Rooms.Create(c.Request().Context(), &room); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create room"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": toRoomPart(&room, true)})
}

// ListRooms handles GET /v1/admin/rooms.  Seat lists are omitted to
// keep the listing light.
func (h *AdminHandler) ListRooms(c echo.Context) error {
    rooms, err := h.Rooms.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load rooms"})
    }
    items := make([]roomPart, 0, len(rooms))
    for i := range rooms {
        items = append(items, toRoomPart(&rooms[i], false))
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetRoom handles GET /v1/admin/rooms/:id, including the full seat
// grid.
func (h *AdminHandler) GetRoom(c echo.Context) error {
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

// DeleteRoom handles DELETE /v1/admin/rooms/:id.  Rooms with
// scheduled sessions cannot be removed.
func (h *AdminHandler) DeleteRoom(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    if err := h.Rooms.Delete(c.Request().Context(), id); err != nil {
        switch err {
        case repository.ErrRoomNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "room not found"})
        case repository.ErrConflict:
            return c.JSON(http.StatusConflict, echo.Map{"error": "room has scheduled sessions"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete room"})
    }
    return c.NoContent(http.StatusNoContent)
}
