package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/absolute-cinema/ticketing-engine/internal/model"
    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

type movieReq struct {
    Title       string  `json:"title" validate:"required"`
    Description *string `json:"description"`
    DurationMin uint32  `json:"duration_min" validate:"required,min=1"`
    Genre       *string `json:"genre"`
    PosterURL   *string `json:"poster_url" validate:"omitempty,url"`
}

func (r *movieReq) toModel() model.Movie {
    return model.Movie{
        Title:       strings.TrimSpace(r.Title),
        Description: r.Description,
        DurationMin: r.DurationMin,
        Genre:       r.Genre,
        PosterURL:   r.PosterURL,
    }
}

// CreateMovie handles POST /v1/admin/movies.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
    var req movieReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    m := req.toModel()
    if err := h.Movies.Create(c.Request().Context(), &m); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create movie"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"item": toMoviePart(&m)})
}

// UpdateMovie handles PUT /v1/admin/movies/:id.
func (h *AdminHandler) UpdateMovie(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
    }
    var req movieReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    m := req.toModel()
    m.ID = id
    if err := h.Movies.Update(c.Request().Context(), &m); err != nil {
        if err == repository.ErrMovieNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update movie"})
    }
    return c.JSON(http.StatusOK, echo.Map{"item": toMoviePart(&m)})
}

// DeleteMovie handles DELETE /v1/admin/movies/:id.  A movie with
// scheduled sessions cannot be removed.
func (h *AdminHandler) DeleteMovie(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid movie id"})
    }
    if err := h.Movies.Delete(c.Request().Context(), id); err != nil {
        switch err {
        case repository.ErrMovieNotFound:
            return c.JSON(http.StatusNotFound, echo.Map{"error": "movie not found"})
        case repository.ErrConflict:
            return c.JSON(http.StatusConflict, echo.Map{"error": "movie has scheduled sessions"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete movie"})
    }
    return c.NoContent(http.StatusNoContent)
}
