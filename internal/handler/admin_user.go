package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/absolute-cinema/ticketing-engine/internal/repository"
)

type userRoleReq struct {
    Role string `json:"role" validate:"required,oneof=USER ADMIN"`
}

// UpdateUserRole handles PUT /v1/admin/users/:id/role.  Registration
// always creates USER accounts; this is the only way an account
// gains (or loses) the ADMIN role.
func (h *AdminHandler) UpdateUserRole(c echo.Context) error {
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    var req userRoleReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    if self, err := getUserID(c); err == nil && self == id {
        // Admins cannot demote themselves; that avoids locking the
        // last admin out of the console.
        return c.JSON(http.StatusConflict, echo.Map{"error": "cannot change own role"})
    }
    if err := h.Users.UpdateRole(c.Request().Context(), id, req.Role); err != nil {
        if err == repository.ErrUserNotFound {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update role"})
    }
    return c.JSON(http.StatusOK, echo.Map{"id": id, "role": req.Role})
}
