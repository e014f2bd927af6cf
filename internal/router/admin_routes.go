package router

import (
	"github.com/labstack/echo/v4"

	"github.com/absolute-cinema/ticketing-engine/internal/handler"
	"github.com/absolute-cinema/ticketing-engine/internal/middleware"
	"github.com/absolute-cinema/ticketing-engine/internal/model"
)

// RegisterAdmin registers the staff console endpoints under /v1/admin.
// All routes require a valid JWT carrying the ADMIN role: catalog
// management plus the door-scanner validation endpoints.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, v *handler.ValidationHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)

	// Movie catalog management; public listing lives on the open routes.
	g.POST("/movies", a.CreateMovie)
	g.PUT("/movies/:id", a.UpdateMovie)
	g.DELETE("/movies/:id", a.DeleteMovie)

	// Room geometry.  Seats are generated from a rows x cols grid at
	// creation and never edited afterwards.
	g.POST("/rooms", a.CreateRoom)
	g.GET("/rooms", a.ListRooms)
	g.GET("/rooms/:id", a.GetRoom)
	g.DELETE("/rooms/:id", a.DeleteRoom)

	// Session scheduling.
	g.POST("/sessions", a.CreateSession)
	g.PUT("/sessions/:id", a.UpdateSession)
	g.DELETE("/sessions/:id", a.DeleteSession)
	g.GET("/sessions/:id/tickets", a.ListSessionTickets)

	// Account management.  Registration only creates USER accounts,
	// so promoting staff to ADMIN goes through here.
	g.PUT("/users/:id/role", a.UpdateUserRole)

	// Door validation: by scanned QR UUID, or by ticket id as the
	// manual fallback.
	g.POST("/validate", v.ValidateByQR)
	g.POST("/tickets/:id/validate", v.ValidateByID)
}
