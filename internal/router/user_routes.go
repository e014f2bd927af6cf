package router

import (
	"github.com/labstack/echo/v4"

	"github.com/absolute-cinema/ticketing-engine/internal/handler"
	"github.com/absolute-cinema/ticketing-engine/internal/middleware"
	"github.com/absolute-cinema/ticketing-engine/internal/model"
)

// RegisterTickets registers the customer-facing reservation and ticket
// lifecycle endpoints under /v1.  All routes require a valid JWT; both
// roles are accepted since staff may buy tickets like anyone else, and
// ownership of individual tickets is enforced in the handlers.
func RegisterTickets(e *echo.Echo, h *handler.TicketHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleUser, model.RoleAdmin),
	)
	// Atomic all-or-nothing seat claim for a session.
	g.POST("/sessions/:id/reserve", h.Reserve)
	// Lifecycle operations on a single ticket.
	g.POST("/tickets/:id/confirm", h.Confirm)
	g.DELETE("/tickets/:id", h.Cancel)
	g.GET("/tickets/:id", h.Get)
	// Purchase history, newest first.
	g.GET("/my-tickets", h.MyTickets)
}
