package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/absolute-cinema/ticketing-engine/internal/handler"    // import the handlers that implement business logic
	"github.com/absolute-cinema/ticketing-engine/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/absolute-cinema/ticketing-engine/internal/model"      // role constants
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Operations that do not require an existing session (register, login,
	// refresh).  Each of these handlers generates or exchanges tokens.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Rotates the refresh token.
	g.POST("/refresh", a.Refresh)
	// Issues a new access token without rotating the refresh token.
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a JSON body containing a `refresh_token` and
	// invalidates that token, or revokes all sessions when called with a
	// bearer token and no body.
	g.POST("/logout", a.Logout)

	// Routes that require a valid access token.  Both roles are accepted;
	// the middleware rejects requests with missing or unknown roles.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))
	auth.GET("/me", a.Me)

	// Alias outside the protected group so clients can log out with only a
	// refresh token in the body.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  The PublicHandler returns sanitized catalog data for
// movies, sessions and seat availability.  These routes apply no JWT or
// role middleware and are intended for guest users.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	// Movie catalog
	e.GET("/v1/movies", p.ListMovies)
	e.GET("/v1/movies/:id", p.GetMovie)
	// Session listings; ?movie_id= narrows to one movie
	e.GET("/v1/sessions", p.ListSessions)
	e.GET("/v1/sessions/:id", p.GetSession)
	// Derived seat map for a session.  Status values are available,
	// held or sold; guests use this to pick seats before registering.
	e.GET("/v1/sessions/:id/availability", p.Availability)
	// Room layout with the full seat grid.
	e.GET("/v1/rooms/:id", p.GetRoom)
}
