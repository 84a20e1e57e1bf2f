package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/handler"    // front-desk handlers
	"github.com/iliyamo/hotel-room-reservation/internal/middleware" // JWT + role middlewares
)

// RegisterOwner registers OWNER-scoped front-desk endpoints under
// /v1/owner.  All routes require a valid JWT and the OWNER role; the
// service checks that the owner runs the room in question.
func RegisterOwner(e *echo.Echo, h *handler.FrontDeskHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/owner",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("OWNER"),
	)

	// ---- Rooms ----
	g.GET("/rooms/:id/reservations", h.ListRoomReservations)

	// ---- Stays ----
	g.POST("/reservations/:id/check-in", h.CheckIn)
	g.POST("/reservations/:id/check-out", h.CheckOut)
}
