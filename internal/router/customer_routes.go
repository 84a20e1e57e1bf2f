package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/hotel-room-reservation/internal/handler"
	"github.com/iliyamo/hotel-room-reservation/internal/middleware"
)

// RegisterCustomer registers customer-scoped endpoints under /v1.  All routes
// require a valid JWT and the CUSTOMER role.  Customers book rooms, list
// and view their own reservations, read invoices and cancel.  limiter
// guards reservation creation only.
func RegisterCustomer(e *echo.Echo, h *handler.CustomerHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("CUSTOMER"),
	)
	g.POST("/rooms/:id/reservations", h.CreateReservation, limiter)
	g.GET("/my-reservations", h.ListMyReservations)

	// Reservation detail, invoice and cancellation.  Ownership of the
	// reservation is checked by the service.
	g.GET("/reservations/:id", h.GetReservation)
	g.GET("/reservations/:id/invoice", h.GetInvoice)
	g.POST("/reservations/:id/cancel", h.CancelReservation)
}
