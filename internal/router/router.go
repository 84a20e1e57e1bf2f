package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/hotel-room-reservation/internal/handler" // import the handlers that implement the endpoints
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance: the health check and the public availability
// query.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc, a *handler.AvailabilityHandler) {
	// Load balancers and monitoring probe this endpoint.
	e.GET("/healthz", health)
	// Guests may check a room before signing in; booking re-checks under the lock.
	e.GET("/v1/rooms/:id/availability", a.RoomAvailability)
}
