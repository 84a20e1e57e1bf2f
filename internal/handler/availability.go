package handler

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"
)

// AvailabilityQuerier answers whether a room is free for a stay.
type AvailabilityQuerier interface {
    RoomAvailable(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error)
}

type AvailabilityHandler struct {
    svc    AvailabilityQuerier
    logger *zap.Logger
}

func NewAvailabilityHandler(svc AvailabilityQuerier, logger *zap.Logger) *AvailabilityHandler {
    return &AvailabilityHandler{svc: svc, logger: logger}
}

// RoomAvailability handles GET /v1/rooms/:id/availability?check_in=&check_out=.
// It is public.  The answer is advisory: booking re-checks under the room
// lock.
func (h *AvailabilityHandler) RoomAvailability(c echo.Context) error {
    roomID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    var q availabilityQuery
    if err := c.Bind(&q); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid query"})
    }
    if err := c.Validate(&q); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    checkIn, err1 := parseDate(q.CheckIn)
    checkOut, err2 := parseDate(q.CheckOut)
    if err1 != nil || err2 != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "dates must be in YYYY-MM-DD format"})
    }

    free, err := h.svc.RoomAvailable(c.Request().Context(), roomID, checkIn, checkOut)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "room_id":   roomID,
        "check_in":  q.CheckIn,
        "check_out": q.CheckOut,
        "available": free,
    })
}
