package handler

// This file defines the front-desk endpoints.  Room owners list the
// reservations of their rooms and record guest arrivals and departures.
// The OWNER role is enforced by middleware; ownership of the specific
// room is checked by the service.

import (
    "context"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-room-reservation/internal/model"
    "github.com/iliyamo/hotel-room-reservation/internal/service"
)

// FrontDesk is the part of the reservation service used by room owners.
type FrontDesk interface {
    ListRoomReservations(ctx context.Context, ownerID, roomID uint64) ([]model.Reservation, error)
    CheckIn(ctx context.Context, in service.CheckInInput) (*model.CheckIn, error)
    CheckOut(ctx context.Context, in service.CheckOutInput) (*model.CheckOut, *model.Reservation, error)
}

type FrontDeskHandler struct {
    svc    FrontDesk
    logger *zap.Logger
}

func NewFrontDeskHandler(svc FrontDesk, logger *zap.Logger) *FrontDeskHandler {
    if svc == nil {
        panic("nil service passed to NewFrontDeskHandler")
    }
    return &FrontDeskHandler{svc: svc, logger: logger}
}

// ListRoomReservations handles GET /v1/owner/rooms/:id/reservations.
func (h *FrontDeskHandler) ListRoomReservations(c echo.Context) error {
    ownerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    roomID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    list, err := h.svc.ListRoomReservations(c.Request().Context(), ownerID, roomID)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    items, err := toReservationList(list)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// CheckIn handles POST /v1/owner/reservations/:id/check-in.  An optional
// body {"date": "YYYY-MM-DD"} overrides today's date.
func (h *FrontDeskHandler) CheckIn(c echo.Context) error {
    ownerID, id, date, err := stayRequest(c)
    if err != nil {
        return err
    }
    ci, err := h.svc.CheckIn(c.Request().Context(), service.CheckInInput{OwnerID: ownerID, ReservationID: id, Date: date})
    if err != nil {
        return writeError(c, h.logger, err)
    }
    out, err := toCheckInResponse(ci)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusCreated, out)
}

// CheckOut handles POST /v1/owner/reservations/:id/check-out.  The
// departure date (today unless given) becomes the reservation's check-out
// date, clamped to the booked stay.
func (h *FrontDeskHandler) CheckOut(c echo.Context) error {
    ownerID, id, date, err := stayRequest(c)
    if err != nil {
        return err
    }
    co, res, err := h.svc.CheckOut(c.Request().Context(), service.CheckOutInput{OwnerID: ownerID, ReservationID: id, Date: date})
    if err != nil {
        return writeError(c, h.logger, err)
    }
    resOut, err := toReservationResponse(res)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusCreated, checkOutResponse{
        ID:            co.ID,
        ReservationID: co.ReservationID,
        CustomerID:    co.CustomerID,
        Date:          co.CheckOutDate.Format(dateLayout),
        Reservation:   resOut,
    })
}

// stayRequest reads the caller, the reservation id and the optional date.
// Invalid input is returned as an *echo.HTTPError.
func stayRequest(c echo.Context) (ownerID, id uint64, date *time.Time, err error) {
    ownerID, err = getUserID(c)
    if err != nil {
        return 0, 0, nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
    }
    id, ok := pathID(c, "id")
    if !ok {
        return 0, 0, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid reservation id")
    }
    var req stayDateRequest
    if err := c.Bind(&req); err != nil {
        return 0, 0, nil, echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
    }
    if err := c.Validate(&req); err != nil {
        return 0, 0, nil, echo.NewHTTPError(http.StatusBadRequest, err.Error())
    }
    if req.Date != "" {
        d, err := parseDate(req.Date)
        if err != nil {
            return 0, 0, nil, echo.NewHTTPError(http.StatusBadRequest, "date must be a date in YYYY-MM-DD format")
        }
        date = &d
    }
    return ownerID, id, date, nil
}
