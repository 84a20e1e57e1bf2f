package handler

import (
    "context"
    "net/http"

    "github.com/labstack/echo/v4"
    "go.uber.org/zap"

    "github.com/iliyamo/hotel-room-reservation/internal/model"
    "github.com/iliyamo/hotel-room-reservation/internal/service"
)

// CustomerReservations is the part of the reservation service used on
// behalf of customers.
type CustomerReservations interface {
    CreateReservation(ctx context.Context, in service.CreateReservationInput) (*model.Reservation, error)
    ListCustomerReservations(ctx context.Context, customerID uint64) ([]model.Reservation, error)
    GetReservation(ctx context.Context, customerID, id uint64) (*model.Reservation, error)
    Invoice(ctx context.Context, customerID, id uint64) (*service.Invoice, error)
    CancelReservation(ctx context.Context, customerID, id uint64) (*model.Reservation, error)
}

// CustomerHandler serves the customer reservation endpoints.  All methods
// assume that JWT authentication and the CUSTOMER role check have already
// been performed by middleware.  Methods return 401 Unauthorized if the
// user ID cannot be extracted from the context.
type CustomerHandler struct {
    svc    CustomerReservations
    logger *zap.Logger
}

// NewCustomerHandler constructs a CustomerHandler.  svc must be non-nil.
func NewCustomerHandler(svc CustomerReservations, logger *zap.Logger) *CustomerHandler {
    if svc == nil {
        panic("nil service passed to NewCustomerHandler")
    }
    return &CustomerHandler{svc: svc, logger: logger}
}

// CreateReservation handles POST /v1/rooms/:id/reservations.  The body
// carries check_in, check_out (YYYY-MM-DD), payment_method and an optional
// coupon_code.  It returns 201 with the PENDING reservation, 400 for
// invalid input, 404 for an unknown room, 409 when the dates are taken and
// 503 with Retry-After when the room is being booked by someone else.
func (h *CustomerHandler) CreateReservation(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    roomID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid room id"})
    }
    var req createReservationRequest
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if err := c.Validate(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    checkIn, err := parseDate(req.CheckIn)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_in must be a date in YYYY-MM-DD format"})
    }
    checkOut, err := parseDate(req.CheckOut)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "check_out must be a date in YYYY-MM-DD format"})
    }

    res, err := h.svc.CreateReservation(c.Request().Context(), service.CreateReservationInput{
        CustomerID:    customerID,
        RoomID:        roomID,
        CheckIn:       checkIn,
        CheckOut:      checkOut,
        PaymentMethod: model.PaymentMethod(req.PaymentMethod),
        CouponCode:    req.CouponCode,
    })
    if err != nil {
        return writeError(c, h.logger, err)
    }
    out, err := toReservationResponse(res)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusCreated, out)
}

// ListMyReservations handles GET /v1/my-reservations, newest first.
func (h *CustomerHandler) ListMyReservations(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    list, err := h.svc.ListCustomerReservations(c.Request().Context(), customerID)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    items, err := toReservationList(list)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"items": items, "count": len(items)})
}

// GetReservation handles GET /v1/reservations/:id.  Reservations of other
// customers are reported as 404.
func (h *CustomerHandler) GetReservation(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    res, err := h.svc.GetReservation(c.Request().Context(), customerID, id)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    out, err := toReservationResponse(res)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, out)
}

// GetInvoice handles GET /v1/reservations/:id/invoice.
func (h *CustomerHandler) GetInvoice(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    inv, err := h.svc.Invoice(c.Request().Context(), customerID, id)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, toInvoiceResponse(inv))
}

// CancelReservation handles POST /v1/reservations/:id/cancel.  Only
// PENDING and CONFIRMED reservations can be cancelled (409 otherwise).
func (h *CustomerHandler) CancelReservation(c echo.Context) error {
    customerID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }
    res, err := h.svc.CancelReservation(c.Request().Context(), customerID, id)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    out, err := toReservationResponse(res)
    if err != nil {
        return writeError(c, h.logger, err)
    }
    return c.JSON(http.StatusOK, out)
}
