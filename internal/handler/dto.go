package handler

import (
    "time"

    "github.com/jinzhu/copier"

    "github.com/iliyamo/hotel-room-reservation/internal/model"
    "github.com/iliyamo/hotel-room-reservation/internal/service"
)

// createReservationRequest is the body of POST /v1/rooms/:id/reservations.
type createReservationRequest struct {
    CheckIn       string `json:"check_in" validate:"required,datetime=2006-01-02"`
    CheckOut      string `json:"check_out" validate:"required,datetime=2006-01-02"`
    PaymentMethod string `json:"payment_method" validate:"required,oneof=PREPAID POSTPAID"`
    CouponCode    string `json:"coupon_code" validate:"omitempty,max=50"`
}

// availabilityQuery is the query of GET /v1/rooms/:id/availability.
type availabilityQuery struct {
    CheckIn  string `query:"check_in" validate:"required,datetime=2006-01-02"`
    CheckOut string `query:"check_out" validate:"required,datetime=2006-01-02"`
}

// stayDateRequest is the optional body of the front-desk endpoints.
type stayDateRequest struct {
    Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// reservationResponse is the JSON view of a reservation.  Fields sharing a
// name and type with model.Reservation are filled by copier; dates and
// money are rendered explicitly.
type reservationResponse struct {
    ID            uint64     `json:"id"`
    CustomerID    uint64     `json:"customer_id"`
    RoomID        uint64     `json:"room_id"`
    CouponID      *uint64    `json:"coupon_id,omitempty"`
    CheckInDate   string     `json:"check_in"`
    CheckOutDate  string     `json:"check_out"`
    Nights        int        `json:"nights"`
    Total         string     `json:"total_price"`
    Status        string     `json:"booking_status"`
    PaymentMethod string     `json:"preferred_payment_method"`
    CancelledAt   *time.Time `json:"cancelled_at,omitempty"`
    CreatedAt     time.Time  `json:"created_at"`
    UpdatedAt     time.Time  `json:"updated_at"`
}

func toReservationResponse(res *model.Reservation) (reservationResponse, error) {
    var out reservationResponse
    if err := copier.Copy(&out, res); err != nil {
        return reservationResponse{}, err
    }
    out.CheckInDate = res.CheckIn.Format(dateLayout)
    out.CheckOutDate = res.CheckOut.Format(dateLayout)
    out.Total = res.TotalPrice.StringFixed(2)
    out.Status = string(res.Status)
    out.PaymentMethod = string(res.PaymentMethod)
    return out, nil
}

func toReservationList(list []model.Reservation) ([]reservationResponse, error) {
    out := make([]reservationResponse, 0, len(list))
    for i := range list {
        r, err := toReservationResponse(&list[i])
        if err != nil {
            return nil, err
        }
        out = append(out, r)
    }
    return out, nil
}

type invoiceResponse struct {
    ReservationID   uint64 `json:"reservation_id"`
    CheckIn         string `json:"check_in"`
    CheckOut        string `json:"check_out"`
    Nights          int    `json:"nights"`
    NightlyPrice    string `json:"nightly_price"`
    Subtotal        string `json:"subtotal"`
    CouponCode      string `json:"coupon_code,omitempty"`
    DiscountPercent int    `json:"discount_percent"`
    Discount        string `json:"discount"`
    Total           string `json:"total_price"`
    Status          string `json:"booking_status"`
}

func toInvoiceResponse(inv *service.Invoice) invoiceResponse {
    return invoiceResponse{
        ReservationID:   inv.Reservation.ID,
        CheckIn:         inv.Reservation.CheckIn.Format(dateLayout),
        CheckOut:        inv.Reservation.CheckOut.Format(dateLayout),
        Nights:          inv.Nights,
        NightlyPrice:    inv.NightlyPrice.StringFixed(2),
        Subtotal:        inv.Subtotal.StringFixed(2),
        CouponCode:      inv.CouponCode,
        DiscountPercent: inv.DiscountPercent,
        Discount:        inv.Discount.StringFixed(2),
        Total:           inv.Total.StringFixed(2),
        Status:          string(inv.Reservation.Status),
    }
}

type checkInResponse struct {
    ID            uint64  `json:"id"`
    ReservationID uint64  `json:"reservation_id"`
    CustomerID    uint64  `json:"customer_id"`
    RoomID        uint64  `json:"room_id"`
    Phone         *string `json:"phone,omitempty"`
    Email         *string `json:"email,omitempty"`
    Date          string  `json:"check_in_date"`
}

func toCheckInResponse(ci *model.CheckIn) (checkInResponse, error) {
    var out checkInResponse
    if err := copier.Copy(&out, ci); err != nil {
        return checkInResponse{}, err
    }
    out.Date = ci.CheckInDate.Format(dateLayout)
    return out, nil
}

type checkOutResponse struct {
    ID            uint64              `json:"id"`
    ReservationID uint64              `json:"reservation_id"`
    CustomerID    uint64              `json:"customer_id"`
    Date          string              `json:"check_out_date"`
    Reservation   reservationResponse `json:"reservation"`
}
