package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the lifecycle state of a reservation.
type BookingStatus string

const (
	StatusPending    BookingStatus = "PENDING"
	StatusConfirmed  BookingStatus = "CONFIRMED"
	StatusCancelled  BookingStatus = "CANCELLED"
	StatusCheckedIn  BookingStatus = "CHECKED_IN"
	StatusCheckedOut BookingStatus = "CHECKED_OUT"
)

// PaymentMethod is the customer's preference for when to pay. It is
// informational for the admission engine.
type PaymentMethod string

const (
	PaymentPrepaid  PaymentMethod = "PREPAID"
	PaymentPostpaid PaymentMethod = "POSTPAID"
)

// Valid reports whether m is one of the known payment methods.
func (m PaymentMethod) Valid() bool {
	return m == PaymentPrepaid || m == PaymentPostpaid
}

// ErrIllegalTransition is returned by every transition method when the
// reservation's current status does not allow the requested move.
var ErrIllegalTransition = errors.New("illegal reservation status transition")

// TransitionError carries the attempted move. It matches
// ErrIllegalTransition with errors.Is.
type TransitionError struct {
	From BookingStatus
	To   BookingStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move reservation from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrIllegalTransition }

// Reservation is a booking of one room by one customer over the half-open
// interval [CheckIn, CheckOut). Dates are calendar days at UTC midnight.
//
// Fields:
//
//	ID            – reservations.id
//	CustomerID    – owning customer
//	RoomID        – booked room
//	CouponID      – applied coupon, nil when none
//	CheckIn       – first night
//	CheckOut      – departure day (not a booked night)
//	Nights        – computed once at creation
//	TotalPrice    – computed once at creation, never changed
//	Status        – lifecycle state
//	PaymentMethod – PREPAID or POSTPAID
//	CancelledAt   – set on the first move into CANCELLED only
type Reservation struct {
	ID            uint64
	CustomerID    uint64
	RoomID        uint64
	CouponID      *uint64
	CheckIn       time.Time
	CheckOut      time.Time
	Nights        int
	TotalPrice    decimal.Decimal
	Status        BookingStatus
	PaymentMethod PaymentMethod
	CancelledAt   *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Day truncates t to midnight UTC of its calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

const secondsPerDay = 24 * 60 * 60

// Nights returns the number of nights between two calendar days. The
// result is zero or negative when checkOut is not after checkIn. It counts
// whole days from Unix seconds, since time.Duration tops out near 292
// years and any year from 1 to 9999 is a parseable stay date.
func Nights(checkIn, checkOut time.Time) int {
	return int((Day(checkOut).Unix() - Day(checkIn).Unix()) / secondsPerDay)
}

// Overlaps is the half-open interval test used for availability: a range
// ending on day N does not overlap one starting on day N.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && aOut.After(bIn)
}

// Blocks reports whether r occupies roomID on any night of [checkIn, checkOut).
// Cancelled reservations never block.
func (r *Reservation) Blocks(roomID uint64, checkIn, checkOut time.Time) bool {
	if r.RoomID != roomID || r.Status == StatusCancelled {
		return false
	}
	return Overlaps(r.CheckIn, r.CheckOut, checkIn, checkOut)
}

// Confirm moves a PENDING reservation to CONFIRMED after payment.
func (r *Reservation) Confirm(now time.Time) error {
	if r.Status != StatusPending {
		return &TransitionError{From: r.Status, To: StatusConfirmed}
	}
	r.Status = StatusConfirmed
	r.UpdatedAt = now
	return nil
}

// Cancel moves a PENDING or CONFIRMED reservation to CANCELLED and stamps
// CancelledAt unless it is already set.
func (r *Reservation) Cancel(now time.Time) error {
	if r.Status != StatusPending && r.Status != StatusConfirmed {
		return &TransitionError{From: r.Status, To: StatusCancelled}
	}
	r.Status = StatusCancelled
	if r.CancelledAt == nil {
		at := now
		r.CancelledAt = &at
	}
	r.UpdatedAt = now
	return nil
}

// CheckInGuest moves a PENDING or CONFIRMED reservation to CHECKED_IN.
func (r *Reservation) CheckInGuest(now time.Time) error {
	if r.Status != StatusPending && r.Status != StatusConfirmed {
		return &TransitionError{From: r.Status, To: StatusCheckedIn}
	}
	r.Status = StatusCheckedIn
	r.UpdatedAt = now
	return nil
}

// CheckOutGuest moves a CHECKED_IN reservation to CHECKED_OUT and records
// the actual departure day as the reservation's check-out date. The day is
// clamped to [CheckIn+1, CheckOut] so an overstay never reaches into the
// next booking of the room.
func (r *Reservation) CheckOutGuest(departure, now time.Time) error {
	if r.Status != StatusCheckedIn {
		return &TransitionError{From: r.Status, To: StatusCheckedOut}
	}
	r.Status = StatusCheckedOut
	r.CheckOut = DepartureDay(r.CheckIn, r.CheckOut, departure)
	r.UpdatedAt = now
	return nil
}

// DepartureDay clamps an actual departure to the booked stay.
func DepartureDay(checkIn, checkOut, departure time.Time) time.Time {
	d := Day(departure)
	if first := Day(checkIn).AddDate(0, 0, 1); d.Before(first) {
		return first
	}
	if last := Day(checkOut); d.After(last) {
		return last
	}
	return d
}

// Terminal reports whether no further transition is possible.
func (s BookingStatus) Terminal() bool {
	return s == StatusCancelled || s == StatusCheckedOut
}
