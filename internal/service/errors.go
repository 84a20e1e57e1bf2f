package service

import "errors"

// Error kinds. Every error returned by ReservationService that is not an
// infrastructure failure matches exactly one of these with errors.Is, and
// the HTTP layer maps kinds to status codes.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
	// ErrBusy is transient: the caller may retry the same request later.
	ErrBusy = errors.New("busy")
)

// Error is a client-facing failure of a given kind. Msg is safe to show to
// the caller verbatim.
type Error struct {
	Kind  error
	Msg   string
	cause error
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Kind, e.cause}
	}
	return []error{e.Kind}
}

func newError(kind error, msg string) *Error { return &Error{Kind: kind, Msg: msg} }

// conflictFrom turns a domain error (an illegal transition) into a conflict
// that still matches the original with errors.Is.
func conflictFrom(err error) *Error {
	return &Error{Kind: ErrConflict, Msg: err.Error(), cause: err}
}

var (
	ErrInvalidDateRange     = newError(ErrValidation, "check-in date must be before check-out date")
	ErrInvalidPaymentMethod = newError(ErrValidation, "payment method must be PREPAID or POSTPAID")
	ErrCouponNotFound       = newError(ErrValidation, "coupon not found")
	ErrCouponInvalid        = newError(ErrValidation, "invalid or expired coupon")

	ErrRoomNotFound        = newError(ErrNotFound, "room not found")
	ErrReservationNotFound = newError(ErrNotFound, "reservation not found")

	ErrNotRoomOwner        = newError(ErrForbidden, "room belongs to another owner")
	ErrNotReservationOwner = newError(ErrForbidden, "reservation belongs to another customer")

	ErrRoomUnavailable  = newError(ErrConflict, "this room is not available for the selected date range")
	ErrJustBooked       = newError(ErrConflict, "sorry, this room has just been booked for the selected dates")
	ErrConcurrentUpdate = newError(ErrConflict, "reservation was modified by another request")

	ErrRoomBusy = newError(ErrBusy, "this room is currently being booked by another user, please try again in a moment")
)
