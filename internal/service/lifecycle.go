package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// ReasonPaymentTimeout is attached to cancellations made by the unpaid
// reservation sweep.
const ReasonPaymentTimeout = "payment_timeout"

// GetReservation returns one of the customer's reservations. Another
// customer's reservation is reported as not found.
func (s *ReservationService) GetReservation(ctx context.Context, customerID, id uint64) (*model.Reservation, error) {
	res, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.CustomerID != customerID {
		return nil, ErrReservationNotFound
	}
	return res, nil
}

// ListCustomerReservations returns the customer's reservations, newest first.
func (s *ReservationService) ListCustomerReservations(ctx context.Context, customerID uint64) ([]model.Reservation, error) {
	list, err := s.reservations.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, fmt.Errorf("list reservations of customer %d: %w", customerID, err)
	}
	return list, nil
}

// ListRoomReservations returns the reservations of a room for its owner,
// ordered by check-in date.
func (s *ReservationService) ListRoomReservations(ctx context.Context, ownerID, roomID uint64) ([]model.Reservation, error) {
	room, err := s.loadRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID != ownerID {
		return nil, ErrNotRoomOwner
	}
	list, err := s.reservations.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list reservations of room %d: %w", roomID, err)
	}
	return list, nil
}

// Invoice is the price breakdown of a stored reservation. Total is the
// stored total price; it is never recomputed.
type Invoice struct {
	Reservation     *model.Reservation
	NightlyPrice    decimal.Decimal
	Nights          int
	Subtotal        decimal.Decimal
	CouponCode      string
	DiscountPercent int
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

// Invoice builds the invoice of one of the customer's reservations.
func (s *ReservationService) Invoice(ctx context.Context, customerID, id uint64) (*Invoice, error) {
	res, err := s.GetReservation(ctx, customerID, id)
	if err != nil {
		return nil, err
	}
	room, err := s.loadRoom(ctx, res.RoomID)
	if err != nil {
		return nil, err
	}

	subtotal := room.PricePerNight.Mul(decimal.NewFromInt(int64(res.Nights))).Round(2)
	inv := &Invoice{
		Reservation:  res,
		NightlyPrice: room.PricePerNight,
		Nights:       res.Nights,
		Subtotal:     subtotal,
		Total:        res.TotalPrice,
		Discount:     subtotal.Sub(res.TotalPrice),
	}
	if res.CouponID != nil {
		c, err := s.coupons.GetByID(ctx, *res.CouponID)
		switch {
		case err == nil:
			inv.CouponCode = c.Code
			inv.DiscountPercent = c.DiscountPercent
		case errors.Is(err, repository.ErrNotFound):
			// coupon retired since booking; the stored total still holds
		default:
			return nil, fmt.Errorf("load coupon %d: %w", *res.CouponID, err)
		}
	}
	if inv.Discount.IsNegative() {
		// nightly price raised after booking
		inv.Discount = decimal.Zero
	}
	return inv, nil
}

// CancelReservation cancels one of the customer's PENDING or CONFIRMED
// reservations.
func (s *ReservationService) CancelReservation(ctx context.Context, customerID, id uint64) (*model.Reservation, error) {
	res, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.CustomerID != customerID {
		return nil, ErrNotReservationOwner
	}
	if err := s.transition(ctx, res, res.Cancel); err != nil {
		return nil, err
	}
	s.logger.Info("reservation cancelled", zap.Uint64("reservation_id", res.ID), zap.Uint64("customer_id", customerID))
	s.notify(ctx, queue.EventReservationCancelled, res, "")
	return res, nil
}

// ConfirmReservation applies a payment-confirmed signal to a PENDING
// reservation.
func (s *ReservationService) ConfirmReservation(ctx context.Context, id uint64) error {
	res, err := s.loadReservation(ctx, id)
	if err != nil {
		return err
	}
	if err := s.transition(ctx, res, res.Confirm); err != nil {
		return err
	}
	s.logger.Info("reservation confirmed", zap.Uint64("reservation_id", res.ID))
	s.notify(ctx, queue.EventReservationConfirmed, res, "")
	return nil
}

// IsStaleSignal reports whether a payment signal failed only because the
// reservation is gone or already moved on. Such signals are dropped.
func IsStaleSignal(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict)
}

// CheckInInput is a front-desk check-in. Date defaults to today.
type CheckInInput struct {
	OwnerID       uint64
	ReservationID uint64
	Date          *time.Time
}

// CheckIn records the guest's arrival for a reservation of a room the
// owner runs. The customer's phone and email are snapshotted on the record.
func (s *ReservationService) CheckIn(ctx context.Context, in CheckInInput) (*model.CheckIn, error) {
	res, err := s.loadOwnedReservation(ctx, in.OwnerID, in.ReservationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ci := &model.CheckIn{
		ReservationID: res.ID,
		CustomerID:    res.CustomerID,
		RoomID:        res.RoomID,
		CheckInDate:   model.Day(now),
		CreatedAt:     now,
	}
	if in.Date != nil {
		ci.CheckInDate = model.Day(*in.Date)
	}
	if cust := s.lookupCustomer(ctx, res.CustomerID); cust != nil {
		ci.Phone = cust.Phone
		if cust.Email != "" {
			email := cust.Email
			ci.Email = &email
		}
	}

	from := res.Status
	if err := res.CheckInGuest(now); err != nil {
		return nil, conflictFrom(err)
	}
	if err := s.reservations.CreateCheckIn(ctx, ci, res, from); err != nil {
		return nil, s.storeError(err)
	}

	s.logger.Info("guest checked in", zap.Uint64("reservation_id", res.ID), zap.Uint64("room_id", res.RoomID))
	s.notify(ctx, queue.EventReservationCheckedIn, res, "")
	return ci, nil
}

// CheckOutInput is a front-desk check-out. Date defaults to today and is
// clamped to the booked stay.
type CheckOutInput struct {
	OwnerID       uint64
	ReservationID uint64
	Date          *time.Time
}

// CheckOut records the guest's departure and moves the reservation's
// check-out date to it.
func (s *ReservationService) CheckOut(ctx context.Context, in CheckOutInput) (*model.CheckOut, *model.Reservation, error) {
	res, err := s.loadOwnedReservation(ctx, in.OwnerID, in.ReservationID)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	departure := now
	if in.Date != nil {
		departure = *in.Date
	}

	from := res.Status
	if err := res.CheckOutGuest(departure, now); err != nil {
		return nil, nil, conflictFrom(err)
	}
	co := &model.CheckOut{
		ReservationID: res.ID,
		CustomerID:    res.CustomerID,
		CheckOutDate:  res.CheckOut,
		CreatedAt:     now,
	}
	if err := s.reservations.CreateCheckOut(ctx, co, res, from); err != nil {
		return nil, nil, s.storeError(err)
	}

	s.logger.Info("guest checked out", zap.Uint64("reservation_id", res.ID), zap.Time("check_out", res.CheckOut))
	s.notify(ctx, queue.EventReservationCheckedOut, res, "")
	return co, res, nil
}

// ExpireUnpaid cancels PREPAID reservations still PENDING after olderThan.
// Reservations that change status while the sweep runs are skipped. It
// returns the number cancelled.
func (s *ReservationService) ExpireUnpaid(ctx context.Context, olderThan time.Duration, limit int) (int, error) {
	cutoff := s.now().Add(-olderThan)
	stale, err := s.reservations.ListStalePending(ctx, model.PaymentPrepaid, cutoff, limit)
	if err != nil {
		return 0, fmt.Errorf("list unpaid reservations: %w", err)
	}

	cancelled := 0
	for i := range stale {
		if err := ctx.Err(); err != nil {
			return cancelled, err
		}
		res := &stale[i]
		if err := s.transition(ctx, res, res.Cancel); err != nil {
			if IsStaleSignal(err) {
				s.logger.Debug("unpaid reservation moved on", zap.Uint64("reservation_id", res.ID), zap.Error(err))
				continue
			}
			return cancelled, err
		}
		cancelled++
		s.logger.Info("unpaid reservation expired", zap.Uint64("reservation_id", res.ID), zap.Time("created_at", res.CreatedAt))
		s.notify(ctx, queue.EventReservationCancelled, res, ReasonPaymentTimeout)
	}
	return cancelled, nil
}

// transition applies a state machine move to res and persists it as a
// compare-and-set on the previous status.
func (s *ReservationService) transition(ctx context.Context, res *model.Reservation, move func(now time.Time) error) error {
	from := res.Status
	if err := move(s.now()); err != nil {
		return conflictFrom(err)
	}
	if err := s.reservations.UpdateStatus(ctx, res, from); err != nil {
		return s.storeError(err)
	}
	return nil
}

func (s *ReservationService) storeError(err error) error {
	switch {
	case errors.Is(err, repository.ErrStatusChanged):
		return ErrConcurrentUpdate
	case errors.Is(err, repository.ErrNotFound):
		return ErrReservationNotFound
	case errors.Is(err, repository.ErrConflict):
		return ErrConcurrentUpdate
	}
	return fmt.Errorf("persist reservation: %w", err)
}

func (s *ReservationService) loadReservation(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := s.reservations.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load reservation %d: %w", id, err)
	}
	return res, nil
}

// loadOwnedReservation loads a reservation of a room run by ownerID.
func (s *ReservationService) loadOwnedReservation(ctx context.Context, ownerID, id uint64) (*model.Reservation, error) {
	res, err := s.loadReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	room, err := s.loadRoom(ctx, res.RoomID)
	if err != nil {
		return nil, err
	}
	if room.OwnerID != ownerID {
		return nil, ErrNotRoomOwner
	}
	return res, nil
}

func (s *ReservationService) lookupCustomer(ctx context.Context, id uint64) *model.Customer {
	if s.customers == nil {
		return nil
	}
	c, err := s.customers.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("customer lookup failed", zap.Uint64("customer_id", id), zap.Error(err))
		}
		return nil
	}
	return c
}
