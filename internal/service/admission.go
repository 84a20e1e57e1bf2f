package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/hotel-room-reservation/internal/lock"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

// ReservationService admits new reservations and drives existing ones
// through their lifecycle.
type ReservationService struct {
	reservations ReservationStore
	rooms        RoomFinder
	coupons      CouponFinder
	customers    CustomerFinder
	locker       lock.Locker
	availability *AvailabilityChecker
	publisher    EventPublisher
	logger       *zap.Logger

	now            func() time.Time
	publishTimeout time.Duration
}

// NewReservationService wires the service. publisher and logger may be nil.
func NewReservationService(
	reservations ReservationStore,
	rooms RoomFinder,
	coupons CouponFinder,
	customers CustomerFinder,
	locker lock.Locker,
	publisher EventPublisher,
	logger *zap.Logger,
) *ReservationService {
	if publisher == nil {
		publisher = queue.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		reservations:   reservations,
		rooms:          rooms,
		coupons:        coupons,
		customers:      customers,
		locker:         locker,
		availability:   NewAvailabilityChecker(reservations),
		publisher:      publisher,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
		publishTimeout: 5 * time.Second,
	}
}

// CreateReservationInput is a booking request. Dates are truncated to
// calendar days; CouponCode is optional.
type CreateReservationInput struct {
	CustomerID    uint64
	RoomID        uint64
	CheckIn       time.Time
	CheckOut      time.Time
	PaymentMethod model.PaymentMethod
	CouponCode    string
}

// CreateReservation admits a PENDING reservation when the room is free for
// the requested range. Request validation and a first availability check
// run without the room lock; the check is repeated under the lock right
// before the insert. Nothing is written when any check fails.
//
// Errors: ErrValidation (dates, payment method, coupon), ErrNotFound
// (room), ErrConflict (ErrRoomUnavailable before the lock, ErrJustBooked
// under it), ErrBusy (lock wait timed out or lock backend unreachable).
func (s *ReservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*model.Reservation, error) {
	checkIn, checkOut := model.Day(in.CheckIn), model.Day(in.CheckOut)
	if !checkIn.Before(checkOut) {
		return nil, ErrInvalidDateRange
	}
	if !in.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}
	room, err := s.loadRoom(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	coupon, err := s.resolveCoupon(ctx, in.CouponCode)
	if err != nil {
		return nil, err
	}

	free, err := s.availability.IsAvailable(ctx, room.ID, checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if !free {
		return nil, ErrRoomUnavailable
	}

	var created *model.Reservation
	err = lock.With(ctx, s.locker, room.ID, s.logger, func(ctx context.Context) error {
		free, err := s.availability.IsAvailable(ctx, room.ID, checkIn, checkOut)
		if err != nil {
			return err
		}
		if !free {
			return ErrJustBooked
		}

		now := s.now()
		quote, err := Price(room, checkIn, checkOut, coupon, now)
		if err != nil {
			return err
		}

		res := &model.Reservation{
			CustomerID:    in.CustomerID,
			RoomID:        room.ID,
			CheckIn:       checkIn,
			CheckOut:      checkOut,
			Nights:        quote.Nights,
			TotalPrice:    quote.Total,
			Status:        model.StatusPending,
			PaymentMethod: in.PaymentMethod,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if coupon != nil {
			id := coupon.ID
			res.CouponID = &id
		}
		if err := s.reservations.Create(ctx, res); err != nil {
			return fmt.Errorf("create reservation: %w", err)
		}
		created = res
		return nil
	})
	if errors.Is(err, lock.ErrNotAcquired) || errors.Is(err, lock.ErrUnavailable) {
		s.logger.Warn("room lock not taken", zap.Uint64("room_id", room.ID), zap.Error(err))
		return nil, ErrRoomBusy
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation created",
		zap.Uint64("reservation_id", created.ID),
		zap.Uint64("room_id", created.RoomID),
		zap.Uint64("customer_id", created.CustomerID),
		zap.Time("check_in", created.CheckIn),
		zap.Time("check_out", created.CheckOut),
		zap.String("total", created.TotalPrice.StringFixed(2)),
	)
	s.notify(ctx, queue.EventReservationCreated, created, "")
	return created, nil
}

// RoomAvailable answers the public availability query for a room.
func (s *ReservationService) RoomAvailable(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	if _, err := s.loadRoom(ctx, roomID); err != nil {
		return false, err
	}
	return s.availability.IsAvailable(ctx, roomID, checkIn, checkOut)
}

func (s *ReservationService) loadRoom(ctx context.Context, id uint64) (*model.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load room %d: %w", id, err)
	}
	return room, nil
}

// resolveCoupon returns nil for an empty code. A coupon that exists but is
// outside its window, inactive or carries an out-of-range percent is
// rejected here so an invalid code never reaches the lock.
func (s *ReservationService) resolveCoupon(ctx context.Context, code string) (*model.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}
	c, err := s.coupons.GetByCode(ctx, code)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrCouponNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load coupon: %w", err)
	}
	if !c.IsValid(s.now()) || c.DiscountPercent < 0 || c.DiscountPercent > 100 {
		return nil, ErrCouponInvalid
	}
	return c, nil
}
