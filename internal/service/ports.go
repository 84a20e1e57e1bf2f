package service

import (
	"context"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
)

// ReservationStore persists reservations and their check-in/check-out
// records. Lookups of missing rows return repository.ErrNotFound;
// compare-and-set updates that find the row in another status return
// repository.ErrStatusChanged.
type ReservationStore interface {
	HasOverlap(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error)
	Create(ctx context.Context, res *model.Reservation) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	ListByCustomer(ctx context.Context, customerID uint64) ([]model.Reservation, error)
	ListByRoom(ctx context.Context, roomID uint64) ([]model.Reservation, error)
	ListStalePending(ctx context.Context, method model.PaymentMethod, createdBefore time.Time, limit int) ([]model.Reservation, error)
	// UpdateStatus writes res.Status, res.CancelledAt and res.UpdatedAt
	// when the stored status still equals from.
	UpdateStatus(ctx context.Context, res *model.Reservation, from model.BookingStatus) error
	// CreateCheckIn inserts ci and applies UpdateStatus atomically.
	CreateCheckIn(ctx context.Context, ci *model.CheckIn, res *model.Reservation, from model.BookingStatus) error
	// CreateCheckOut inserts co and writes status and check-out date atomically.
	CreateCheckOut(ctx context.Context, co *model.CheckOut, res *model.Reservation, from model.BookingStatus) error
}

// RoomFinder reads rooms owned by the catalog service.
type RoomFinder interface {
	GetByID(ctx context.Context, id uint64) (*model.Room, error)
}

// CouponFinder reads discount coupons.
type CouponFinder interface {
	GetByCode(ctx context.Context, code string) (*model.Coupon, error)
	GetByID(ctx context.Context, id uint64) (*model.Coupon, error)
}

// CustomerFinder reads customer profiles.
type CustomerFinder interface {
	GetByID(ctx context.Context, id uint64) (*model.Customer, error)
}

// EventPublisher delivers lifecycle events to the notification subsystem.
type EventPublisher interface {
	Publish(ctx context.Context, event queue.ReservationEvent) error
}
