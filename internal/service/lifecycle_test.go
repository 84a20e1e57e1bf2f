package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
)

func TestCancelReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t, 10, 1, "2025-11-01", "2025-11-05")

	_, err := f.svc.CancelReservation(ctx, 11, res.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.svc.CancelReservation(ctx, 10, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, testNow, *cancelled.CancelledAt)

	// a second cancel is an illegal transition and keeps the first stamp
	f.svc.now = func() time.Time { return testNow.Add(time.Hour) }
	_, err = f.svc.CancelReservation(ctx, 10, res.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.ErrorIs(t, err, model.ErrIllegalTransition)

	stored, err := f.store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, testNow, *stored.CancelledAt)

	_, err = f.svc.CancelReservation(ctx, 10, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Equal(t, []queue.EventType{queue.EventReservationCreated, queue.EventReservationCancelled}, f.pub.types())
}

func TestConfirmReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t, 10, 1, "2025-11-01", "2025-11-05")

	require.NoError(t, f.svc.ConfirmReservation(ctx, res.ID))
	stored, err := f.store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, stored.Status)

	err = f.svc.ConfirmReservation(ctx, res.ID)
	assert.ErrorIs(t, err, ErrConflict)
	assert.True(t, IsStaleSignal(err))

	err = f.svc.ConfirmReservation(ctx, 12345)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, IsStaleSignal(err))

	// confirmed reservations can still be cancelled
	_, err = f.svc.CancelReservation(ctx, 10, res.ID)
	require.NoError(t, err)
}

func TestTransition_LostCompareAndSet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t, 10, 1, "2025-11-01", "2025-11-05")

	// a concurrent request moved the row after we read it
	stale, err := f.store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	require.NoError(t, f.svc.ConfirmReservation(ctx, res.ID))

	err = f.svc.transition(ctx, stale, stale.Cancel)
	assert.ErrorIs(t, err, ErrConcurrentUpdate)

	stored, err := f.store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, stored.Status)
	assert.Nil(t, stored.CancelledAt)
}

func TestCheckInAndCheckOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t, 10, 1, "2025-11-01", "2025-11-05")

	_, err := f.svc.CheckIn(ctx, CheckInInput{OwnerID: 200, ReservationID: res.ID})
	assert.ErrorIs(t, err, ErrForbidden, "owner of another room")

	_, _, err = f.svc.CheckOut(ctx, CheckOutInput{OwnerID: 100, ReservationID: res.ID})
	assert.ErrorIs(t, err, ErrConflict, "cannot check out before check-in")

	arrival := day("2025-11-01").Add(14 * time.Hour)
	ci, err := f.svc.CheckIn(ctx, CheckInInput{OwnerID: 100, ReservationID: res.ID, Date: &arrival})
	require.NoError(t, err)
	assert.Equal(t, day("2025-11-01"), ci.CheckInDate)
	require.NotNil(t, ci.Phone)
	assert.Equal(t, "+49-30-1234", *ci.Phone)
	require.NotNil(t, ci.Email)
	assert.Equal(t, "ada@example.com", *ci.Email)

	_, err = f.svc.CheckIn(ctx, CheckInInput{OwnerID: 100, ReservationID: res.ID})
	assert.ErrorIs(t, err, ErrConflict, "checked in twice")

	_, err = f.svc.CancelReservation(ctx, 10, res.ID)
	assert.ErrorIs(t, err, ErrConflict, "checked-in stays cannot be cancelled")

	departure := day("2025-11-04").Add(10 * time.Hour)
	co, updated, err := f.svc.CheckOut(ctx, CheckOutInput{OwnerID: 100, ReservationID: res.ID, Date: &departure})
	require.NoError(t, err)
	assert.Equal(t, day("2025-11-04"), co.CheckOutDate)
	assert.Equal(t, day("2025-11-04"), updated.CheckOut)
	assert.Equal(t, model.StatusCheckedOut, updated.Status)
	assert.Equal(t, "400.00", updated.TotalPrice.StringFixed(2), "total is never recomputed")

	stored, err := f.store.GetByID(ctx, res.ID)
	require.NoError(t, err)
	assert.Equal(t, day("2025-11-04"), stored.CheckOut)

	// the early departure frees the last night
	f.book(t, 11, 1, "2025-11-04", "2025-11-06")

	assert.Equal(t, []queue.EventType{
		queue.EventReservationCreated,
		queue.EventReservationCheckedIn,
		queue.EventReservationCheckedOut,
		queue.EventReservationCreated,
	}, f.pub.types())
}

func TestCheckOut_OverstayClampedToBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	res := f.book(t, 10, 1, "2025-11-01", "2025-11-05")
	f.book(t, 11, 1, "2025-11-05", "2025-11-07")

	_, err := f.svc.CheckIn(ctx, CheckInInput{OwnerID: 100, ReservationID: res.ID})
	require.NoError(t, err)

	late := day("2025-11-06")
	co, _, err := f.svc.CheckOut(ctx, CheckOutInput{OwnerID: 100, ReservationID: res.ID, Date: &late})
	require.NoError(t, err)
	assert.Equal(t, day("2025-11-05"), co.CheckOutDate)
}

func TestGetReservationAndInvoice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.CreateReservation(ctx, CreateReservationInput{
		CustomerID: 10, RoomID: 1,
		CheckIn: day("2025-11-01"), CheckOut: day("2025-11-05"),
		PaymentMethod: model.PaymentPrepaid, CouponCode: "AUTUMN10",
	})
	require.NoError(t, err)

	got, err := f.svc.GetReservation(ctx, 10, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)

	_, err = f.svc.GetReservation(ctx, 11, res.ID)
	assert.ErrorIs(t, err, ErrNotFound, "other customers do not see it")

	inv, err := f.svc.Invoice(ctx, 10, res.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, inv.Nights)
	assert.Equal(t, "100.00", inv.NightlyPrice.StringFixed(2))
	assert.Equal(t, "400.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "AUTUMN10", inv.CouponCode)
	assert.Equal(t, 10, inv.DiscountPercent)
	assert.Equal(t, "40.00", inv.Discount.StringFixed(2))
	assert.Equal(t, "360.00", inv.Total.StringFixed(2))
}

func TestListReservations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.book(t, 10, 1, "2025-11-01", "2025-11-05")
	b := f.book(t, 10, 2, "2025-12-01", "2025-12-03")
	f.book(t, 11, 1, "2025-11-10", "2025-11-12")

	mine, err := f.svc.ListCustomerReservations(ctx, 10)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, b.ID, mine[0].ID, "newest first")
	assert.Equal(t, a.ID, mine[1].ID)

	room, err := f.svc.ListRoomReservations(ctx, 100, 1)
	require.NoError(t, err)
	assert.Len(t, room, 2)

	_, err = f.svc.ListRoomReservations(ctx, 200, 1)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.ListRoomReservations(ctx, 100, 77)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpireUnpaid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.svc.now = func() time.Time { return testNow.Add(-2 * time.Hour) }
	stalePrepaid := f.book(t, 10, 1, "2025-11-01", "2025-11-03")
	confirmed := f.book(t, 10, 1, "2025-11-03", "2025-11-05")
	require.NoError(t, f.svc.ConfirmReservation(ctx, confirmed.ID))
	postpaid, err := f.svc.CreateReservation(ctx, CreateReservationInput{
		CustomerID: 11, RoomID: 2,
		CheckIn: day("2025-11-01"), CheckOut: day("2025-11-03"),
		PaymentMethod: model.PaymentPostpaid,
	})
	require.NoError(t, err)

	f.svc.now = func() time.Time { return testNow }
	fresh := f.book(t, 11, 1, "2025-11-10", "2025-11-12")

	n, err := f.svc.ExpireUnpaid(ctx, 30*time.Minute, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	status := func(id uint64) model.BookingStatus {
		r, err := f.store.GetByID(ctx, id)
		require.NoError(t, err)
		return r.Status
	}
	assert.Equal(t, model.StatusCancelled, status(stalePrepaid.ID))
	assert.Equal(t, model.StatusConfirmed, status(confirmed.ID))
	assert.Equal(t, model.StatusPending, status(postpaid.ID))
	assert.Equal(t, model.StatusPending, status(fresh.ID))

	last := f.pub.events[len(f.pub.events)-1]
	assert.Equal(t, queue.EventReservationCancelled, last.Type)
	assert.Equal(t, ReasonPaymentTimeout, last.Reason)
	assert.Equal(t, stalePrepaid.ID, last.ReservationID)

	// a second sweep finds nothing
	n, err = f.svc.ExpireUnpaid(ctx, 30*time.Minute, 100)
	require.NoError(t, err)
	assert.Zero(t, n)
}
