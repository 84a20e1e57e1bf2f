package repository

import (
    "context"
    "database/sql"
    "regexp"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/go-sql-driver/mysql"
    "github.com/shopspring/decimal"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/hotel-room-reservation/internal/model"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() {
        assert.NoError(t, mock.ExpectationsWereMet())
        _ = db.Close()
    })
    return db, mock
}

func d(s string) time.Time {
    t, err := time.Parse("2006-01-02", s)
    if err != nil {
        panic(err)
    }
    return t
}

var resCols = []string{
    "id", "customer_id", "room_id", "coupon_id", "check_in_date", "check_out_date", "nights",
    "total_price", "booking_status", "preferred_payment_method", "cancelled_at", "created_at", "updated_at",
}

func TestHasOverlap_HalfOpenQuery(t *testing.T) {
    db, mock := newMock(t)
    repo := NewReservationRepo(db)

    mock.ExpectQuery(regexp.QuoteMeta("booking_status <> 'CANCELLED'")).
        WithArgs(uint64(7), d("2025-11-05"), d("2025-11-01")).
        WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(int64(1)))

    overlap, err := repo.HasOverlap(context.Background(), 7, d("2025-11-01"), d("2025-11-05"))
    require.NoError(t, err)
    assert.True(t, overlap)
}

func TestCreate_SetsID(t *testing.T) {
    db, mock := newMock(t)
    repo := NewReservationRepo(db)
    now := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)
    coupon := uint64(3)

    res := &model.Reservation{
        CustomerID: 10, RoomID: 7, CouponID: &coupon,
        CheckIn: d("2025-11-01"), CheckOut: d("2025-11-05"), Nights: 4,
        TotalPrice: decimal.RequireFromString("360.00"),
        Status: model.StatusPending, PaymentMethod: model.PaymentPrepaid,
        CreatedAt: now, UpdatedAt: now,
    }
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO reservations")).
        WithArgs(uint64(10), uint64(7), sqlmock.AnyArg(), d("2025-11-01"), d("2025-11-05"), 4,
            sqlmock.AnyArg(), "PENDING", "PREPAID", now, now).
        WillReturnResult(sqlmock.NewResult(42, 1))

    require.NoError(t, repo.Create(context.Background(), res))
    assert.Equal(t, uint64(42), res.ID)
}

func TestGetByID(t *testing.T) {
    db, mock := newMock(t)
    repo := NewReservationRepo(db)
    created := time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)
    cancelled := created.Add(time.Hour)

    mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = ?")).
        WithArgs(uint64(5)).
        WillReturnRows(sqlmock.NewRows(resCols).AddRow(
            5, 10, 7, nil, d("2025-11-01"), d("2025-11-05"), 4,
            "400.00", "CANCELLED", "POSTPAID", cancelled, created, cancelled,
        ))

    res, err := repo.GetByID(context.Background(), 5)
    require.NoError(t, err)
    assert.Equal(t, model.StatusCancelled, res.Status)
    assert.Equal(t, model.PaymentPostpaid, res.PaymentMethod)
    assert.Nil(t, res.CouponID)
    require.NotNil(t, res.CancelledAt)
    assert.Equal(t, cancelled, *res.CancelledAt)
    assert.Equal(t, "400.00", res.TotalPrice.StringFixed(2))

    mock.ExpectQuery(regexp.QuoteMeta("FROM reservations WHERE id = ?")).
        WithArgs(uint64(6)).
        WillReturnRows(sqlmock.NewRows(resCols))
    _, err = repo.GetByID(context.Background(), 6)
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_CompareAndSet(t *testing.T) {
    now := time.Date(2025, 10, 21, 9, 0, 0, 0, time.UTC)
    res := &model.Reservation{ID: 5, Status: model.StatusCancelled, CancelledAt: &now, UpdatedAt: now}
    update := regexp.QuoteMeta("WHERE id = ? AND booking_status = ?")
    exists := regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM reservations WHERE id = ?)")

    t.Run("applied", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectExec(update).
            WithArgs("CANCELLED", sqlmock.AnyArg(), now, uint64(5), "PENDING").
            WillReturnResult(sqlmock.NewResult(0, 1))
        require.NoError(t, NewReservationRepo(db).UpdateStatus(context.Background(), res, model.StatusPending))
    })

    t.Run("lost race", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
        mock.ExpectQuery(exists).WithArgs(uint64(5)).
            WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(int64(1)))
        err := NewReservationRepo(db).UpdateStatus(context.Background(), res, model.StatusPending)
        assert.ErrorIs(t, err, ErrStatusChanged)
    })

    t.Run("missing row", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
        mock.ExpectQuery(exists).WithArgs(uint64(5)).
            WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(int64(0)))
        err := NewReservationRepo(db).UpdateStatus(context.Background(), res, model.StatusPending)
        assert.ErrorIs(t, err, ErrNotFound)
    })
}

func TestCreateCheckIn_Transaction(t *testing.T) {
    now := time.Date(2025, 11, 1, 14, 0, 0, 0, time.UTC)
    res := &model.Reservation{ID: 5, Status: model.StatusCheckedIn, UpdatedAt: now}
    email := "ada@example.com"
    ci := &model.CheckIn{ReservationID: 5, CustomerID: 10, RoomID: 7, Email: &email, CheckInDate: d("2025-11-01"), CreatedAt: now}

    t.Run("commits", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectBegin()
        mock.ExpectExec(regexp.QuoteMeta("INSERT INTO check_ins")).WillReturnResult(sqlmock.NewResult(9, 1))
        mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).
            WithArgs("CHECKED_IN", sqlmock.AnyArg(), now, uint64(5), "CONFIRMED").
            WillReturnResult(sqlmock.NewResult(0, 1))
        mock.ExpectCommit()

        require.NoError(t, NewReservationRepo(db).CreateCheckIn(context.Background(), ci, res, model.StatusConfirmed))
        assert.Equal(t, uint64(9), ci.ID)
    })

    t.Run("duplicate rolls back", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectBegin()
        mock.ExpectExec(regexp.QuoteMeta("INSERT INTO check_ins")).
            WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry '5' for key 'reservation_id'"})
        mock.ExpectRollback()

        err := NewReservationRepo(db).CreateCheckIn(context.Background(), ci, res, model.StatusConfirmed)
        assert.ErrorIs(t, err, ErrConflict)
    })

    t.Run("status moved rolls back", func(t *testing.T) {
        db, mock := newMock(t)
        mock.ExpectBegin()
        mock.ExpectExec(regexp.QuoteMeta("INSERT INTO check_ins")).WillReturnResult(sqlmock.NewResult(9, 1))
        mock.ExpectExec(regexp.QuoteMeta("UPDATE reservations")).WillReturnResult(sqlmock.NewResult(0, 0))
        mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
            WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(int64(1)))
        mock.ExpectRollback()

        err := NewReservationRepo(db).CreateCheckIn(context.Background(), ci, res, model.StatusConfirmed)
        assert.ErrorIs(t, err, ErrStatusChanged)
    })
}

func TestCreateCheckOut_WritesDepartureDate(t *testing.T) {
    db, mock := newMock(t)
    now := time.Date(2025, 11, 4, 10, 0, 0, 0, time.UTC)
    res := &model.Reservation{ID: 5, Status: model.StatusCheckedOut, CheckOut: d("2025-11-04"), UpdatedAt: now}
    co := &model.CheckOut{ReservationID: 5, CustomerID: 10, CheckOutDate: d("2025-11-04"), CreatedAt: now}

    mock.ExpectBegin()
    mock.ExpectExec(regexp.QuoteMeta("INSERT INTO check_outs")).
        WithArgs(uint64(5), uint64(10), d("2025-11-04"), now).
        WillReturnResult(sqlmock.NewResult(3, 1))
    mock.ExpectExec(regexp.QuoteMeta("SET booking_status = ?, check_out_date = ?")).
        WithArgs("CHECKED_OUT", d("2025-11-04"), now, uint64(5), "CHECKED_IN").
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectCommit()

    require.NoError(t, NewReservationRepo(db).CreateCheckOut(context.Background(), co, res, model.StatusCheckedIn))
    assert.Equal(t, uint64(3), co.ID)
}

func TestListStalePending(t *testing.T) {
    db, mock := newMock(t)
    cutoff := time.Date(2025, 10, 20, 8, 30, 0, 0, time.UTC)
    created := cutoff.Add(-time.Hour)

    mock.ExpectQuery(regexp.QuoteMeta("booking_status = 'PENDING' AND preferred_payment_method = ? AND created_at < ?")).
        WithArgs("PREPAID", cutoff, 50).
        WillReturnRows(sqlmock.NewRows(resCols).
            AddRow(1, 10, 7, int64(3), d("2025-11-01"), d("2025-11-05"), 4, "360.00", "PENDING", "PREPAID", nil, created, created))

    list, err := NewReservationRepo(db).ListStalePending(context.Background(), model.PaymentPrepaid, cutoff, 50)
    require.NoError(t, err)
    require.Len(t, list, 1)
    require.NotNil(t, list[0].CouponID)
    assert.Equal(t, uint64(3), *list[0].CouponID)
}

func TestCatalogRepos_NotFound(t *testing.T) {
    db, mock := newMock(t)

    mock.ExpectQuery(regexp.QuoteMeta("FROM rooms")).WithArgs(uint64(1)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "price_per_night"}))
    mock.ExpectQuery(regexp.QuoteMeta("FROM coupons WHERE code = ?")).WithArgs("AUTUMN10").
        WillReturnRows(sqlmock.NewRows([]string{"id", "code", "discount_percent", "starts_at", "ends_at", "active"}))
    mock.ExpectQuery(regexp.QuoteMeta("FROM customers")).WithArgs(uint64(2)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "full_name", "email", "phone"}))

    _, err := NewRoomRepo(db).GetByID(context.Background(), 1)
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = NewCouponRepo(db).GetByCode(context.Background(), " autumn10 ")
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = NewCustomerRepo(db).GetByID(context.Background(), 2)
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoomRepo_ScansDecimalPrice(t *testing.T) {
    db, mock := newMock(t)
    mock.ExpectQuery(regexp.QuoteMeta("FROM rooms")).WithArgs(uint64(1)).
        WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "price_per_night"}).
            AddRow(1, 100, "Double room", "129.90"))

    room, err := NewRoomRepo(db).GetByID(context.Background(), 1)
    require.NoError(t, err)
    assert.True(t, decimal.RequireFromString("129.90").Equal(room.PricePerNight))
    assert.Equal(t, uint64(100), room.OwnerID)
}
