package repository

import (
    "context"
    "database/sql"
    "errors"
    "fmt"
    "time"

    "github.com/go-sql-driver/mysql"

    "github.com/iliyamo/hotel-room-reservation/internal/model"
)

// ReservationRepo reads and writes the reservations table together with
// the check_ins and check_outs rows that accompany front-desk transitions.
// Dates are DATE columns read back as UTC midnight (the DSN sets
// parseTime=true&loc=UTC).  Rows are never deleted.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for health checks.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservationColumns = `id, customer_id, room_id, coupon_id, check_in_date, check_out_date, nights,
    total_price, booking_status, preferred_payment_method, cancelled_at, created_at, updated_at`

type rowScanner interface {
    Scan(dest ...any) error
}

func scanReservation(s rowScanner) (*model.Reservation, error) {
    var (
        res       model.Reservation
        couponID  sql.NullInt64
        cancelled sql.NullTime
        status    string
        method    string
    )
    if err := s.Scan(
        &res.ID, &res.CustomerID, &res.RoomID, &couponID, &res.CheckIn, &res.CheckOut, &res.Nights,
        &res.TotalPrice, &status, &method, &cancelled, &res.CreatedAt, &res.UpdatedAt,
    ); err != nil {
        return nil, err
    }
    res.Status = model.BookingStatus(status)
    res.PaymentMethod = model.PaymentMethod(method)
    if couponID.Valid {
        id := uint64(couponID.Int64)
        res.CouponID = &id
    }
    if cancelled.Valid {
        at := cancelled.Time
        res.CancelledAt = &at
    }
    return &res, nil
}

// HasOverlap reports whether a non-cancelled reservation of roomID
// intersects the half-open range [checkIn, checkOut).  Back-to-back stays
// do not intersect.
func (r *ReservationRepo) HasOverlap(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
    const q = `SELECT EXISTS(
                   SELECT 1 FROM reservations
                   WHERE room_id = ?
                     AND booking_status <> 'CANCELLED'
                     AND check_in_date < ?
                     AND check_out_date > ?)`
    var exists bool
    if err := r.db.QueryRowContext(ctx, q, roomID, checkOut, checkIn).Scan(&exists); err != nil {
        return false, err
    }
    return exists, nil
}

// Create inserts res and populates its generated ID.
func (r *ReservationRepo) Create(ctx context.Context, res *model.Reservation) error {
    const q = `INSERT INTO reservations
                   (customer_id, room_id, coupon_id, check_in_date, check_out_date, nights,
                    total_price, booking_status, preferred_payment_method, created_at, updated_at)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := r.db.ExecContext(ctx, q,
        res.CustomerID, res.RoomID, res.CouponID, res.CheckIn, res.CheckOut, res.Nights,
        res.TotalPrice, string(res.Status), string(res.PaymentMethod), res.CreatedAt, res.UpdatedAt,
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    res.ID = uint64(id)
    return nil
}

// GetByID returns ErrNotFound when no reservation has the given id.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
    res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    return res, err
}

// ListByCustomer returns a customer's reservations, newest first.
func (r *ReservationRepo) ListByCustomer(ctx context.Context, customerID uint64) ([]model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations WHERE customer_id = ? ORDER BY created_at DESC, id DESC`
    return r.list(ctx, q, customerID)
}

// ListByRoom returns a room's reservations ordered by check-in date.
func (r *ReservationRepo) ListByRoom(ctx context.Context, roomID uint64) ([]model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations WHERE room_id = ? ORDER BY check_in_date, id`
    return r.list(ctx, q, roomID)
}

// ListStalePending returns up to limit PENDING reservations with the given
// payment method created before createdBefore, oldest first.
func (r *ReservationRepo) ListStalePending(ctx context.Context, method model.PaymentMethod, createdBefore time.Time, limit int) ([]model.Reservation, error) {
    q := `SELECT ` + reservationColumns + ` FROM reservations
          WHERE booking_status = 'PENDING' AND preferred_payment_method = ? AND created_at < ?
          ORDER BY created_at, id
          LIMIT ?`
    return r.list(ctx, q, string(method), createdBefore, limit)
}

func (r *ReservationRepo) list(ctx context.Context, q string, args ...any) ([]model.Reservation, error) {
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        res, err := scanReservation(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}

type execer interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UpdateStatus writes the status, cancelled_at and updated_at of res when
// the stored status still equals from.  cancelled_at is only filled when it
// is still NULL.  It returns ErrStatusChanged when another writer moved the
// row first and ErrNotFound when the row does not exist.
func (r *ReservationRepo) UpdateStatus(ctx context.Context, res *model.Reservation, from model.BookingStatus) error {
    return updateStatus(ctx, r.db, res, from)
}

func updateStatus(ctx context.Context, ex execer, res *model.Reservation, from model.BookingStatus) error {
    const q = `UPDATE reservations
               SET booking_status = ?, cancelled_at = COALESCE(cancelled_at, ?), updated_at = ?
               WHERE id = ? AND booking_status = ?`
    result, err := ex.ExecContext(ctx, q, string(res.Status), res.CancelledAt, res.UpdatedAt, res.ID, string(from))
    if err != nil {
        return err
    }
    return casResult(ctx, ex, result, res.ID)
}

// casResult turns a zero-row compare-and-set into ErrStatusChanged or
// ErrNotFound.
func casResult(ctx context.Context, ex execer, result sql.Result, id uint64) error {
    n, err := result.RowsAffected()
    if err != nil {
        return err
    }
    if n > 0 {
        return nil
    }
    var exists bool
    if err := ex.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM reservations WHERE id = ?)`, id).Scan(&exists); err != nil {
        return err
    }
    if !exists {
        return ErrNotFound
    }
    return ErrStatusChanged
}

// CreateCheckIn inserts the check-in record and moves the reservation in
// one transaction.  A second check-in for the same reservation violates the
// unique key and returns ErrConflict.
func (r *ReservationRepo) CreateCheckIn(ctx context.Context, ci *model.CheckIn, res *model.Reservation, from model.BookingStatus) error {
    return r.inTx(ctx, func(tx *sql.Tx) error {
        const q = `INSERT INTO check_ins
                       (reservation_id, customer_id, room_id, phone, email, check_in_date, created_at)
                   VALUES (?, ?, ?, ?, ?, ?, ?)`
        result, err := tx.ExecContext(ctx, q,
            ci.ReservationID, ci.CustomerID, ci.RoomID, ci.Phone, ci.Email, ci.CheckInDate, ci.CreatedAt)
        if err != nil {
            return translateInsert(err)
        }
        id, err := result.LastInsertId()
        if err != nil {
            return err
        }
        ci.ID = uint64(id)
        return updateStatus(ctx, tx, res, from)
    })
}

// CreateCheckOut inserts the check-out record and moves the reservation,
// including its check-out date, in one transaction.
func (r *ReservationRepo) CreateCheckOut(ctx context.Context, co *model.CheckOut, res *model.Reservation, from model.BookingStatus) error {
    return r.inTx(ctx, func(tx *sql.Tx) error {
        const ins = `INSERT INTO check_outs (reservation_id, customer_id, check_out_date, created_at)
                     VALUES (?, ?, ?, ?)`
        result, err := tx.ExecContext(ctx, ins, co.ReservationID, co.CustomerID, co.CheckOutDate, co.CreatedAt)
        if err != nil {
            return translateInsert(err)
        }
        id, err := result.LastInsertId()
        if err != nil {
            return err
        }
        co.ID = uint64(id)

        const upd = `UPDATE reservations
                     SET booking_status = ?, check_out_date = ?, updated_at = ?
                     WHERE id = ? AND booking_status = ?`
        result, err = tx.ExecContext(ctx, upd, string(res.Status), res.CheckOut, res.UpdatedAt, res.ID, string(from))
        if err != nil {
            return err
        }
        return casResult(ctx, tx, result, res.ID)
    })
}

// inTx runs fn in a transaction, committing only when fn succeeds.
func (r *ReservationRepo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return fmt.Errorf("begin tx: %w", err)
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    if err := fn(tx); err != nil {
        return err
    }
    if err := tx.Commit(); err != nil {
        return fmt.Errorf("commit: %w", err)
    }
    committed = true
    return nil
}

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func translateInsert(err error) error {
    var me *mysql.MySQLError
    if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
        return ErrConflict
    }
    return err
}
