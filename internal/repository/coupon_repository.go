package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"

    "github.com/iliyamo/hotel-room-reservation/internal/model"
)

// CouponRepo reads discount coupons.  Codes are matched case-insensitively.
type CouponRepo struct {
    db *sql.DB
}

func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{db: db} }

const couponColumns = `id, code, discount_percent, starts_at, ends_at, active`

func scanCoupon(s rowScanner) (*model.Coupon, error) {
    var c model.Coupon
    err := s.Scan(&c.ID, &c.Code, &c.DiscountPercent, &c.StartsAt, &c.EndsAt, &c.Active)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &c, nil
}

// GetByCode returns ErrNotFound for an unknown code.
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (*model.Coupon, error) {
    q := `SELECT ` + couponColumns + ` FROM coupons WHERE code = ? LIMIT 1`
    return scanCoupon(r.db.QueryRowContext(ctx, q, strings.ToUpper(strings.TrimSpace(code))))
}

// GetByID returns ErrNotFound for an unknown id.
func (r *CouponRepo) GetByID(ctx context.Context, id uint64) (*model.Coupon, error) {
    q := `SELECT ` + couponColumns + ` FROM coupons WHERE id = ? LIMIT 1`
    return scanCoupon(r.db.QueryRowContext(ctx, q, id))
}
