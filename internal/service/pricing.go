package service

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Quote is the price breakdown of a stay.
type Quote struct {
	Nights          int
	NightlyPrice    decimal.Decimal
	Subtotal        decimal.Decimal // nightly price × nights
	DiscountPercent int
	Discount        decimal.Decimal
	Total           decimal.Decimal
}

// Price computes nights and total for a stay. coupon may be nil; when
// given it must be valid at now. Totals are exact decimals rounded to
// cents.
func Price(room *model.Room, checkIn, checkOut time.Time, coupon *model.Coupon, now time.Time) (Quote, error) {
	nights := model.Nights(checkIn, checkOut)
	if nights <= 0 {
		return Quote{}, ErrInvalidDateRange
	}

	percent := 0
	if coupon != nil {
		if !coupon.IsValid(now) || coupon.DiscountPercent < 0 || coupon.DiscountPercent > 100 {
			return Quote{}, ErrCouponInvalid
		}
		percent = coupon.DiscountPercent
	}

	subtotal := room.PricePerNight.Mul(decimal.NewFromInt(int64(nights)))
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(percent)).Div(hundred))
	total := subtotal.Mul(factor).Round(2)

	return Quote{
		Nights:          nights,
		NightlyPrice:    room.PricePerNight,
		Subtotal:        subtotal.Round(2),
		DiscountPercent: percent,
		Discount:        subtotal.Sub(total).Round(2),
		Total:           total,
	}, nil
}
