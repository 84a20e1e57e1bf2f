package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Room is the read-only view of a bookable room. The catalog service owns
// the row; this module only reads the nightly price and the owner used for
// front-desk authorization.
type Room struct {
	ID            uint64          // rooms.id
	OwnerID       uint64          // rooms.owner_id
	Title         string          // rooms.title
	PricePerNight decimal.Decimal // rooms.price_per_night
}

// Coupon is a read-only discount code.
//
// Fields:
//
//	Code            – unique code typed by the customer.
//	DiscountPercent – whole percent in [0, 100].
//	StartsAt/EndsAt – inclusive validity window.
//	Active          – kill switch independent of the window.
type Coupon struct {
	ID              uint64
	Code            string
	DiscountPercent int
	StartsAt        time.Time
	EndsAt          time.Time
	Active          bool
}

// IsValid reports whether the coupon may be applied at now.
func (c *Coupon) IsValid(now time.Time) bool {
	return c.Active && !now.Before(c.StartsAt) && !now.After(c.EndsAt)
}

// Customer is the read-only identity and contact snapshot of a guest.
type Customer struct {
	ID       uint64  // customers.id
	FullName string  // customers.full_name
	Email    string  // customers.email
	Phone    *string // customers.phone
}
