package model

import "time"

// CheckIn records a guest's arrival. There is at most one per
// reservation. Phone and Email are the contact details at arrival time and
// may differ from the customer's current profile.
type CheckIn struct {
	ID            uint64    // check_ins.id
	ReservationID uint64    // check_ins.reservation_id (unique)
	CustomerID    uint64    // check_ins.customer_id
	RoomID        uint64    // check_ins.room_id
	Phone         *string   // check_ins.phone
	Email         *string   // check_ins.email
	CheckInDate   time.Time // check_ins.check_in_date
	CreatedAt     time.Time // check_ins.created_at
}

// CheckOut records a guest's departure. There is at most one per
// reservation.
type CheckOut struct {
	ID            uint64    // check_outs.id
	ReservationID uint64    // check_outs.reservation_id (unique)
	CustomerID    uint64    // check_outs.customer_id
	CheckOutDate  time.Time // check_outs.check_out_date
	CreatedAt     time.Time // check_outs.created_at
}
