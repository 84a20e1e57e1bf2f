// Package queue defines message payloads exchanged over the message broker
// and the RabbitMQ plumbing that publishes and consumes them.
package queue

// EventType names a reservation lifecycle event.
type EventType string

const (
    EventReservationCreated    EventType = "reservation.created"
    EventReservationConfirmed  EventType = "reservation.confirmed"
    EventReservationCancelled  EventType = "reservation.cancelled"
    EventReservationCheckedIn  EventType = "reservation.checked_in"
    EventReservationCheckedOut EventType = "reservation.checked_out"
)

// ReservationEvent is published after a reservation changes state.  It
// carries enough information for the notification consumer to log and
// mail without querying the primary database.  Delivery is best effort;
// consumers must not rely on ordering between events.
type ReservationEvent struct {
    ID            string    `json:"id"`
    Type          EventType `json:"type"`
    ReservationID uint64    `json:"reservation_id"`
    CustomerID    uint64    `json:"customer_id"`
    CustomerName  string    `json:"customer_name,omitempty"`
    CustomerEmail string    `json:"customer_email,omitempty"`
    RoomID        uint64    `json:"room_id"`
    CheckIn       string    `json:"check_in"`
    CheckOut      string    `json:"check_out"`
    Nights        int       `json:"nights"`
    TotalPrice    string    `json:"total_price"`
    Status        string    `json:"status"`
    Reason        string    `json:"reason,omitempty"`
    OccurredAt    string    `json:"occurred_at"`
}

// PaymentEvent is consumed from the payment service.  Only Status "paid"
// affects reservations.
type PaymentEvent struct {
    ReservationID uint64 `json:"reservation_id"`
    Status        string `json:"status"`
    TransactionID string `json:"transaction_id,omitempty"`
}

const (
    ReservationEventsQueue = "reservation.events"
    PaymentEventsQueue     = "payment.events"
)
