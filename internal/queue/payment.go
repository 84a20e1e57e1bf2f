package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "strings"

    "go.uber.org/zap"
)

// PaymentConfirmer is the part of the reservation service the payment
// consumer drives.
type PaymentConfirmer interface {
    ConfirmReservation(ctx context.Context, reservationID uint64) error
}

// PaymentHandler turns "paid" payment events into reservation
// confirmations.  Other payment statuses are acknowledged and ignored.
type PaymentHandler struct {
    confirmer PaymentConfirmer
    // ignorable reports errors that mean the signal is stale (already
    // confirmed, cancelled, unknown reservation); those are logged and
    // acknowledged.
    ignorable func(error) bool
    logger    *zap.Logger
}

// NewPaymentHandler returns a PaymentHandler.  ignorable may be nil.
func NewPaymentHandler(confirmer PaymentConfirmer, ignorable func(error) bool, logger *zap.Logger) *PaymentHandler {
    if ignorable == nil {
        ignorable = func(error) bool { return false }
    }
    return &PaymentHandler{confirmer: confirmer, ignorable: ignorable, logger: logger}
}

var errMissingReservation = errors.New("payment event without reservation_id")

// Handle implements Handler.
func (h *PaymentHandler) Handle(ctx context.Context, body []byte) error {
    var ev PaymentEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if ev.ReservationID == 0 {
        return errMissingReservation
    }
    if !strings.EqualFold(ev.Status, "paid") {
        h.logger.Debug("payment event ignored", zap.Uint64("reservation_id", ev.ReservationID), zap.String("status", ev.Status))
        return nil
    }
    if err := h.confirmer.ConfirmReservation(ctx, ev.ReservationID); err != nil {
        if h.ignorable(err) {
            h.logger.Info("payment signal not applied",
                zap.Uint64("reservation_id", ev.ReservationID),
                zap.String("transaction_id", ev.TransactionID),
                zap.Error(err),
            )
            return nil
        }
        return fmt.Errorf("confirm reservation %d: %w", ev.ReservationID, err)
    }
    return nil
}
