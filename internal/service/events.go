package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
)

const dateLayout = "2006-01-02"

// notify publishes a lifecycle event for res. It runs after the state
// change is committed and never fails the caller: a lost notification is
// logged, the reservation stands.
func (s *ReservationService) notify(ctx context.Context, typ queue.EventType, res *model.Reservation, reason string) {
	ev := s.buildEvent(ctx, typ, res, reason)

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pctx, ev); err != nil {
		s.logger.Warn("reservation event not published",
			zap.String("type", string(typ)),
			zap.Uint64("reservation_id", res.ID),
			zap.Error(err),
		)
	}
}

func (s *ReservationService) buildEvent(ctx context.Context, typ queue.EventType, res *model.Reservation, reason string) queue.ReservationEvent {
	ev := queue.ReservationEvent{
		ID:            uuid.NewString(),
		Type:          typ,
		ReservationID: res.ID,
		CustomerID:    res.CustomerID,
		RoomID:        res.RoomID,
		CheckIn:       res.CheckIn.Format(dateLayout),
		CheckOut:      res.CheckOut.Format(dateLayout),
		Nights:        res.Nights,
		TotalPrice:    res.TotalPrice.StringFixed(2),
		Status:        string(res.Status),
		Reason:        reason,
		OccurredAt:    s.now().Format(time.RFC3339),
	}
	if cust := s.lookupCustomer(ctx, res.CustomerID); cust != nil {
		ev.CustomerName = cust.FullName
		ev.CustomerEmail = cust.Email
	}
	return ev
}
