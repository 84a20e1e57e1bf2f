package service

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/hotel-room-reservation/internal/model"
)

// OverlapFinder answers whether any non-cancelled reservation of a room
// intersects [checkIn, checkOut).
type OverlapFinder interface {
	HasOverlap(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error)
}

// AvailabilityChecker decides whether a room is free for a date range.
type AvailabilityChecker struct {
	store OverlapFinder
}

func NewAvailabilityChecker(store OverlapFinder) *AvailabilityChecker {
	return &AvailabilityChecker{store: store}
}

// IsAvailable reports whether no non-cancelled reservation of roomID
// overlaps [checkIn, checkOut). Dates are truncated to calendar days. An
// empty or inverted range is rejected with ErrInvalidDateRange rather than
// reported as available.
func (a *AvailabilityChecker) IsAvailable(ctx context.Context, roomID uint64, checkIn, checkOut time.Time) (bool, error) {
	checkIn, checkOut = model.Day(checkIn), model.Day(checkOut)
	if !checkIn.Before(checkOut) {
		return false, ErrInvalidDateRange
	}
	overlap, err := a.store.HasOverlap(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return false, fmt.Errorf("check availability of room %d: %w", roomID, err)
	}
	return !overlap, nil
}
