package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/hotel-room-reservation/internal/model"
)

// RoomRepo reads rooms.  The table is owned by the catalog service; this
// module never writes to it.
type RoomRepo struct {
    db *sql.DB
}

func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// GetByID returns ErrNotFound when the room does not exist.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
    const q = `SELECT id, owner_id, title, price_per_night FROM rooms WHERE id = ? LIMIT 1`
    var room model.Room
    err := r.db.QueryRowContext(ctx, q, id).Scan(&room.ID, &room.OwnerID, &room.Title, &room.PricePerNight)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    return &room, nil
}
