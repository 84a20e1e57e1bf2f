package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/iliyamo/hotel-room-reservation/internal/model"
)

// CustomerRepo reads customer profiles maintained by the accounts service.
type CustomerRepo struct {
    db *sql.DB
}

func NewCustomerRepo(db *sql.DB) *CustomerRepo { return &CustomerRepo{db: db} }

// GetByID returns ErrNotFound when the customer does not exist.
func (r *CustomerRepo) GetByID(ctx context.Context, id uint64) (*model.Customer, error) {
    const q = `SELECT id, full_name, email, phone FROM customers WHERE id = ? LIMIT 1`
    var (
        c     model.Customer
        phone sql.NullString
    )
    err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.FullName, &c.Email, &phone)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrNotFound
    }
    if err != nil {
        return nil, err
    }
    if phone.Valid {
        p := phone.String
        c.Phone = &p
    }
    return &c, nil
}
