package service

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/hotel-room-reservation/internal/config"
	"github.com/iliyamo/hotel-room-reservation/internal/lock"
	"github.com/iliyamo/hotel-room-reservation/internal/model"
	"github.com/iliyamo/hotel-room-reservation/internal/queue"
	"github.com/iliyamo/hotel-room-reservation/internal/repository"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// memStore is an in-memory ReservationStore with the same compare-and-set
// semantics as the MySQL repository.
type memStore struct {
	mu        sync.Mutex
	nextID    uint64
	rows      map[uint64]model.Reservation
	checkIns  map[uint64]model.CheckIn
	checkOuts map[uint64]model.CheckOut

	createErr  error
	createHook func()
}

func newMemStore() *memStore {
	return &memStore{
		rows:      map[uint64]model.Reservation{},
		checkIns:  map[uint64]model.CheckIn{},
		checkOuts: map[uint64]model.CheckOut{},
	}
}

func (m *memStore) HasOverlap(_ context.Context, roomID uint64, in, out time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Blocks(roomID, in, out) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) Create(_ context.Context, res *model.Reservation) error {
	if m.createHook != nil {
		m.createHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.nextID++
	res.ID = m.nextID
	m.rows[res.ID] = *res
	return nil
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*model.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &r, nil
}

func (m *memStore) list(keep func(model.Reservation) bool) []model.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Reservation, 0)
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *memStore) ListByCustomer(_ context.Context, customerID uint64) ([]model.Reservation, error) {
	return m.list(func(r model.Reservation) bool { return r.CustomerID == customerID }), nil
}

func (m *memStore) ListByRoom(_ context.Context, roomID uint64) ([]model.Reservation, error) {
	return m.list(func(r model.Reservation) bool { return r.RoomID == roomID }), nil
}

func (m *memStore) ListStalePending(_ context.Context, method model.PaymentMethod, before time.Time, limit int) ([]model.Reservation, error) {
	out := m.list(func(r model.Reservation) bool {
		return r.Status == model.StatusPending && r.PaymentMethod == method && r.CreatedAt.Before(before)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) casLocked(res *model.Reservation, from model.BookingStatus) error {
	cur, ok := m.rows[res.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if cur.Status != from {
		return repository.ErrStatusChanged
	}
	cur.Status = res.Status
	cur.UpdatedAt = res.UpdatedAt
	if cur.CancelledAt == nil {
		cur.CancelledAt = res.CancelledAt
	}
	cur.CheckOut = res.CheckOut
	m.rows[res.ID] = cur
	return nil
}

func (m *memStore) UpdateStatus(_ context.Context, res *model.Reservation, from model.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.casLocked(res, from)
}

func (m *memStore) CreateCheckIn(_ context.Context, ci *model.CheckIn, res *model.Reservation, from model.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.checkIns[res.ID]; dup {
		return repository.ErrConflict
	}
	if err := m.casLocked(res, from); err != nil {
		return err
	}
	ci.ID = uint64(len(m.checkIns) + 1)
	m.checkIns[res.ID] = *ci
	return nil
}

func (m *memStore) CreateCheckOut(_ context.Context, co *model.CheckOut, res *model.Reservation, from model.BookingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.checkOuts[res.ID]; dup {
		return repository.ErrConflict
	}
	if err := m.casLocked(res, from); err != nil {
		return err
	}
	co.ID = uint64(len(m.checkOuts) + 1)
	m.checkOuts[res.ID] = *co
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memCatalog struct {
	rooms     map[uint64]*model.Room
	coupons   map[string]*model.Coupon
	customers map[uint64]*model.Customer
}

type roomFinder struct{ *memCatalog }

func (f roomFinder) GetByID(_ context.Context, id uint64) (*model.Room, error) {
	if r, ok := f.rooms[id]; ok {
		return r, nil
	}
	return nil, repository.ErrNotFound
}

type couponFinder struct{ *memCatalog }

func (f couponFinder) GetByCode(_ context.Context, code string) (*model.Coupon, error) {
	if c, ok := f.coupons[code]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

func (f couponFinder) GetByID(_ context.Context, id uint64) (*model.Coupon, error) {
	for _, c := range f.coupons {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

type customerFinder struct{ *memCatalog }

func (f customerFinder) GetByID(_ context.Context, id uint64) (*model.Customer, error) {
	if c, ok := f.customers[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.ReservationEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.ReservationEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// busyLocker never grants a lease. err defaults to lock.ErrNotAcquired.
type busyLocker struct {
	calls int
	err   error
}

func (b *busyLocker) Acquire(context.Context, uint64) (lock.Lease, error) {
	b.calls++
	if b.err != nil {
		return nil, b.err
	}
	return nil, lock.ErrNotAcquired
}

var testNow = time.Date(2025, 10, 20, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc   *ReservationService
	store *memStore
	cat   *memCatalog
	pub   *recordingPublisher
	mr    *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	locker := lock.NewRoomLocker(rdb, config.LockConfig{
		Prefix:        "lock",
		TTL:           15 * time.Second,
		WaitTimeout:   5 * time.Second,
		RetryInterval: 5 * time.Millisecond,
	}, zap.NewNop())
	return newFixtureWithLocker(t, locker, mr)
}

func newFixtureWithLocker(t *testing.T, locker lock.Locker, mr *miniredis.Miniredis) *fixture {
	t.Helper()
	phone := "+49-30-1234"
	cat := &memCatalog{
		rooms: map[uint64]*model.Room{
			1: {ID: 1, OwnerID: 100, Title: "Double room", PricePerNight: decimal.RequireFromString("100.00")},
			2: {ID: 2, OwnerID: 200, Title: "Suite", PricePerNight: decimal.RequireFromString("249.90")},
		},
		coupons: map[string]*model.Coupon{
			"AUTUMN10": {ID: 7, Code: "AUTUMN10", DiscountPercent: 10, Active: true, StartsAt: day("2025-09-01"), EndsAt: day("2025-12-31")},
			"SUMMER20": {ID: 8, Code: "SUMMER20", DiscountPercent: 20, Active: true, StartsAt: day("2025-06-01"), EndsAt: day("2025-08-31")},
		},
		customers: map[uint64]*model.Customer{
			10: {ID: 10, FullName: "Ada Guest", Email: "ada@example.com", Phone: &phone},
			11: {ID: 11, FullName: "Bo Guest", Email: "bo@example.com"},
		},
	}
	store := newMemStore()
	pub := &recordingPublisher{}
	svc := NewReservationService(store, roomFinder{cat}, couponFinder{cat}, customerFinder{cat}, locker, pub, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return &fixture{svc: svc, store: store, cat: cat, pub: pub, mr: mr}
}

func (f *fixture) book(t *testing.T, customerID, roomID uint64, in, out string) *model.Reservation {
	t.Helper()
	res, err := f.svc.CreateReservation(context.Background(), CreateReservationInput{
		CustomerID:    customerID,
		RoomID:        roomID,
		CheckIn:       day(in),
		CheckOut:      day(out),
		PaymentMethod: model.PaymentPrepaid,
	})
	if err != nil {
		t.Fatalf("book %s..%s: %v", in, out, err)
	}
	return res
}
