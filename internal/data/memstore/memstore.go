// Package memstore is an in-memory implementation of the repository
// interfaces for tests and local runs. Transactions are optimistic: reads
// record the version of every key they touch and commit fails when any of
// those keys moved in the meantime, after which the transactor retries.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"walk-booking/internal/data/entity"
	"walk-booking/internal/data/repository"
	"walk-booking/pkg/apperr"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errConflict = errors.New("memstore: concurrent modification")

type Store struct {
	mu          sync.RWMutex
	users       map[string]entity.User
	bookings    map[uuid.UUID]entity.Booking
	activeSlots map[string]uuid.UUID
	events      map[string]entity.PaymentEvent
	versions    map[string]uint64

	maxRetries int
	log        *zap.Logger
}

func New(maxRetries int, log *zap.Logger) *Store {
	return &Store{
		users:       make(map[string]entity.User),
		bookings:    make(map[uuid.UUID]entity.Booking),
		activeSlots: make(map[string]uuid.UUID),
		events:      make(map[string]entity.PaymentEvent),
		versions:    make(map[string]uint64),
		maxRetries:  maxRetries,
		log:         log.With(zap.String("repository", "memstore")),
	}
}

// Repository returns repositories whose every call is its own transaction,
// plus the Transactor for multi-step work.
func (s *Store) Repository() *repository.Repository {
	repo := bind(s.autocommit)
	repo.Tx = s
	return repo
}

func (s *Store) WithinTx(ctx context.Context, fn func(repo *repository.Repository) error) error {
	var lastErr error
	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		t := s.begin()
		if err := fn(bind(t.run)); err != nil {
			return err
		}
		err := t.commit()
		if err == nil {
			return nil
		}
		lastErr = err
		s.log.Debug("Transaction conflict, retrying", zap.Int("attempt", attempt+1))
	}

	s.log.Warn("Transaction retries exhausted", zap.Int("max_retries", s.maxRetries))
	return apperr.Wrap(apperr.KindTransactionAborted, apperr.ErrTransactionAborted.Message, lastErr)
}

func (s *Store) autocommit(fn func(t *txn) error) error {
	for attempt := 0; ; attempt++ {
		t := s.begin()
		if err := fn(t); err != nil {
			return err
		}
		err := t.commit()
		if err == nil {
			return nil
		}
		if attempt >= s.maxRetries {
			return apperr.Wrap(apperr.KindTransactionAborted, apperr.ErrTransactionAborted.Message, err)
		}
	}
}

func bind(run func(fn func(t *txn) error) error) *repository.Repository {
	return &repository.Repository{
		User:         &userRepo{run: run},
		Booking:      &bookingRepo{run: run},
		PaymentEvent: &eventRepo{run: run},
	}
}

func userKey(id string) string       { return "user:" + id }
func bookingKey(id uuid.UUID) string { return "booking:" + id.String() }
func slotKey(key string) string      { return "slot:" + key }
func eventKey(id string) string      { return "event:" + id }

// txn buffers writes until commit. A nil pointer in a write map marks a
// deletion; only slot ownership is ever deleted.
type txn struct {
	s        *Store
	reads    map[string]uint64
	users    map[string]*entity.User
	bookings map[uuid.UUID]*entity.Booking
	slots    map[string]*uuid.UUID
	events   map[string]*entity.PaymentEvent
}

func (s *Store) begin() *txn {
	return &txn{
		s:        s,
		reads:    make(map[string]uint64),
		users:    make(map[string]*entity.User),
		bookings: make(map[uuid.UUID]*entity.Booking),
		slots:    make(map[string]*uuid.UUID),
		events:   make(map[string]*entity.PaymentEvent),
	}
}

func (t *txn) run(fn func(t *txn) error) error {
	return fn(t)
}

// observe records the first-seen version of key. Callers hold s.mu.
func (t *txn) observe(key string) {
	if _, ok := t.reads[key]; !ok {
		t.reads[key] = t.s.versions[key]
	}
}

func (t *txn) commit() error {
	s := t.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, version := range t.reads {
		if s.versions[key] != version {
			return errConflict
		}
	}

	for id, u := range t.users {
		s.users[id] = *u
		s.versions[userKey(id)]++
	}
	for id, b := range t.bookings {
		s.bookings[id] = *b
		s.versions[bookingKey(id)]++
	}
	for key, owner := range t.slots {
		if owner == nil {
			delete(s.activeSlots, key)
		} else {
			s.activeSlots[key] = *owner
		}
		s.versions[slotKey(key)]++
	}
	for id, e := range t.events {
		s.events[id] = *e
		s.versions[eventKey(id)]++
	}
	return nil
}

func (t *txn) getUser(id string) (*entity.User, bool) {
	if u, ok := t.users[id]; ok {
		cp := *u
		return &cp, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	t.observe(userKey(id))
	u, ok := t.s.users[id]
	return &u, ok
}

func (t *txn) getBooking(id uuid.UUID) (*entity.Booking, bool) {
	if b, ok := t.bookings[id]; ok {
		cp := *b
		return &cp, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	t.observe(bookingKey(id))
	b, ok := t.s.bookings[id]
	return &b, ok
}

func (t *txn) slotOwner(key string) (uuid.UUID, bool) {
	if owner, ok := t.slots[key]; ok {
		if owner == nil {
			return uuid.Nil, false
		}
		return *owner, true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	t.observe(slotKey(key))
	owner, ok := t.s.activeSlots[key]
	return owner, ok
}

// allBookings merges committed rows with this transaction's writes. Range
// reads are not part of the validated read set.
func (t *txn) allBookings() []entity.Booking {
	t.s.mu.RLock()
	merged := make(map[uuid.UUID]entity.Booking, len(t.s.bookings)+len(t.bookings))
	for id, b := range t.s.bookings {
		merged[id] = b
	}
	t.s.mu.RUnlock()

	for id, b := range t.bookings {
		merged[id] = *b
	}
	out := make([]entity.Booking, 0, len(merged))
	for _, b := range merged {
		out = append(out, b)
	}
	return out
}

func (t *txn) allUsers() []entity.User {
	t.s.mu.RLock()
	merged := make(map[string]entity.User, len(t.s.users)+len(t.users))
	for id, u := range t.s.users {
		merged[id] = u
	}
	t.s.mu.RUnlock()

	for id, u := range t.users {
		merged[id] = *u
	}
	out := make([]entity.User, 0, len(merged))
	for _, u := range merged {
		out = append(out, u)
	}
	return out
}

type userRepo struct {
	run func(fn func(t *txn) error) error
}

func (r *userRepo) Create(_ context.Context, user *entity.User) error {
	return r.run(func(t *txn) error {
		if _, ok := t.getUser(user.ID); ok {
			return repository.ErrUserExists
		}
		cp := *user
		t.users[user.ID] = &cp
		return nil
	})
}

func (r *userRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	var found *entity.User
	err := r.run(func(t *txn) error {
		if u, ok := t.getUser(id); ok {
			found = u
		}
		return nil
	})
	return found, err
}

func (r *userRepo) FindAll(_ context.Context, limit, offset int) ([]*entity.User, error) {
	var users []*entity.User
	err := r.run(func(t *txn) error {
		all := t.allUsers()
		sort.Slice(all, func(i, j int) bool {
			if all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].ID < all[j].ID
			}
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		})
		for _, u := range page(all, limit, offset) {
			users = append(users, &u)
		}
		return nil
	})
	return users, err
}

func (r *userRepo) CountAll(_ context.Context) (int64, error) {
	var count int64
	err := r.run(func(t *txn) error {
		count = int64(len(t.allUsers()))
		return nil
	})
	return count, err
}

func (r *userRepo) Update(_ context.Context, user *entity.User) error {
	return r.run(func(t *txn) error {
		stored, ok := t.getUser(user.ID)
		if !ok {
			return apperr.ErrUserNotFound
		}
		cp := *user
		cp.Role = stored.Role
		cp.CreatedAt = stored.CreatedAt
		t.users[user.ID] = &cp
		return nil
	})
}

type bookingRepo struct {
	run func(fn func(t *txn) error) error
}

func (r *bookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	return r.run(func(t *txn) error {
		if booking.IsActive() {
			if _, taken := t.slotOwner(booking.SlotKey); taken {
				return apperr.ErrSlotConflict
			}
			id := booking.ID
			t.slots[booking.SlotKey] = &id
		}
		cp := *booking
		t.bookings[booking.ID] = &cp
		return nil
	})
}

func (r *bookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	var found *entity.Booking
	err := r.run(func(t *txn) error {
		if b, ok := t.getBooking(id); ok {
			found = b
		}
		return nil
	})
	return found, err
}

func (r *bookingRepo) FindActiveBySlot(_ context.Context, key string) (*entity.Booking, error) {
	var found *entity.Booking
	err := r.run(func(t *txn) error {
		owner, ok := t.slotOwner(key)
		if !ok {
			return nil
		}
		if b, ok := t.getBooking(owner); ok {
			found = b
		}
		return nil
	})
	return found, err
}

func (r *bookingRepo) MarkCancelled(_ context.Context, id uuid.UUID, at time.Time) error {
	return r.run(func(t *txn) error {
		b, ok := t.getBooking(id)
		if !ok || !b.IsActive() {
			return apperr.ErrBookingNotActive
		}
		b.Status = entity.BookingStatusCancelled
		b.CancelledAt = &at
		t.bookings[id] = b

		if owner, ok := t.slotOwner(b.SlotKey); ok && owner == id {
			t.slots[b.SlotKey] = nil
		}
		return nil
	})
}

func (r *bookingRepo) FindByUserID(_ context.Context, userID string, limit, offset int) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool {
		return b.UserID == userID
	}, func(a, b *entity.Booking) bool {
		return a.StartTime.After(b.StartTime)
	}, limit, offset)
}

func (r *bookingRepo) CountByUserID(ctx context.Context, userID string) (int64, error) {
	bookings, err := r.FindByUserID(ctx, userID, 0, 0)
	return int64(len(bookings)), err
}

func (r *bookingRepo) FindNextActiveByUser(_ context.Context, userID string, after time.Time) (*entity.Booking, error) {
	bookings, err := r.filter(func(b *entity.Booking) bool {
		return b.UserID == userID && b.IsActive() && !b.StartTime.Before(after)
	}, startAscending, 1, 0)
	if err != nil || len(bookings) == 0 {
		return nil, err
	}
	return bookings[0], nil
}

func (r *bookingRepo) FindUpcoming(_ context.Context, after time.Time, limit int, status entity.BookingStatus) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool {
		return !b.StartTime.Before(after) && (status == "" || b.Status == status)
	}, startAscending, limit, 0)
}

func (r *bookingRepo) FindActiveInRange(_ context.Context, from, to time.Time) ([]*entity.Booking, error) {
	return r.filter(func(b *entity.Booking) bool {
		return b.IsActive() && !b.StartTime.Before(from) && b.StartTime.Before(to)
	}, startAscending, 0, 0)
}

func startAscending(a, b *entity.Booking) bool {
	if a.StartTime.Equal(b.StartTime) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.StartTime.Before(b.StartTime)
}

// filter returns matching bookings in order. A limit of 0 means no limit.
func (r *bookingRepo) filter(match func(*entity.Booking) bool, less func(a, b *entity.Booking) bool, limit, offset int) ([]*entity.Booking, error) {
	var out []*entity.Booking
	err := r.run(func(t *txn) error {
		var matched []entity.Booking
		for _, b := range t.allBookings() {
			if match(&b) {
				matched = append(matched, b)
			}
		}
		sort.Slice(matched, func(i, j int) bool { return less(&matched[i], &matched[j]) })
		for _, b := range page(matched, limit, offset) {
			out = append(out, &b)
		}
		return nil
	})
	return out, err
}

type eventRepo struct {
	run func(fn func(t *txn) error) error
}

func (r *eventRepo) Exists(_ context.Context, id string) (bool, error) {
	var exists bool
	err := r.run(func(t *txn) error {
		exists = t.hasEvent(id)
		return nil
	})
	return exists, err
}

func (r *eventRepo) Create(_ context.Context, event *entity.PaymentEvent) error {
	return r.run(func(t *txn) error {
		if t.hasEvent(event.ID) {
			return repository.ErrEventProcessed
		}
		cp := *event
		t.events[event.ID] = &cp
		return nil
	})
}

func (t *txn) hasEvent(id string) bool {
	if _, ok := t.events[id]; ok {
		return true
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()
	t.observe(eventKey(id))
	_, ok := t.s.events[id]
	return ok
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
