package memstore

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"walk-booking/internal/data/entity"
	"walk-booking/internal/data/repository"
	"walk-booking/pkg/apperr"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var t0 = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newBooking(userID string, start time.Time) *entity.Booking {
	return &entity.Booking{
		ID:        uuid.New(),
		SlotKey:   start.UTC().Format(time.RFC3339),
		UserID:    userID,
		DogName:   "Rex",
		StartTime: start,
		EndTime:   start.Add(15 * time.Minute),
		Status:    entity.BookingStatusBooked,
		CreatedAt: t0,
	}
}

func TestBookingCreate_ActiveSlotIsUnique(t *testing.T) {
	ctx := context.Background()
	repo := New(3, zap.NewNop()).Repository()

	first := newBooking("u1", t0)
	require.NoError(t, repo.Booking.Create(ctx, first))

	err := repo.Booking.Create(ctx, newBooking("u2", t0))
	assert.ErrorIs(t, err, apperr.ErrSlotConflict)

	require.NoError(t, repo.Booking.MarkCancelled(ctx, first.ID, t0))

	// a cancelled booking no longer holds the slot
	second := newBooking("u2", t0)
	require.NoError(t, repo.Booking.Create(ctx, second))

	active, err := repo.Booking.FindActiveBySlot(ctx, first.SlotKey)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, second.ID, active.ID)

	old, err := repo.Booking.FindByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusCancelled, old.Status)
	require.NotNil(t, old.CancelledAt)
}

func TestBookingMarkCancelled_Twice(t *testing.T) {
	ctx := context.Background()
	repo := New(3, zap.NewNop()).Repository()

	b := newBooking("u1", t0)
	require.NoError(t, repo.Booking.Create(ctx, b))
	require.NoError(t, repo.Booking.MarkCancelled(ctx, b.ID, t0))

	assert.ErrorIs(t, repo.Booking.MarkCancelled(ctx, b.ID, t0), apperr.ErrBookingNotActive)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := New(3, zap.NewNop())
	repo := store.Repository()

	require.NoError(t, repo.User.Create(ctx, &entity.User{ID: "u1", WalkTokens: 2}))

	boom := errors.New("boom")
	err := repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		u, err := tx.User.FindByID(ctx, "u1")
		require.NoError(t, err)
		u.WalkTokens = 0
		require.NoError(t, tx.User.Update(ctx, u))
		require.NoError(t, tx.Booking.Create(ctx, newBooking("u1", t0)))

		// writes are visible inside the transaction
		inside, err := tx.User.FindByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 0, inside.WalkTokens)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	u, err := repo.User.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, u.WalkTokens)

	active, err := repo.Booking.FindActiveBySlot(ctx, newBooking("u1", t0).SlotKey)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestWithinTx_RetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	store := New(3, zap.NewNop())
	repo := store.Repository()
	require.NoError(t, repo.User.Create(ctx, &entity.User{ID: "u1", WalkTokens: 5}))

	var attempts int32
	err := repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		n := atomic.AddInt32(&attempts, 1)
		u, err := tx.User.FindByID(ctx, "u1")
		if err != nil {
			return err
		}
		if n == 1 {
			// a competing writer commits between our read and our commit
			other, _ := repo.User.FindByID(ctx, "u1")
			other.WalkTokens = 1
			require.NoError(t, repo.User.Update(ctx, other))
		}
		u.WalkTokens--
		return tx.User.Update(ctx, u)
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, attempts)

	u, err := repo.User.FindByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, u.WalkTokens)
}

func TestWithinTx_ExhaustedRetriesAbort(t *testing.T) {
	ctx := context.Background()
	store := New(1, zap.NewNop())
	repo := store.Repository()
	require.NoError(t, repo.User.Create(ctx, &entity.User{ID: "u1", WalkTokens: 5}))

	err := repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		u, err := tx.User.FindByID(ctx, "u1")
		if err != nil {
			return err
		}
		other, _ := repo.User.FindByID(ctx, "u1")
		other.WalkTokens++
		require.NoError(t, repo.User.Update(ctx, other))

		u.WalkTokens--
		return tx.User.Update(ctx, u)
	})
	assert.ErrorIs(t, err, apperr.ErrTransactionAborted)
}

func TestUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := New(3, zap.NewNop()).Repository()

	missing, err := repo.User.FindByID(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.ErrorIs(t, repo.User.Update(ctx, &entity.User{ID: "nobody"}), apperr.ErrUserNotFound)

	for i, id := range []string{"b", "a", "c"} {
		u := &entity.User{ID: id}
		u.CreatedAt = t0.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.User.Create(ctx, u))
	}
	assert.ErrorIs(t, repo.User.Create(ctx, &entity.User{ID: "a"}), repository.ErrUserExists)

	count, err := repo.User.CountAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	users, err := repo.User.FindAll(ctx, 2, 1)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a", users[0].ID)
	assert.Equal(t, "c", users[1].ID)
}

func TestBookingQueries(t *testing.T) {
	ctx := context.Background()
	repo := New(3, zap.NewNop()).Repository()

	early := newBooking("u1", t0)
	late := newBooking("u1", t0.Add(time.Hour))
	other := newBooking("u2", t0.Add(30*time.Minute))
	cancelled := newBooking("u1", t0.Add(15*time.Minute))
	for _, b := range []*entity.Booking{late, early, other, cancelled} {
		require.NoError(t, repo.Booking.Create(ctx, b))
	}
	require.NoError(t, repo.Booking.MarkCancelled(ctx, cancelled.ID, t0))

	next, err := repo.Booking.FindNextActiveByUser(ctx, "u1", t0.Add(time.Minute))
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, late.ID, next.ID)

	none, err := repo.Booking.FindNextActiveByUser(ctx, "u3", t0)
	require.NoError(t, err)
	assert.Nil(t, none)

	history, err := repo.Booking.FindByUserID(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, late.ID, history[0].ID)

	count, err := repo.Booking.CountByUserID(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	upcoming, err := repo.Booking.FindUpcoming(ctx, t0, 100, entity.BookingStatusBooked)
	require.NoError(t, err)
	require.Len(t, upcoming, 3)
	assert.Equal(t, []uuid.UUID{early.ID, other.ID, late.ID},
		[]uuid.UUID{upcoming[0].ID, upcoming[1].ID, upcoming[2].ID})

	all, err := repo.Booking.FindUpcoming(ctx, t0, 2, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inRange, err := repo.Booking.FindActiveInRange(ctx, t0, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, inRange, 2)
}

func TestPaymentEventRepo(t *testing.T) {
	ctx := context.Background()
	repo := New(3, zap.NewNop()).Repository()

	ok, err := repo.PaymentEvent.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, ok)

	event := &entity.PaymentEvent{ID: "evt_1", SubjectID: "u1", Kind: entity.PaymentEventTokens, GrantedTokens: 5}
	require.NoError(t, repo.PaymentEvent.Create(ctx, event))
	assert.ErrorIs(t, repo.PaymentEvent.Create(ctx, event), repository.ErrEventProcessed)

	ok, err = repo.PaymentEvent.Exists(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, ok)
}
