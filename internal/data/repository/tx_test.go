package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"walk-booking/internal/data/entity"
	"walk-booking/pkg/apperr"
	"walk-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeTx records the calls WithinTx makes on an open transaction.
type fakeTx struct {
	pgx.Tx
	execErr   error
	commitErr error
	committed int
	rolled    int
}

func (tx *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	if tx.execErr != nil {
		return pgconn.CommandTag{}, tx.execErr
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed++
	return tx.commitErr
}

func (tx *fakeTx) Rollback(context.Context) error {
	tx.rolled++
	return nil
}

// fakeDB hands out the next scripted transaction on every BeginTx.
type fakeDB struct {
	database.PgxIface
	txs    []*fakeTx
	begins int
	opts   []pgx.TxOptions
}

func (db *fakeDB) BeginTx(_ context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	db.opts = append(db.opts, opts)
	tx := db.txs[db.begins%len(db.txs)]
	db.begins++
	return tx, nil
}

func pgErr(code, constraint string) *pgconn.PgError {
	return &pgconn.PgError{Code: code, ConstraintName: constraint}
}

func TestErrorClassification(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		contention bool
		unique     bool
	}{
		{"serialization failure", pgErr(sqlStateSerializationFailure, ""), true, false},
		{"deadlock", pgErr(sqlStateDeadlockDetected, ""), true, false},
		{"wrapped serialization failure", apperr.Wrap(apperr.KindUpstreamUnavailable, "commit", pgErr(sqlStateSerializationFailure, "")), true, false},
		{"active slot taken", pgErr(sqlStateUniqueViolation, activeSlotIndex), false, true},
		{"other unique index", pgErr(sqlStateUniqueViolation, "users_pkey"), false, false},
		{"foreign key", pgErr("23503", activeSlotIndex), false, false},
		{"plain error", errors.New("connection reset"), false, false},
		{"nil", nil, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.contention, isContention(tc.err))
			assert.Equal(t, tc.unique, isUniqueViolation(tc.err, activeSlotIndex))
		})
	}

	assert.True(t, isUniqueViolation(pgErr(sqlStateUniqueViolation, "users_pkey"), ""))
}

func TestStorageErr(t *testing.T) {
	contention := pgErr(sqlStateDeadlockDetected, "")
	assert.Same(t, contention, storageErr("update user", contention))

	err := storageErr("update user", errors.New("connection reset"))
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
	assert.EqualError(t, err, "update user: connection reset")
}

func TestWithinTx(t *testing.T) {
	ctx := context.Background()
	conflict := pgErr(sqlStateSerializationFailure, "")

	t.Run("retries contention then commits", func(t *testing.T) {
		failing := &fakeTx{}
		ok := &fakeTx{}
		db := &fakeDB{txs: []*fakeTx{failing, failing, ok}}
		repo := NewRepository(db, 3, zap.NewNop())

		calls := 0
		err := repo.Tx.WithinTx(ctx, func(*Repository) error {
			calls++
			if calls < 3 {
				return conflict
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, db.begins)
		assert.Equal(t, 2, failing.rolled)
		assert.Equal(t, 1, ok.committed)
		for _, o := range db.opts {
			assert.Equal(t, pgx.Serializable, o.IsoLevel)
		}
	})

	t.Run("retries a failed commit", func(t *testing.T) {
		db := &fakeDB{txs: []*fakeTx{{commitErr: conflict}, {}}}
		repo := NewRepository(db, 3, zap.NewNop())

		require.NoError(t, repo.Tx.WithinTx(ctx, func(*Repository) error { return nil }))
		assert.Equal(t, 2, db.begins)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		tx := &fakeTx{}
		db := &fakeDB{txs: []*fakeTx{tx}}
		repo := NewRepository(db, 2, zap.NewNop())

		err := repo.Tx.WithinTx(ctx, func(*Repository) error { return conflict })

		assert.ErrorIs(t, err, apperr.ErrTransactionAborted)
		assert.True(t, apperr.Retryable(err))
		assert.Equal(t, 3, db.begins)
		assert.Equal(t, 0, tx.committed)

		var cause *pgconn.PgError
		require.ErrorAs(t, err, &cause)
		assert.Equal(t, sqlStateSerializationFailure, cause.Code)
	})

	t.Run("business error is not retried", func(t *testing.T) {
		db := &fakeDB{txs: []*fakeTx{{}}}
		repo := NewRepository(db, 3, zap.NewNop())

		err := repo.Tx.WithinTx(ctx, func(*Repository) error { return apperr.ErrInsufficientBalance })

		assert.ErrorIs(t, err, apperr.ErrInsufficientBalance)
		assert.Equal(t, 1, db.begins)
	})

	t.Run("active slot violation is a slot conflict", func(t *testing.T) {
		tx := &fakeTx{execErr: pgErr(sqlStateUniqueViolation, activeSlotIndex)}
		db := &fakeDB{txs: []*fakeTx{tx}}
		repo := NewRepository(db, 3, zap.NewNop())

		start := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
		err := repo.Tx.WithinTx(ctx, func(r *Repository) error {
			return r.Booking.Create(ctx, &entity.Booking{
				ID:        uuid.New(),
				SlotKey:   "2024-06-01T12:00:00Z",
				UserID:    "u1",
				StartTime: start,
				EndTime:   start.Add(15 * time.Minute),
				Status:    entity.BookingStatusBooked,
			})
		})

		assert.ErrorIs(t, err, apperr.ErrSlotConflict)
		assert.Equal(t, 1, db.begins)
		assert.Equal(t, 1, tx.rolled)
	})
}

func TestBookingCreateStorageFailure(t *testing.T) {
	tx := &fakeTx{execErr: pgErr(sqlStateUniqueViolation, "bookings_pkey")}
	repo := NewBookingRepository(tx, zap.NewNop())

	err := repo.Create(context.Background(), &entity.Booking{ID: uuid.New(), SlotKey: "2024-06-01T12:00:00Z"})

	assert.NotErrorIs(t, err, apperr.ErrSlotConflict)
	assert.Equal(t, apperr.KindUpstreamUnavailable, apperr.KindOf(err))
}
