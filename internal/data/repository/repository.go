package repository

import (
	"context"

	"walk-booking/pkg/database"

	"go.uber.org/zap"
)

// Repository groups the stores. Repositories handed to a WithinTx callback are
// bound to that transaction.
type Repository struct {
	User         UserRepository
	Booking      BookingRepository
	PaymentEvent PaymentEventRepository
	Tx           Transactor
}

// Transactor runs fn atomically: every read inside fn sees one snapshot and
// all writes commit together or not at all. Contention is retried a bounded
// number of times; errors returned by fn abort at once and are not retried.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(repo *Repository) error) error
}

func NewRepository(db database.PgxIface, maxRetries int, log *zap.Logger) *Repository {
	repo := newBound(db, log)
	repo.Tx = &pgTransactor{
		db:         db,
		maxRetries: maxRetries,
		log:        log.With(zap.String("repository", "tx")),
	}
	return repo
}

func newBound(db database.DBTX, log *zap.Logger) *Repository {
	return &Repository{
		User:         NewUserRepository(db, log),
		Booking:      NewBookingRepository(db, log),
		PaymentEvent: NewPaymentEventRepository(db, log),
	}
}
