package repository

import (
	"context"
	"errors"

	"walk-booking/pkg/apperr"
	"walk-booking/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

const (
	sqlStateSerializationFailure = "40001"
	sqlStateDeadlockDetected     = "40P01"
	sqlStateUniqueViolation      = "23505"
)

type pgTransactor struct {
	db         database.PgxIface
	maxRetries int
	log        *zap.Logger
}

func (t *pgTransactor) WithinTx(ctx context.Context, fn func(repo *Repository) error) error {
	var lastErr error
	for attempt := 0; attempt <= t.maxRetries; attempt++ {
		err := t.runOnce(ctx, fn)
		if err == nil {
			return nil
		}
		if !isContention(err) {
			return err
		}
		lastErr = err
		t.log.Debug("Transaction contention, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	t.log.Warn("Transaction retries exhausted", zap.Int("max_retries", t.maxRetries), zap.Error(lastErr))
	return apperr.Wrap(apperr.KindTransactionAborted, apperr.ErrTransactionAborted.Message, lastErr)
}

func (t *pgTransactor) runOnce(ctx context.Context, fn func(repo *Repository) error) (err error) {
	tx, err := t.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return apperr.Wrap(apperr.KindUpstreamUnavailable, "begin transaction", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				t.log.Error("Failed to rollback transaction", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(newBound(tx, t.log)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		if isContention(err) {
			return err
		}
		return apperr.Wrap(apperr.KindUpstreamUnavailable, "commit transaction", err)
	}
	return nil
}

func isContention(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == sqlStateSerializationFailure || pgErr.Code == sqlStateDeadlockDetected
	}
	return false
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != sqlStateUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// storageErr classifies a driver failure for callers that only care about the kind.
func storageErr(op string, err error) error {
	if isContention(err) {
		return err
	}
	return apperr.Wrap(apperr.KindUpstreamUnavailable, op, err)
}
