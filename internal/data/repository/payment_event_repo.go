package repository

import (
	"context"
	"errors"

	"walk-booking/internal/data/entity"
	"walk-booking/pkg/database"

	"go.uber.org/zap"
)

// ErrEventProcessed is returned by Create when the event id was already applied.
var ErrEventProcessed = errors.New("payment event already processed")

type PaymentEventRepository interface {
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, event *entity.PaymentEvent) error
}

type paymentEventRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewPaymentEventRepository(db database.DBTX, log *zap.Logger) PaymentEventRepository {
	return &paymentEventRepository{
		db:  db,
		log: log.With(zap.String("repository", "payment_event")),
	}
}

func (r *paymentEventRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM payment_events WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		r.log.Error("Failed to check payment event", zap.Error(err), zap.String("event_id", id))
		return false, storageErr("check payment event", err)
	}
	return exists, nil
}

func (r *paymentEventRepository) Create(ctx context.Context, event *entity.PaymentEvent) error {
	query := `
		INSERT INTO payment_events (id, subject_id, kind, granted_tokens, walks_per_week, subscription_id, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.SubjectID,
		event.Kind,
		event.GrantedTokens,
		event.WalksPerWeek,
		event.SubscriptionID,
		event.ProcessedAt,
	)
	if isUniqueViolation(err, "payment_events_pkey") {
		return ErrEventProcessed
	}
	if err != nil {
		r.log.Error("Failed to record payment event",
			zap.Error(err),
			zap.String("event_id", event.ID),
			zap.String("subject_id", event.SubjectID),
		)
		return storageErr("record payment event", err)
	}
	return nil
}
