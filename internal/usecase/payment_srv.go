package usecase

import (
	"context"
	"errors"
	"time"

	"walk-booking/internal/data/entity"
	"walk-booking/internal/data/repository"
	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"
	"walk-booking/internal/ledger"
	"walk-booking/pkg/apperr"
	"walk-booking/pkg/utils"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const packCurrency = "USD"

var walkPacks = []entity.WalkPack{
	{ID: "pack_5", Name: "5 Walk Pack", Walks: 5, Price: decimal.RequireFromString("90.00")},
	{ID: "pack_10", Name: "10 Walk Pack", Walks: 10, Price: decimal.RequireFromString("150.00")},
}

func findWalkPack(id string) (entity.WalkPack, bool) {
	for _, p := range walkPacks {
		if p.ID == id {
			return p, true
		}
	}
	return entity.WalkPack{}, false
}

type PaymentService interface {
	// ApplyEvent credits a confirmed payment exactly once per event id.
	ApplyEvent(ctx context.Context, event *request.PaymentConfirmedEvent) (*response.PaymentAppliedResponse, error)
	ListWalkPacks(ctx context.Context) []response.WalkPackResponse
}

type paymentService struct {
	repo *repository.Repository
	now  func() time.Time
	log  *zap.Logger
}

func NewPaymentService(repo *repository.Repository, log *zap.Logger) PaymentService {
	return &paymentService{
		repo: repo,
		now:  time.Now,
		log:  log.With(zap.String("service", "payment")),
	}
}

// toRecord resolves what the event grants before any storage access.
func toRecord(event *request.PaymentConfirmedEvent) (*entity.PaymentEvent, error) {
	record := &entity.PaymentEvent{
		ID:        event.EventID,
		SubjectID: event.UserID,
	}

	if event.WalksPerWeek > 0 || event.SubscriptionID != "" {
		if event.WalksPerWeek < 1 || event.SubscriptionID == "" {
			return nil, apperr.New(apperr.KindValidation, "subscription events need walks_per_week and subscription_id")
		}
		id := event.SubscriptionID
		record.Kind = entity.PaymentEventSubscription
		record.WalksPerWeek = event.WalksPerWeek
		record.SubscriptionID = &id
		return record, nil
	}

	tokens := event.GrantedTokens
	if tokens == 0 && event.PackID != "" {
		pack, ok := findWalkPack(event.PackID)
		if !ok {
			return nil, apperr.New(apperr.KindValidation, "unknown walk pack "+event.PackID)
		}
		tokens = pack.Walks
	}
	if tokens <= 0 {
		return nil, apperr.New(apperr.KindValidation, "payment event grants nothing")
	}
	record.Kind = entity.PaymentEventTokens
	record.GrantedTokens = tokens
	return record, nil
}

func (s *paymentService) ApplyEvent(ctx context.Context, event *request.PaymentConfirmedEvent) (*response.PaymentAppliedResponse, error) {
	if err := utils.ValidationError(event); err != nil {
		return nil, err
	}
	record, err := toRecord(event)
	if err != nil {
		return nil, err
	}

	result := &response.PaymentAppliedResponse{EventID: record.ID}
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		seen, err := tx.PaymentEvent.Exists(ctx, record.ID)
		if err != nil {
			return err
		}
		if seen {
			return repository.ErrEventProcessed
		}

		user, err := tx.User.FindByID(ctx, record.SubjectID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.ErrUserNotFound
		}

		switch record.Kind {
		case entity.PaymentEventSubscription:
			err = ledger.Subscribe(user, entity.SubscriptionTier{
				WalksPerWeek:   record.WalksPerWeek,
				SubscriptionID: *record.SubscriptionID,
			})
		default:
			err = ledger.Credit(user, record.GrantedTokens)
		}
		if err != nil {
			return err
		}

		now := s.now()
		user.UpdatedAt = now
		record.ProcessedAt = now

		if err := tx.User.Update(ctx, user); err != nil {
			return err
		}
		if err := tx.PaymentEvent.Create(ctx, record); err != nil {
			return err
		}

		result.Applied = true
		result.WalkTokens = user.WalkTokens
		result.WalksPerWeek = user.WalksPerWeek
		return nil
	})

	if errors.Is(err, repository.ErrEventProcessed) {
		s.log.Info("Payment event already applied", zap.String("event_id", record.ID))
		return &response.PaymentAppliedResponse{EventID: record.ID}, nil
	}
	if err != nil {
		logServiceError(s.log, "Failed to apply payment event", err,
			zap.String("event_id", record.ID),
			zap.String("user_id", record.SubjectID),
		)
		return nil, err
	}

	s.log.Info("Payment event applied",
		zap.String("event_id", record.ID),
		zap.String("user_id", record.SubjectID),
		zap.String("kind", string(record.Kind)),
		zap.Int("granted_tokens", record.GrantedTokens),
		zap.Int("walk_tokens", result.WalkTokens),
	)
	return result, nil
}

func (s *paymentService) ListWalkPacks(_ context.Context) []response.WalkPackResponse {
	out := make([]response.WalkPackResponse, len(walkPacks))
	for i, p := range walkPacks {
		out[i] = response.WalkPackResponse{
			ID:           p.ID,
			Name:         p.Name,
			Walks:        p.Walks,
			Price:        p.Price.StringFixed(2),
			PricePerWalk: p.PricePerWalk().StringFixed(2),
			Currency:     packCurrency,
		}
	}
	return out
}
