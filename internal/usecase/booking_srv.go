package usecase

import (
	"context"
	"strings"
	"time"

	"walk-booking/internal/data/entity"
	"walk-booking/internal/data/repository"
	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"
	"walk-booking/internal/ledger"
	"walk-booking/internal/schedule"
	"walk-booking/pkg/apperr"
	"walk-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	Reserve(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	Cancel(ctx context.Context, userID, bookingID string) error

	Availability(ctx context.Context, date string) (*response.AvailabilityResponse, error)
	MyBooking(ctx context.Context, userID string) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
}

type bookingService struct {
	repo   *repository.Repository
	clock  *schedule.Clock
	policy ledger.Policy
	now    func() time.Time
	log    *zap.Logger
}

func NewBookingService(repo *repository.Repository, clock *schedule.Clock, policy ledger.Policy, log *zap.Logger) BookingService {
	return &bookingService{
		repo:   repo,
		clock:  clock,
		policy: policy,
		now:    time.Now,
		log:    log.With(zap.String("service", "booking")),
	}
}

var (
	errSlotInPast  = apperr.New(apperr.KindInvalidSlotAlignment, "cannot book a slot in the past")
	errWalkStarted = apperr.New(apperr.KindBookingNotActive, "walk already started and cannot be cancelled")
)

// Reserve books the slot starting at req.StartTime for userID. Every check
// and every write happens in one transaction.
func (s *bookingService) Reserve(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	req.DogName = strings.TrimSpace(req.DogName)
	if err := utils.ValidationError(req); err != nil {
		s.log.Warn("Reserve validation failed", zap.Error(err))
		return nil, err
	}

	start := req.StartTime
	now := s.now()
	key := schedule.Key(start)

	var booking *entity.Booking
	err := s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		user, err := tx.User.FindByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return apperr.ErrUserNotFound
		}

		if err := s.clock.Align(start); err != nil {
			return err
		}
		if start.Before(now) {
			return errSlotInPast
		}

		if err := ledger.RequireRight(s.policy, user); err != nil {
			return err
		}

		existing, err := tx.Booking.FindActiveBySlot(ctx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperr.ErrSlotConflict
		}

		b := &entity.Booking{
			ID:        uuid.New(),
			SlotKey:   key,
			UserID:    user.ID,
			UserName:  user.Name,
			UserEmail: user.Email,
			DogName:   req.DogName,
			StartTime: start.UTC(),
			EndTime:   start.Add(s.clock.SlotDuration()).UTC(),
			Status:    entity.BookingStatusBooked,
			CreatedAt: now,
		}

		if _, err := s.policy.Consume(user, b.ID); err != nil {
			return err
		}
		user.UpdatedAt = now

		if err := tx.User.Update(ctx, user); err != nil {
			return err
		}
		if err := tx.Booking.Create(ctx, b); err != nil {
			return err
		}

		booking = b
		return nil
	})
	if err != nil {
		logServiceError(s.log, "Reserve failed", err,
			zap.String("user_id", userID),
			zap.String("slot", key),
		)
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("user_id", userID),
		zap.String("slot", key),
		zap.String("balance_model", string(s.policy.Model())),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// Cancel marks the caller's active booking cancelled and gives the balance
// back. Only walks that have not started yet can be cancelled. Bookings are
// never deleted.
func (s *bookingService) Cancel(ctx context.Context, userID, bookingID string) error {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return apperr.ErrBookingNotFound
	}

	now := s.now()
	err = s.repo.Tx.WithinTx(ctx, func(tx *repository.Repository) error {
		booking, err := tx.Booking.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if booking == nil {
			return apperr.ErrBookingNotFound
		}
		if booking.UserID != userID {
			return apperr.ErrForbidden
		}
		if !booking.IsActive() {
			return apperr.ErrBookingNotActive
		}
		// a started walk has consumed its token or free walk
		if !booking.StartTime.After(now) {
			return errWalkStarted
		}

		if err := tx.Booking.MarkCancelled(ctx, id, now); err != nil {
			return err
		}

		owner, err := tx.User.FindByID(ctx, booking.UserID)
		if err != nil {
			return err
		}
		if owner == nil {
			return apperr.ErrUserNotFound
		}

		s.policy.Restore(owner, id)
		owner.UpdatedAt = now
		return tx.User.Update(ctx, owner)
	})
	if err != nil {
		logServiceError(s.log, "Cancel failed", err,
			zap.String("user_id", userID),
			zap.String("booking_id", bookingID),
		)
		return err
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("user_id", userID),
	)
	return nil
}

// Availability lists every slot of date with its past/booked flags.
func (s *bookingService) Availability(ctx context.Context, date string) (*response.AvailabilityResponse, error) {
	slots, err := s.clock.SlotsFor(date, s.now())
	if err != nil {
		return nil, err
	}
	from, to, err := s.clock.DayBounds(date)
	if err != nil {
		return nil, err
	}

	bookings, err := s.repo.Booking.FindActiveInRange(ctx, from, to)
	if err != nil {
		logServiceError(s.log, "Availability lookup failed", err, zap.String("date", date))
		return nil, err
	}

	booked := make(map[string]bool, len(bookings))
	keys := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if !booked[b.SlotKey] {
			booked[b.SlotKey] = true
			keys = append(keys, b.SlotKey)
		}
	}

	out := make([]response.SlotResponse, len(slots))
	for i, slot := range slots {
		out[i] = response.SlotResponse{
			Slot:      slot.Key,
			StartTime: slot.Start,
			EndTime:   slot.End,
			IsPast:    slot.IsPast,
			IsBooked:  booked[slot.Key],
		}
	}

	return &response.AvailabilityResponse{
		Date:   date,
		Booked: keys,
		Slots:  out,
	}, nil
}

// MyBooking returns the caller's next active booking, or nil.
func (s *bookingService) MyBooking(ctx context.Context, userID string) (*response.BookingResponse, error) {
	booking, err := s.repo.Booking.FindNextActiveByUser(ctx, userID, s.now())
	if err != nil {
		logServiceError(s.log, "Next booking lookup failed", err, zap.String("user_id", userID))
		return nil, err
	}
	if booking == nil {
		return nil, nil
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByUserID(ctx, userID, limit, offset)
	if err != nil {
		logServiceError(s.log, "Failed to get user bookings", err,
			zap.String("user_id", userID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, err
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userID)
	if err != nil {
		logServiceError(s.log, "Failed to count user bookings", err, zap.String("user_id", userID))
		return nil, err
	}

	s.log.Debug("User bookings retrieved",
		zap.String("user_id", userID),
		zap.Int("count", len(bookings)),
		zap.Int64("total", total),
	)

	return response.NewPaginatedResponse(response.BookingsToResponse(bookings), req.Page, limit, total), nil
}
