package usecase

import (
	"context"
	"time"

	"walk-booking/internal/data/entity"
	"walk-booking/internal/data/repository"
	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"
	"walk-booking/pkg/apperr"
	"walk-booking/pkg/utils"

	"go.uber.org/zap"
)

const rosterPageSize = 200

type AdminService interface {
	UpcomingBookings(ctx context.Context, callerID string, req *request.UpcomingBookingsRequest) ([]response.BookingResponse, error)
	Roster(ctx context.Context, callerID string) (*response.RosterResponse, error)
}

type adminService struct {
	repo         *repository.Repository
	defaultLimit int
	now          func() time.Time
	log          *zap.Logger
}

func NewAdminService(repo *repository.Repository, defaultLimit int, log *zap.Logger) AdminService {
	return &adminService{
		repo:         repo,
		defaultLimit: defaultLimit,
		now:          time.Now,
		log:          log.With(zap.String("service", "admin")),
	}
}

// requireAdmin checks the stored role, whatever the route middleware did.
func (s *adminService) requireAdmin(ctx context.Context, callerID string) error {
	caller, err := s.repo.User.FindByID(ctx, callerID)
	if err != nil {
		return err
	}
	if caller == nil || !caller.IsAdmin() {
		s.log.Warn("Non-admin access attempt", zap.String("user_id", callerID))
		return apperr.ErrForbidden
	}
	return nil
}

// UpcomingBookings lists bookings from now on, earliest first. Status
// defaults to booked; "all" includes cancelled bookings.
func (s *adminService) UpcomingBookings(ctx context.Context, callerID string, req *request.UpcomingBookingsRequest) ([]response.BookingResponse, error) {
	if err := utils.ValidationError(req); err != nil {
		return nil, err
	}
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}

	status := entity.BookingStatusBooked
	switch req.Status {
	case "all":
		status = ""
	case string(entity.BookingStatusCancelled):
		status = entity.BookingStatusCancelled
	}

	bookings, err := s.repo.Booking.FindUpcoming(ctx, s.now(), limit, status)
	if err != nil {
		logServiceError(s.log, "Upcoming bookings lookup failed", err)
		return nil, err
	}

	return response.BookingsToResponse(bookings), nil
}

// Roster splits every profile into vetted and unvetted.
func (s *adminService) Roster(ctx context.Context, callerID string) (*response.RosterResponse, error) {
	if err := s.requireAdmin(ctx, callerID); err != nil {
		return nil, err
	}

	roster := &response.RosterResponse{
		Vetted:   []response.UserSummary{},
		Unvetted: []response.UserSummary{},
	}
	for offset := 0; ; offset += rosterPageSize {
		users, err := s.repo.User.FindAll(ctx, rosterPageSize, offset)
		if err != nil {
			logServiceError(s.log, "Roster lookup failed", err)
			return nil, err
		}
		for _, u := range users {
			if u.IsVetted {
				roster.Vetted = append(roster.Vetted, response.UserToSummary(u))
			} else {
				roster.Unvetted = append(roster.Unvetted, response.UserToSummary(u))
			}
		}
		if len(users) < rosterPageSize {
			break
		}
	}

	return roster, nil
}
