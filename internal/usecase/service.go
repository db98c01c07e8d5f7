package usecase

import (
	"walk-booking/internal/data/repository"
	"walk-booking/internal/ledger"
	"walk-booking/internal/schedule"
	"walk-booking/pkg/apperr"
	"walk-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	User    UserService
	Booking BookingService
	Admin   AdminService
	Payment PaymentService
}

func NewService(repo *repository.Repository, config *utils.Config, clock *schedule.Clock, policy ledger.Policy, log *zap.Logger) *Service {
	return &Service{
		User:    NewUserService(repo, config.Auth, policy, log),
		Booking: NewBookingService(repo, clock, policy, log),
		Admin:   NewAdminService(repo, config.Booking.AdminUpcomingLimit, log),
		Payment: NewPaymentService(repo, log),
	}
}

// logServiceError logs business rejections at warn and infrastructure
// failures at error.
func logServiceError(log *zap.Logger, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err), zap.String("kind", string(apperr.KindOf(err))))
	switch apperr.KindOf(err) {
	case apperr.KindUpstreamUnavailable, apperr.KindTransactionAborted:
		log.Error(msg, fields...)
	default:
		log.Warn(msg, fields...)
	}
}
