package adaptor

import (
	"net/http"

	"walk-booking/internal/usecase"
	"walk-booking/pkg/apperr"
	"walk-booking/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking *BookingHandler
	User    *UserHandler
	Admin   *AdminHandler
	Payment *PaymentHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking: NewBookingHandler(service.Booking, log),
		User:    NewUserHandler(service.User, log),
		Admin:   NewAdminHandler(service.Admin, log),
		Payment: NewPaymentHandler(service.Payment, log),
	}
}

// handleServiceError maps a service error to its HTTP status. Only the
// user-facing message and kind leave the process; the cause is logged.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error, operation string) {
	kind := apperr.KindOf(err)
	status := apperr.HTTPStatus(kind)

	if status >= http.StatusInternalServerError {
		log.Error(operation+" failed",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("operation", operation))
	} else {
		log.Warn(operation+" rejected",
			zap.Error(err),
			zap.String("kind", string(kind)),
			zap.String("operation", operation))
	}

	if kind == apperr.KindTransactionAborted {
		w.Header().Set("Retry-After", "1")
	}

	utils.ResponseJSON(w, r, status, false, apperr.Message(err), nil, map[string]string{"code": string(kind)})
}

func requireSubject(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := utils.GetSubjectIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, r, "Authentication required")
	}
	return userID, ok
}
