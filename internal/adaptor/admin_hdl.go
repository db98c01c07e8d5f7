package adaptor

import (
	"net/http"

	"walk-booking/internal/dto/request"
	"walk-booking/internal/usecase"
	"walk-booking/pkg/utils"

	"go.uber.org/zap"
)

type AdminHandler struct {
	service usecase.AdminService
	log     *zap.Logger
}

func NewAdminHandler(service usecase.AdminService, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		service: service,
		log:     log.With(zap.String("handler", "admin")),
	}
}

// UpcomingBookings handles GET /api/admin/bookings/upcoming?limit=&status= (admin)
func (h *AdminHandler) UpcomingBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSubject(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.UpcomingBookingsRequest{
		Limit:  utils.ParseInt(query.Get("limit"), 0),
		Status: query.Get("status"),
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, r, "Validation failed", validationErrors)
		return
	}

	bookings, err := h.service.UpcomingBookings(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "upcoming bookings")
		return
	}

	utils.ResponseSuccess(w, r, "success", bookings)
}

// Roster handles GET /api/admin/users (admin)
func (h *AdminHandler) Roster(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSubject(w, r)
	if !ok {
		return
	}

	roster, err := h.service.Roster(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.log, err, "roster")
		return
	}

	utils.ResponseSuccess(w, r, "success", roster)
}
