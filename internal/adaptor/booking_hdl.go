package adaptor

import (
	"net/http"

	"walk-booking/internal/dto/request"
	"walk-booking/internal/dto/response"
	"walk-booking/internal/usecase"
	"walk-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type BookingHandler struct {
	service usecase.BookingService
	log     *zap.Logger
}

func NewBookingHandler(service usecase.BookingService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log.With(zap.String("handler", "booking")),
	}
}

// Reserve handles POST /api/bookings (protected)
func (h *BookingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSubject(w, r)
	if !ok {
		return
	}

	var req request.CreateBookingRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		utils.ResponseBadRequest(w, r, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, r, "Validation failed", validationErrors)
		return
	}

	booking, err := h.service.Reserve(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "reserve")
		return
	}

	utils.ResponseCreated(w, r, "Booking confirmed", booking)
}

// Cancel handles DELETE /api/bookings/{id} (protected)
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSubject(w, r)
	if !ok {
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, r, "Booking ID is required", nil)
		return
	}

	if err := h.service.Cancel(r.Context(), userID, bookingID); err != nil {
		handleServiceError(w, r, h.log, err, "cancel")
		return
	}

	utils.ResponseSuccess(w, r, "Booking cancelled", response.CancelResponse{OK: true})
}

// Availability handles GET /api/bookings/availability?date=YYYY-MM-DD (public)
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	req := request.AvailabilityRequest{Date: r.URL.Query().Get("date")}
	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, r, "Validation failed", validationErrors)
		return
	}

	availability, err := h.service.Availability(r.Context(), req.Date)
	if err != nil {
		handleServiceError(w, r, h.log, err, "availability")
		return
	}

	utils.ResponseSuccess(w, r, "success", availability)
}

// MyBooking handles GET /api/user/booking (protected). Data is null when the
// caller has nothing upcoming.
func (h *BookingHandler) MyBooking(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSubject(w, r)
	if !ok {
		return
	}

	booking, err := h.service.MyBooking(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.log, err, "my booking")
		return
	}
	if booking == nil {
		utils.ResponseSuccess(w, r, "No upcoming booking", nil)
		return
	}

	utils.ResponseSuccess(w, r, "success", booking)
}

// GetUserBookings handles GET /api/user/bookings (protected)
func (h *BookingHandler) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSubject(w, r)
	if !ok {
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	bookings, err := h.service.GetUserBookings(r.Context(), userID, req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "get user bookings")
		return
	}

	utils.ResponseSuccess(w, r, "success", bookings)
}
