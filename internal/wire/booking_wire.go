package wire

import (
	"net/http"

	"walk-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireBooking(r chi.Router, bookingHandler *adaptor.BookingHandler, authn func(http.Handler) http.Handler) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/bookings/availability?date=2024-06-01
	r.Get("/api/bookings/availability", bookingHandler.Availability)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(authn)

		r.Post("/api/bookings", bookingHandler.Reserve)
		r.Delete("/api/bookings/{id}", bookingHandler.Cancel)

		// next upcoming walk, then full history
		r.Get("/api/user/booking", bookingHandler.MyBooking)
		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
	})
}
