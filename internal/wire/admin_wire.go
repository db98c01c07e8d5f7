package wire

import (
	"net/http"

	"walk-booking/internal/adaptor"
	"walk-booking/internal/data/repository"
	"walk-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	adminHandler *adaptor.AdminHandler,
	authn func(http.Handler) http.Handler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	// Apply middleware chain: Authenticate → Admin
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authn)
		r.Use(middleware.Admin(repo.User, log))

		r.Get("/bookings/upcoming", adminHandler.UpcomingBookings) // ?limit=100&status=booked
		r.Get("/users", adminHandler.Roster)
	})
}
