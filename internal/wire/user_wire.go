package wire

import (
	"net/http"

	"walk-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures the caller's own profile routes
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, authn func(http.Handler) http.Handler) {
	// POST creates the profile on first sign-in and is safe to repeat
	r.With(authn).Post("/api/user/profile", userHandler.SyncProfile)
	r.With(authn).Get("/api/user/profile", userHandler.GetProfile)
}
