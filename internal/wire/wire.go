package wire

import (
	"net/http"

	"walk-booking/internal/adaptor"
	"walk-booking/internal/data/repository"
	"walk-booking/internal/ledger"
	"walk-booking/internal/schedule"
	"walk-booking/internal/usecase"
	"walk-booking/pkg/auth"
	"walk-booking/pkg/middleware"
	"walk-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// App holds the HTTP router and the services behind it. The payment
// consumer shares Service with the router.
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	clock *schedule.Clock,
	policy ledger.Policy,
	verifier *auth.Verifier,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(repo, config, clock, policy, logger)
	handler := adaptor.NewHandler(service, logger)

	return &App{
		Router:  setupRouter(handler, repo, config, verifier, logger),
		Service: service,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	verifier *auth.Verifier,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS(config.App.CORSAllowedOrigins))

	authn := middleware.Authenticate(verifier, logger)

	wireBooking(r, handler.Booking, authn)
	wireUser(r, handler.User, authn)
	wireAdmin(r, handler.Admin, authn, repo, logger)
	wirePayment(r, handler.Payment)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.ResponseSuccess(w, r, "OK", nil)
	})

	return r
}
