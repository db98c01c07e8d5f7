package adaptor

import (
	"errors"
	"io"
	"net/http"

	"walk-booking/internal/dto/request"
	"walk-booking/internal/usecase"
	"walk-booking/pkg/utils"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

type UserHandler struct {
	service usecase.UserService
	log     *zap.Logger
}

func NewUserHandler(service usecase.UserService, log *zap.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log.With(zap.String("handler", "user")),
	}
}

// SyncProfile handles POST /api/user/profile (protected). The body is optional.
func (h *UserHandler) SyncProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSubject(w, r)
	if !ok {
		return
	}

	var req request.SyncProfileRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		utils.ResponseBadRequest(w, r, "Invalid request body", nil)
		return
	}

	email, _ := utils.GetEmailFromContext(r.Context())
	identity := request.Identity{
		SubjectID: userID,
		Email:     email,
		Name:      utils.GetNameFromContext(r.Context()),
	}

	profile, err := h.service.SyncProfile(r.Context(), identity, &req)
	if err != nil {
		handleServiceError(w, r, h.log, err, "sync profile")
		return
	}

	utils.ResponseSuccess(w, r, "Profile synced", profile)
}

// GetProfile handles GET /api/user/profile (protected)
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireSubject(w, r)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, h.log, err, "get profile")
		return
	}

	utils.ResponseSuccess(w, r, "success", profile)
}
