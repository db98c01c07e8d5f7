package adaptor

import (
	"net/http"

	"walk-booking/internal/usecase"
	"walk-booking/pkg/utils"

	"go.uber.org/zap"
)

type PaymentHandler struct {
	service usecase.PaymentService
	log     *zap.Logger
}

func NewPaymentHandler(service usecase.PaymentService, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service: service,
		log:     log.With(zap.String("handler", "payment")),
	}
}

// ListWalkPacks handles GET /api/walk-packs (public)
func (h *PaymentHandler) ListWalkPacks(w http.ResponseWriter, r *http.Request) {
	utils.ResponseSuccess(w, r, "success", h.service.ListWalkPacks(r.Context()))
}
