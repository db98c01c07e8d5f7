package wire

import (
	"walk-booking/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wirePayment(r chi.Router, paymentHandler *adaptor.PaymentHandler) {
	// GET /api/walk-packs - price list shown on the checkout page (public)
	r.Get("/api/walk-packs", paymentHandler.ListWalkPacks)
}
