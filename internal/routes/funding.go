package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/onramp-pay/onramp/internal/funding"
)

// RegisterFundingRoutes wires on-ramp endpoints. idempotency may be nil when
// no Redis is configured.
func RegisterFundingRoutes(r fiber.Router, h *funding.Handler, idempotency fiber.Handler) {
	if idempotency != nil {
		r.Post("/onramp", idempotency, h.Start)
	} else {
		r.Post("/onramp", h.Start)
	}
	r.Get("/onramp", h.List)
}
