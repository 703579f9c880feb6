package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/onramp-pay/onramp/internal/identity"
)

// RegisterIdentityRoutes wires profile endpoints.
func RegisterIdentityRoutes(r fiber.Router, h *identity.Handler) {
	r.Get("/me", h.Me)
}
