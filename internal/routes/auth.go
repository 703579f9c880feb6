package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/onramp-pay/onramp/internal/auth"
)

// RegisterAuthRoutes wires authentication endpoints. rateLimiter guards
// login; protect guards the endpoints that need an access token.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimiter, protect fiber.Handler) {
	group := r.Group("/auth")
	group.Post("/register", h.Register)
	group.Post("/login", rateLimiter, h.Login)
	group.Post("/refresh", h.Refresh)
	group.Post("/logout", protect, h.Logout)
	group.Get("/session", protect, h.Session)
}
