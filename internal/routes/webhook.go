package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/onramp-pay/onramp/internal/webhook"
)

// RegisterWebhookRoutes wires the bank capture endpoint.
func RegisterWebhookRoutes(app *fiber.App, h *webhook.Handler) {
	app.Post("/hdfcWebhook", h.Capture)
}
