package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/onramp-pay/onramp/internal/wallet"
)

// RegisterWalletRoutes wires balance endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/balance", h.Balance)
}
