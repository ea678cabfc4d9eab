package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/z-cash/z_cash/internal/wallet"
)

// RegisterWalletRoutes wires wallet endpoints for the authenticated caller.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Get("/wallet/balance", h.Balance)
	r.Post("/wallet/add", h.Add)
}
