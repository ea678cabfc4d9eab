package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/z-cash/z_cash/internal/payments"
	"github.com/z-cash/z_cash/internal/transactions"
)

// RegisterTransactionRoutes wires the transfer and history endpoints.
func RegisterTransactionRoutes(r fiber.Router, p *payments.Handler, tx *transactions.Handler) {
	r.Post("/transactions/transfer", p.Transfer)
	r.Get("/transactions", tx.List)
}
