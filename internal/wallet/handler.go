package wallet

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/z-cash/z_cash/internal/ledger"
	"github.com/z-cash/z_cash/internal/middleware"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Balance returns the caller's committed balance.
func (h *Handler) Balance(c *fiber.Ctx) error {
	accountID, _ := c.Locals(middleware.UserIDKey).(string)
	acct, err := h.service.Balance(c.UserContext(), accountID)
	if err != nil {
		if errors.Is(err, ledger.ErrAccountNotFound) {
			return fiber.NewError(http.StatusNotFound, "account not found")
		}
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"balance_cents": acct.Balance,
	})
}

type addRequest struct {
	AmountCents int64 `json:"amount_cents"`
}

// Add credits money onto the caller's wallet.
func (h *Handler) Add(c *fiber.Ctx) error {
	accountID, _ := c.Locals(middleware.UserIDKey).(string)
	var req addRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	res, err := h.service.Recharge(c.UserContext(), accountID, req.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, "invalid amount")
		case errors.Is(err, ledger.ErrAccountNotFound):
			return fiber.NewError(http.StatusNotFound, "account not found")
		case errors.Is(err, ledger.ErrConflict):
			return fiber.NewError(http.StatusConflict, "operation conflicted, retry")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":           "money added successfully",
		"new_balance_cents": res.NewBalance,
		"transaction":       transactionJSON(res.Transaction),
	})
}

func transactionJSON(tx ledger.Transaction) fiber.Map {
	return fiber.Map{
		"id":           tx.ID,
		"sender_id":    tx.SenderID,
		"receiver_id":  tx.ReceiverID,
		"amount_cents": tx.Amount,
		"kind":         tx.Kind,
		"status":       tx.Status,
		"created_at":   tx.CreatedAt,
	}
}
