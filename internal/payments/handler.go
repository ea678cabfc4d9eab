package payments

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/z-cash/z_cash/internal/ledger"
	"github.com/z-cash/z_cash/internal/middleware"
)

// Handler exposes the transfer endpoint.
type Handler struct {
	service *Service
}

// NewHandler constructs a payment handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type transferRequest struct {
	ReceiverEmail string `json:"receiver_email"`
	AmountCents   int64  `json:"amount_cents"`
}

// Transfer moves money from the caller to another registered user.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	senderID, _ := c.Locals(middleware.UserIDKey).(string)
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.ReceiverEmail == "" {
		return fiber.NewError(http.StatusBadRequest, "receiver_email is required")
	}

	res, err := h.service.Transfer(c.UserContext(), TransferInput{
		SenderID:      senderID,
		ReceiverEmail: req.ReceiverEmail,
		Amount:        req.AmountCents,
	})
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInvalidAmount):
			return fiber.NewError(http.StatusBadRequest, "invalid amount")
		case errors.Is(err, ledger.ErrSelfTransfer):
			return fiber.NewError(http.StatusBadRequest, "cannot transfer to own account")
		case errors.Is(err, ledger.ErrInsufficientFunds):
			return fiber.NewError(http.StatusBadRequest, "insufficient balance")
		case errors.Is(err, ErrReceiverNotFound), errors.Is(err, ledger.ErrAccountNotFound):
			return fiber.NewError(http.StatusNotFound, "receiver not found")
		case errors.Is(err, ledger.ErrConflict):
			return fiber.NewError(http.StatusConflict, "operation conflicted, retry")
		default:
			return fiber.NewError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message":           "transfer successful",
		"new_balance_cents": res.NewBalance,
		"transaction": fiber.Map{
			"id":           res.Transaction.ID,
			"sender_id":    res.Transaction.SenderID,
			"receiver_id":  res.Transaction.ReceiverID,
			"amount_cents": res.Transaction.Amount,
			"kind":         res.Transaction.Kind,
			"status":       res.Transaction.Status,
			"created_at":   res.Transaction.CreatedAt,
		},
	})
}
