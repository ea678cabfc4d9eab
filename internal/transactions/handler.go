package transactions

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/z-cash/z_cash/internal/ledger"
	"github.com/z-cash/z_cash/internal/middleware"
)

// Handler exposes the transaction history endpoint.
type Handler struct {
	service *Service
}

// NewHandler builds a transactions handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type summary struct {
	ID          string `json:"id"`
	SenderID    string `json:"sender_id"`
	ReceiverID  string `json:"receiver_id"`
	AmountCents int64  `json:"amount_cents"`
	Kind        string `json:"kind"`
	Status      string `json:"status"`
	CreatedAt   string `json:"created_at"`
}

// List returns the caller's transaction history, newest first.
func (h *Handler) List(c *fiber.Ctx) error {
	accountID, _ := c.Locals(middleware.UserIDKey).(string)
	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("offset", 0)

	txs, err := h.service.ListFor(c.UserContext(), accountID, limit, offset)
	if err != nil {
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}

	out := make([]summary, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toSummary(tx))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"transactions": out})
}

func toSummary(tx ledger.Transaction) summary {
	return summary{
		ID:          tx.ID,
		SenderID:    tx.SenderID,
		ReceiverID:  tx.ReceiverID,
		AmountCents: tx.Amount,
		Kind:        string(tx.Kind),
		Status:      string(tx.Status),
		CreatedAt:   tx.CreatedAt.Format(time.RFC3339Nano),
	}
}
