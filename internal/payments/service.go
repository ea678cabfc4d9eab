package payments

import (
	"context"
	"errors"
	"fmt"

	"github.com/z-cash/z_cash/internal/identity"
	"github.com/z-cash/z_cash/internal/ledger"
	"github.com/z-cash/z_cash/internal/notification"
)

// ErrReceiverNotFound indicates no registered user matches the receiver email.
var ErrReceiverNotFound = errors.New("receiver not found")

// Service is the transfer entry point: it resolves the receiver, shapes the
// intent and hands it to the ledger engine.
type Service struct {
	engine   *ledger.Engine
	users    identity.Repository
	notifier notification.Notifier
}

// NewService constructs a payment service.
func NewService(engine *ledger.Engine, users identity.Repository, notifier notification.Notifier) *Service {
	return &Service{engine: engine, users: users, notifier: notifier}
}

// TransferInput captures the data needed to move funds between accounts. The
// receiver is addressed by email, as registered.
type TransferInput struct {
	SenderID      string
	ReceiverEmail string
	Amount        int64
}

// Result describes the committed outcome of a transfer.
type Result struct {
	NewBalance  int64
	Transaction ledger.Transaction
}

// Transfer moves Amount from the sender to the receiver as one atomic unit.
func (s *Service) Transfer(ctx context.Context, input TransferInput) (Result, error) {
	receiver, err := s.users.FindByEmail(ctx, input.ReceiverEmail)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return Result{}, ErrReceiverNotFound
		}
		return Result{}, err
	}

	tx, acct, err := s.engine.Execute(ctx, ledger.Transfer{
		SenderID:   input.SenderID,
		ReceiverID: receiver.ID,
		Amount:     input.Amount,
	})
	if err != nil {
		return Result{}, err
	}

	if s.notifier != nil {
		_ = s.notifier.Send(ctx, notification.Message{
			Kind:        notification.KindTransferReceived,
			Destination: receiver.ID,
			Body:        fmt.Sprintf("You received %d cents", input.Amount),
		})
	}

	return Result{NewBalance: acct.Balance, Transaction: tx}, nil
}
