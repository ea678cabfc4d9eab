package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidAmount occurs when an operation names a zero or negative amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrSelfTransfer occurs when a transfer names the same account on both sides.
	ErrSelfTransfer = errors.New("cannot transfer to own account")

	// ErrInsufficientFunds occurs when the sending account lacks available balance
	// to cover a requested movement.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrAccountNotFound indicates the referenced account does not exist.
	ErrAccountNotFound = errors.New("account not found")

	// ErrVersionConflict indicates a compare-and-set lost to a concurrent update.
	ErrVersionConflict = errors.New("account version conflict")

	// ErrConflict is surfaced after the engine exhausts commit retries or cannot
	// acquire the involved accounts in time. The operation left no effect and the
	// caller may retry.
	ErrConflict = errors.New("conflicting concurrent operation")
)

// Kind discriminates the two supported value movements.
type Kind string

const (
	KindTransfer Kind = "TRANSFER"
	KindRecharge Kind = "RECHARGE"
)

// Status tracks the commit state of a transaction record.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// Account holds the current balance for one wallet. Balance is in minor units
// (cents) and never goes negative. Version increases on every committed balance
// change and guards compare-and-set updates.
type Account struct {
	ID        string
	Balance   int64
	Version   int64
	CreatedAt time.Time
}

// Transaction is one append-only record of a value movement. For a recharge
// SenderID equals ReceiverID.
type Transaction struct {
	ID         string
	SenderID   string
	ReceiverID string
	Amount     int64
	Kind       Kind
	Status     Status
	CreatedAt  time.Time
}

// Page bounds a history listing.
type Page struct {
	Limit  int
	Offset int
}

// AccountStore is the durable balance store. Every balance mutation goes
// through CompareAndSet; there is no unconditional update path.
type AccountStore interface {
	// Get returns the account or ErrAccountNotFound.
	Get(ctx context.Context, id string) (Account, error)

	// Create inserts a new account with its starting balance.
	Create(ctx context.Context, account Account) error

	// CompareAndSet writes newBalance only if the stored version still equals
	// expectedVersion, bumping the version. It returns the updated record,
	// ErrVersionConflict when a concurrent mutation won, or ErrAccountNotFound.
	CompareAndSet(ctx context.Context, id string, expectedVersion, newBalance int64) (Account, error)
}

// TransactionLog is the durable append-only movement record. Entries are never
// edited beyond the single PENDING -> COMPLETED/FAILED status transition.
type TransactionLog interface {
	Append(ctx context.Context, tx Transaction) error

	// MarkStatus moves a PENDING record to a terminal status.
	MarkStatus(ctx context.Context, txID string, status Status) error

	// ListByAccount returns transactions where the account is sender or
	// receiver, newest first (created_at desc, id desc for ties).
	ListByAccount(ctx context.Context, accountID string, page Page) ([]Transaction, error)

	// FailPending flips every PENDING record to FAILED and reports how many it
	// touched. Run at startup so a crash mid-commit never leaves a record that
	// looks in-flight forever.
	FailPending(ctx context.Context) (int64, error)
}
